package repositories

import (
	"context"
	"testing"

	"github.com/campushub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const commentPostID = "65a1f0c2b3d4e5f60718293a"

func TestVote_ToggleAndChange(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := createUsers(t, db, "alice", "bob")
	repo := NewPostgresCommentRepository(db)

	comment := &models.Comment{PostID: commentPostID, AuthorID: users[0].ID, Content: "hello"}
	require.NoError(t, repo.CreateComment(ctx, comment))

	steps := []struct {
		name string
		user uint
		vote models.VoteType
		want models.VoteTally
	}{
		{"first upvote", users[0].ID, models.Upvote, models.VoteTally{Upvotes: 1, Score: 1}},
		{"second user downvotes", users[1].ID, models.Downvote, models.VoteTally{Upvotes: 1, Downvotes: 1, Score: 0}},
		{"changing up to down overwrites", users[0].ID, models.Downvote, models.VoteTally{Downvotes: 2, Score: -2}},
		{"same vote again removes it", users[0].ID, models.Downvote, models.VoteTally{Downvotes: 1, Score: -1, Removed: true}},
	}
	for _, step := range steps {
		tally, err := repo.Vote(ctx, comment.ID, step.user, step.vote)
		require.NoError(t, err, step.name)
		assert.Equal(t, step.want, tally, step.name)
	}

	var rows int64
	require.NoError(t, db.Model(&models.CommentVote{}).Where("comment_id = ?", comment.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows, "one vote row per (comment, user)")
}

func TestGetVoteTallies_ZeroForUnvoted(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := createUsers(t, db, "alice")
	repo := NewPostgresCommentRepository(db)

	voted := &models.Comment{PostID: commentPostID, AuthorID: users[0].ID, Content: "voted"}
	quiet := &models.Comment{PostID: commentPostID, AuthorID: users[0].ID, Content: "quiet"}
	require.NoError(t, repo.CreateComment(ctx, voted))
	require.NoError(t, repo.CreateComment(ctx, quiet))
	_, err := repo.Vote(ctx, voted.ID, users[0].ID, models.Upvote)
	require.NoError(t, err)

	tallies, err := repo.GetVoteTallies(ctx, []uint{voted.ID, quiet.ID})
	require.NoError(t, err)
	assert.Equal(t, models.NewVoteTally(1, 0), tallies[voted.ID])
	assert.Equal(t, models.NewVoteTally(0, 0), tallies[quiet.ID])
}

func TestDeleteCommentsByPostID(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := createUsers(t, db, "alice")
	repo := NewPostgresCommentRepository(db)

	require.NoError(t, repo.CreateComment(ctx, &models.Comment{PostID: commentPostID, AuthorID: users[0].ID, Content: "a"}))
	require.NoError(t, repo.CreateComment(ctx, &models.Comment{PostID: "65a1f0c2b3d4e5f60718293b", AuthorID: users[0].ID, Content: "b"}))

	require.NoError(t, repo.DeleteCommentsByPostID(ctx, commentPostID))

	gone, err := repo.GetCommentsByPostID(ctx, commentPostID)
	require.NoError(t, err)
	assert.Empty(t, gone)
	kept, err := repo.GetCommentsByPostID(ctx, "65a1f0c2b3d4e5f60718293b")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
