package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVote(t *testing.T) {
	up := &CommentVote{VoteType: Upvote}

	assert.Equal(t, VoteCreate, ResolveVote(nil, Upvote))
	assert.Equal(t, VoteRemove, ResolveVote(up, Upvote), "same vote twice toggles it off")
	assert.Equal(t, VoteChange, ResolveVote(up, Downvote), "different vote overwrites in place")
}

func TestVoteType_Valid(t *testing.T) {
	assert.True(t, Upvote.Valid())
	assert.True(t, Downvote.Valid())
	assert.False(t, VoteType("sideways").Valid())
	assert.False(t, VoteType("").Valid())
}

func TestNewVoteTally(t *testing.T) {
	tally := NewVoteTally(5, 7)
	assert.Equal(t, int64(-2), tally.Score)
	assert.False(t, tally.Removed)
}

func TestBuildCommentTree(t *testing.T) {
	one, two, missing := uint(1), uint(2), uint(99)
	comments := []Comment{
		{ID: 4, AuthorID: 10, ParentID: &missing},
		{ID: 3, AuthorID: 11, ParentID: &two},
		{ID: 2, AuthorID: 10, ParentID: &one},
		{ID: 1, AuthorID: 12},
	}
	tallies := map[uint]VoteTally{1: NewVoteTally(2, 1)}
	authors := map[uint]UserCompact{12: {ID: 12, Username: "root-author"}}

	roots := BuildCommentTree(comments, tallies, authors)

	require.Len(t, roots, 2)
	assert.Equal(t, uint(4), roots[0].ID, "orphaned reply becomes a root")
	assert.Equal(t, uint(1), roots[1].ID)
	assert.Equal(t, "root-author", roots[1].Author.Username)
	assert.Equal(t, int64(1), roots[1].Votes.Score)

	require.Len(t, roots[1].Replies, 1)
	require.Len(t, roots[1].Replies[0].Replies, 1)
	assert.Equal(t, uint(3), roots[1].Replies[0].Replies[0].ID)
}
