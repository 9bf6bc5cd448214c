package repositories

import (
	"context"

	"github.com/campushub/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment and comment vote data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
	DeleteCommentsByPostID(ctx context.Context, postID string) error
	Vote(ctx context.Context, commentID, userID uint, voteType models.VoteType) (models.VoteTally, error)
	GetVoteTallies(ctx context.Context, commentIDs []uint) (map[uint]models.VoteTally, error)
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment creates a new comment in PostgreSQL
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// GetCommentByID retrieves a comment by ID from PostgreSQL
func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves all comments for a specific post, newest first
func (r *PostgresCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at DESC").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment deletes a comment; replies and votes cascade
func (r *PostgresCommentRepository) DeleteComment(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

// DeleteCommentsByPostID removes the comments of a post deleted from MongoDB
func (r *PostgresCommentRepository) DeleteCommentsByPostID(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Comment{}).Error
}

// Vote applies a vote with toggle semantics and returns the fresh tally.
func (r *PostgresCommentRepository) Vote(ctx context.Context, commentID, userID uint, voteType models.VoteType) (models.VoteTally, error) {
	var tally models.VoteTally
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing *models.CommentVote
		var vote models.CommentVote
		res := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).Limit(1).Find(&vote)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			existing = &vote
		}

		var err error
		removed := false
		switch models.ResolveVote(existing, voteType) {
		case models.VoteCreate:
			err = tx.Create(&models.CommentVote{CommentID: commentID, UserID: userID, VoteType: voteType}).Error
		case models.VoteRemove:
			err = tx.Delete(existing).Error
			removed = true
		case models.VoteChange:
			err = tx.Model(existing).Update("vote_type", voteType).Error
		}
		if err != nil {
			return err
		}

		tallies, err := countVotes(tx, []uint{commentID})
		if err != nil {
			return err
		}
		tally = tallies[commentID]
		tally.Removed = removed
		return nil
	})
	return tally, err
}

func (r *PostgresCommentRepository) GetVoteTallies(ctx context.Context, commentIDs []uint) (map[uint]models.VoteTally, error) {
	return countVotes(r.db.WithContext(ctx), commentIDs)
}

func countVotes(db *gorm.DB, commentIDs []uint) (map[uint]models.VoteTally, error) {
	tallies := make(map[uint]models.VoteTally, len(commentIDs))
	if len(commentIDs) == 0 {
		return tallies, nil
	}

	var rows []struct {
		CommentID uint
		Upvotes   int64
		Downvotes int64
	}
	err := db.Model(&models.CommentVote{}).
		Select("comment_id, "+
			"SUM(CASE WHEN vote_type = ? THEN 1 ELSE 0 END) AS upvotes, "+
			"SUM(CASE WHEN vote_type = ? THEN 1 ELSE 0 END) AS downvotes", models.Upvote, models.Downvote).
		Where("comment_id IN ?", commentIDs).
		Group("comment_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, id := range commentIDs {
		tallies[id] = models.NewVoteTally(0, 0)
	}
	for _, row := range rows {
		tallies[row.CommentID] = models.NewVoteTally(row.Upvotes, row.Downvotes)
	}
	return tallies, nil
}
