package repositories

import (
	"context"

	"github.com/campushub/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(ctx context.Context, postID string, userID uint) (bool, error)
	DeleteLike(ctx context.Context, postID string, userID uint) (bool, error)
	GetLikesCountByPostID(ctx context.Context, postID string) (int64, error)
	HasUserLikedPost(ctx context.Context, postID string, userID uint) (bool, error)
	DeleteLikesByPostID(ctx context.Context, postID string) error
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike reports whether a new like was stored; liking twice is a no-op
func (r *PostgresLikeRepository) CreateLike(ctx context.Context, postID string, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.Like{PostID: postID, UserID: userID})
	return res.RowsAffected > 0, res.Error
}

// DeleteLike reports whether a like was removed
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, postID string, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	return res.RowsAffected > 0, res.Error
}

// GetLikesCountByPostID retrieves the count of likes for a specific post from PostgreSQL
func (r *PostgresLikeRepository) GetLikesCountByPostID(ctx context.Context, postID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// HasUserLikedPost checks if a user has liked a specific post
func (r *PostgresLikeRepository) HasUserLikedPost(ctx context.Context, postID string, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresLikeRepository) DeleteLikesByPostID(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Like{}).Error
}
