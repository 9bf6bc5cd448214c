package repositories

import (
	"context"

	"github.com/campushub/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	ListUserIDs(ctx context.Context, excludeID, afterID uint, limit int) ([]uint, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	DeleteUser(ctx context.Context, id uint) error
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates the user and its default profile in one transaction
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile := user.Profile
		user.Profile = nil
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if profile == nil {
			profile = &models.Profile{About: models.DefaultAbout, ImageURL: models.DefaultImageURL}
		}
		profile.UserID = user.ID
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Profile").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Profile").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByFirebaseUID retrieves a user by Firebase UID from PostgreSQL
func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Preload("Profile").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListUserIDs pages through user ids in ascending order, skipping excludeID.
// afterID is the keyset cursor (0 starts from the beginning).
func (r *PostgresUserRepository) ListUserIDs(ctx context.Context, excludeID, afterID uint, limit int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id > ? AND id <> ?", afterID, excludeID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

// UpdateUser updates an existing user in PostgreSQL
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit("Profile").Save(user).Error
}

func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// DeleteUser deletes a user; profile, content and notifications cascade
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchUsers searches for users by username or first name
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	var users []models.User
	pattern := "%" + query + "%"
	if err := r.db.WithContext(ctx).
		Where("LOWER(username) LIKE LOWER(?) OR LOWER(first_name) LIKE LOWER(?)", pattern, pattern).
		Order("username ASC").
		Limit(50).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
