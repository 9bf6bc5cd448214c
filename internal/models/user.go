package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Username    string    `json:"username" gorm:"size:150;not null;uniqueIndex"`
	FirstName   string    `json:"first_name" gorm:"size:150"`
	Email       string    `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Password    string    `json:"-"`                         // Store hashed password, ignore for JSON serialization
	FirebaseUID *string   `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
	IsSuperuser bool      `json:"is_superuser" gorm:"default:false"`
	Profile     *Profile  `json:"profile,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Profile is created alongside its user and removed with it.
type Profile struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   uint   `json:"user_id" gorm:"uniqueIndex"`
	About    string `json:"about" gorm:"type:text;default:'Hi There'"`
	ImageURL string `json:"image_url" gorm:"size:255;default:'default.jpg'"`
}

const (
	DefaultAbout    = "Hi There"
	DefaultImageURL = "default.jpg"
)

// UserCompact is the shape embedded in other payloads (notification sender, comment author)
type UserCompact struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	ImageURL  string `json:"image_url"`
}

func (u *User) ToCompact() UserCompact {
	c := UserCompact{ID: u.ID, Username: u.Username, FirstName: u.FirstName, ImageURL: DefaultImageURL}
	if u.Profile != nil && u.Profile.ImageURL != "" {
		c.ImageURL = u.Profile.ImageURL
	}
	return c
}

type CreateLocalUserRequest struct {
	Username  string `json:"username" validate:"required,alphanum,min=3,max=150"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	About     string `json:"about,omitempty" validate:"omitempty,max=5000"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	IsSuperuser bool   `json:"is_superuser"`
	jwt.RegisteredClaims
}
