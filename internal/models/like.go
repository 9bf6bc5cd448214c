package models

import "time"

// Like represents a like on a post
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"size:24;not null;uniqueIndex:idx_post_like_user"` // MongoDB ObjectID as hex
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_post_like_user;index"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}
