package models

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationPost              NotificationType = "post"
	NotificationComment           NotificationType = "comment"
	NotificationReply             NotificationType = "reply"
	NotificationLike              NotificationType = "like"
	NotificationEventRegistration NotificationType = "event_registration"
	NotificationEventReminder     NotificationType = "event_reminder"
	NotificationMention           NotificationType = "mention"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationPost, NotificationComment, NotificationReply, NotificationLike,
		NotificationEventRegistration, NotificationEventReminder, NotificationMention:
		return true
	}
	return false
}

// Notification is one delivery of a domain event to one recipient (PostgreSQL)
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RecipientID uint             `json:"recipient_id" gorm:"not null;index:idx_notifications_recipient_created,priority:1;index:idx_notifications_recipient_read,priority:1"`
	Recipient   *User            `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	SenderID    *uint            `json:"sender_id" gorm:"index"` // nil for system notifications
	Sender      *User            `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Type        NotificationType `json:"type" gorm:"size:30;not null;index"`
	Title       string           `json:"title" gorm:"size:200"`
	Message     string           `json:"message" gorm:"type:text"`
	Link        *string          `json:"link" gorm:"size:500"`
	SourceType  string           `json:"source_type,omitempty" gorm:"size:30"` // post, comment, event, participant
	SourceID    string           `json:"source_id,omitempty" gorm:"size:64"`
	DedupKey    *string          `json:"-" gorm:"size:200;uniqueIndex"`
	IsRead      bool             `json:"is_read" gorm:"default:false;index:idx_notifications_recipient_read,priority:2"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index:idx_notifications_recipient_created,priority:2,sort:desc"`
}

// LinkOrDefault mirrors the web surface: notifications without a link
// point at the notification list.
func (n *Notification) LinkOrDefault() string {
	if n.Link != nil && *n.Link != "" {
		return *n.Link
	}
	return "/notifications/"
}

// WithIdentity stamps the source entity and derives the dedup key from
// (type, recipient, sender, source). Message text never takes part.
func (n *Notification) WithIdentity(sourceType, sourceID string) *Notification {
	n.SourceType = sourceType
	n.SourceID = sourceID
	var sender uint
	if n.SenderID != nil {
		sender = *n.SenderID
	}
	key := fmt.Sprintf("%s:%d:%d:%s:%s", n.Type, n.RecipientID, sender, sourceType, sourceID)
	n.DedupKey = &key
	return n
}
