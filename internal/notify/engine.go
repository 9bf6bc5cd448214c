// Package notify turns domain events into per-recipient notification rows.
//
// Handlers call the Dispatcher after the triggering write has committed.
// Every row carries a dedup key derived from (type, recipient, sender,
// source entity), so delivering the same event twice writes nothing new.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/pkg/config"
	"github.com/campushub/backend/pkg/metrics"
	"go.uber.org/zap"
)

// Fallbacks for a zero-value or invalid NotifyConfig.
const (
	defaultBroadcastCap   = 50
	defaultBroadcastBatch = 500
)

// Source types recorded on notifications.
const (
	SourcePost        = "post"
	SourceComment     = "comment"
	SourceEvent       = "event"
	SourceParticipant = "participant"
)

// NotificationStore persists notification rows, skipping rows whose dedup
// key already exists.
type NotificationStore interface {
	CreateNotification(ctx context.Context, notification *models.Notification) (bool, error)
	CreateNotifications(ctx context.Context, notifications []models.Notification) (int64, error)
}

// UserDirectory pages through user ids for broadcasts.
type UserDirectory interface {
	ListUserIDs(ctx context.Context, excludeID, afterID uint, limit int) ([]uint, error)
}

// CommentCreated is raised for every new comment. Parent is set for replies.
type CommentCreated struct {
	Comment      models.Comment
	AuthorName   string
	PostAuthorID uint
	Parent       *models.Comment
}

type PostPublished struct {
	Post       models.Post
	AuthorName string
}

// EventRegistered is raised only when a registration row was created.
type EventRegistered struct {
	Participant    models.EventParticipant
	Event          models.Event
	RegistrantName string
}

type PostLiked struct {
	Post      models.Post
	LikerID   uint
	LikerName string
}

type EventUpcoming struct {
	Event        models.Event
	RecipientIDs []uint
}

// Dispatcher receives domain events after their write committed. Errors are
// already logged and counted when returned; callers must not fail the
// triggering request because of them.
type Dispatcher interface {
	CommentCreated(ctx context.Context, ev CommentCreated) error
	PostPublished(ctx context.Context, ev PostPublished) error
	EventRegistered(ctx context.Context, ev EventRegistered) error
	PostLiked(ctx context.Context, ev PostLiked) error
	EventUpcoming(ctx context.Context, ev EventUpcoming) error
}

// Engine is the Dispatcher backed by the notification store.
type Engine struct {
	store    NotificationStore
	users    UserDirectory
	enqueuer Enqueuer
	cap      int
	batch    int
	logger   *zap.Logger
}

type Option func(*Engine)

// WithEnqueuer makes new-post broadcasts run as queued pages instead of inline.
func WithEnqueuer(q Enqueuer) Option {
	return func(e *Engine) { e.enqueuer = q }
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func NewEngine(store NotificationStore, users UserDirectory, cfg config.NotifyConfig, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		users:  users,
		cap:    cfg.BroadcastCap,
		batch:  cfg.BroadcastBatch,
		logger: zap.L(),
	}
	if e.batch <= 0 {
		e.batch = defaultBroadcastBatch
	}
	// 0 is the explicit "unbounded"; a negative cap never widens the fan-out
	if e.cap < 0 {
		e.cap = defaultBroadcastCap
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ Dispatcher = (*Engine)(nil)

func (e *Engine) fail(event string, err error, fields ...zap.Field) error {
	metrics.IncrementDispatchFailure(event)
	e.logger.Error("notification dispatch failed", append(fields, zap.String("event", event), zap.Error(err))...)
	return fmt.Errorf("dispatch %s: %w", event, err)
}

func (e *Engine) createOne(ctx context.Context, n *models.Notification) error {
	created, err := e.store.CreateNotification(ctx, n)
	if err != nil {
		return err
	}
	if created {
		metrics.AddNotificationsCreated(string(n.Type), 1)
	}
	return nil
}

func (e *Engine) CommentCreated(ctx context.Context, ev CommentCreated) error {
	defer observe("comment_created", time.Now())

	c := ev.Comment
	recipient := ev.PostAuthorID
	kind := models.NotificationComment
	if c.ParentID != nil {
		if ev.Parent == nil {
			return e.fail("comment_created", fmt.Errorf("reply %d has no parent loaded", c.ID))
		}
		recipient = ev.Parent.AuthorID
		kind = models.NotificationReply
	}
	if recipient == c.AuthorID {
		return nil
	}

	n := newNotification(recipient, &c.AuthorID, kind, commentText(kind, ev.AuthorName, c.Content), postLink(c.PostID))
	n.WithIdentity(SourceComment, fmt.Sprint(c.ID))
	if err := e.createOne(ctx, n); err != nil {
		return e.fail("comment_created", err, zap.Uint("comment_id", c.ID))
	}
	return nil
}

func (e *Engine) EventRegistered(ctx context.Context, ev EventRegistered) error {
	defer observe("event_registered", time.Now())

	p := ev.Participant
	link := eventLink(ev.Event.ID)
	source := fmt.Sprint(p.ID)

	if ev.Event.OrganizerID != p.UserID {
		n := newNotification(ev.Event.OrganizerID, &p.UserID, models.NotificationEventRegistration,
			organizerRegistrationText(ev.RegistrantName, ev.Event.Name), link)
		n.WithIdentity(SourceParticipant, source)
		if err := e.createOne(ctx, n); err != nil {
			return e.fail("event_registered", err, zap.Uint("participant_id", p.ID))
		}
	}

	n := newNotification(p.UserID, nil, models.NotificationEventRegistration,
		registrantRegistrationText(ev.Event.Name), link)
	n.WithIdentity(SourceParticipant, source)
	if err := e.createOne(ctx, n); err != nil {
		return e.fail("event_registered", err, zap.Uint("participant_id", p.ID))
	}
	return nil
}

func (e *Engine) PostLiked(ctx context.Context, ev PostLiked) error {
	defer observe("post_liked", time.Now())

	if ev.LikerID == ev.Post.AuthorID {
		return nil
	}
	postID := ev.Post.ID.Hex()
	n := newNotification(ev.Post.AuthorID, &ev.LikerID, models.NotificationLike,
		likeText(ev.LikerName, ev.Post.Title), postLink(postID))
	n.WithIdentity(SourcePost, postID)
	if err := e.createOne(ctx, n); err != nil {
		return e.fail("post_liked", err, zap.String("post_id", postID))
	}
	return nil
}

func (e *Engine) EventUpcoming(ctx context.Context, ev EventUpcoming) error {
	defer observe("event_upcoming", time.Now())

	if len(ev.RecipientIDs) == 0 {
		return nil
	}
	text := reminderText(ev.Event.Name, ev.Event.Date)
	link := eventLink(ev.Event.ID)
	rows := make([]models.Notification, 0, len(ev.RecipientIDs))
	for _, id := range ev.RecipientIDs {
		n := newNotification(id, nil, models.NotificationEventReminder, text, link)
		n.WithIdentity(SourceEvent, fmt.Sprint(ev.Event.ID))
		rows = append(rows, *n)
	}
	created, err := e.store.CreateNotifications(ctx, rows)
	if err != nil {
		return e.fail("event_upcoming", err, zap.Uint("event_id", ev.Event.ID))
	}
	metrics.AddNotificationsCreated(string(models.NotificationEventReminder), created)
	return nil
}

func observe(event string, start time.Time) {
	metrics.RecordFanoutDuration(event, time.Since(start))
}

func newNotification(recipient uint, sender *uint, kind models.NotificationType, t text, link string) *models.Notification {
	n := &models.Notification{
		RecipientID: recipient,
		Type:        kind,
		Title:       t.title,
		Message:     t.message,
	}
	if sender != nil {
		id := *sender
		n.SenderID = &id
	}
	if link != "" {
		n.Link = &link
	}
	return n
}
