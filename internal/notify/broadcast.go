package notify

import (
	"context"
	"time"

	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/pkg/metrics"
	"go.uber.org/zap"
)

// BroadcastJob is the resumable state of a new-post fan-out. Cursor is the
// last user id already handled; Sent counts recipients handled so far.
type BroadcastJob struct {
	PostID     string `json:"post_id"`
	AuthorID   uint   `json:"author_id"`
	AuthorName string `json:"author_name"`
	PostTitle  string `json:"post_title"`
	Cursor     uint   `json:"cursor"`
	Sent       int    `json:"sent"`
}

// Enqueuer hands a broadcast page to a background worker.
type Enqueuer interface {
	EnqueueBroadcast(ctx context.Context, job BroadcastJob) error
}

// PostPublished notifies every user except the author, up to the configured
// cap, in ascending user id order.
func (e *Engine) PostPublished(ctx context.Context, ev PostPublished) error {
	job := BroadcastJob{
		PostID:     ev.Post.ID.Hex(),
		AuthorID:   ev.Post.AuthorID,
		AuthorName: ev.AuthorName,
		PostTitle:  ev.Post.Title,
	}

	if e.enqueuer != nil {
		if err := e.enqueuer.EnqueueBroadcast(ctx, job); err != nil {
			return e.fail("post_published", err, zap.String("post_id", job.PostID))
		}
		return nil
	}

	defer observe("post_published", time.Now())
	next := &job
	for next != nil {
		var err error
		if next, err = e.RunPage(ctx, *next); err != nil {
			return e.fail("post_published", err, zap.String("post_id", job.PostID))
		}
	}
	return nil
}

// RunPage writes the notifications for one page of recipients with a single
// bulk insert. It returns the job for the following page, or nil when the
// broadcast is complete.
func (e *Engine) RunPage(ctx context.Context, job BroadcastJob) (*BroadcastJob, error) {
	limit := e.batch
	if e.cap > 0 {
		remaining := e.cap - job.Sent
		if remaining <= 0 {
			return nil, nil
		}
		if remaining < limit {
			limit = remaining
		}
	}

	ids, err := e.users.ListUserIDs(ctx, job.AuthorID, job.Cursor, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	t := postText(job.AuthorName, job.PostTitle)
	link := postLink(job.PostID)
	rows := make([]models.Notification, 0, len(ids))
	for _, id := range ids {
		n := newNotification(id, &job.AuthorID, models.NotificationPost, t, link)
		n.WithIdentity(SourcePost, job.PostID)
		rows = append(rows, *n)
	}

	created, err := e.store.CreateNotifications(ctx, rows)
	if err != nil {
		return nil, err
	}
	metrics.AddNotificationsCreated(string(models.NotificationPost), created)

	next := job
	next.Cursor = ids[len(ids)-1]
	next.Sent += len(ids)
	if len(ids) < limit || (e.cap > 0 && next.Sent >= e.cap) {
		return nil, nil
	}
	return &next, nil
}
