package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campushub/backend/internal/middleware"
	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/internal/notify"
	"github.com/campushub/backend/internal/repositories"
	"github.com/campushub/backend/validators"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// newTestServer returns an echo instance whose /api/v1 group authenticates
// every request as claims (nil leaves it anonymous).
func newTestServer(claims *models.JwtCustomClaims) (*echo.Echo, *echo.Group) {
	e := echo.New()
	e.Validator = validators.NewValidator()
	g := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if claims != nil {
				c.Set(middleware.ClaimsContextKey, claims)
			}
			return next(c)
		}
	})
	return e, g
}

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func claimsFor(id uint, username string) *models.JwtCustomClaims {
	return &models.JwtCustomClaims{UserID: id, Username: username}
}

// recordingDispatcher keeps every event handed to it.
type recordingDispatcher struct {
	comments      []notify.CommentCreated
	posts         []notify.PostPublished
	registrations []notify.EventRegistered
	likes         []notify.PostLiked
}

func (d *recordingDispatcher) CommentCreated(_ context.Context, ev notify.CommentCreated) error {
	d.comments = append(d.comments, ev)
	return nil
}

func (d *recordingDispatcher) PostPublished(_ context.Context, ev notify.PostPublished) error {
	d.posts = append(d.posts, ev)
	return nil
}

func (d *recordingDispatcher) EventRegistered(_ context.Context, ev notify.EventRegistered) error {
	d.registrations = append(d.registrations, ev)
	return nil
}

func (d *recordingDispatcher) PostLiked(_ context.Context, ev notify.PostLiked) error {
	d.likes = append(d.likes, ev)
	return nil
}

func (d *recordingDispatcher) EventUpcoming(context.Context, notify.EventUpcoming) error { return nil }

// Fake repositories embed the interface so only the methods a test touches
// need bodies; anything else panics.

type fakeUsers struct {
	repositories.UserRepository
	byID map[uint]models.User
}

func (f *fakeUsers) GetUsersByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeEvents struct {
	repositories.EventRepository
	events     map[uint]models.Event
	registered map[[2]uint]bool
	nextID     uint
}

func newFakeEvents(events ...models.Event) *fakeEvents {
	f := &fakeEvents{events: map[uint]models.Event{}, registered: map[[2]uint]bool{}}
	for _, ev := range events {
		f.events[ev.ID] = ev
	}
	return f
}

func (f *fakeEvents) GetEventByID(_ context.Context, id uint) (*models.Event, error) {
	ev, ok := f.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &ev, nil
}

func (f *fakeEvents) RegisterParticipant(_ context.Context, eventID, userID uint) (*models.EventParticipant, bool, error) {
	key := [2]uint{eventID, userID}
	created := !f.registered[key]
	f.registered[key] = true
	if created {
		f.nextID++
	}
	return &models.EventParticipant{ID: f.nextID, EventID: eventID, UserID: userID}, created, nil
}

type fakePosts struct {
	repositories.PostRepository
	posts    map[string]models.Post
	comments map[string]int
}

func (f *fakePosts) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	return &p, nil
}

func (f *fakePosts) AdjustCommentsCount(_ context.Context, postID string, delta int) error {
	if f.comments == nil {
		f.comments = map[string]int{}
	}
	f.comments[postID] += delta
	return nil
}

type fakeComments struct {
	repositories.CommentRepository
	comments map[uint]models.Comment
	votes    int
}

func (f *fakeComments) CreateComment(_ context.Context, c *models.Comment) error {
	c.ID = uint(len(f.comments) + 100)
	f.comments[c.ID] = *c
	return nil
}

func (f *fakeComments) GetCommentByID(_ context.Context, id uint) (*models.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (f *fakeComments) Vote(context.Context, uint, uint, models.VoteType) (models.VoteTally, error) {
	f.votes++
	return models.VoteTally{}, nil
}

type fakeNotifications struct {
	repositories.NotificationRepository
	rows   map[uint]*models.Notification
	marked []uint
}

func (f *fakeNotifications) GetByID(_ context.Context, id uint) (*models.Notification, error) {
	n, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return n, nil
}

func (f *fakeNotifications) MarkAsRead(_ context.Context, id uint) error {
	f.rows[id].IsRead = true
	f.marked = append(f.marked, id)
	return nil
}

func (f *fakeNotifications) MarkAllAsRead(_ context.Context, recipientID uint) (int64, error) {
	var n int64
	for _, row := range f.rows {
		if row.RecipientID == recipientID && !row.IsRead {
			row.IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) GetUnreadCount(_ context.Context, recipientID uint) (int64, error) {
	var n int64
	for _, row := range f.rows {
		if row.RecipientID == recipientID && !row.IsRead {
			n++
		}
	}
	return n, nil
}
