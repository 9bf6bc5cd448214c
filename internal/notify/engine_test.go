package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func defaultNotifyConfig() config.NotifyConfig {
	return config.NotifyConfig{BroadcastMode: config.BroadcastInline, BroadcastCap: 50, BroadcastBatch: 500, RetentionDays: 30}
}

func newTestEngine(store *memoryStore, users *userDirectory, opts ...Option) *Engine {
	return NewEngine(store, users, defaultNotifyConfig(), opts...)
}

const postHex = "65a1f0c2b3d4e5f60718293a"

func uintPtr(v uint) *uint { return &v }

func TestCommentCreated_TopLevel(t *testing.T) {
	ctx := context.Background()

	t.Run("comment by someone else notifies the post author once", func(t *testing.T) {
		store := newMemoryStore()
		e := newTestEngine(store, newUserDirectory(0))

		ev := CommentCreated{
			Comment:      models.Comment{ID: 7, PostID: postHex, AuthorID: 2, Content: "nice post"},
			AuthorName:   "bob",
			PostAuthorID: 1,
		}
		require.NoError(t, e.CommentCreated(ctx, ev))

		rows := store.all()
		require.Len(t, rows, 1)
		n := rows[0]
		assert.Equal(t, uint(1), n.RecipientID)
		assert.Equal(t, models.NotificationComment, n.Type)
		require.NotNil(t, n.SenderID)
		assert.Equal(t, uint(2), *n.SenderID)
		assert.Equal(t, "bob commented on your post", n.Title)
		assert.Equal(t, `bob commented: "nice post..."`, n.Message)
		assert.Equal(t, "/post/"+postHex+"/", n.LinkOrDefault())
		assert.False(t, n.IsRead)
	})

	t.Run("comment by the post author notifies nobody", func(t *testing.T) {
		store := newMemoryStore()
		e := newTestEngine(store, newUserDirectory(0))

		ev := CommentCreated{
			Comment:      models.Comment{ID: 8, PostID: postHex, AuthorID: 1, Content: "thanks all"},
			AuthorName:   "alice",
			PostAuthorID: 1,
		}
		require.NoError(t, e.CommentCreated(ctx, ev))
		assert.Empty(t, store.all())
	})

	t.Run("redelivery of the same comment writes nothing new", func(t *testing.T) {
		store := newMemoryStore()
		e := newTestEngine(store, newUserDirectory(0))

		ev := CommentCreated{
			Comment:      models.Comment{ID: 9, PostID: postHex, AuthorID: 2, Content: "hello"},
			AuthorName:   "bob",
			PostAuthorID: 1,
		}
		require.NoError(t, e.CommentCreated(ctx, ev))
		require.NoError(t, e.CommentCreated(ctx, ev))
		assert.Len(t, store.all(), 1)
	})

	t.Run("two comments with identical text are two notifications", func(t *testing.T) {
		store := newMemoryStore()
		e := newTestEngine(store, newUserDirectory(0))

		for _, id := range []uint{10, 11} {
			require.NoError(t, e.CommentCreated(ctx, CommentCreated{
				Comment:      models.Comment{ID: id, PostID: postHex, AuthorID: 2, Content: "+1"},
				AuthorName:   "bob",
				PostAuthorID: 1,
			}))
		}
		assert.Len(t, store.all(), 2)
	})
}

func TestCommentCreated_Reply(t *testing.T) {
	ctx := context.Background()
	parent := &models.Comment{ID: 20, PostID: postHex, AuthorID: 3, Content: "first"}

	t.Run("reply notifies the parent author, not the post author", func(t *testing.T) {
		store := newMemoryStore()
		e := newTestEngine(store, newUserDirectory(0))

		require.NoError(t, e.CommentCreated(ctx, CommentCreated{
			Comment:      models.Comment{ID: 21, PostID: postHex, AuthorID: 4, Content: "agreed", ParentID: uintPtr(20)},
			AuthorName:   "dave",
			PostAuthorID: 1,
			Parent:       parent,
		}))

		rows := store.all()
		require.Len(t, rows, 1)
		assert.Equal(t, uint(3), rows[0].RecipientID)
		assert.Equal(t, models.NotificationReply, rows[0].Type)
		assert.Equal(t, "dave replied to your comment", rows[0].Title)
		assert.Equal(t, `dave replied: "agreed..."`, rows[0].Message)
		assert.Empty(t, store.forRecipient(1))
	})

	t.Run("replying to your own comment notifies nobody", func(t *testing.T) {
		store := newMemoryStore()
		e := newTestEngine(store, newUserDirectory(0))

		require.NoError(t, e.CommentCreated(ctx, CommentCreated{
			Comment:      models.Comment{ID: 22, PostID: postHex, AuthorID: 3, Content: "edit: typo", ParentID: uintPtr(20)},
			AuthorName:   "carol",
			PostAuthorID: 1,
			Parent:       parent,
		}))
		assert.Empty(t, store.all())
	})

	t.Run("reply without a loaded parent is a dispatch error", func(t *testing.T) {
		store := newMemoryStore()
		e := newTestEngine(store, newUserDirectory(0))

		err := e.CommentCreated(ctx, CommentCreated{
			Comment:      models.Comment{ID: 23, PostID: postHex, AuthorID: 4, ParentID: uintPtr(20)},
			AuthorName:   "dave",
			PostAuthorID: 1,
		})
		assert.Error(t, err)
		assert.Empty(t, store.all())
	})
}

func TestCommentText_Excerpt(t *testing.T) {
	long := strings.Repeat("é", 80)
	got := commentText(models.NotificationComment, "bob", long)
	assert.Equal(t, `bob commented: "`+strings.Repeat("é", 50)+`..."`, got.message)
}

func TestEventRegistered(t *testing.T) {
	ctx := context.Background()
	event := models.Event{ID: 5, Name: "Go meetup", OrganizerID: 1}

	t.Run("registration notifies organizer and registrant", func(t *testing.T) {
		store := newMemoryStore()
		e := newTestEngine(store, newUserDirectory(0))

		ev := EventRegistered{
			Participant:    models.EventParticipant{ID: 40, EventID: 5, UserID: 2},
			Event:          event,
			RegistrantName: "bob",
		}
		require.NoError(t, e.EventRegistered(ctx, ev))

		organizer := store.forRecipient(1)
		require.Len(t, organizer, 1)
		assert.Equal(t, "New registration for Go meetup", organizer[0].Title)
		assert.Equal(t, `bob registered for your event "Go meetup"`, organizer[0].Message)
		require.NotNil(t, organizer[0].SenderID)
		assert.Equal(t, uint(2), *organizer[0].SenderID)

		registrant := store.forRecipient(2)
		require.Len(t, registrant, 1)
		assert.Equal(t, "Registration confirmed", registrant[0].Title)
		assert.Equal(t, `You successfully registered for "Go meetup"`, registrant[0].Message)
		assert.Nil(t, registrant[0].SenderID)
		assert.Equal(t, "/event/5/", registrant[0].LinkOrDefault())

		require.NoError(t, e.EventRegistered(ctx, ev))
		assert.Len(t, store.all(), 2)
	})

	t.Run("organizer registering for their own event only gets the confirmation", func(t *testing.T) {
		store := newMemoryStore()
		e := newTestEngine(store, newUserDirectory(0))

		require.NoError(t, e.EventRegistered(ctx, EventRegistered{
			Participant:    models.EventParticipant{ID: 41, EventID: 5, UserID: 1},
			Event:          event,
			RegistrantName: "alice",
		}))

		rows := store.all()
		require.Len(t, rows, 1)
		assert.Equal(t, "Registration confirmed", rows[0].Title)
	})
}

func TestPostLiked(t *testing.T) {
	ctx := context.Background()
	id, err := primitive.ObjectIDFromHex(postHex)
	require.NoError(t, err)
	post := models.Post{ID: id, AuthorID: 1, Title: "Hello"}

	store := newMemoryStore()
	e := newTestEngine(store, newUserDirectory(0))

	require.NoError(t, e.PostLiked(ctx, PostLiked{Post: post, LikerID: 1, LikerName: "alice"}))
	assert.Empty(t, store.all())

	require.NoError(t, e.PostLiked(ctx, PostLiked{Post: post, LikerID: 2, LikerName: "bob"}))
	require.NoError(t, e.PostLiked(ctx, PostLiked{Post: post, LikerID: 2, LikerName: "bob"}))
	rows := store.all()
	require.Len(t, rows, 1)
	assert.Equal(t, "bob liked your post", rows[0].Title)
	assert.Equal(t, `bob liked "Hello"`, rows[0].Message)
}

func TestEventUpcoming(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	e := newTestEngine(store, newUserDirectory(0))

	ev := EventUpcoming{
		Event:        models.Event{ID: 9, Name: "Hackathon", Date: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)},
		RecipientIDs: []uint{2, 3},
	}
	require.NoError(t, e.EventUpcoming(ctx, ev))
	require.NoError(t, e.EventUpcoming(ctx, ev))

	rows := store.all()
	require.Len(t, rows, 2)
	assert.Equal(t, "Upcoming: Hackathon", rows[0].Title)
	assert.Equal(t, `"Hackathon" takes place on 2026-03-14`, rows[0].Message)
	assert.Nil(t, rows[0].SenderID)
}

func TestDispatchFailureIsReturnedNotPanicked(t *testing.T) {
	store := newMemoryStore()
	store.err = errStoreDown
	e := newTestEngine(store, newUserDirectory(0))

	err := e.CommentCreated(context.Background(), CommentCreated{
		Comment:      models.Comment{ID: 1, PostID: postHex, AuthorID: 2},
		AuthorName:   "bob",
		PostAuthorID: 1,
	})
	assert.ErrorIs(t, err, errStoreDown)
}
