package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/campushub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyed(recipient uint, key string) models.Notification {
	return models.Notification{RecipientID: recipient, Type: models.NotificationPost, Title: "t", DedupKey: &key}
}

func TestCreateNotification_SkipsDuplicateKey(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := createUsers(t, db, "alice")
	repo := NewPostgresNotificationRepository(db)

	first := keyed(users[0].ID, "comment:1:2:comment:7")
	created, err := repo.CreateNotification(ctx, &first)
	require.NoError(t, err)
	assert.True(t, created)

	again := keyed(users[0].ID, "comment:1:2:comment:7")
	again.Title = "different text, same identity"
	created, err = repo.CreateNotification(ctx, &again)
	require.NoError(t, err)
	assert.False(t, created)

	count, err := repo.GetUnreadCount(ctx, users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreateNotifications_BulkRedelivery(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := createUsers(t, db, "alice", "bob")
	repo := NewPostgresNotificationRepository(db)

	batch := func() []models.Notification {
		return []models.Notification{
			keyed(users[0].ID, "post:1:9:post:abc"),
			keyed(users[1].ID, "post:2:9:post:abc"),
		}
	}

	n, err := repo.CreateNotifications(ctx, batch())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.CreateNotifications(ctx, batch())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// rows without a key never conflict
	unkeyed := []models.Notification{
		{RecipientID: users[0].ID, Type: models.NotificationLike, Title: "seed"},
		{RecipientID: users[0].ID, Type: models.NotificationLike, Title: "seed"},
	}
	n, err = repo.CreateNotifications(ctx, unkeyed)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestReadState(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := createUsers(t, db, "alice", "bob")
	repo := NewPostgresNotificationRepository(db)

	mine := []models.Notification{
		keyed(users[0].ID, "a"), keyed(users[0].ID, "b"), keyed(users[0].ID, "c"),
	}
	_, err := repo.CreateNotifications(ctx, mine)
	require.NoError(t, err)
	theirs := keyed(users[1].ID, "d")
	_, err = repo.CreateNotification(ctx, &theirs)
	require.NoError(t, err)

	page, total, err := repo.GetByRecipientID(ctx, users[0].ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, int64(3), total)

	require.NoError(t, repo.MarkAsRead(ctx, page[0].ID))
	require.NoError(t, repo.MarkAsRead(ctx, page[0].ID))
	unread, err := repo.GetUnreadCount(ctx, users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	marked, err := repo.MarkAllAsRead(ctx, users[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), marked)

	unread, err = repo.GetUnreadCount(ctx, users[1].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread, "other recipients are untouched")
}

func TestRetentionPredicates(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := createUsers(t, db, "alice")
	repo := NewPostgresNotificationRepository(db)

	now := time.Now().UTC()
	rows := []models.Notification{
		{RecipientID: users[0].ID, Type: models.NotificationLike, Title: "recent read", IsRead: true, CreatedAt: now.AddDate(0, 0, -10)},
		{RecipientID: users[0].ID, Type: models.NotificationLike, Title: "old read", IsRead: true, CreatedAt: now.AddDate(0, 0, -40)},
		{RecipientID: users[0].ID, Type: models.NotificationLike, Title: "old unread", CreatedAt: now.AddDate(0, 0, -40)},
	}
	_, err := repo.CreateNotifications(ctx, rows)
	require.NoError(t, err)

	cutoff := now.AddDate(0, 0, -30)
	count, err := repo.CountReadBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	deleted, err := repo.DeleteReadBefore(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var titles []string
	require.NoError(t, db.Model(&models.Notification{}).Order("id").Pluck("title", &titles).Error)
	assert.Equal(t, []string{"recent read", "old unread"}, titles)
}
