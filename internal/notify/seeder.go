package notify

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/campushub/backend/internal/models"
	"gorm.io/gorm"
)

var ErrUnknownUser = errors.New("unknown user")

// UserLookup resolves a recipient by username.
type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

var seedTypes = []models.NotificationType{
	models.NotificationPost,
	models.NotificationComment,
	models.NotificationLike,
	models.NotificationEventRegistration,
	models.NotificationEventReminder,
}

var seedTexts = map[models.NotificationType]text{
	models.NotificationPost:              {"New post available", "Check out the latest blog post"},
	models.NotificationComment:           {"New comment", "Someone commented on your post"},
	models.NotificationLike:              {"Post liked", "Your post received a new like"},
	models.NotificationEventRegistration: {"Event registration", "New registration for your event"},
	models.NotificationEventReminder:     {"Event reminder", "Your event is coming up soon"},
}

// Seeder writes sample notifications for manual testing of clients.
type Seeder struct {
	users UserLookup
	store NotificationStore
	pick  func(n int) int
}

func NewSeeder(users UserLookup, store NotificationStore) *Seeder {
	return &Seeder{users: users, store: store, pick: rand.Intn}
}

// Seed creates count unread system notifications for username. Seeded rows
// have no dedup key, so seeding twice creates twice as many.
func (s *Seeder) Seed(ctx context.Context, username string, count int) (int64, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrUnknownUser, username)
		}
		return 0, err
	}
	if count <= 0 {
		return 0, nil
	}

	rows := make([]models.Notification, 0, count)
	for i := 1; i <= count; i++ {
		kind := seedTypes[s.pick(len(seedTypes))]
		t := seedTexts[kind]
		rows = append(rows, *newNotification(user.ID, nil, kind, text{
			title:   fmt.Sprintf("%s #%d", t.title, i),
			message: fmt.Sprintf("%s (Test notification)", t.message),
		}, "/"))
	}
	return s.store.CreateNotifications(ctx, rows)
}
