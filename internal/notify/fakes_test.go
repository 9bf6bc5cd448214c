package notify

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/campushub/backend/internal/models"
	"gorm.io/gorm"
)

// memoryStore mimics the postgres repository: rows with an existing dedup
// key are skipped, rows without one are always written.
type memoryStore struct {
	mu     sync.Mutex
	rows   []models.Notification
	keys   map[string]bool
	nextID uint
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{keys: map[string]bool{}}
}

func (s *memoryStore) insert(n models.Notification) bool {
	if n.DedupKey != nil {
		if s.keys[*n.DedupKey] {
			return false
		}
		s.keys[*n.DedupKey] = true
	}
	s.nextID++
	n.ID = s.nextID
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	s.rows = append(s.rows, n)
	return true
}

func (s *memoryStore) CreateNotification(_ context.Context, n *models.Notification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	return s.insert(*n), nil
}

func (s *memoryStore) CreateNotifications(_ context.Context, ns []models.Notification) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	var created int64
	for _, n := range ns {
		if s.insert(n) {
			created++
		}
	}
	return created, nil
}

func (s *memoryStore) CountReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.rows {
		if n.IsRead && n.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (s *memoryStore) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	var deleted int64
	for _, n := range s.rows {
		if n.IsRead && n.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	s.rows = kept
	return deleted, nil
}

func (s *memoryStore) all() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.rows...)
}

func (s *memoryStore) forRecipient(id uint) []models.Notification {
	var out []models.Notification
	for _, n := range s.all() {
		if n.RecipientID == id {
			out = append(out, n)
		}
	}
	return out
}

// userDirectory serves ids 1..n.
type userDirectory struct {
	ids   []uint
	pages int
}

func newUserDirectory(n int) *userDirectory {
	d := &userDirectory{}
	for i := 1; i <= n; i++ {
		d.ids = append(d.ids, uint(i))
	}
	return d
}

func (d *userDirectory) ListUserIDs(_ context.Context, excludeID, afterID uint, limit int) ([]uint, error) {
	d.pages++
	var out []uint
	for _, id := range d.ids {
		if id <= afterID || id == excludeID {
			continue
		}
		out = append(out, id)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type userLookup map[string]*models.User

func (u userLookup) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if user, ok := u[username]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type recordingEnqueuer struct {
	jobs []BroadcastJob
	err  error
}

func (q *recordingEnqueuer) EnqueueBroadcast(_ context.Context, job BroadcastJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type eventSource struct {
	events       []models.Event
	participants map[uint][]models.EventParticipant
}

func (s *eventSource) ListBetween(_ context.Context, from, to time.Time) ([]models.Event, error) {
	var out []models.Event
	for _, e := range s.events {
		if !e.Date.Before(from) && e.Date.Before(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *eventSource) GetParticipants(_ context.Context, eventID uint) ([]models.EventParticipant, error) {
	return s.participants[eventID], nil
}

var errStoreDown = errors.New("store down")
