package repositories

import (
	"context"
	"time"

	"github.com/campushub/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository defines the interface for event and registration data operations
type EventRepository interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id uint) (*models.Event, error)
	ListEvents(ctx context.Context, page, limit int) ([]models.Event, int64, error)
	ListByOrganizer(ctx context.Context, organizerID uint, page, limit int) ([]models.Event, int64, error)
	ListRegistered(ctx context.Context, userID uint, page, limit int) ([]models.Event, int64, error)
	ListByDate(ctx context.Context, day time.Time, page, limit int) ([]models.Event, int64, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Event, error)
	ListDates(ctx context.Context) ([]time.Time, error)
	SearchEvents(ctx context.Context, query string) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id uint) error

	RegisterParticipant(ctx context.Context, eventID, userID uint) (*models.EventParticipant, bool, error)
	IsRegistered(ctx context.Context, eventID, userID uint) (bool, error)
	GetParticipants(ctx context.Context, eventID uint) ([]models.EventParticipant, error)
	SetAttendance(ctx context.Context, eventID uint, attended []uint) error
}

// PostgresEventRepository implements EventRepository for PostgreSQL
type PostgresEventRepository struct {
	db *gorm.DB
}

func NewPostgresEventRepository(db *gorm.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

func (r *PostgresEventRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *PostgresEventRepository) GetEventByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *PostgresEventRepository) paginate(query *gorm.DB, order string, page, limit int) ([]models.Event, int64, error) {
	var events []models.Event
	var total int64
	if err := query.Session(&gorm.Session{}).Model(&models.Event{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order(order).Offset((page - 1) * limit).Limit(limit).Find(&events).Error
	return events, total, err
}

// ListEvents lists all events in calendar order
func (r *PostgresEventRepository) ListEvents(ctx context.Context, page, limit int) ([]models.Event, int64, error) {
	return r.paginate(r.db.WithContext(ctx).Model(&models.Event{}), "date ASC, id ASC", page, limit)
}

func (r *PostgresEventRepository) ListByOrganizer(ctx context.Context, organizerID uint, page, limit int) ([]models.Event, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Event{}).Where("organizer_id = ?", organizerID)
	return r.paginate(q, "date DESC, id DESC", page, limit)
}

func (r *PostgresEventRepository) ListRegistered(ctx context.Context, userID uint, page, limit int) ([]models.Event, int64, error) {
	sub := r.db.Model(&models.EventParticipant{}).Select("event_id").Where("user_id = ?", userID)
	q := r.db.WithContext(ctx).Model(&models.Event{}).Where("id IN (?)", sub)
	return r.paginate(q, "date DESC, id DESC", page, limit)
}

func (r *PostgresEventRepository) ListByDate(ctx context.Context, day time.Time, page, limit int) ([]models.Event, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Event{}).Where("date = ?", day.Format(models.DateLayout))
	return r.paginate(q, "id ASC", page, limit)
}

// ListBetween returns events dated in [from, to)
func (r *PostgresEventRepository) ListBetween(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", from.Format(models.DateLayout), to.Format(models.DateLayout)).
		Order("date ASC, id ASC").
		Find(&events).Error
	return events, err
}

func (r *PostgresEventRepository) ListDates(ctx context.Context) ([]time.Time, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).Model(&models.Event{}).Distinct("date").Order("date ASC").Pluck("date", &dates).Error
	return dates, err
}

func (r *PostgresEventRepository) SearchEvents(ctx context.Context, query string) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE LOWER(?)", "%"+query+"%").
		Order("date DESC").
		Limit(50).
		Find(&events).Error
	return events, err
}

func (r *PostgresEventRepository) UpdateEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// DeleteEvent deletes an event; registrations cascade
func (r *PostgresEventRepository) DeleteEvent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Event{}, id).Error
}

// RegisterParticipant is a get-or-create on (event, user). The unique index
// settles concurrent registrations; created is true only for the writer
// that inserted the row.
func (r *PostgresEventRepository) RegisterParticipant(ctx context.Context, eventID, userID uint) (*models.EventParticipant, bool, error) {
	db := r.db.WithContext(ctx)
	participant := &models.EventParticipant{EventID: eventID, UserID: userID}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(participant)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return participant, true, nil
	}

	var existing models.EventParticipant
	if err := db.Where("event_id = ? AND user_id = ?", eventID, userID).First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

func (r *PostgresEventRepository) IsRegistered(ctx context.Context, eventID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.EventParticipant{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresEventRepository) GetParticipants(ctx context.Context, eventID uint) ([]models.EventParticipant, error) {
	var participants []models.EventParticipant
	err := r.db.WithContext(ctx).Preload("User").
		Where("event_id = ?", eventID).
		Order("registered_at ASC").
		Find(&participants).Error
	return participants, err
}

// SetAttendance marks the listed participants as attended and everyone else
// registered for the event as absent.
func (r *PostgresEventRepository) SetAttendance(ctx context.Context, eventID uint, attended []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		absent := tx.Model(&models.EventParticipant{}).Where("event_id = ?", eventID)
		if len(attended) > 0 {
			absent = absent.Where("id NOT IN ?", attended)
		}
		if err := absent.Update("attended", false).Error; err != nil {
			return err
		}
		if len(attended) == 0 {
			return nil
		}
		return tx.Model(&models.EventParticipant{}).
			Where("event_id = ? AND id IN ?", eventID, attended).
			Update("attended", true).Error
	})
}
