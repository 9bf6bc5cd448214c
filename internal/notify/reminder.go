package notify

import (
	"context"
	"time"

	"github.com/campushub/backend/internal/models"
	"go.uber.org/zap"
)

// EventSource lists events and their registrants for reminders.
type EventSource interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Event, error)
	GetParticipants(ctx context.Context, eventID uint) ([]models.EventParticipant, error)
}

// Reminder raises EventUpcoming for every event on a given day.
type Reminder struct {
	events     EventSource
	dispatcher Dispatcher
	now        func() time.Time
	logger     *zap.Logger
}

func NewReminder(events EventSource, dispatcher Dispatcher) *Reminder {
	return &Reminder{events: events, dispatcher: dispatcher, now: time.Now, logger: zap.L()}
}

// RemindUpcoming notifies the registrants of events taking place daysAhead
// days from today. Running it twice on the same day adds nothing. It returns
// the number of events reminded.
func (r *Reminder) RemindUpcoming(ctx context.Context, daysAhead int) (int, error) {
	now := r.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, daysAhead)

	events, err := r.events.ListBetween(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return 0, err
	}

	reminded := 0
	for _, event := range events {
		participants, err := r.events.GetParticipants(ctx, event.ID)
		if err != nil {
			return reminded, err
		}
		recipients := make([]uint, 0, len(participants))
		for _, p := range participants {
			recipients = append(recipients, p.UserID)
		}
		if err := r.dispatcher.EventUpcoming(ctx, EventUpcoming{Event: event, RecipientIDs: recipients}); err != nil {
			return reminded, err
		}
		reminded++
	}

	r.logger.Info("event reminders dispatched", zap.String("day", day.Format(models.DateLayout)), zap.Int("events", reminded))
	return reminded, nil
}
