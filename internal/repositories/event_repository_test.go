package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/campushub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterParticipant_SecondCallReturnsExisting(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := createUsers(t, db, "organizer", "student")
	repo := NewPostgresEventRepository(db)

	event := &models.Event{Name: "Career fair", Date: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), OrganizerID: users[0].ID}
	require.NoError(t, repo.CreateEvent(ctx, event))

	first, created, err := repo.RegisterParticipant(ctx, event.ID, users[1].ID)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := repo.RegisterParticipant(ctx, event.ID, users[1].ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	participants, err := repo.GetParticipants(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 1)

	registered, err := repo.IsRegistered(ctx, event.ID, users[1].ID)
	require.NoError(t, err)
	assert.True(t, registered)
}

func TestSetAttendance(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := createUsers(t, db, "organizer", "a", "b")
	repo := NewPostgresEventRepository(db)

	event := &models.Event{Name: "Workshop", Date: time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), OrganizerID: users[0].ID}
	require.NoError(t, repo.CreateEvent(ctx, event))
	pa, _, err := repo.RegisterParticipant(ctx, event.ID, users[1].ID)
	require.NoError(t, err)
	pb, _, err := repo.RegisterParticipant(ctx, event.ID, users[2].ID)
	require.NoError(t, err)

	require.NoError(t, repo.SetAttendance(ctx, event.ID, []uint{pa.ID, pb.ID}))
	require.NoError(t, repo.SetAttendance(ctx, event.ID, []uint{pb.ID}))

	attended := map[uint]bool{}
	participants, err := repo.GetParticipants(ctx, event.ID)
	require.NoError(t, err)
	for _, p := range participants {
		attended[p.ID] = p.Attended
	}
	assert.Equal(t, map[uint]bool{pa.ID: false, pb.ID: true}, attended)
}
