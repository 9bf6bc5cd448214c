package repositories

import (
	"context"
	"testing"

	"github.com/campushub/backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the relational
// schema migrated. One connection keeps every query on the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Comment{},
		&models.CommentVote{},
		&models.Like{},
		&models.Event{},
		&models.EventParticipant{},
		&models.Notification{},
	))
	return db
}

func createUsers(t *testing.T, db *gorm.DB, usernames ...string) []models.User {
	t.Helper()
	repo := NewPostgresUserRepository(db)
	users := make([]models.User, len(usernames))
	for i, name := range usernames {
		u := &models.User{Username: name, Email: name + "@campus.edu"}
		require.NoError(t, repo.CreateUser(context.Background(), u))
		users[i] = *u
	}
	return users
}
