package repositories_test

import (
	"testing"
	"time"

	"github.com/bharthraj1412/nexora/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("failed to open sqlite DB: %v", err)
	}

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func seedTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		Email:         "user@example.com",
		EmailVerified: true,
		FullName:      "Test User",
		IsActive:      true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
