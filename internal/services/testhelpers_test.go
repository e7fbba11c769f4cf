package services

import (
	"sync"
	"testing"
	"time"

	"github.com/MUKKASPANDANA/live-polling-system/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory sqlite database with the production schema.
// MaxOpenConns(1) keeps every goroutine on the same in-memory database and
// serializes writes the way the connection pool would.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Author{},
		&models.Poll{},
		&models.Option{},
		&models.Vote{},
	))
	return db
}

// fakeClock lets tests advance poll time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestPollService(t *testing.T) (*PollService, *fakeClock, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	clock := newFakeClock()
	svc := NewPollService(db)
	svc.now = clock.Now
	return svc, clock, db
}
