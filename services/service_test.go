package services

import (
	"fmt"
	"testing"
	"time"

	"studybloom/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fixedClock lets tests pin "now" and step through days.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time   { return c.now }
func (c *fixedClock) Today() time.Time { return Midnight(c.now) }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every pooled connection to :memory: is a separate database, so the
	// whole test must run on a single one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Streak{},
		&models.Reward{},
		&models.Group{},
		&models.GroupMembership{},
		&models.StudySession{},
	))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, username string) uint {
	t.Helper()
	user := models.User{Username: username}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

// seedStreak writes a streak row directly, bypassing the engine.
func seedStreak(t *testing.T, db *gorm.DB, userID uint, current, longest int, lastActivity *time.Time) {
	t.Helper()
	streak := models.Streak{
		UserID:           userID,
		CurrentStreak:    current,
		LongestStreak:    longest,
		LastActivityDate: lastActivity,
		StreakType:       models.StreakTypeDaily,
	}
	require.NoError(t, db.Create(&streak).Error)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

// uniqueName avoids username collisions across subtests sharing a db.
var nameSeq int

func uniqueName(prefix string) string {
	nameSeq++
	return fmt.Sprintf("%s_%d", prefix, nameSeq)
}
