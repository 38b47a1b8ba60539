package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studybloom/database"
	"studybloom/models"
	"studybloom/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testUserSeq int

// newTestApp wires the handlers to an in-memory database and replaces the
// auth middleware with a stub that injects a fixed caller.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, uint) {
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
	database.SetDB(db)

	clock := services.SystemClock()
	streakService = services.NewStreakService(db, clock)
	rewardService = services.NewRewardService(db, clock, streakService)
	groupService = services.NewGroupService(db, clock, streakService)
	sessionService = services.NewSessionService(db, clock, streakService)

	testUserSeq++
	user := models.User{Username: fmt.Sprintf("tester_%d", testUserSeq)}
	require.NoError(t, db.Create(&user).Error)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userId", float64(user.ID))
		c.Locals("username", user.Username)
		return c.Next()
	})
	registerTestRoutes(app)
	return app, db, user.ID
}

func registerTestRoutes(app *fiber.App) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", Register)
	auth.Post("/login", Login)
	auth.Post("/guest", GuestLogin)

	streaks := api.Group("/streaks")
	streaks.Get("/", GetStreak)
	streaks.Post("/update", UpdateStreak)
	streaks.Post("/reset", ResetStreak)
	streaks.Get("/analytics", GetStreakAnalytics)

	sessions := api.Group("/study-sessions")
	sessions.Get("/", GetStudySessions)
	sessions.Post("/", StartStudySession)
	sessions.Put("/:id/end", EndStudySession)

	rewards := api.Group("/rewards")
	rewards.Get("/", GetRewards)
	rewards.Get("/available", GetAvailableRewards)
	rewards.Get("/check-eligibility", CheckRewardEligibility)
	rewards.Get("/statistics", GetRewardStatistics)
	rewards.Post("/auto-check", AutoCheckRewards)
	rewards.Post("/:id/redeem", RedeemReward)

	groups := api.Group("/groups")
	groups.Get("/", GetGroups)
	groups.Get("/available", GetAvailableGroups)
	groups.Get("/check-eligibility", CheckGroupEligibility)
	groups.Post("/", CreateGroup)
	groups.Post("/:id/join", JoinGroup)
	groups.Post("/:id/leave", LeaveGroup)
	groups.Get("/:id/members", GetGroupMembers)
	groups.Put("/:id", UpdateGroup)
	groups.Delete("/:id", DeleteGroup)
}

// doRequest performs a request against the test app and returns the raw body.
func doRequest(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func mapBody(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return parsed
}

func listBody(t *testing.T, raw []byte) []map[string]any {
	t.Helper()
	var parsed []map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return parsed
}

// grantStreak pins the caller's streak row, bypassing the engine.
func grantStreak(t *testing.T, db *gorm.DB, userID uint, current int) {
	t.Helper()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	streak := models.Streak{
		UserID:           userID,
		CurrentStreak:    current,
		LongestStreak:    current,
		LastActivityDate: &today,
		StreakType:       models.StreakTypeDaily,
	}
	require.NoError(t, db.Create(&streak).Error)
}
