// handlers/streaks.go - Streak HTTP Handlers
package handlers

import (
	"time"

	"studybloom/middleware"
	"studybloom/services"

	"github.com/gofiber/fiber/v2"
)

type UpdateStreakRequest struct {
	// Optional; defaults to today. Format: 2006-01-02.
	ActivityDate string `json:"activity_date,omitempty"`
}

// GetStreak returns the caller's streak, creating the row on first access
// GET /api/streaks
func GetStreak(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	streak, err := streakService.GetStreak(userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"current_streak":     streak.CurrentStreak,
		"longest_streak":     streak.LongestStreak,
		"last_activity_date": formatDate(streak.LastActivityDate),
		"streak_type":        streak.StreakType,
	})
}

// UpdateStreak records qualifying activity; called on task completion and
// study-session end
// POST /api/streaks/update
func UpdateStreak(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req UpdateStreakRequest
	_ = c.BodyParser(&req) // empty body means "today"

	activityDate, err := parseActivityDate(req.ActivityDate)
	if err != nil {
		return fail(c, err)
	}

	var updated bool
	var result = struct {
		CurrentStreak int
		LongestStreak int
	}{}

	if activityDate != nil {
		s, u, err := streakService.UpdateStreak(userID, *activityDate)
		if err != nil {
			return fail(c, err)
		}
		updated = u
		result.CurrentStreak, result.LongestStreak = s.CurrentStreak, s.LongestStreak
	} else {
		s, u, err := streakService.UpdateStreakToday(userID)
		if err != nil {
			return fail(c, err)
		}
		updated = u
		result.CurrentStreak, result.LongestStreak = s.CurrentStreak, s.LongestStreak
	}

	message := "Streak updated successfully"
	if !updated {
		message = "Already updated today"
	}

	if updated {
		broadcastStreakUpdate(userID, result.CurrentStreak)
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"updated":        updated,
		"current_streak": result.CurrentStreak,
		"longest_streak": result.LongestStreak,
		"message":        message,
	})
}

// ResetStreak zeroes the current streak; the longest streak is kept
// POST /api/streaks/reset
func ResetStreak(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	streak, err := streakService.ResetStreak(userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"message":        "Streak reset successfully",
		"current_streak": streak.CurrentStreak,
		"longest_streak": streak.LongestStreak,
	})
}

// GetStreakAnalytics returns streak state plus study-session totals
// GET /api/streaks/analytics
func GetStreakAnalytics(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	analytics, err := streakService.Analytics(userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(analytics)
}

func parseActivityDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, &services.ValidationError{Field: "activity_date", Reason: "expected YYYY-MM-DD"}
	}
	return &parsed, nil
}

func formatDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}
