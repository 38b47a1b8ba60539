// handlers/sessions.go - Study session HTTP Handlers
package handlers

import (
	"strconv"

	"studybloom/middleware"

	"github.com/gofiber/fiber/v2"
)

type StartSessionRequest struct {
	Subject string `json:"subject"`
	Notes   string `json:"notes"`
}

// GetStudySessions lists the caller's sessions, newest first
// GET /api/study-sessions
func GetStudySessions(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	sessions, err := sessionService.List(userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sessions)
}

// StartStudySession opens a new session
// POST /api/study-sessions
func StartStudySession(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req StartSessionRequest
	_ = c.BodyParser(&req)

	session, err := sessionService.Start(userID, req.Subject, req.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(session)
}

// EndStudySession closes a session; the duration is fixed here and the
// session counts as today's streak activity
// PUT /api/study-sessions/:id/end
func EndStudySession(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	sessionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid session ID"})
	}

	session, streak, err := sessionService.End(uint(sessionID), userID)
	if err != nil {
		return fail(c, err)
	}

	broadcastStreakUpdate(userID, streak.CurrentStreak)

	return c.JSON(fiber.Map{
		"success":          true,
		"id":               session.ID,
		"duration_minutes": session.DurationMinutes,
		"current_streak":   streak.CurrentStreak,
		"message":          "Study session ended successfully",
	})
}
