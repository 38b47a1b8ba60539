// handlers/errors.go - Domain error to HTTP status mapping
package handlers

import (
	"errors"

	"studybloom/services"

	"github.com/gofiber/fiber/v2"
)

func statusForError(err error) int {
	var validation *services.ValidationError
	var notFound *services.NotFoundError
	var notEligible *services.NotEligibleError

	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest
	case errors.As(err, &notFound):
		return fiber.StatusNotFound
	case errors.As(err, &notEligible):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrAlreadyUsed),
		errors.Is(err, services.ErrExpired),
		errors.Is(err, services.ErrGroupFull),
		errors.Is(err, services.ErrGroupInactive),
		errors.Is(err, services.ErrNotMember),
		errors.Is(err, services.ErrSessionEnded):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
