// handlers/errors.go
package handlers

import (
	"errors"

	"task-reward-system/services"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps the core's typed errors onto HTTP statuses. The
// presentation layer turns these into human messages.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUnknownReferrer):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrSelfReferral),
		errors.Is(err, services.ErrAlreadyReferred),
		errors.Is(err, services.ErrAlreadySubmitted),
		errors.Is(err, services.ErrCooldownActive),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrNotApproved),
		errors.Is(err, services.ErrAlreadyClaimed):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
}
