package handlers

import (
	"errors"

	"clan-wars-system/services"

	"github.com/gofiber/fiber/v2"
)

// fail maps service errors onto HTTP statuses. Services never throw across
// this boundary — every failure arrives as an error value and leaves as an
// {"error": "..."} body.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, services.ErrClanNotFound),
		errors.Is(err, services.ErrDuelNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrNotDefender),
		errors.Is(err, services.ErrNotClanMember):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrAlreadyInClan),
		errors.Is(err, services.ErrClanFull),
		errors.Is(err, services.ErrOwnerLeave),
		errors.Is(err, services.ErrNotInClan),
		errors.Is(err, services.ErrDuelExists),
		errors.Is(err, services.ErrSelfDuel),
		errors.Is(err, services.ErrDuelNotPending),
		errors.Is(err, services.ErrWalletTaken),
		errors.Is(err, services.ErrNoWalletLinked),
		errors.Is(err, services.ErrUsernameMissing):
		status = fiber.StatusConflict
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
