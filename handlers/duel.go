package handlers

import (
	"clan-wars-system/middleware"
	"clan-wars-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDuelRoutes(app *fiber.App, duels *services.DuelService, clans *services.ClanService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// resolveClanID maps the caller onto their clan. Every duel operation
	// is keyed by the resolved clan id, not by anything the client sends.
	resolveClanID := func(c *fiber.Ctx) (string, error) {
		userID := c.Locals("user_id").(string)
		clan, _, err := clans.ResolveMembership(userID)
		if err != nil {
			return "", err
		}
		if clan == nil {
			return "", services.ErrNotInClan
		}
		return clan.ID, nil
	}

	secured.Get("/duels", func(c *fiber.Ctx) error {
		clanID, err := resolveClanID(c)
		if err != nil {
			return fail(c, err)
		}
		state, err := duels.GetDuelState(clanID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(state)
	})

	secured.Post("/duels/challenge", func(c *fiber.Ctx) error {
		clanID, err := resolveClanID(c)
		if err != nil {
			return fail(c, err)
		}
		var body struct {
			TargetClanID string `json:"target_clan_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.TargetClanID == "" {
			return c.Status(400).JSON(fiber.Map{"error": "target_clan_id is required"})
		}
		duel, err := duels.Challenge(clanID, body.TargetClanID)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(duel)
	})

	secured.Post("/duels/:id/accept", func(c *fiber.Ctx) error {
		clanID, err := resolveClanID(c)
		if err != nil {
			return fail(c, err)
		}
		duel, err := duels.Accept(c.Params("id"), clanID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(duel)
	})

	secured.Post("/duels/:id/decline", func(c *fiber.Ctx) error {
		clanID, err := resolveClanID(c)
		if err != nil {
			return fail(c, err)
		}
		duel, err := duels.Decline(c.Params("id"), clanID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(duel)
	})
}
