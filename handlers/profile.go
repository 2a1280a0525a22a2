package handlers

import (
	"strconv"

	"clan-wars-system/middleware"
	"clan-wars-system/services"
	"clan-wars-system/workers"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(app *fiber.App, profiles *services.ProfileService, clans *services.ClanService, stats *services.StatsService, importer *workers.TradeImporter) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/profile", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		username, _ := c.Locals("username").(string)
		profile, err := profiles.EnsureProfile(userID, username)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(profile)
	})

	secured.Patch("/profile/username", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var body struct {
			Username string `json:"username"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		if err := profiles.UpdateUsername(userID, body.Username); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"updated": true})
	})

	secured.Post("/profile/wallet", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var body struct {
			Address string `json:"address"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		if err := profiles.LinkWallet(userID, body.Address); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"linked": true})
	})

	secured.Delete("/profile/wallet", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if err := profiles.UnlinkWallet(userID); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"linked": false})
	})

	secured.Get("/profile/stats", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		s, err := stats.GetUserStats(userID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(s)
	})

	secured.Get("/profile/trades", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		trades, err := stats.RecentTrades(userID, limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(trades)
	})

	secured.Post("/trades", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		clan, _, err := clans.ResolveMembership(userID)
		if err != nil {
			return fail(c, err)
		}
		if clan == nil {
			return fail(c, services.ErrNotInClan)
		}
		var in services.LogTradeInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		trade, err := stats.LogTrade(userID, clan.ID, in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(trade)
	})

	// Manual import trigger: pull swaps for the caller's linked wallet now
	// instead of waiting for the polling worker.
	secured.Post("/trades/import", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		username, _ := c.Locals("username").(string)

		profile, err := profiles.EnsureProfile(userID, username)
		if err != nil {
			return fail(c, err)
		}
		if profile.WalletAddress == nil {
			return c.Status(409).JSON(fiber.Map{"error": "connect your wallet and join a clan first"})
		}
		clan, _, err := clans.ResolveMembership(userID)
		if err != nil {
			return fail(c, err)
		}
		if clan == nil {
			return c.Status(409).JSON(fiber.Map{"error": "connect your wallet and join a clan first"})
		}

		result, err := importer.Import(c.Context(), userID, clan.ID, *profile.WalletAddress)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(result)
	})
}
