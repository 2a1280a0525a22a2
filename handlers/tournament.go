package handlers

import (
	"time"

	"clan-wars-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTournamentRoutes(app *fiber.App, tournaments *services.TournamentService, stats *services.StatsService) {
	// 🔓 Tournament and leaderboard views are read-only and public
	app.Get("/tournaments/current", func(c *fiber.Ctx) error {
		t, err := tournaments.Current()
		if err != nil {
			return fail(c, err)
		}
		if t == nil {
			return c.JSON(fiber.Map{"tournament": nil})
		}

		board, err := tournaments.Leaderboard(t)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"tournament":  t,
			"leaderboard": board,
			"time_left":   services.TimeLeft(t, time.Now().UTC()),
		})
	})

	app.Get("/tournaments/past", func(c *fiber.Ctx) error {
		past, err := tournaments.Past()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(past)
	})

	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		board, err := stats.GetLeaderboard()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(board)
	})

	app.Get("/stats/platform", func(c *fiber.Ctx) error {
		s, err := stats.GetPlatformStats()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(s)
	})
}
