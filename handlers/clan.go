package handlers

import (
	"strconv"
	"strings"

	"clan-wars-system/middleware"
	"clan-wars-system/services"
	"clan-wars-system/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupClanRoutes(app *fiber.App, clans *services.ClanService, chat *services.ChatService, stats *services.StatsService) {
	// 🔓 Browse is readable without user context
	app.Get("/clans", func(c *fiber.Ctx) error {
		list, err := clans.BrowseClans()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	app.Get("/clans/:id/stats", func(c *fiber.Ctx) error {
		s, err := stats.GetClanStats(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(s)
	})

	// 🔐 Everything below needs the gateway-forwarded user context
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/clans/me", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		clan, membership, err := clans.ResolveMembership(userID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"clan": clan, "membership": membership})
	})

	// Create takes a multipart form so the avatar can ride along.
	secured.Post("/clans", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		entryFee := 0.0
		if v := c.FormValue("entry_fee"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0 {
				return c.Status(400).JSON(fiber.Map{"error": "entry_fee must be a non-negative number"})
			}
			entryFee = f
		}

		in := services.CreateClanInput{
			Name:        c.FormValue("name"),
			Tag:         c.FormValue("tag"),
			Description: c.FormValue("description"),
			EntryFee:    entryFee,
			IsPrivate:   strings.ToLower(c.FormValue("is_private")) == "true",
		}

		if avatar, err := c.FormFile("avatar"); err == nil && avatar.Size > 0 {
			url, err := utils.UploadClanAvatar(avatar, in.Name)
			if err != nil {
				return c.Status(500).JSON(fiber.Map{"error": "failed to upload avatar"})
			}
			in.AvatarURL = url
		}

		clan, membership, err := clans.CreateClan(userID, in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(fiber.Map{"clan": clan, "membership": membership})
	})

	secured.Post("/clans/:id/join", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		membership, err := clans.JoinClan(userID, c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(membership)
	})

	secured.Post("/clans/leave", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if err := clans.LeaveClan(userID); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"left": true})
	})

	// War-room chat + realtime feed
	secured.Get("/clans/:id/messages", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		msgs, err := chat.RecentMessages(userID, c.Params("id"), limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(msgs)
	})

	secured.Post("/clans/:id/messages", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var body struct {
			Content string `json:"content"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		msg, err := chat.PostMessage(userID, c.Params("id"), body.Content)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(201).JSON(msg)
	})

	secured.Get("/clans/:id/feed", chat.StreamClanFeedSSE)
}
