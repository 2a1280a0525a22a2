package services

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"clan-wars-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StreamClanFeedSSE streams new chat messages and trades for one clan as
// server-sent events. The stream is scoped to the clan id in the URL and
// dies with the connection, so a client that switches clans reconnects to a
// fresh channel instead of receiving events for the stale one.
func (s *ChatService) StreamClanFeedSSE(c *fiber.Ctx) error {
	clanID := c.Params("id")
	userID := c.Locals("user_id").(string)

	if err := s.requireMember(userID, clanID); err != nil {
		if errors.Is(err, ErrNotClanMember) {
			return c.Status(403).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error checking membership"})
	}

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		msgCursor := s.latestMessageAt(clanID)
		tradeCursor := s.latestTradeAt(clanID)

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		w.Flush()

		for {
			select {
			case <-ticker.C:
				var wrote bool

				var msgs []models.ClanMessage
				err := s.DB.
					Where("clan_id = ? AND created_at > ?", clanID, msgCursor).
					Order("created_at ASC").
					Find(&msgs).Error
				if err != nil {
					log.Printf("SSE message query error for clan %s: %v", clanID, err)
				}
				for _, m := range msgs {
					payload, _ := json.Marshal(m)
					fmt.Fprintf(w, "event: message\ndata: %s\n\n", payload)
					msgCursor = m.CreatedAt
					wrote = true
				}

				var trades []models.Trade
				err = s.DB.
					Where("clan_id = ? AND created_at > ?", clanID, tradeCursor).
					Order("created_at ASC").
					Find(&trades).Error
				if err != nil {
					log.Printf("SSE trade query error for clan %s: %v", clanID, err)
				}
				for _, t := range trades {
					payload, _ := json.Marshal(t)
					fmt.Fprintf(w, "event: trade\ndata: %s\n\n", payload)
					tradeCursor = t.CreatedAt
					wrote = true
				}

				if !wrote {
					continue
				}
				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-c.Context().Done():
				// Client closed connection — tear down the subscription.
				return
			}
		}
	})

	return nil
}

func (s *ChatService) latestMessageAt(clanID string) time.Time {
	var latest models.ClanMessage
	err := s.DB.
		Where("clan_id = ?", clanID).
		Order("created_at DESC").
		First(&latest).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("SSE init error for clan %s: %v", clanID, err)
		}
		return time.Now().UTC()
	}
	return latest.CreatedAt
}

func (s *ChatService) latestTradeAt(clanID string) time.Time {
	var latest models.Trade
	err := s.DB.
		Where("clan_id = ?", clanID).
		Order("created_at DESC").
		First(&latest).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("SSE init error for clan %s: %v", clanID, err)
		}
		return time.Now().UTC()
	}
	return latest.CreatedAt
}
