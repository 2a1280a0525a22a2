package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"clan-wars-system/models"

	"gorm.io/gorm"
)

// PastTournamentsLimit caps the archive list.
const PastTournamentsLimit = 10

type TournamentService struct {
	DB *gorm.DB
}

func NewTournamentService(db *gorm.DB) *TournamentService {
	return &TournamentService{DB: db}
}

// Current returns the tournament the platform considers "now": the active
// one if any, otherwise the next upcoming one. nil means no tournament is
// scheduled at all.
func (s *TournamentService) Current() (*models.Tournament, error) {
	var t models.Tournament
	err := s.DB.
		Where("status = ?", models.TournamentActive).
		Order("starts_at ASC").
		First(&t).Error
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = s.DB.
		Where("status = ?", models.TournamentUpcoming).
		Order("starts_at ASC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Leaderboard is the derived ranked participant list: every clan that
// traded inside the tournament window, sorted by ROI descending. Rank is
// the 1-based position; ties keep their input order (stable sort over the
// aggregation rows, which come back in clan creation order).
func (s *TournamentService) Leaderboard(t *models.Tournament) ([]models.TournamentClan, error) {
	type row struct {
		ClanID      string
		Name        string
		Tag         string
		AvatarURL   string
		MemberCount int64
		TotalVolume float64
		TotalPnl    float64
		TradeCount  int64
	}
	var rows []row
	err := s.DB.Raw(`
        SELECT
            c.id AS clan_id,
            c.name,
            c.tag,
            c.avatar_url,
            (SELECT COUNT(*) FROM clan_members m
              WHERE m.clan_id = c.id AND m.left_at IS NULL) AS member_count,
            COALESCE(SUM(tr.amount_usd), 0) AS total_volume,
            COALESCE(SUM(tr.pnl_usd), 0) AS total_pnl,
            COUNT(tr.id) AS trade_count
        FROM clans c
        INNER JOIN trades tr
            ON tr.clan_id = c.id
            AND tr.created_at >= ?
            AND tr.created_at <= ?
        GROUP BY c.id, c.name, c.tag, c.avatar_url, c.created_at
        ORDER BY c.created_at ASC
    `, t.StartsAt, t.EndsAt).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	board := make([]models.TournamentClan, len(rows))
	for i, r := range rows {
		roi := 0.0
		if r.TotalVolume > 0 {
			roi = r.TotalPnl / r.TotalVolume * 100
		}
		board[i] = models.TournamentClan{
			ClanID:      r.ClanID,
			Name:        r.Name,
			Tag:         r.Tag,
			AvatarURL:   r.AvatarURL,
			MemberCount: r.MemberCount,
			TotalVolume: r.TotalVolume,
			TotalPnl:    r.TotalPnl,
			TradeCount:  r.TradeCount,
			RoiPct:      roi,
		}
	}

	sort.SliceStable(board, func(i, j int) bool {
		return board[i].RoiPct > board[j].RoiPct
	})
	for i := range board {
		board[i].Rank = i + 1
	}
	return board, nil
}

// Past returns the most recent completed tournaments for the archive view.
func (s *TournamentService) Past() ([]models.Tournament, error) {
	var past []models.Tournament
	err := s.DB.
		Where("status = ?", models.TournamentCompleted).
		Order("ends_at DESC").
		Limit(PastTournamentsLimit).
		Find(&past).Error
	return past, err
}

// TimeLeft renders the countdown for a tournament at the given instant.
// Cosmetic only — status transitions are driven by the scheduler, never by
// this string.
func TimeLeft(t *models.Tournament, now time.Time) string {
	switch t.Status {
	case models.TournamentActive:
		return formatCountdown(t.EndsAt.Sub(now))
	case models.TournamentUpcoming:
		return "Starts in " + formatCountdown(t.StartsAt.Sub(now))
	default:
		return "Ended"
	}
}

func formatCountdown(d time.Duration) string {
	if d <= 0 {
		return "Ended"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// Transition advances tournament statuses from the stored timestamps:
// upcoming → active once StartsAt passes, active → completed once EndsAt
// passes. Called from the scheduler; idempotent.
func (s *TournamentService) Transition(now time.Time) (int, error) {
	transitioned := 0

	var starting []models.Tournament
	if err := s.DB.
		Where("status = ? AND starts_at <= ?", models.TournamentUpcoming, now).
		Find(&starting).Error; err != nil {
		return 0, err
	}
	for _, t := range starting {
		t.Status = models.TournamentActive
		if err := s.DB.Save(&t).Error; err != nil {
			log.Printf("[Tournaments] failed to activate %s: %v", t.ID, err)
			continue
		}
		transitioned++
	}

	var ending []models.Tournament
	if err := s.DB.
		Where("status = ? AND ends_at <= ?", models.TournamentActive, now).
		Find(&ending).Error; err != nil {
		return transitioned, err
	}
	for _, t := range ending {
		t.Status = models.TournamentCompleted
		if err := s.DB.Save(&t).Error; err != nil {
			log.Printf("[Tournaments] failed to complete %s: %v", t.ID, err)
			continue
		}
		transitioned++
	}

	return transitioned, nil
}
