package services

import (
	"errors"
	"log"
	"time"

	"clan-wars-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDuelNotFound   = errors.New("duel not found")
	ErrSelfDuel       = errors.New("a clan cannot duel itself")
	ErrDuelExists     = errors.New("already in a duel with this clan")
	ErrNotDefender    = errors.New("only the challenged clan can respond to this duel")
	ErrDuelNotPending = errors.New("duel is no longer pending")
)

type DuelService struct {
	DB *gorm.DB
}

func NewDuelService(db *gorm.DB) *DuelService {
	return &DuelService{DB: db}
}

// DuelState is the full view for one clan: active duels enriched with live
// stats, incoming pending challenges, and outgoing challenges awaiting a
// response. The three sets are disjoint (a duel has exactly one status) but
// a clan can appear in all of them at once against different opponents.
type DuelState struct {
	Active   []models.ActiveDuelData  `json:"active"`
	Incoming []models.PendingDuelData `json:"incoming"`
	Outgoing []models.PendingDuelData `json:"outgoing"`
}

func (s *DuelService) GetDuelState(clanID string) (*DuelState, error) {
	state := &DuelState{
		Active:   []models.ActiveDuelData{},
		Incoming: []models.PendingDuelData{},
		Outgoing: []models.PendingDuelData{},
	}

	var active []models.Duel
	if err := s.DB.
		Where("(challenger_clan_id = ? OR defender_clan_id = ?) AND status = ?",
			clanID, clanID, models.DuelActive).
		Find(&active).Error; err != nil {
		return nil, err
	}

	for _, d := range active {
		enriched, err := s.enrichActiveDuel(d)
		if err != nil {
			// One bad duel should not blank the whole war room.
			log.Printf("[Duels] failed to enrich duel %s: %v", d.ID, err)
			continue
		}
		state.Active = append(state.Active, *enriched)
	}

	incoming, err := s.pendingDuels(clanID, "defender_clan_id", func(d models.Duel) string { return d.ChallengerClanID })
	if err != nil {
		return nil, err
	}
	state.Incoming = incoming

	outgoing, err := s.pendingDuels(clanID, "challenger_clan_id", func(d models.Duel) string { return d.DefenderClanID })
	if err != nil {
		return nil, err
	}
	state.Outgoing = outgoing

	return state, nil
}

// pendingDuels lists pending duels where the clan sits in ownColumn,
// decorated with the display fields of the clan on the other side.
func (s *DuelService) pendingDuels(clanID, ownColumn string, opponentID func(models.Duel) string) ([]models.PendingDuelData, error) {
	var duels []models.Duel
	err := s.DB.
		Where(ownColumn+" = ? AND status = ?", clanID, models.DuelPending).
		Order("created_at DESC").
		Find(&duels).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.PendingDuelData, 0, len(duels))
	for _, d := range duels {
		var opponent models.Clan
		if err := s.DB.First(&opponent, "id = ?", opponentID(d)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, models.PendingDuelData{
			Duel:         d,
			OpponentName: opponent.Name,
			OpponentTag:  opponent.Tag,
		})
	}
	return out, nil
}

func (s *DuelService) enrichActiveDuel(d models.Duel) (*models.ActiveDuelData, error) {
	var challenger, defender models.Clan
	if err := s.DB.First(&challenger, "id = ?", d.ChallengerClanID).Error; err != nil {
		return nil, err
	}
	if err := s.DB.First(&defender, "id = ?", d.DefenderClanID).Error; err != nil {
		return nil, err
	}

	challengerStats, err := s.duelStats(d.ChallengerClanID, d.StartedAt, d.EndedAt)
	if err != nil {
		return nil, err
	}
	defenderStats, err := s.duelStats(d.DefenderClanID, d.StartedAt, d.EndedAt)
	if err != nil {
		return nil, err
	}

	return &models.ActiveDuelData{
		Duel:             d,
		ChallengerStats:  *challengerStats,
		DefenderStats:    *defenderStats,
		ChallengerName:   challenger.Name,
		DefenderName:     defender.Name,
		ChallengerTag:    challenger.Tag,
		DefenderTag:      defender.Tag,
		ChallengerAvatar: challenger.AvatarURL,
		DefenderAvatar:   defender.AvatarURL,
	}, nil
}

// duelStats aggregates one side's trades over the duel window.
func (s *DuelService) duelStats(clanID string, from, to *time.Time) (*models.DuelStats, error) {
	type agg struct {
		Volume float64
		Pnl    float64
		Trades int64
	}
	var a agg
	q := s.DB.Model(&models.Trade{}).
		Select("COALESCE(SUM(amount_usd), 0) AS volume, COALESCE(SUM(pnl_usd), 0) AS pnl, COUNT(*) AS trades").
		Where("clan_id = ?", clanID)
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at <= ?", *to)
	}
	if err := q.Scan(&a).Error; err != nil {
		return nil, err
	}

	stats := &models.DuelStats{Volume: a.Volume, Trades: a.Trades}
	if a.Volume > 0 {
		stats.ROI = a.Pnl / a.Volume * 100
	}
	return stats, nil
}

// Challenge inserts a pending duel with clanID as challenger. The
// duplicate-duel check runs inside the transaction against the live table —
// the original client checked its cached list, which left a race between
// sessions; the store is local now, so the check is authoritative.
func (s *DuelService) Challenge(clanID, targetClanID string) (*models.Duel, error) {
	if clanID == targetClanID {
		return nil, ErrSelfDuel
	}

	duel := &models.Duel{
		ID:               uuid.NewString(),
		ChallengerClanID: clanID,
		DefenderClanID:   targetClanID,
		Status:           models.DuelPending,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var target models.Clan
		if err := tx.First(&target, "id = ?", targetClanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClanNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Duel{}).
			Where("status IN ?", []string{models.DuelPending, models.DuelActive}).
			Where("(challenger_clan_id = ? AND defender_clan_id = ?) OR (challenger_clan_id = ? AND defender_clan_id = ?)",
				clanID, targetClanID, targetClanID, clanID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuelExists
		}

		return tx.Create(duel).Error
	})
	if err != nil {
		return nil, err
	}
	return duel, nil
}

// Accept transitions pending → active with a fixed 24h window. Only the
// defender may accept, and only while the duel is still pending — a
// declined duel stays declined.
func (s *DuelService) Accept(duelID, clanID string) (*models.Duel, error) {
	var duel models.Duel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&duel, "id = ?", duelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDuelNotFound
			}
			return err
		}
		if duel.DefenderClanID != clanID {
			return ErrNotDefender
		}
		if duel.Status != models.DuelPending {
			return ErrDuelNotPending
		}

		now := time.Now().UTC()
		ends := now.Add(models.DuelDuration)
		duel.Status = models.DuelActive
		duel.StartedAt = &now
		duel.EndedAt = &ends
		return tx.Save(&duel).Error
	})
	if err != nil {
		return nil, err
	}
	return &duel, nil
}

// Decline transitions pending → declined. Terminal: no transition leaves
// declined afterwards.
func (s *DuelService) Decline(duelID, clanID string) (*models.Duel, error) {
	var duel models.Duel
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&duel, "id = ?", duelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDuelNotFound
			}
			return err
		}
		if duel.DefenderClanID != clanID {
			return ErrNotDefender
		}
		if duel.Status != models.DuelPending {
			return ErrDuelNotPending
		}

		duel.Status = models.DuelDeclined
		return tx.Save(&duel).Error
	})
	if err != nil {
		return nil, err
	}
	return &duel, nil
}

// ResolveExpired completes every active duel whose window has closed:
// snapshot both sides' ROI over the window, record the winner (nil on an
// exact tie), mark completed. Called from the scheduler.
func (s *DuelService) ResolveExpired(now time.Time) (int, error) {
	var expired []models.Duel
	if err := s.DB.
		Where("status = ? AND ended_at <= ?", models.DuelActive, now).
		Find(&expired).Error; err != nil {
		return 0, err
	}

	resolved := 0
	for _, d := range expired {
		challengerStats, err := s.duelStats(d.ChallengerClanID, d.StartedAt, d.EndedAt)
		if err != nil {
			log.Printf("[Duels] stats for duel %s challenger: %v", d.ID, err)
			continue
		}
		defenderStats, err := s.duelStats(d.DefenderClanID, d.StartedAt, d.EndedAt)
		if err != nil {
			log.Printf("[Duels] stats for duel %s defender: %v", d.ID, err)
			continue
		}

		d.Status = models.DuelCompleted
		d.ChallengerROI = &challengerStats.ROI
		d.DefenderROI = &defenderStats.ROI
		switch {
		case challengerStats.ROI > defenderStats.ROI:
			d.WinnerClanID = &d.ChallengerClanID
		case defenderStats.ROI > challengerStats.ROI:
			d.WinnerClanID = &d.DefenderClanID
		}

		if err := s.DB.Save(&d).Error; err != nil {
			log.Printf("[Duels] failed to complete duel %s: %v", d.ID, err)
			continue
		}
		resolved++
	}
	return resolved, nil
}
