package models

import (
	"time"
)

// Duel statuses. pending → active → completed, or pending → declined.
// declined is terminal; completion happens in the scheduler when EndedAt
// passes, never from a handler.
const (
	DuelPending   = "pending"
	DuelActive    = "active"
	DuelCompleted = "completed"
	DuelDeclined  = "declined"
)

// DuelDuration is fixed at acceptance time: EndedAt = StartedAt + 24h.
const DuelDuration = 24 * time.Hour

type Duel struct {
	ID               string     `json:"id" gorm:"primaryKey"`
	ChallengerClanID string     `json:"challenger_clan_id" gorm:"not null;index"`
	DefenderClanID   string     `json:"defender_clan_id" gorm:"not null;index"`
	Status           string     `json:"status" gorm:"type:varchar(16);not null;default:'pending';index"`
	StartedAt        *time.Time `json:"started_at"`
	EndedAt          *time.Time `json:"ended_at"`
	WinnerClanID     *string    `json:"winner_clan_id"`
	ChallengerROI    *float64   `json:"challenger_roi"`
	DefenderROI      *float64   `json:"defender_roi"`
	CreatedAt        time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// DuelStats is one side's live performance over the duel window.
type DuelStats struct {
	ROI    float64 `json:"roi"`
	Volume float64 `json:"volume"`
	Trades int64   `json:"trades"`
}

// ActiveDuelData is an active duel enriched with live stats for both sides
// and the display fields of both clans.
type ActiveDuelData struct {
	Duel             Duel      `json:"duel"`
	ChallengerStats  DuelStats `json:"challenger_stats"`
	DefenderStats    DuelStats `json:"defender_stats"`
	ChallengerName   string    `json:"challenger_name"`
	DefenderName     string    `json:"defender_name"`
	ChallengerTag    string    `json:"challenger_tag"`
	DefenderTag      string    `json:"defender_tag"`
	ChallengerAvatar string    `json:"challenger_avatar"`
	DefenderAvatar   string    `json:"defender_avatar"`
}

// PendingDuelData is a pending duel with the counterparty's display fields
// (the challenger for incoming duels, the defender for outgoing ones).
type PendingDuelData struct {
	Duel         Duel   `json:"duel"`
	OpponentName string `json:"opponent_name"`
	OpponentTag  string `json:"opponent_tag"`
}
