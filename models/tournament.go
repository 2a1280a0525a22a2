package models

import (
	"time"
)

// Tournament statuses. Transitions are driven by the scheduler from the
// stored timestamps: upcoming → active at StartsAt, active → completed at
// EndsAt.
const (
	TournamentUpcoming  = "upcoming"
	TournamentActive    = "active"
	TournamentCompleted = "completed"
)

// Tournament is a platform-wide, time-boxed ranked competition among all
// clans with fixed prize tranches for the top three.
type Tournament struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Season    int       `json:"season" gorm:"not null"`
	Week      int       `json:"week" gorm:"not null"`
	StartsAt  time.Time `json:"starts_at" gorm:"not null;index"`
	EndsAt    time.Time `json:"ends_at" gorm:"not null;index"`
	PrizePool float64   `json:"prize_pool" gorm:"default:0"`
	Prize1st  float64   `json:"prize_1st" gorm:"default:0"`
	Prize2nd  float64   `json:"prize_2nd" gorm:"default:0"`
	Prize3rd  float64   `json:"prize_3rd" gorm:"default:0"`
	Status    string    `json:"status" gorm:"type:varchar(16);not null;default:'upcoming';index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TournamentClan is one row of the derived tournament leaderboard. It is
// never stored; rank is the 1-based position after sorting by ROI descending.
type TournamentClan struct {
	ClanID      string  `json:"clan_id"`
	Name        string  `json:"name"`
	Tag         string  `json:"tag"`
	AvatarURL   string  `json:"avatar_url"`
	MemberCount int64   `json:"member_count"`
	TotalVolume float64 `json:"total_volume"`
	TotalPnl    float64 `json:"total_pnl"`
	TradeCount  int64   `json:"trade_count"`
	RoiPct      float64 `json:"roi_pct"`
	Rank        int     `json:"rank"`
}
