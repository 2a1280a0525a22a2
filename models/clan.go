package models

import (
	"time"
)

// MaxClanMembers is the platform-wide roster cap. It is assigned
// server-side on create regardless of what the client sends.
const MaxClanMembers = 6

// Membership roles, lowest to highest.
const (
	RoleMember    = "member"
	RoleVanguard  = "vanguard"
	RoleCommander = "commander"
	RoleOwner     = "owner"
)

type Clan struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Tag         string    `json:"tag" gorm:"type:varchar(8);not null;index"` // short ticker, stored uppercase
	Description string    `json:"description"`
	AvatarURL   string    `json:"avatar_url"`
	EntryFee    float64   `json:"entry_fee" gorm:"default:0"`
	MaxMembers  int       `json:"max_members" gorm:"not null"`
	IsPrivate   bool      `json:"is_private" gorm:"default:false"`
	OwnerID     string    `json:"owner_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Calculated field (not stored in DB)
	MemberCount int64 `json:"member_count,omitempty" gorm:"-"`
}

// ClanMember is one membership window. Leaving a clan sets LeftAt instead
// of deleting the row so trades made during the window keep their clan
// attribution. A user's *active* membership is the row with LeftAt IS NULL;
// every query that cares about current affiliation must filter on it.
//
// This is deliberately not gorm.DeletedAt — departed rows must stay visible
// to the historical PnL aggregations.
type ClanMember struct {
	ID       string     `json:"id" gorm:"primaryKey"`
	ClanID   string     `json:"clan_id" gorm:"not null;index"`
	UserID   string     `json:"user_id" gorm:"not null;index"`
	Role     string     `json:"role" gorm:"type:varchar(16);not null;default:'member'"`
	JoinedAt time.Time  `json:"joined_at" gorm:"autoCreateTime"`
	LeftAt   *time.Time `json:"left_at"`
}
