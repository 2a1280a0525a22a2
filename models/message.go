package models

import (
	"time"
)

// ClanMessage is one war-room chat line, scoped to a clan.
type ClanMessage struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	ClanID    string    `json:"clan_id" gorm:"not null;index"`
	UserID    string    `json:"user_id" gorm:"not null;index"`
	Username  string    `json:"username"` // denormalized for display
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
