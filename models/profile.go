package models

import (
	"time"
)

// Profile is the per-user record. ID is the external identity provider's
// user id forwarded by the gateway — profiles are created lazily on first
// read, never through a signup endpoint.
type Profile struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Username      string    `json:"username" gorm:"index"`
	AvatarURL     string    `json:"avatar_url"`
	XP            int64     `json:"xp" gorm:"default:0"`
	WalletAddress *string   `json:"wallet_address" gorm:"type:varchar(64);index"` // linked Solana wallet, at most one per account
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
