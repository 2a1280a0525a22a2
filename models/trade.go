package models

import (
	"time"
)

const (
	TradeBuy  = "buy"
	TradeSell = "sell"
)

// Trade is one ledger row. ClanID is captured at insert time so rows keep
// their clan attribution after the member leaves. Signature is the chain
// transaction signature and is the dedup key for wallet imports; manual
// trades have none.
type Trade struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"not null;index"`
	ClanID        string    `json:"clan_id" gorm:"not null;index"`
	TokenSymbol   string    `json:"token_symbol" gorm:"not null"`
	TokenMint     string    `json:"token_mint"`
	TradeType     string    `json:"trade_type" gorm:"type:varchar(8);not null"`
	AmountUsd     float64   `json:"amount_usd" gorm:"not null"`
	TokenAmount   float64   `json:"token_amount"`
	PricePerToken float64   `json:"price_per_token"`
	PnlUsd        float64   `json:"pnl_usd" gorm:"default:0"` // realized, sell rows only
	Signature     *string   `json:"signature" gorm:"index"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
}
