package services

import (
	"errors"
	"time"

	"clan-wars-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

// ClanStats is the aggregate view of a clan's ledger. ROI is realized PnL
// over volume, as a percentage.
type ClanStats struct {
	TotalVolume    float64 `gorm:"column:total_volume" json:"total_volume"`
	Volume24h      float64 `gorm:"column:volume_24h" json:"volume_24h"`
	TotalPnl       float64 `gorm:"column:total_pnl" json:"total_pnl"`
	TotalCostBasis float64 `json:"total_cost_basis"`
	TotalSells     float64 `json:"total_sells"`
	TradeCount     int64   `json:"trade_count"`
	RoiPct         float64 `json:"roi_pct"`
}

func (s *StatsService) GetClanStats(clanID string) (*ClanStats, error) {
	cutoff := time.Now().UTC().Add(-24 * time.Hour)

	var stats ClanStats
	err := s.DB.Raw(`
        SELECT
            COALESCE(SUM(amount_usd), 0) AS total_volume,
            COALESCE(SUM(CASE WHEN created_at >= ? THEN amount_usd ELSE 0 END), 0) AS volume_24h,
            COALESCE(SUM(pnl_usd), 0) AS total_pnl,
            COALESCE(SUM(CASE WHEN trade_type = 'buy' THEN amount_usd ELSE 0 END), 0) AS total_cost_basis,
            COALESCE(SUM(CASE WHEN trade_type = 'sell' THEN amount_usd ELSE 0 END), 0) AS total_sells,
            COUNT(*) AS trade_count
        FROM trades
        WHERE clan_id = ?
    `, cutoff, clanID).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	if stats.TotalVolume > 0 {
		stats.RoiPct = stats.TotalPnl / stats.TotalVolume * 100
	}
	return &stats, nil
}

// LeaderboardClan is one row of the global clan leaderboard.
type LeaderboardClan struct {
	ID          string  `json:"id"`
	Rank        int     `json:"rank"`
	Name        string  `json:"name"`
	Tag         string  `json:"tag"`
	AvatarURL   string  `json:"avatar_url"`
	MemberCount int64   `json:"member_count"`
	TotalVolume float64 `gorm:"column:total_volume" json:"total_volume"`
	Volume24h   float64 `gorm:"column:volume_24h" json:"volume_24h"`
	TotalPnl    float64 `gorm:"column:total_pnl" json:"total_pnl"`
	TradeCount  int64   `gorm:"column:trade_count" json:"trade_count"`
	RoiPct      float64 `json:"roi_pct"`
}

// GetLeaderboard ranks every clan by all-time ROI descending. Clans with no
// trades rank by creation order at the bottom (zero ROI, stable sort).
func (s *StatsService) GetLeaderboard() ([]LeaderboardClan, error) {
	cutoff := time.Now().UTC().Add(-24 * time.Hour)

	var rows []LeaderboardClan
	err := s.DB.Raw(`
        SELECT
            c.id,
            c.name,
            c.tag,
            c.avatar_url,
            (SELECT COUNT(*) FROM clan_members m
              WHERE m.clan_id = c.id AND m.left_at IS NULL) AS member_count,
            COALESCE(SUM(t.amount_usd), 0) AS total_volume,
            COALESCE(SUM(CASE WHEN t.created_at >= ? THEN t.amount_usd ELSE 0 END), 0) AS volume_24h,
            COALESCE(SUM(t.pnl_usd), 0) AS total_pnl,
            COUNT(t.id) AS trade_count
        FROM clans c
        LEFT JOIN trades t ON t.clan_id = c.id
        GROUP BY c.id, c.name, c.tag, c.avatar_url, c.created_at
        ORDER BY
            CASE WHEN COALESCE(SUM(t.amount_usd), 0) > 0
                 THEN COALESCE(SUM(t.pnl_usd), 0) / SUM(t.amount_usd)
                 ELSE 0 END DESC,
            c.created_at ASC
    `, cutoff).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		if rows[i].TotalVolume > 0 {
			rows[i].RoiPct = rows[i].TotalPnl / rows[i].TotalVolume * 100
		}
		rows[i].Rank = i + 1
	}
	return rows, nil
}

// PlatformStats is the ticker shown on the landing page.
type PlatformStats struct {
	TotalVolume float64 `json:"total_volume"`
	TotalTrades int64   `json:"total_trades"`
	TopRoi      float64 `json:"top_roi"`
	TotalClans  int64   `json:"total_clans"`
	TotalUsers  int64   `json:"total_users"`
	Volume24h   float64 `gorm:"column:volume_24h" json:"volume_24h"`
}

func (s *StatsService) GetPlatformStats() (*PlatformStats, error) {
	cutoff := time.Now().UTC().Add(-24 * time.Hour)

	var stats PlatformStats
	err := s.DB.Raw(`
        SELECT
            COALESCE(SUM(amount_usd), 0) AS total_volume,
            COUNT(*) AS total_trades,
            COALESCE(SUM(CASE WHEN created_at >= ? THEN amount_usd ELSE 0 END), 0) AS volume_24h
        FROM trades
    `, cutoff).Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	if err := s.DB.Model(&models.Clan{}).Count(&stats.TotalClans).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Profile{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}

	board, err := s.GetLeaderboard()
	if err != nil {
		return nil, err
	}
	if len(board) > 0 {
		stats.TopRoi = board[0].RoiPct
	}
	return &stats, nil
}

// UserStats aggregates one user's trading history.
type UserStats struct {
	TotalTrades    int64   `json:"total_trades"`
	TotalBuys      int64   `json:"total_buys"`
	TotalSells     int64   `json:"total_sells"`
	TotalVolume    float64 `json:"total_volume"`
	TotalPnl       float64 `json:"total_pnl"`
	WinRate        float64 `json:"win_rate"`
	BestTradePnl   float64 `json:"best_trade_pnl"`
	BestTradeToken string  `json:"best_trade_token"`
	PnlDaily       float64 `json:"pnl_daily"`
	PnlWeekly      float64 `json:"pnl_weekly"`
	PnlMonthly     float64 `json:"pnl_monthly"`
	VolumeDaily    float64 `json:"volume_daily"`
	VolumeWeekly   float64 `json:"volume_weekly"`
	VolumeMonthly  float64 `json:"volume_monthly"`
}

func (s *StatsService) GetUserStats(userID string) (*UserStats, error) {
	now := time.Now().UTC()
	day := now.Add(-24 * time.Hour)
	week := now.Add(-7 * 24 * time.Hour)
	month := now.Add(-30 * 24 * time.Hour)

	var stats UserStats
	err := s.DB.Raw(`
        SELECT
            COUNT(*) AS total_trades,
            COALESCE(SUM(CASE WHEN trade_type = 'buy' THEN 1 ELSE 0 END), 0) AS total_buys,
            COALESCE(SUM(CASE WHEN trade_type = 'sell' THEN 1 ELSE 0 END), 0) AS total_sells,
            COALESCE(SUM(amount_usd), 0) AS total_volume,
            COALESCE(SUM(pnl_usd), 0) AS total_pnl,
            COALESCE(SUM(CASE WHEN created_at >= ? THEN pnl_usd ELSE 0 END), 0) AS pnl_daily,
            COALESCE(SUM(CASE WHEN created_at >= ? THEN pnl_usd ELSE 0 END), 0) AS pnl_weekly,
            COALESCE(SUM(CASE WHEN created_at >= ? THEN pnl_usd ELSE 0 END), 0) AS pnl_monthly,
            COALESCE(SUM(CASE WHEN created_at >= ? THEN amount_usd ELSE 0 END), 0) AS volume_daily,
            COALESCE(SUM(CASE WHEN created_at >= ? THEN amount_usd ELSE 0 END), 0) AS volume_weekly,
            COALESCE(SUM(CASE WHEN created_at >= ? THEN amount_usd ELSE 0 END), 0) AS volume_monthly
        FROM trades
        WHERE user_id = ?
    `, day, week, month, day, week, month, userID).Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	// Win rate is over sells only — buys have no realized PnL.
	type winAgg struct {
		Sells int64
		Wins  int64
	}
	var w winAgg
	if err := s.DB.Raw(`
        SELECT
            COUNT(*) AS sells,
            COALESCE(SUM(CASE WHEN pnl_usd > 0 THEN 1 ELSE 0 END), 0) AS wins
        FROM trades
        WHERE user_id = ? AND trade_type = 'sell'
    `, userID).Scan(&w).Error; err != nil {
		return nil, err
	}
	if w.Sells > 0 {
		stats.WinRate = float64(w.Wins) / float64(w.Sells) * 100
	}

	var best models.Trade
	err = s.DB.
		Where("user_id = ?", userID).
		Order("pnl_usd DESC").
		First(&best).Error
	if err == nil && best.PnlUsd > 0 {
		stats.BestTradePnl = best.PnlUsd
		stats.BestTradeToken = best.TokenSymbol
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if stats.BestTradeToken == "" {
		stats.BestTradeToken = "-"
	}

	return &stats, nil
}

// RecentTrades returns the user's latest ledger rows.
func (s *StatsService) RecentTrades(userID string, limit int) ([]models.Trade, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var trades []models.Trade
	err := s.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&trades).Error
	return trades, err
}

type LogTradeInput struct {
	TokenSymbol   string  `json:"token_symbol"`
	TradeType     string  `json:"trade_type"`
	AmountUsd     float64 `json:"amount_usd"`
	TokenAmount   float64 `json:"token_amount"`
	PricePerToken float64 `json:"price_per_token"`
	PnlUsd        float64 `json:"pnl_usd"`
}

// LogTrade inserts a manually reported trade attributed to the user's
// current clan.
func (s *StatsService) LogTrade(userID, clanID string, in LogTradeInput) (*models.Trade, error) {
	if in.TokenSymbol == "" {
		return nil, errors.New("token_symbol is required")
	}
	if in.TradeType != models.TradeBuy && in.TradeType != models.TradeSell {
		return nil, errors.New("trade_type must be buy or sell")
	}
	if in.AmountUsd <= 0 {
		return nil, errors.New("amount_usd must be positive")
	}

	trade := &models.Trade{
		ID:            uuid.NewString(),
		UserID:        userID,
		ClanID:        clanID,
		TokenSymbol:   in.TokenSymbol,
		TradeType:     in.TradeType,
		AmountUsd:     in.AmountUsd,
		TokenAmount:   in.TokenAmount,
		PricePerToken: in.PricePerToken,
		PnlUsd:        in.PnlUsd,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.DB.Create(trade).Error; err != nil {
		return nil, err
	}
	return trade, nil
}
