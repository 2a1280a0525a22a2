package services

import (
	"testing"
	"time"

	"clan-wars-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Profile{},
		&models.Clan{},
		&models.ClanMember{},
		&models.Duel{},
		&models.Tournament{},
		&models.Trade{},
		&models.ClanMessage{},
	))
	return db
}

// mkClan creates a clan through the real service so the owner membership
// comes with it.
func mkClan(t *testing.T, db *gorm.DB, ownerID, name, tag string) *models.Clan {
	t.Helper()
	clan, _, err := NewClanService(db).CreateClan(ownerID, CreateClanInput{
		Name: name,
		Tag:  tag,
	})
	require.NoError(t, err)
	return clan
}

func mkTrade(t *testing.T, db *gorm.DB, clanID, userID, tradeType string, amountUsd, pnlUsd float64, at time.Time) *models.Trade {
	t.Helper()
	trade := &models.Trade{
		ID:          uuid.NewString(),
		UserID:      userID,
		ClanID:      clanID,
		TokenSymbol: "WIF",
		TradeType:   tradeType,
		AmountUsd:   amountUsd,
		PnlUsd:      pnlUsd,
		CreatedAt:   at,
	}
	require.NoError(t, db.Create(trade).Error)
	return trade
}
