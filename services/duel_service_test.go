package services

import (
	"testing"
	"time"

	"clan-wars-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeCreatesPendingDuel(t *testing.T) {
	db := newTestDB(t)
	svc := NewDuelService(db)
	ghouls := mkClan(t, db, "owner-1", "Ghouls", "GHL")
	wraiths := mkClan(t, db, "owner-2", "Wraiths", "WRT")

	duel, err := svc.Challenge(ghouls.ID, wraiths.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DuelPending, duel.Status)
	assert.Nil(t, duel.StartedAt)
	assert.Nil(t, duel.EndedAt)

	// Challenger sees it outgoing, defender sees it incoming.
	challengerState, err := svc.GetDuelState(ghouls.ID)
	require.NoError(t, err)
	require.Len(t, challengerState.Outgoing, 1)
	assert.Equal(t, "Wraiths", challengerState.Outgoing[0].OpponentName)
	assert.Empty(t, challengerState.Incoming)
	assert.Empty(t, challengerState.Active)

	defenderState, err := svc.GetDuelState(wraiths.ID)
	require.NoError(t, err)
	require.Len(t, defenderState.Incoming, 1)
	assert.Equal(t, "GHL", defenderState.Incoming[0].OpponentTag)
	assert.Empty(t, defenderState.Outgoing)
}

func TestChallengeGuards(t *testing.T) {
	db := newTestDB(t)
	svc := NewDuelService(db)
	ghouls := mkClan(t, db, "owner-1", "Ghouls", "GHL")
	wraiths := mkClan(t, db, "owner-2", "Wraiths", "WRT")

	_, err := svc.Challenge(ghouls.ID, ghouls.ID)
	assert.ErrorIs(t, err, ErrSelfDuel)

	_, err = svc.Challenge(ghouls.ID, "no-such-clan")
	assert.ErrorIs(t, err, ErrClanNotFound)

	_, err = svc.Challenge(ghouls.ID, wraiths.ID)
	require.NoError(t, err)

	// Same pair again, either direction, while non-terminal.
	_, err = svc.Challenge(ghouls.ID, wraiths.ID)
	assert.ErrorIs(t, err, ErrDuelExists)
	_, err = svc.Challenge(wraiths.ID, ghouls.ID)
	assert.ErrorIs(t, err, ErrDuelExists)
}

func TestAcceptSetsFixedWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewDuelService(db)
	ghouls := mkClan(t, db, "owner-1", "Ghouls", "GHL")
	wraiths := mkClan(t, db, "owner-2", "Wraiths", "WRT")

	pending, err := svc.Challenge(ghouls.ID, wraiths.ID)
	require.NoError(t, err)

	accepted, err := svc.Accept(pending.ID, wraiths.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DuelActive, accepted.Status)
	require.NotNil(t, accepted.StartedAt)
	require.NotNil(t, accepted.EndedAt)
	assert.Equal(t, models.DuelDuration, accepted.EndedAt.Sub(*accepted.StartedAt))

	// The challenger now sees it under active, not outgoing.
	state, err := svc.GetDuelState(ghouls.ID)
	require.NoError(t, err)
	assert.Empty(t, state.Outgoing)
	require.Len(t, state.Active, 1)
	assert.Equal(t, pending.ID, state.Active[0].Duel.ID)
}

func TestAcceptRequiresDefender(t *testing.T) {
	db := newTestDB(t)
	svc := NewDuelService(db)
	ghouls := mkClan(t, db, "owner-1", "Ghouls", "GHL")
	wraiths := mkClan(t, db, "owner-2", "Wraiths", "WRT")

	pending, err := svc.Challenge(ghouls.ID, wraiths.ID)
	require.NoError(t, err)

	// The challenger cannot accept its own challenge.
	_, err = svc.Accept(pending.ID, ghouls.ID)
	assert.ErrorIs(t, err, ErrNotDefender)

	_, err = svc.Accept("no-such-duel", wraiths.ID)
	assert.ErrorIs(t, err, ErrDuelNotFound)
}

func TestDeclineIsTerminal(t *testing.T) {
	db := newTestDB(t)
	svc := NewDuelService(db)
	ghouls := mkClan(t, db, "owner-1", "Ghouls", "GHL")
	wraiths := mkClan(t, db, "owner-2", "Wraiths", "WRT")

	pending, err := svc.Challenge(ghouls.ID, wraiths.ID)
	require.NoError(t, err)

	declined, err := svc.Decline(pending.ID, wraiths.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DuelDeclined, declined.Status)

	// No transition leaves declined.
	_, err = svc.Accept(pending.ID, wraiths.ID)
	assert.ErrorIs(t, err, ErrDuelNotPending)
	_, err = svc.Decline(pending.ID, wraiths.ID)
	assert.ErrorIs(t, err, ErrDuelNotPending)
}

func TestActiveDuelEnrichment(t *testing.T) {
	db := newTestDB(t)
	svc := NewDuelService(db)
	ghouls := mkClan(t, db, "owner-1", "Ghouls", "GHL")
	wraiths := mkClan(t, db, "owner-2", "Wraiths", "WRT")

	pending, err := svc.Challenge(ghouls.ID, wraiths.ID)
	require.NoError(t, err)
	accepted, err := svc.Accept(pending.ID, wraiths.ID)
	require.NoError(t, err)

	inWindow := accepted.StartedAt.Add(time.Hour)
	beforeWindow := accepted.StartedAt.Add(-time.Hour)
	mkTrade(t, db, ghouls.ID, "owner-1", models.TradeSell, 1000, 200, inWindow)
	mkTrade(t, db, ghouls.ID, "owner-1", models.TradeSell, 9999, 9999, beforeWindow) // outside the window
	mkTrade(t, db, wraiths.ID, "owner-2", models.TradeSell, 500, -50, inWindow)

	state, err := svc.GetDuelState(ghouls.ID)
	require.NoError(t, err)
	require.Len(t, state.Active, 1)

	enriched := state.Active[0]
	assert.Equal(t, "Ghouls", enriched.ChallengerName)
	assert.Equal(t, "WRT", enriched.DefenderTag)
	assert.InDelta(t, 20.0, enriched.ChallengerStats.ROI, 0.001) // 200/1000
	assert.InDelta(t, 1000.0, enriched.ChallengerStats.Volume, 0.001)
	assert.EqualValues(t, 1, enriched.ChallengerStats.Trades)
	assert.InDelta(t, -10.0, enriched.DefenderStats.ROI, 0.001) // -50/500
}

func TestResolveExpired(t *testing.T) {
	db := newTestDB(t)
	svc := NewDuelService(db)
	ghouls := mkClan(t, db, "owner-1", "Ghouls", "GHL")
	wraiths := mkClan(t, db, "owner-2", "Wraiths", "WRT")

	started := time.Now().UTC().Add(-25 * time.Hour)
	ended := started.Add(models.DuelDuration)
	duel := &models.Duel{
		ID:               uuid.NewString(),
		ChallengerClanID: ghouls.ID,
		DefenderClanID:   wraiths.ID,
		Status:           models.DuelActive,
		StartedAt:        &started,
		EndedAt:          &ended,
	}
	require.NoError(t, db.Create(duel).Error)

	mkTrade(t, db, ghouls.ID, "owner-1", models.TradeSell, 1000, 100, started.Add(time.Hour))  // 10% ROI
	mkTrade(t, db, wraiths.ID, "owner-2", models.TradeSell, 1000, 300, started.Add(time.Hour)) // 30% ROI

	n, err := svc.ResolveExpired(time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var resolved models.Duel
	require.NoError(t, db.First(&resolved, "id = ?", duel.ID).Error)
	assert.Equal(t, models.DuelCompleted, resolved.Status)
	require.NotNil(t, resolved.WinnerClanID)
	assert.Equal(t, wraiths.ID, *resolved.WinnerClanID)
	require.NotNil(t, resolved.ChallengerROI)
	require.NotNil(t, resolved.DefenderROI)
	assert.InDelta(t, 10.0, *resolved.ChallengerROI, 0.001)
	assert.InDelta(t, 30.0, *resolved.DefenderROI, 0.001)
}

func TestResolveExpiredTieHasNoWinner(t *testing.T) {
	db := newTestDB(t)
	svc := NewDuelService(db)
	ghouls := mkClan(t, db, "owner-1", "Ghouls", "GHL")
	wraiths := mkClan(t, db, "owner-2", "Wraiths", "WRT")

	started := time.Now().UTC().Add(-25 * time.Hour)
	ended := started.Add(models.DuelDuration)
	duel := &models.Duel{
		ID:               uuid.NewString(),
		ChallengerClanID: ghouls.ID,
		DefenderClanID:   wraiths.ID,
		Status:           models.DuelActive,
		StartedAt:        &started,
		EndedAt:          &ended,
	}
	require.NoError(t, db.Create(duel).Error)

	n, err := svc.ResolveExpired(time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var resolved models.Duel
	require.NoError(t, db.First(&resolved, "id = ?", duel.ID).Error)
	assert.Equal(t, models.DuelCompleted, resolved.Status)
	assert.Nil(t, resolved.WinnerClanID)
}
