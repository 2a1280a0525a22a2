package services

import (
	"fmt"
	"testing"
	"time"

	"clan-wars-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func mkTournament(t *testing.T, db *gorm.DB, status string, startsAt, endsAt time.Time) *models.Tournament {
	t.Helper()
	tournament := &models.Tournament{
		ID:       uuid.NewString(),
		Season:   1,
		Week:     1,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Status:   status,
	}
	require.NoError(t, db.Create(tournament).Error)
	return tournament
}

func TestCurrentPrefersActive(t *testing.T) {
	db := newTestDB(t)
	svc := NewTournamentService(db)
	now := time.Now().UTC()

	mkTournament(t, db, models.TournamentUpcoming, now.Add(24*time.Hour), now.Add(48*time.Hour))
	active := mkTournament(t, db, models.TournamentActive, now.Add(-time.Hour), now.Add(time.Hour))

	current, err := svc.Current()
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, active.ID, current.ID)
}

func TestCurrentFallsBackToNearestUpcoming(t *testing.T) {
	db := newTestDB(t)
	svc := NewTournamentService(db)
	now := time.Now().UTC()

	mkTournament(t, db, models.TournamentCompleted, now.Add(-48*time.Hour), now.Add(-24*time.Hour))
	mkTournament(t, db, models.TournamentUpcoming, now.Add(72*time.Hour), now.Add(96*time.Hour))
	nearest := mkTournament(t, db, models.TournamentUpcoming, now.Add(24*time.Hour), now.Add(48*time.Hour))

	current, err := svc.Current()
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, nearest.ID, current.ID)
}

func TestCurrentNilWhenNothingScheduled(t *testing.T) {
	db := newTestDB(t)
	svc := NewTournamentService(db)
	now := time.Now().UTC()

	mkTournament(t, db, models.TournamentCompleted, now.Add(-48*time.Hour), now.Add(-24*time.Hour))

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestLeaderboardRanksByROI(t *testing.T) {
	db := newTestDB(t)
	svc := NewTournamentService(db)
	now := time.Now().UTC()

	tournament := mkTournament(t, db, models.TournamentActive, now.Add(-time.Hour), now.Add(time.Hour))

	ghouls := mkClan(t, db, "owner-1", "Ghouls", "GHL")
	wraiths := mkClan(t, db, "owner-2", "Wraiths", "WRT")
	idle := mkClan(t, db, "owner-3", "Idle", "IDL")

	inWindow := now
	mkTrade(t, db, ghouls.ID, "owner-1", models.TradeSell, 1000, 100, inWindow) // 10% ROI
	mkTrade(t, db, wraiths.ID, "owner-2", models.TradeSell, 500, 150, inWindow) // 30% ROI
	// Outside the window: must not count at all.
	mkTrade(t, db, ghouls.ID, "owner-1", models.TradeSell, 9999, 9999, now.Add(-48*time.Hour))

	board, err := svc.Leaderboard(tournament)
	require.NoError(t, err)

	// Clans without in-window trades don't participate.
	require.Len(t, board, 2)
	for _, row := range board {
		assert.NotEqual(t, idle.ID, row.ClanID)
	}

	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, wraiths.ID, board[0].ClanID)
	assert.InDelta(t, 30.0, board[0].RoiPct, 0.001)

	assert.Equal(t, 2, board[1].Rank)
	assert.Equal(t, ghouls.ID, board[1].ClanID)
	assert.InDelta(t, 10.0, board[1].RoiPct, 0.001)
	assert.InDelta(t, 1000.0, board[1].TotalVolume, 0.001)
	assert.EqualValues(t, 1, board[1].TradeCount)
	assert.EqualValues(t, 1, board[1].MemberCount)
}

func TestLeaderboardTiesKeepCreationOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewTournamentService(db)
	now := time.Now().UTC()

	tournament := mkTournament(t, db, models.TournamentActive, now.Add(-time.Hour), now.Add(time.Hour))

	first := mkClan(t, db, "owner-1", "First", "ONE")
	second := mkClan(t, db, "owner-2", "Second", "TWO")

	// Identical ROI on both sides.
	mkTrade(t, db, first.ID, "owner-1", models.TradeSell, 1000, 100, now)
	mkTrade(t, db, second.ID, "owner-2", models.TradeSell, 2000, 200, now)

	board, err := svc.Leaderboard(tournament)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, first.ID, board[0].ClanID)
	assert.Equal(t, second.ID, board[1].ClanID)
}

func TestPastTournaments(t *testing.T) {
	db := newTestDB(t)
	svc := NewTournamentService(db)
	now := time.Now().UTC()

	for i := 0; i < PastTournamentsLimit+3; i++ {
		end := now.Add(-time.Duration(i+1) * 24 * time.Hour)
		tournament := mkTournament(t, db, models.TournamentCompleted, end.Add(-24*time.Hour), end)
		tournament.Week = i + 1
		require.NoError(t, db.Save(tournament).Error)
	}
	mkTournament(t, db, models.TournamentActive, now.Add(-time.Hour), now.Add(time.Hour))

	past, err := svc.Past()
	require.NoError(t, err)
	require.Len(t, past, PastTournamentsLimit)

	// Most recent first.
	for i := 1; i < len(past); i++ {
		assert.True(t, past[i-1].EndsAt.After(past[i].EndsAt),
			fmt.Sprintf("expected descending ends_at at %d", i))
	}
	for _, p := range past {
		assert.Equal(t, models.TournamentCompleted, p.Status)
	}
}

func TestTimeLeft(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		t    models.Tournament
		want string
	}{
		{
			"active with days left",
			models.Tournament{Status: models.TournamentActive, EndsAt: now.Add(26*time.Hour + 3*time.Minute)},
			"1d 2h 3m",
		},
		{
			"active with hours left",
			models.Tournament{Status: models.TournamentActive, EndsAt: now.Add(2*time.Hour + 3*time.Minute + 4*time.Second)},
			"2h 3m 4s",
		},
		{
			"active with minutes left",
			models.Tournament{Status: models.TournamentActive, EndsAt: now.Add(5*time.Minute + 6*time.Second)},
			"5m 6s",
		},
		{
			"active past its end",
			models.Tournament{Status: models.TournamentActive, EndsAt: now.Add(-time.Minute)},
			"Ended",
		},
		{
			"upcoming",
			models.Tournament{Status: models.TournamentUpcoming, StartsAt: now.Add(3*time.Hour + 15*time.Minute + 30*time.Second)},
			"Starts in 3h 15m 30s",
		},
		{
			"completed",
			models.Tournament{Status: models.TournamentCompleted},
			"Ended",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TimeLeft(&tc.t, now))
		})
	}
}

func TestTransition(t *testing.T) {
	db := newTestDB(t)
	svc := NewTournamentService(db)
	now := time.Now().UTC()

	starting := mkTournament(t, db, models.TournamentUpcoming, now.Add(-time.Minute), now.Add(24*time.Hour))
	ending := mkTournament(t, db, models.TournamentActive, now.Add(-48*time.Hour), now.Add(-time.Minute))
	untouched := mkTournament(t, db, models.TournamentUpcoming, now.Add(24*time.Hour), now.Add(48*time.Hour))

	n, err := svc.Transition(now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var got models.Tournament
	require.NoError(t, db.First(&got, "id = ?", starting.ID).Error)
	assert.Equal(t, models.TournamentActive, got.Status)
	got = models.Tournament{}
	require.NoError(t, db.First(&got, "id = ?", ending.ID).Error)
	assert.Equal(t, models.TournamentCompleted, got.Status)
	got = models.Tournament{}
	require.NoError(t, db.First(&got, "id = ?", untouched.ID).Error)
	assert.Equal(t, models.TournamentUpcoming, got.Status)

	// Idempotent: a second pass finds nothing to do.
	n, err = svc.Transition(now)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
