package services

import (
	"fmt"
	"testing"
	"time"

	"clan-wars-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostMessageRequiresActiveMembership(t *testing.T) {
	db := newTestDB(t)
	clans := NewClanService(db)
	chat := NewChatService(db)
	clan := mkClan(t, db, "owner", "Ghouls", "GHL")

	_, err := chat.PostMessage("outsider", clan.ID, "let me in")
	assert.ErrorIs(t, err, ErrNotClanMember)

	_, err = clans.JoinClan("member", clan.ID)
	require.NoError(t, err)
	msg, err := chat.PostMessage("member", clan.ID, "gm")
	require.NoError(t, err)
	assert.Equal(t, "gm", msg.Content)
	assert.Equal(t, clan.ID, msg.ClanID)

	// Leaving revokes the seat.
	require.NoError(t, clans.LeaveClan("member"))
	_, err = chat.PostMessage("member", clan.ID, "still here?")
	assert.ErrorIs(t, err, ErrNotClanMember)
}

func TestPostMessageValidation(t *testing.T) {
	db := newTestDB(t)
	chat := NewChatService(db)
	clan := mkClan(t, db, "owner", "Ghouls", "GHL")

	_, err := chat.PostMessage("owner", clan.ID, "   ")
	assert.Error(t, err)
}

func TestPostMessageDenormalizesUsername(t *testing.T) {
	db := newTestDB(t)
	chat := NewChatService(db)
	profiles := NewProfileService(db)
	clan := mkClan(t, db, "owner", "Ghouls", "GHL")

	_, err := profiles.EnsureProfile("owner", "nightcap")
	require.NoError(t, err)

	msg, err := chat.PostMessage("owner", clan.ID, "gm")
	require.NoError(t, err)
	assert.Equal(t, "nightcap", msg.Username)
}

func TestRecentMessagesChronological(t *testing.T) {
	db := newTestDB(t)
	chat := NewChatService(db)
	clan := mkClan(t, db, "owner", "Ghouls", "GHL")
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		msg := &models.ClanMessage{
			ID:        fmt.Sprintf("msg-%d", i),
			ClanID:    clan.ID,
			UserID:    "owner",
			Content:   fmt.Sprintf("line %d", i),
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(msg).Error)
	}

	msgs, err := chat.RecentMessages("owner", clan.ID, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	// The 3 newest, oldest first.
	assert.Equal(t, "line 2", msgs[0].Content)
	assert.Equal(t, "line 3", msgs[1].Content)
	assert.Equal(t, "line 4", msgs[2].Content)
}

func TestRecentMessagesRequireActiveMembership(t *testing.T) {
	db := newTestDB(t)
	clans := NewClanService(db)
	chat := NewChatService(db)
	clan := mkClan(t, db, "owner", "Ghouls", "GHL")

	_, err := chat.PostMessage("owner", clan.ID, "members only")
	require.NoError(t, err)

	// Outsiders cannot read the history, even of a clan they know the id of.
	_, err = chat.RecentMessages("outsider", clan.ID, 50)
	assert.ErrorIs(t, err, ErrNotClanMember)

	_, err = clans.JoinClan("member", clan.ID)
	require.NoError(t, err)
	msgs, err := chat.RecentMessages("member", clan.ID, 50)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	// Leaving revokes read access along with posting.
	require.NoError(t, clans.LeaveClan("member"))
	_, err = chat.RecentMessages("member", clan.ID, 50)
	assert.ErrorIs(t, err, ErrNotClanMember)
}
