package services

import (
	"errors"
	"strings"

	"clan-wars-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotClanMember = errors.New("you are not a member of this clan")

type ChatService struct {
	DB *gorm.DB
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{DB: db}
}

// requireMember rejects callers without an *active* membership in the clan —
// former members lost their seat when left_at was stamped.
func (s *ChatService) requireMember(userID, clanID string) error {
	var active int64
	if err := s.DB.Model(&models.ClanMember{}).
		Where("user_id = ? AND clan_id = ? AND left_at IS NULL", userID, clanID).
		Count(&active).Error; err != nil {
		return err
	}
	if active == 0 {
		return ErrNotClanMember
	}
	return nil
}

// PostMessage writes a war-room line. Posting requires an active membership
// in the target clan.
func (s *ChatService) PostMessage(userID, clanID, content string) (*models.ClanMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("message cannot be empty")
	}

	if err := s.requireMember(userID, clanID); err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := s.DB.First(&profile, "id = ?", userID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	msg := &models.ClanMessage{
		ID:       uuid.NewString(),
		ClanID:   clanID,
		UserID:   userID,
		Username: profile.Username,
		Content:  content,
	}
	if err := s.DB.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// RecentMessages lists the latest war-room lines, oldest first. Reading is
// members-only, same as posting — the war room is not public.
func (s *ChatService) RecentMessages(userID, clanID string, limit int) ([]models.ClanMessage, error) {
	if err := s.requireMember(userID, clanID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var msgs []models.ClanMessage
	err := s.DB.
		Where("clan_id = ?", clanID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	// Reverse into chronological order for display.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
