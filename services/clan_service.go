package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"clan-wars-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Membership precondition and business-rule failures. Handlers match on
// these to pick a status code; everything else is a storage error.
var (
	ErrAlreadyInClan = errors.New("you must leave your current clan before joining another")
	ErrClanFull      = fmt.Errorf("clan is full: maximum %d members allowed", models.MaxClanMembers)
	ErrNotInClan     = errors.New("no clan to leave")
	ErrOwnerLeave    = errors.New("owners cannot leave their clan — transfer ownership first")
	ErrClanNotFound  = errors.New("clan not found")
)

type ClanService struct {
	DB *gorm.DB
}

func NewClanService(db *gorm.DB) *ClanService {
	return &ClanService{DB: db}
}

type CreateClanInput struct {
	Name        string  `json:"name"`
	Tag         string  `json:"tag"`
	Description string  `json:"description"`
	EntryFee    float64 `json:"entry_fee"`
	IsPrivate   bool    `json:"is_private"`
	AvatarURL   string  `json:"avatar_url"`
}

// ResolveMembership returns the user's current clan and active membership.
// (nil, nil, nil) means the user has no active membership; callers must not
// read anything stronger into a nil clan when err is non-nil.
func (s *ClanService) ResolveMembership(userID string) (*models.Clan, *models.ClanMember, error) {
	var membership models.ClanMember
	err := s.DB.
		Where("user_id = ? AND left_at IS NULL", userID).
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var clan models.Clan
	if err := s.DB.First(&clan, "id = ?", membership.ClanID).Error; err != nil {
		return nil, nil, err
	}
	return &clan, &membership, nil
}

// BrowseClans lists all public clans newest first, each decorated with its
// live active-member count. The count is computed fresh on every call —
// membership churns independently of clan rows, so caching it here would go
// stale immediately.
func (s *ClanService) BrowseClans() ([]models.Clan, error) {
	var clans []models.Clan
	if err := s.DB.
		Where("is_private = ?", false).
		Order("created_at DESC").
		Find(&clans).Error; err != nil {
		return nil, err
	}

	type memberCount struct {
		ClanID string
		Count  int64
	}
	var counts []memberCount
	if err := s.DB.Model(&models.ClanMember{}).
		Select("clan_id, COUNT(*) AS count").
		Where("left_at IS NULL").
		Group("clan_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	byClan := make(map[string]int64, len(counts))
	for _, c := range counts {
		byClan[c.ClanID] = c.Count
	}
	for i := range clans {
		clans[i].MemberCount = byClan[clans[i].ID]
	}
	return clans, nil
}

// CreateClan inserts the clan and its owner membership in one transaction.
// MaxMembers is forced to the platform cap no matter what the caller sent.
func (s *ClanService) CreateClan(userID string, in CreateClanInput) (*models.Clan, *models.ClanMember, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Tag) == "" {
		return nil, nil, errors.New("name and tag are required")
	}

	clan := &models.Clan{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Tag:         strings.ToUpper(strings.TrimSpace(in.Tag)),
		Description: in.Description,
		AvatarURL:   in.AvatarURL,
		EntryFee:    in.EntryFee,
		MaxMembers:  models.MaxClanMembers,
		IsPrivate:   in.IsPrivate,
		OwnerID:     userID,
	}
	membership := &models.ClanMember{
		ID:     uuid.NewString(),
		ClanID: clan.ID,
		UserID: userID,
		Role:   models.RoleOwner,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&models.ClanMember{}).
			Where("user_id = ? AND left_at IS NULL", userID).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrAlreadyInClan
		}
		if err := tx.Create(clan).Error; err != nil {
			return err
		}
		return tx.Create(membership).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return clan, membership, nil
}

// JoinClan adds the user as a plain member. The single-active-membership
// and capacity checks run inside the insert transaction: two concurrent
// joins cannot both pass the count and overfill the clan.
func (s *ClanService) JoinClan(userID, clanID string) (*models.ClanMember, error) {
	membership := &models.ClanMember{
		ID:     uuid.NewString(),
		ClanID: clanID,
		UserID: userID,
		Role:   models.RoleMember,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var clan models.Clan
		if err := tx.First(&clan, "id = ?", clanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClanNotFound
			}
			return err
		}

		var active int64
		if err := tx.Model(&models.ClanMember{}).
			Where("user_id = ? AND left_at IS NULL", userID).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrAlreadyInClan
		}

		var roster int64
		if err := tx.Model(&models.ClanMember{}).
			Where("clan_id = ? AND left_at IS NULL", clanID).
			Count(&roster).Error; err != nil {
			return err
		}
		if roster >= int64(clan.MaxMembers) {
			return ErrClanFull
		}

		return tx.Create(membership).Error
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// LeaveClan soft-deletes the caller's active membership by stamping LeftAt.
// The row itself survives so trades made during the membership window still
// count toward the clan's historical PnL. Owners are rejected before any
// write. A second call finds no active membership and writes nothing.
func (s *ClanService) LeaveClan(userID string) error {
	clan, membership, err := s.ResolveMembership(userID)
	if err != nil {
		return err
	}
	if clan == nil || membership == nil {
		return ErrNotInClan
	}
	if membership.Role == models.RoleOwner {
		return ErrOwnerLeave
	}

	now := time.Now().UTC()
	return s.DB.Model(&models.ClanMember{}).
		Where("user_id = ? AND clan_id = ? AND left_at IS NULL", userID, clan.ID).
		Update("left_at", now).Error
}
