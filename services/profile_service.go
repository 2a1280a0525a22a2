package services

import (
	"errors"
	"strings"

	"clan-wars-system/models"

	"gorm.io/gorm"
)

var (
	ErrWalletTaken     = errors.New("this wallet is already linked to another account")
	ErrNoWalletLinked  = errors.New("no wallet linked to this account")
	ErrUsernameMissing = errors.New("username cannot be empty")
)

type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// EnsureProfile returns the user's profile, creating it on first read.
// fallbackUsername is used only when the row does not exist yet.
func (s *ProfileService) EnsureProfile(userID, fallbackUsername string) (*models.Profile, error) {
	var profile models.Profile
	err := s.DB.First(&profile, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if fallbackUsername == "" {
			fallbackUsername = "Anonymous"
		}
		profile = models.Profile{
			ID:       userID,
			Username: fallbackUsername,
		}
		if err := s.DB.Create(&profile).Error; err != nil {
			return nil, err
		}
		return &profile, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileService) UpdateUsername(userID, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrUsernameMissing
	}
	return s.DB.Model(&models.Profile{}).
		Where("id = ?", userID).
		Update("username", username).Error
}

// LinkWallet stores the wallet address on the profile. A wallet can back
// only one account at a time.
func (s *ProfileService) LinkWallet(userID, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return errors.New("wallet address is required")
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Profile{}).
			Where("wallet_address = ? AND id <> ?", address, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrWalletTaken
		}
		return tx.Model(&models.Profile{}).
			Where("id = ?", userID).
			Update("wallet_address", address).Error
	})
}

func (s *ProfileService) UnlinkWallet(userID string) error {
	var profile models.Profile
	if err := s.DB.First(&profile, "id = ?", userID).Error; err != nil {
		return err
	}
	if profile.WalletAddress == nil {
		return ErrNoWalletLinked
	}
	return s.DB.Model(&models.Profile{}).
		Where("id = ?", userID).
		Update("wallet_address", nil).Error
}
