package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"event-ticketing/internal/models"
	"event-ticketing/internal/ticketing"
)

var ErrDisplayNameTaken = errors.New("display name already taken")

// UserService handles user profiles
type UserService struct {
	db     *gorm.DB
	engine *ticketing.Engine
}

// NewUserService creates a new UserService
func NewUserService(db *gorm.DB, engine *ticketing.Engine) *UserService {
	return &UserService{db: db, engine: engine}
}

// GetProfile returns the public profile of a wallet. Wallets that never
// logged in still get a profile built from the ledger.
func (s *UserService) GetProfile(wallet ticketing.Address) (*models.ProfileResponse, error) {
	profile := &models.ProfileResponse{
		WalletAddress:   wallet.String(),
		IsRegistryOwner: s.engine.IsOwner(wallet),
		EventsOrganized: len(s.engine.GetEventsByOrganizer(wallet)),
	}

	var user models.User
	err := s.db.Where("wallet_address = ?", wallet.String()).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, fmt.Errorf("database error: %w", err)
	default:
		profile.Registered = true
		profile.DisplayName = user.DisplayName
		profile.MemberSince = &user.CreatedAt
	}
	return profile, nil
}

// UpdateDisplayName changes a user's public name
func (s *UserService) UpdateDisplayName(userID uint, name string) (*models.User, error) {
	var taken int64
	if err := s.db.Model(&models.User{}).
		Where("display_name = ? AND id <> ?", name, userID).
		Count(&taken).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if taken > 0 {
		return nil, ErrDisplayNameTaken
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}
	if err := s.db.Model(&user).Update("display_name", name).Error; err != nil {
		return nil, fmt.Errorf("failed to update display name: %w", err)
	}
	user.DisplayName = name

	log.Printf("[Users] User %d is now %q", userID, name)
	return &user, nil
}
