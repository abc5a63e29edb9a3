package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"event-ticketing/internal/models"
	"event-ticketing/internal/utils"
)

const displayNameAttempts = 5

// AuthService handles authentication business logic
type AuthService struct {
	db *gorm.DB
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// ProcessWalletLogin finds or creates a user by wallet address
func (s *AuthService) ProcessWalletLogin(walletAddress string) (*models.User, error) {
	var user models.User
	now := time.Now()

	err := s.db.Where("wallet_address = ?", walletAddress).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.createUser(&user, walletAddress, now); err != nil {
			return nil, err
		}
		log.Printf("[Auth] New user created: wallet=%s (ID: %d)", walletAddress, user.ID)
	case err != nil:
		return nil, fmt.Errorf("database error: %w", err)
	default:
		if err := s.db.Model(&user).Update("last_login_at", now).Error; err != nil {
			return nil, fmt.Errorf("failed to record login: %w", err)
		}
		log.Printf("[Auth] User logged in: wallet=%s (ID: %d)", walletAddress, user.ID)
	}

	return &user, nil
}

// createUser retries on display name collisions
func (s *AuthService) createUser(user *models.User, walletAddress string, now time.Time) error {
	var lastErr error
	for i := 0; i < displayNameAttempts; i++ {
		name, err := utils.GenerateDisplayName()
		if err != nil {
			return err
		}
		var taken int64
		if err := s.db.Model(&models.User{}).Where("display_name = ?", name).Count(&taken).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if taken > 0 {
			continue
		}

		*user = models.User{
			WalletAddress: walletAddress,
			DisplayName:   name,
			LastLoginAt:   &now,
		}
		if lastErr = s.db.Create(user).Error; lastErr == nil {
			return nil
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no free display name")
	}
	return fmt.Errorf("failed to create user: %w", lastErr)
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
