package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"event-ticketing/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestProcessWalletLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)

	first, err := svc.ProcessWalletLogin("wallet-one")
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	if first.ID == 0 || first.DisplayName == "" || first.LastLoginAt == nil {
		t.Errorf("unexpected new user %+v", first)
	}

	again, err := svc.ProcessWalletLogin("wallet-one")
	if err != nil {
		t.Fatalf("failed to log in again: %v", err)
	}
	if again.ID != first.ID || again.DisplayName != first.DisplayName {
		t.Errorf("expected the same user, got %+v", again)
	}

	second, err := svc.ProcessWalletLogin("wallet-two")
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	if second.ID == first.ID {
		t.Error("expected a distinct user for another wallet")
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 users, got %d", count)
	}
}

func TestGetUserByID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db)

	user, err := svc.ProcessWalletLogin("wallet-one")
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	got, err := svc.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if got.WalletAddress != "wallet-one" {
		t.Errorf("unexpected user %+v", got)
	}
	if _, err := svc.GetUserByID(999); err == nil {
		t.Error("expected error for missing user")
	}
}
