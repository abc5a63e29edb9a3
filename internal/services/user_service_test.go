package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"event-ticketing/internal/models"
)

func TestUserProfile(t *testing.T) {
	db := setupTestDB(t)
	h := newHarness(t)
	users := NewUserService(db, h.engine)

	if _, err := h.tickets.CreateEvent(context.Background(), organizer, models.CreateEventRequest{
		Name:         "Gallery Opening",
		TicketPrice:  mustDecimal(t, "1"),
		TotalTickets: 3,
		EventDate:    t0.Add(time.Hour),
	}); err != nil {
		t.Fatalf("failed to create: %v", err)
	}

	profile, err := users.GetProfile(organizer)
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if profile.Registered || profile.EventsOrganized != 1 || profile.IsRegistryOwner {
		t.Errorf("unexpected unregistered profile %+v", profile)
	}

	if _, err := NewAuthService(db).ProcessWalletLogin(owner.String()); err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	profile, err = users.GetProfile(owner)
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if !profile.Registered || profile.DisplayName == "" || !profile.IsRegistryOwner || profile.MemberSince == nil {
		t.Errorf("unexpected registered profile %+v", profile)
	}
}

func TestUpdateDisplayName(t *testing.T) {
	db := setupTestDB(t)
	h := newHarness(t)
	users := NewUserService(db, h.engine)
	authService := NewAuthService(db)

	first, err := authService.ProcessWalletLogin("wallet-one")
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	second, err := authService.ProcessWalletLogin("wallet-two")
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}

	updated, err := users.UpdateDisplayName(first.ID, "Front_Row_Fan")
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if updated.DisplayName != "Front_Row_Fan" {
		t.Errorf("expected new name, got %q", updated.DisplayName)
	}

	if _, err := users.UpdateDisplayName(second.ID, "Front_Row_Fan"); !errors.Is(err, ErrDisplayNameTaken) {
		t.Errorf("expected ErrDisplayNameTaken, got %v", err)
	}
	// Re-saving your own name is fine
	if _, err := users.UpdateDisplayName(first.ID, "Front_Row_Fan"); err != nil {
		t.Errorf("expected idempotent update, got %v", err)
	}
}
