package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"event-ticketing/internal/models"
	"event-ticketing/internal/ticketing"
)

func setupPassEvent(t *testing.T) (*harness, *PassService, uint64) {
	t.Helper()
	h := newHarness(t)
	ctx := context.Background()

	ev, err := h.tickets.CreateEvent(ctx, organizer, models.CreateEventRequest{
		Name:         "Opening Night",
		TicketPrice:  mustDecimal(t, "2"),
		TotalTickets: 10,
		EventDate:    t0.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("failed to create: %v", err)
	}
	h.fund(t, alice, 4_000_000)
	if _, err := h.tickets.BuyTicket(ctx, alice, ev.ID, 2); err != nil {
		t.Fatalf("failed to buy: %v", err)
	}
	return h, NewPassService("pass-secret", h.engine), ev.ID
}

func TestPassIssueAndVerify(t *testing.T) {
	_, passes, id := setupPassEvent(t)

	pass, err := passes.Issue(id, alice)
	if err != nil {
		t.Fatalf("failed to issue: %v", err)
	}
	if !bytes.HasPrefix(pass.PNG, []byte("\x89PNG")) {
		t.Error("expected a PNG QR code")
	}

	got, err := passes.Verify(pass.Token)
	if err != nil {
		t.Fatalf("failed to verify: %v", err)
	}
	if got.EventID != id || got.Holder != alice.String() || got.Tickets != 2 || got.EventName != "Opening Night" {
		t.Errorf("unexpected verification %+v", got)
	}
	if !got.IssuedAt.Equal(t0) {
		t.Errorf("expected issued at %v, got %v", t0, got.IssuedAt)
	}
}

func TestPassIssueRequiresTickets(t *testing.T) {
	_, passes, id := setupPassEvent(t)

	if _, err := passes.Issue(id, organizer); !errors.Is(err, ErrNoTickets) {
		t.Errorf("expected ErrNoTickets, got %v", err)
	}
	if _, err := passes.Issue(99, alice); !errors.Is(err, ticketing.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPassVerifyRejectsTampering(t *testing.T) {
	h, passes, id := setupPassEvent(t)

	pass, err := passes.Issue(id, alice)
	if err != nil {
		t.Fatalf("failed to issue: %v", err)
	}

	other := NewPassService("other-secret", h.engine)
	if _, err := other.Verify(pass.Token); !errors.Is(err, ErrInvalidPass) {
		t.Errorf("expected ErrInvalidPass for wrong key, got %v", err)
	}
	if _, err := passes.Verify(pass.Token + "x"); !errors.Is(err, ErrInvalidPass) {
		t.Errorf("expected ErrInvalidPass for mangled token, got %v", err)
	}
}

func TestPassExpiresAfterEvent(t *testing.T) {
	h, passes, id := setupPassEvent(t)

	pass, err := passes.Issue(id, alice)
	if err != nil {
		t.Fatalf("failed to issue: %v", err)
	}

	h.clock.Advance(47 * time.Hour)
	if _, err := passes.Verify(pass.Token); err != nil {
		t.Errorf("pass should still be valid on the day after: %v", err)
	}
	h.clock.Advance(2 * time.Hour)
	if _, err := passes.Verify(pass.Token); !errors.Is(err, ErrInvalidPass) {
		t.Errorf("expected expired pass, got %v", err)
	}
}

func TestPassInvalidAfterCancellation(t *testing.T) {
	h, passes, id := setupPassEvent(t)
	ctx := context.Background()

	pass, err := passes.Issue(id, alice)
	if err != nil {
		t.Fatalf("failed to issue: %v", err)
	}
	if err := h.engine.CancelEvent(ctx, organizer, id); err != nil {
		t.Fatalf("failed to cancel: %v", err)
	}

	if _, err := passes.Verify(pass.Token); !errors.Is(err, ticketing.ErrEventCanceled) {
		t.Errorf("expected ErrEventCanceled, got %v", err)
	}
	if _, err := passes.Issue(id, alice); !errors.Is(err, ticketing.ErrEventCanceled) {
		t.Errorf("expected ErrEventCanceled on issue, got %v", err)
	}
}
