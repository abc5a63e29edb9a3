package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"event-ticketing/internal/clock"
)

func TestMemoryChallengesSingleUse(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryChallenges(time.Minute, clk)

	nonce, expires, err := store.Issue(ctx, "wallet-a")
	if err != nil {
		t.Fatalf("failed to issue: %v", err)
	}
	if !expires.Equal(clk.Now().Add(time.Minute)) {
		t.Errorf("unexpected expiry %v", expires)
	}

	if err := store.Consume(ctx, "wallet-a", nonce); err != nil {
		t.Fatalf("failed to consume: %v", err)
	}
	if err := store.Consume(ctx, "wallet-a", nonce); !errors.Is(err, ErrChallengeNotFound) {
		t.Errorf("expected ErrChallengeNotFound on reuse, got %v", err)
	}
}

func TestMemoryChallengesBoundToWallet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryChallenges(time.Minute, clock.NewFake(time.Now()))

	nonce, _, _ := store.Issue(ctx, "wallet-a")
	if err := store.Consume(ctx, "wallet-b", nonce); !errors.Is(err, ErrChallengeNotFound) {
		t.Errorf("expected ErrChallengeNotFound for another wallet, got %v", err)
	}
	if err := store.Consume(ctx, "wallet-a", nonce); !errors.Is(err, ErrChallengeNotFound) {
		t.Errorf("expected nonce burned by the failed attempt, got %v", err)
	}
}

func TestMemoryChallengesExpire(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryChallenges(time.Minute, clk)

	stale, _, _ := store.Issue(ctx, "wallet-a")
	clk.Advance(time.Minute)
	if err := store.Consume(ctx, "wallet-a", stale); !errors.Is(err, ErrChallengeNotFound) {
		t.Errorf("expected expired nonce rejected, got %v", err)
	}

	old, _, _ := store.Issue(ctx, "wallet-a")
	clk.Advance(2 * time.Minute)
	if _, _, err := store.Issue(ctx, "wallet-b"); err != nil {
		t.Fatalf("failed to issue: %v", err)
	}
	if n := store.Pending(); n != 1 {
		t.Errorf("expected expired nonces swept on issue, %d left", n)
	}
	if err := store.Consume(ctx, "wallet-a", old); !errors.Is(err, ErrChallengeNotFound) {
		t.Errorf("expected swept nonce rejected, got %v", err)
	}
}
