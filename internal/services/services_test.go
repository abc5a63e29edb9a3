package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"event-ticketing/internal/clock"
	"event-ticketing/internal/ticketing"
	"event-ticketing/internal/token"
)

const (
	owner     ticketing.Address = "registry-owner"
	escrow    ticketing.Address = "ticketing-escrow"
	organizer ticketing.Address = "organizer"
	alice     ticketing.Address = "alice"
)

var t0 = time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

type harness struct {
	engine  *ticketing.Engine
	ledger  *token.MemoryLedger
	clock   *clock.FakeClock
	amounts Amounts
	tickets *TicketingService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		ledger:  token.NewMemoryLedger(owner, "USDC", 6, 1_000_000_000_000),
		clock:   clock.NewFake(t0),
		amounts: NewAmounts(6),
	}
	engine, err := ticketing.NewEngine(ticketing.Config{
		Owner: owner,
		Self:  escrow,
		Token: h.ledger,
		Clock: h.clock,
	})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	h.engine = engine
	h.tickets = NewTicketingService(engine, h.amounts)
	return h
}

func (h *harness) fund(t *testing.T, holder ticketing.Address, units uint64) {
	t.Helper()
	ctx := context.Background()
	if err := h.ledger.Transfer(ctx, owner, holder, units); err != nil {
		t.Fatalf("failed to fund: %v", err)
	}
	if err := h.ledger.Approve(ctx, holder, escrow, units); err != nil {
		t.Fatalf("failed to approve: %v", err)
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}
