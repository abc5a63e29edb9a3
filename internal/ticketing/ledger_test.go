package ticketing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"event-ticketing/internal/ticketing"
)

func TestBuyTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, 10, 100)
	f.fund(t, alice, 50)

	if err := f.engine.BuyTicket(ctx, alice, id, 3); err != nil {
		t.Fatalf("failed to buy: %v", err)
	}

	ev := f.event(t, id)
	if ev.TicketsSold != 3 {
		t.Errorf("expected 3 sold, got %d", ev.TicketsSold)
	}
	if got := f.engine.GetTicketsOwned(id, alice); got != 3 {
		t.Errorf("expected holding 3, got %d", got)
	}
	if got := f.balance(t, alice); got != 20 {
		t.Errorf("expected buyer balance 20, got %d", got)
	}
	if got := f.balance(t, escrow); got != 30 {
		t.Errorf("expected escrow balance 30, got %d", got)
	}

	n, ok := f.lastNote(t).(ticketing.TicketPurchased)
	if !ok || n.ID != id || n.Buyer != alice || n.Quantity != 3 || n.Cost != 30 {
		t.Errorf("unexpected notification %+v", f.lastNote(t))
	}

	if err := f.engine.BuyTicket(ctx, alice, id, 2); err != nil {
		t.Fatalf("failed to buy again: %v", err)
	}
	if got := f.engine.GetTicketsOwned(id, alice); got != 5 {
		t.Errorf("expected cumulative holding 5, got %d", got)
	}
}

func TestBuyTicketFailuresLeaveStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, 10, 5)
	f.fund(t, alice, 1_000)

	tests := []struct {
		name     string
		caller   ticketing.Address
		id       uint64
		quantity uint64
		want     error
	}{
		{"unknown event", alice, 42, 1, ticketing.ErrNotFound},
		{"zero quantity", alice, id, 0, ticketing.ErrInvalidQuantity},
		{"over capacity", alice, id, 6, ticketing.ErrInsufficientCapacity},
		{"no allowance", bob, id, 1, ticketing.ErrInsufficientAllowance},
		{"empty caller", "", id, 1, ticketing.ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.engine.BuyTicket(ctx, tt.caller, tt.id, tt.quantity)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if ev := f.event(t, id); ev.TicketsSold != 0 {
		t.Errorf("expected nothing sold, got %d", ev.TicketsSold)
	}
	if got := f.balance(t, alice); got != 1_000 {
		t.Errorf("expected untouched balance, got %d", got)
	}
	if len(f.notes) != 1 {
		t.Errorf("expected only the creation notification, got %d", len(f.notes))
	}
}

func TestBuyTicketInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, 10, 5)

	if err := f.token.Transfer(ctx, owner, alice, 5); err != nil {
		t.Fatalf("failed to fund: %v", err)
	}
	if err := f.token.Approve(ctx, alice, escrow, 100); err != nil {
		t.Fatalf("failed to approve: %v", err)
	}

	err := f.engine.BuyTicket(ctx, alice, id, 1)
	if !errors.Is(err, ticketing.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := f.engine.GetTicketsOwned(id, alice); got != 0 {
		t.Errorf("expected no tickets after failed pull, got %d", got)
	}
	if ev := f.event(t, id); ev.TicketsSold != 0 {
		t.Errorf("expected nothing sold, got %d", ev.TicketsSold)
	}
}

func TestBuyTicketLifecycleChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fund(t, alice, 1_000)

	canceled := f.create(t, 10, 5)
	if err := f.engine.CancelEvent(ctx, organizer, canceled); err != nil {
		t.Fatalf("failed to cancel: %v", err)
	}
	if err := f.engine.BuyTicket(ctx, alice, canceled, 1); !errors.Is(err, ticketing.ErrEventCanceled) {
		t.Errorf("expected ErrEventCanceled, got %v", err)
	}

	open := f.create(t, 10, 5)
	f.clock.Advance(24 * time.Hour)
	if err := f.engine.BuyTicket(ctx, alice, open, 1); !errors.Is(err, ticketing.ErrSalesClosed) {
		t.Errorf("expected ErrSalesClosed exactly at the event date, got %v", err)
	}
}

func TestBuyTicketAfterSettlement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, 10, 5)
	f.fund(t, alice, 100)

	if err := f.engine.BuyTicket(ctx, alice, id, 1); err != nil {
		t.Fatalf("failed to buy: %v", err)
	}
	f.clock.Advance(25 * time.Hour)
	if _, err := f.engine.WithdrawFunds(ctx, organizer, id); err != nil {
		t.Fatalf("failed to withdraw: %v", err)
	}

	// Only reachable if ledger time moves backwards.
	f.clock.Set(t0)
	if err := f.engine.BuyTicket(ctx, alice, id, 1); !errors.Is(err, ticketing.ErrEventAlreadySettled) {
		t.Errorf("expected ErrEventAlreadySettled, got %v", err)
	}
}

func TestRefundTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const price = 7
	id := f.create(t, price, 10)
	f.fund(t, alice, 100)

	if err := f.engine.BuyTicket(ctx, alice, id, 5); err != nil {
		t.Fatalf("failed to buy: %v", err)
	}
	if _, err := f.engine.RefundTicket(ctx, alice, id); !errors.Is(err, ticketing.ErrEventNotCanceled) {
		t.Errorf("expected ErrEventNotCanceled before cancellation, got %v", err)
	}

	if err := f.engine.CancelEvent(ctx, organizer, id); err != nil {
		t.Fatalf("failed to cancel: %v", err)
	}
	if !f.event(t, id).IsCanceled {
		t.Fatal("expected event canceled")
	}
	if err := f.engine.BuyTicket(ctx, alice, id, 1); !errors.Is(err, ticketing.ErrEventCanceled) {
		t.Errorf("expected ErrEventCanceled, got %v", err)
	}

	before := f.balance(t, alice)
	refund, err := f.engine.RefundTicket(ctx, alice, id)
	if err != nil {
		t.Fatalf("failed to refund: %v", err)
	}
	if refund != 5*price {
		t.Errorf("expected refund %d, got %d", 5*price, refund)
	}
	if got := f.balance(t, alice) - before; got != 5*price {
		t.Errorf("expected balance to grow by %d, got %d", 5*price, got)
	}
	if got := f.engine.GetTicketsOwned(id, alice); got != 0 {
		t.Errorf("expected holding zeroed, got %d", got)
	}

	ev := f.event(t, id)
	if ev.TicketsSold != 5 || ev.TicketsRefunded != 5 {
		t.Errorf("expected sold=5 refunded=5, got sold=%d refunded=%d", ev.TicketsSold, ev.TicketsRefunded)
	}
	if n, ok := f.lastNote(t).(ticketing.TicketRefunded); !ok || n.Holder != alice || n.Amount != 5*price {
		t.Errorf("unexpected notification %+v", f.lastNote(t))
	}

	if _, err := f.engine.RefundTicket(ctx, alice, id); !errors.Is(err, ticketing.ErrNothingToRefund) {
		t.Errorf("expected ErrNothingToRefund on second refund, got %v", err)
	}
	if _, err := f.engine.RefundTicket(ctx, bob, id); !errors.Is(err, ticketing.ErrNothingToRefund) {
		t.Errorf("expected ErrNothingToRefund for non-holder, got %v", err)
	}
	if got := f.balance(t, escrow); got != 0 {
		t.Errorf("expected escrow drained, got %d", got)
	}
}

func TestGetTicketsOwnedUnknown(t *testing.T) {
	f := newFixture(t)
	if got := f.engine.GetTicketsOwned(12, alice); got != 0 {
		t.Errorf("expected 0 for unknown event, got %d", got)
	}
}

func TestConcurrentBuyersCannotOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, 10, 3)

	buyers := make([]ticketing.Address, 20)
	for i := range buyers {
		buyers[i] = ticketing.Address("buyer-" + string(rune('a'+i)))
		f.fund(t, buyers[i], 10)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var sold, rejected int
	for _, buyer := range buyers {
		wg.Add(1)
		go func(buyer ticketing.Address) {
			defer wg.Done()
			err := f.engine.BuyTicket(ctx, buyer, id, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				sold++
			case errors.Is(err, ticketing.ErrInsufficientCapacity):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(buyer)
	}
	wg.Wait()

	if sold != 3 || rejected != 17 {
		t.Errorf("expected 3 sold and 17 rejected, got %d and %d", sold, rejected)
	}
	if got := f.balance(t, escrow); got != 30 {
		t.Errorf("expected escrow 30, got %d", got)
	}
}
