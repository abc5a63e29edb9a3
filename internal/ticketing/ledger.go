package ticketing

import (
	"context"
	"fmt"
	"log"
)

// BuyTicket sells quantity tickets to caller, pulling quantity x price
// from the caller's token allowance to the ledger account.
func (e *Engine) BuyTicket(ctx context.Context, caller Address, id, quantity uint64) error {
	if !caller.Valid() {
		return ErrInvalidAddress
	}
	if quantity == 0 {
		return ErrInvalidQuantity
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.lookup(id)
	if err != nil {
		return err
	}
	if cur.IsCanceled {
		return ErrEventCanceled
	}
	if !e.clock.Now().Before(cur.EventDate) {
		return ErrSalesClosed
	}
	if quantity > cur.Remaining() {
		return ErrInsufficientCapacity
	}
	if cur.IsEventOver {
		return ErrEventAlreadySettled
	}

	// quantity <= TotalTickets and price x TotalTickets was checked at creation.
	cost := cur.TicketPrice * quantity

	allowance, err := e.token.Allowance(ctx, caller, e.self)
	if err != nil {
		return fmt.Errorf("failed to read allowance: %w", err)
	}
	if allowance < cost {
		return ErrInsufficientAllowance
	}

	next := *cur
	next.TicketsSold += quantity
	holding := Holding{EventID: id, Holder: caller, Count: e.store.holding(id, caller) + quantity}

	entry := Entry{
		Event:    &next,
		Holding:  &holding,
		Envelope: e.envelope(TicketPurchased{ID: id, Buyer: caller, Quantity: quantity, Cost: cost}),
	}
	pulled := false
	pull := func(ctx context.Context) error {
		if cost == 0 {
			return nil
		}
		if err := e.token.TransferFrom(ctx, e.self, caller, e.self, cost); err != nil {
			return fmt.Errorf("failed to collect payment: %w", err)
		}
		pulled = true
		return nil
	}
	if err := e.commit(ctx, entry, pull, func() { e.apply(entry) }); err != nil {
		if pulled && !e.journalBound {
			e.returnPayment(ctx, caller, id, cost)
		}
		return err
	}

	log.Printf("[Ticketing] %s bought %d tickets for event %d (cost=%d, sold=%d/%d)", caller, quantity, id, cost, next.TicketsSold, next.TotalTickets)
	return nil
}

// RefundTicket pays a holder back for every ticket they hold on a canceled
// event and zeroes the holding.
func (e *Engine) RefundTicket(ctx context.Context, caller Address, id uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.lookup(id)
	if err != nil {
		return 0, err
	}
	if !cur.IsCanceled {
		return 0, ErrEventNotCanceled
	}
	if e.store.refundPending(id, caller) {
		return 0, ErrPayoutPending
	}
	held := e.store.holding(id, caller)
	if held == 0 {
		return 0, ErrNothingToRefund
	}

	p := refundOf(*cur, Holding{EventID: id, Holder: caller, Count: held})
	if err := e.release(ctx, p); err != nil {
		return 0, err
	}

	log.Printf("[Ticketing] Refunded %d tickets (%d) to %s for event %d", held, p.amount, caller, id)
	return p.amount, nil
}

// returnPayment sends a collected payment back when its purchase could not
// be recorded and the token ledger did not roll back with the journal.
func (e *Engine) returnPayment(ctx context.Context, buyer Address, id, cost uint64) {
	if err := e.token.Transfer(context.WithoutCancel(ctx), e.self, buyer, cost); err != nil {
		log.Printf("[Ticketing] WARNING: failed to return %d to %s after aborted purchase for event %d: %v", cost, buyer, id, err)
		return
	}
	log.Printf("[Ticketing] Returned %d to %s after aborted purchase for event %d", cost, buyer, id)
}

// GetTicketsOwned returns how many tickets holder has for the event.
// Unknown events and holders report zero.
func (e *Engine) GetTicketsOwned(id uint64, holder Address) uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.holding(id, holder)
}
