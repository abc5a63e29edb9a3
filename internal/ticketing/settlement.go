package ticketing

import (
	"context"
	"fmt"
	"log"
)

// WithdrawFunds pays the organizer the event's proceeds once the event
// date has passed and marks the event over. It succeeds at most once.
func (e *Engine) WithdrawFunds(ctx context.Context, caller Address, id uint64) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.lookup(id)
	if err != nil {
		return 0, err
	}
	if caller != cur.Organizer {
		return 0, ErrUnauthorized
	}
	if cur.IsCanceled {
		return 0, ErrEventCanceled
	}
	if e.clock.Now().Before(cur.EventDate) {
		return 0, ErrEventNotYetOccurred
	}
	if cur.PayoutPending {
		return 0, ErrPayoutPending
	}
	if cur.IsEventOver {
		return 0, ErrAlreadyWithdrawn
	}
	if cur.TicketsSold == 0 {
		return 0, ErrNoProceeds
	}

	p := withdrawalOf(*cur)
	if err := e.release(ctx, p); err != nil {
		return 0, err
	}

	log.Printf("[Ticketing] Event %d settled: %d paid to %s", id, p.amount, caller)
	return p.amount, nil
}

// Liabilities is the total the ledger account must hold to cover every
// unsettled sale and unclaimed refund.
func (e *Engine) Liabilities() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.liabilities()
}

// EscrowPosition returns the liabilities and the ledger account's token
// balance. The balance is read without holding the engine lock; if a write
// commits meanwhile the read is repeated, and after escrowReadAttempts the
// last pair is returned even though it may straddle a write.
func (e *Engine) EscrowPosition(ctx context.Context) (liabilities, balance uint64, err error) {
	for attempt := 1; ; attempt++ {
		e.mu.RLock()
		seq := e.seq
		liabilities = e.liabilities()
		e.mu.RUnlock()

		balance, err = e.token.BalanceOf(ctx, e.self)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to read escrow balance: %w", err)
		}

		e.mu.RLock()
		stable := e.seq == seq
		e.mu.RUnlock()
		if stable || attempt == escrowReadAttempts {
			return liabilities, balance, nil
		}
	}
}

const escrowReadAttempts = 3

func (e *Engine) liabilities() uint64 {
	var total uint64
	for _, ev := range e.store.events {
		total += ev.Outstanding()
	}
	return total
}
