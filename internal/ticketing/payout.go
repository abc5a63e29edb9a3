package ticketing

import (
	"context"
	"fmt"
	"log"
)

// payout is a release of escrowed tokens: an organizer's proceeds or one
// holder's refund on a canceled event.
type payout struct {
	event     Event
	holding   *Holding // refunds only
	recipient Address
	amount    uint64
}

func withdrawalOf(ev Event) payout {
	return payout{event: ev, recipient: ev.Organizer, amount: ev.Proceeds()}
}

func refundOf(ev Event, h Holding) payout {
	return payout{event: ev, holding: &h, recipient: h.Holder, amount: h.Count * ev.TicketPrice}
}

// marker sets or clears the pending flag without touching anything else.
func (p payout) marker(pending bool) Entry {
	if p.holding != nil {
		h := *p.holding
		h.RefundPending = pending
		return Entry{Holding: &h}
	}
	ev := p.event
	ev.PayoutPending = pending
	return Entry{Event: &ev}
}

// settled is the state once the tokens have reached the recipient.
func (p payout) settled() (Entry, Notification) {
	ev := p.event
	ev.PayoutPending = false
	if p.holding != nil {
		ev.TicketsRefunded += p.holding.Count
		h := Holding{EventID: ev.ID, Holder: p.holding.Holder}
		return Entry{Event: &ev, Holding: &h}, TicketRefunded{ID: ev.ID, Holder: h.Holder, Amount: p.amount}
	}
	ev.IsEventOver = true
	return Entry{Event: &ev}, FundsWithdrawn{ID: ev.ID, Organizer: p.recipient, Amount: p.amount}
}

// release sends p to its recipient and commits the settled state.
//
// A ledger bound to the journal moves the tokens inside the final commit.
// Any other ledger cannot be rolled back, so a pending marker is recorded
// first. While it is set the same funds cannot be released again; it is
// cleared when the transfer fails, and stays set when the transfer went
// through but the settled state could not be recorded.
func (e *Engine) release(ctx context.Context, p payout) error {
	final, notice := p.settled()
	final.Envelope = e.envelope(notice)

	if e.journalBound {
		move := func(ctx context.Context) error { return e.send(ctx, p) }
		return e.commit(ctx, final, move, func() { e.apply(final) })
	}

	if err := e.mark(ctx, p, true); err != nil {
		return err
	}

	// From here on the payout finishes even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	if err := e.send(ctx, p); err != nil {
		if clearErr := e.mark(ctx, p, false); clearErr != nil {
			log.Printf("[Ticketing] WARNING: payout of %d to %s for event %d failed and stays pending: %v",
				p.amount, p.recipient, p.event.ID, clearErr)
		}
		return err
	}

	if err := e.commit(ctx, final, nil, func() { e.apply(final) }); err != nil {
		log.Printf("[Ticketing] WARNING: sent %d to %s for event %d but failed to record it, payout stays pending: %v",
			p.amount, p.recipient, p.event.ID, err)
		return fmt.Errorf("%w: %w", ErrPayoutUnconfirmed, err)
	}
	return nil
}

func (e *Engine) mark(ctx context.Context, p payout, pending bool) error {
	entry := p.marker(pending)
	if err := e.journal.Record(ctx, entry, nil); err != nil {
		return fmt.Errorf("failed to record pending payout: %w", err)
	}
	e.apply(entry)
	return nil
}

func (e *Engine) send(ctx context.Context, p payout) error {
	if p.amount == 0 {
		return nil
	}
	if err := e.token.Transfer(ctx, e.self, p.recipient, p.amount); err != nil {
		if p.holding != nil {
			return fmt.Errorf("failed to send refund: %w", err)
		}
		return fmt.Errorf("failed to pay out proceeds: %w", err)
	}
	return nil
}

func (e *Engine) pendingPayout(ev Event, recipient Address) (payout, bool) {
	if ev.PayoutPending && recipient == ev.Organizer {
		return withdrawalOf(ev), true
	}
	if e.store.refundPending(ev.ID, recipient) {
		h := Holding{EventID: ev.ID, Holder: recipient, Count: e.store.holding(ev.ID, recipient), RefundPending: true}
		return refundOf(ev, h), true
	}
	return payout{}, false
}

// ResolvePayout settles a payout left pending after its transfer could not
// be recorded. The owner checks the token ledger first: paid records the
// payout as delivered, otherwise the flag is cleared so the recipient can
// try again. It returns the amount recorded as paid.
func (e *Engine) ResolvePayout(ctx context.Context, caller Address, id uint64, recipient Address, paid bool) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return 0, ErrUnauthorized
	}
	cur, err := e.lookup(id)
	if err != nil {
		return 0, err
	}
	p, ok := e.pendingPayout(*cur, recipient)
	if !ok {
		return 0, ErrNoPendingPayout
	}

	if !paid {
		if err := e.mark(ctx, p, false); err != nil {
			return 0, err
		}
		log.Printf("[Ticketing] Pending payout of %d to %s for event %d cleared by %s", p.amount, recipient, id, caller)
		return 0, nil
	}

	final, notice := p.settled()
	final.Envelope = e.envelope(notice)
	if err := e.commit(ctx, final, nil, func() { e.apply(final) }); err != nil {
		return 0, err
	}

	log.Printf("[Ticketing] Pending payout of %d to %s for event %d confirmed by %s", p.amount, recipient, id, caller)
	return p.amount, nil
}
