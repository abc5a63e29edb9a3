package ticketing

import (
	"context"
	"log"
	"math"
	"math/bits"
)

// CreateEvent registers a new event organized by caller and returns its id.
func (e *Engine) CreateEvent(ctx context.Context, caller Address, p CreateEventParams) (uint64, error) {
	if !caller.Valid() {
		return 0, ErrInvalidAddress
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	if !p.EventDate.After(now) {
		return 0, ErrInvalidSchedule
	}
	if p.TotalTickets == 0 {
		return 0, ErrInvalidCapacity
	}
	// Amounts are stored as signed 64-bit columns.
	if p.TotalTickets > math.MaxInt64 {
		return 0, ErrAmountOverflow
	}
	if hi, lo := bits.Mul64(p.TicketPrice, p.TotalTickets); hi != 0 || lo > math.MaxInt64 {
		return 0, ErrAmountOverflow
	}

	ev := Event{
		ID:           e.store.nextID(),
		Organizer:    caller,
		Name:         p.Name,
		Description:  p.Description,
		TicketPrice:  p.TicketPrice,
		TotalTickets: p.TotalTickets,
		EventDate:    p.EventDate.UTC(),
		CreatedAt:    now,
	}

	entry := Entry{
		Event: &ev,
		Envelope: e.envelope(EventCreated{
			ID:           ev.ID,
			Organizer:    ev.Organizer,
			Name:         ev.Name,
			TicketPrice:  ev.TicketPrice,
			TotalTickets: ev.TotalTickets,
			EventDate:    ev.EventDate,
		}),
	}
	if err := e.commit(ctx, entry, nil, func() { e.store.append(ev) }); err != nil {
		return 0, err
	}

	log.Printf("[Ticketing] Event %d created by %s (price=%d, capacity=%d)", ev.ID, caller, ev.TicketPrice, ev.TotalTickets)
	return ev.ID, nil
}

// CancelEvent marks an event canceled, opening refunds. Only the organizer
// may cancel, and a settled event can no longer be canceled.
func (e *Engine) CancelEvent(ctx context.Context, caller Address, id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cur, err := e.lookup(id)
	if err != nil {
		return err
	}
	if caller != cur.Organizer {
		return ErrUnauthorized
	}
	if cur.IsCanceled {
		return ErrAlreadyCanceled
	}
	if cur.IsEventOver {
		return ErrEventAlreadySettled
	}
	if cur.PayoutPending {
		return ErrPayoutPending
	}

	next := *cur
	next.IsCanceled = true

	entry := Entry{Event: &next, Envelope: e.envelope(EventCanceled{ID: id})}
	if err := e.commit(ctx, entry, nil, func() { e.store.replace(next) }); err != nil {
		return err
	}

	log.Printf("[Ticketing] Event %d canceled by %s (%d tickets sold)", id, caller, next.TicketsSold)
	return nil
}

// GetEventDetails returns a snapshot of the event.
func (e *Engine) GetEventDetails(id uint64) (Event, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ev, err := e.lookup(id)
	if err != nil {
		return Event{}, err
	}
	return *ev, nil
}
