package ticketing

// window returns the [page*size, page*size+size) bounds clipped to n, or
// ok=false when the window starts past the end.
func window(page, size, n uint64) (lo, hi uint64, ok bool) {
	if size == 0 || n == 0 || page > (n-1)/size {
		return 0, 0, false
	}
	lo = page * size
	if size > n-lo {
		return lo, n, true
	}
	return lo, lo + size, true
}

// GetEventsPaginated returns the page-th window (0-indexed) of events in
// id order, optionally restricted to active events. Total is always the
// size of the whole registry.
func (e *Engine) GetEventsPaginated(page, pageSize uint64, activeOnly bool) Page {
	e.mu.RLock()
	defer e.mu.RUnlock()

	now := e.clock.Now()
	total := e.store.count()
	result := Page{Events: []Event{}, Total: total}

	if !activeOnly {
		lo, hi, ok := window(page, pageSize, total)
		if ok {
			result.Events = append(result.Events, e.store.events[lo:hi]...)
		}
		return result
	}

	filtered := make([]Event, 0)
	for _, ev := range e.store.events {
		if ev.Active(now) {
			filtered = append(filtered, ev)
		}
	}
	if lo, hi, ok := window(page, pageSize, uint64(len(filtered))); ok {
		result.Events = filtered[lo:hi]
	}
	return result
}

// GetEventsByOrganizer returns every event created by organizer in creation order.
func (e *Engine) GetEventsByOrganizer(organizer Address) []Event {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := e.store.byOrganizer[organizer]
	events := make([]Event, 0, len(ids))
	for _, id := range ids {
		ev, _ := e.store.get(id)
		events = append(events, *ev)
	}
	return events
}

// GetAttendedEventsPaginated returns the page-th window of events where
// holder has a positive ticket count, in id order, with matching counts.
func (e *Engine) GetAttendedEventsPaginated(holder Address, page, pageSize uint64) AttendedPage {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var ids, counts []uint64
	for _, ev := range e.store.events {
		if n := e.store.holding(ev.ID, holder); n > 0 {
			ids = append(ids, ev.ID)
			counts = append(counts, n)
		}
	}

	result := AttendedPage{EventIDs: []uint64{}, Counts: []uint64{}, Total: e.store.count()}
	if lo, hi, ok := window(page, pageSize, uint64(len(ids))); ok {
		result.EventIDs = ids[lo:hi]
		result.Counts = counts[lo:hi]
	}
	return result
}

// GetRemainingTickets returns the unsold capacity of the event.
func (e *Engine) GetRemainingTickets(id uint64) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ev, err := e.lookup(id)
	if err != nil {
		return 0, err
	}
	return ev.Remaining(), nil
}

// IsEventActive reports whether the event is uncanceled, unsettled and
// still before its date.
func (e *Engine) IsEventActive(id uint64) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ev, err := e.lookup(id)
	if err != nil {
		return false, err
	}
	return ev.Active(e.clock.Now()), nil
}

// EventCount returns the number of events ever created.
func (e *Engine) EventCount() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.count()
}
