package ticketing

import "fmt"

type holdingKey struct {
	eventID uint64
	holder  Address
}

// store keeps events in an append-only arena. Ids are assigned
// sequentially from 1 and index maps them to arena slots.
type store struct {
	events      []Event
	index       map[uint64]int
	holdings    map[holdingKey]uint64
	refunding   map[holdingKey]struct{}
	byOrganizer map[Address][]uint64
}

func newStore() *store {
	return &store{
		index:       make(map[uint64]int),
		holdings:    make(map[holdingKey]uint64),
		refunding:   make(map[holdingKey]struct{}),
		byOrganizer: make(map[Address][]uint64),
	}
}

func (s *store) nextID() uint64 {
	return uint64(len(s.events)) + 1
}

func (s *store) count() uint64 {
	return uint64(len(s.events))
}

func (s *store) get(id uint64) (*Event, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return &s.events[i], true
}

func (s *store) append(ev Event) {
	s.index[ev.ID] = len(s.events)
	s.events = append(s.events, ev)
	s.byOrganizer[ev.Organizer] = append(s.byOrganizer[ev.Organizer], ev.ID)
}

func (s *store) replace(ev Event) {
	s.events[s.index[ev.ID]] = ev
}

func (s *store) holding(eventID uint64, holder Address) uint64 {
	return s.holdings[holdingKey{eventID, holder}]
}

func (s *store) refundPending(eventID uint64, holder Address) bool {
	_, ok := s.refunding[holdingKey{eventID, holder}]
	return ok
}

func (s *store) setHolding(h Holding) {
	key := holdingKey{h.EventID, h.Holder}
	if h.RefundPending && h.Count > 0 {
		s.refunding[key] = struct{}{}
	} else {
		delete(s.refunding, key)
	}
	if h.Count == 0 {
		delete(s.holdings, key)
		return
	}
	s.holdings[key] = h.Count
}

// load replaces the store contents with a snapshot. Events must carry
// contiguous ids starting at 1.
func (s *store) load(events []Event, holdings []Holding) error {
	fresh := newStore()
	for i, ev := range events {
		if ev.ID != uint64(i)+1 {
			return fmt.Errorf("snapshot event %d out of sequence at position %d", ev.ID, i)
		}
		if ev.TicketsSold > ev.TotalTickets {
			return fmt.Errorf("snapshot event %d oversold: %d of %d", ev.ID, ev.TicketsSold, ev.TotalTickets)
		}
		fresh.append(ev)
	}
	for _, h := range holdings {
		if _, ok := fresh.index[h.EventID]; !ok {
			return fmt.Errorf("snapshot holding references unknown event %d", h.EventID)
		}
		fresh.setHolding(h)
	}
	*s = *fresh
	return nil
}
