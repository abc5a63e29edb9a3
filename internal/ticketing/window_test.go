package ticketing

import "testing"

func TestWindow(t *testing.T) {
	tests := []struct {
		page, size, n uint64
		lo, hi        uint64
		ok            bool
	}{
		{0, 10, 0, 0, 0, false},
		{0, 0, 5, 0, 0, false},
		{0, 2, 5, 0, 2, true},
		{2, 2, 5, 4, 5, true},
		{3, 2, 5, 0, 0, false},
		{0, ^uint64(0), 5, 0, 5, true},
		{^uint64(0), ^uint64(0), 5, 0, 0, false},
	}
	for _, tt := range tests {
		lo, hi, ok := window(tt.page, tt.size, tt.n)
		if lo != tt.lo || hi != tt.hi || ok != tt.ok {
			t.Errorf("window(%d, %d, %d) = (%d, %d, %v), want (%d, %d, %v)",
				tt.page, tt.size, tt.n, lo, hi, ok, tt.lo, tt.hi, tt.ok)
		}
	}
}

func TestStoreLoadRejectsOversold(t *testing.T) {
	s := newStore()
	err := s.load([]Event{{ID: 1, TotalTickets: 1, TicketsSold: 2}}, nil)
	if err == nil {
		t.Fatal("expected oversold snapshot to be rejected")
	}
	if s.count() != 0 {
		t.Errorf("expected store untouched after failed load, got %d events", s.count())
	}
}
