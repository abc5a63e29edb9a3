package ticketing_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"event-ticketing/internal/ticketing"
)

func TestCreateEvent(t *testing.T) {
	f := newFixture(t)

	id := f.create(t, 10_000_000, 100)
	if id != 1 {
		t.Fatalf("expected first id 1, got %d", id)
	}
	if next := f.create(t, 1, 1); next != 2 {
		t.Fatalf("expected second id 2, got %d", next)
	}

	ev := f.event(t, id)
	if ev.Organizer != organizer || ev.TicketsSold != 0 || ev.IsCanceled || ev.IsEventOver {
		t.Errorf("unexpected initial state %+v", ev)
	}
	if !ev.EventDate.Equal(t0.Add(24 * time.Hour)) {
		t.Errorf("expected event date %v, got %v", t0.Add(24*time.Hour), ev.EventDate)
	}

	created, ok := f.notes[0].Notification.(ticketing.EventCreated)
	if !ok {
		t.Fatalf("expected EventCreated, got %T", f.notes[0].Notification)
	}
	if created.ID != 1 || created.Organizer != organizer || created.TicketPrice != 10_000_000 || created.TotalTickets != 100 {
		t.Errorf("unexpected EventCreated payload %+v", created)
	}
}

func TestCreateEventValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		caller ticketing.Address
		params ticketing.CreateEventParams
		want   error
	}{
		{
			name:   "past date",
			caller: organizer,
			params: ticketing.CreateEventParams{TotalTickets: 1, EventDate: t0.Add(-time.Second)},
			want:   ticketing.ErrInvalidSchedule,
		},
		{
			name:   "present date",
			caller: organizer,
			params: ticketing.CreateEventParams{TotalTickets: 1, EventDate: t0},
			want:   ticketing.ErrInvalidSchedule,
		},
		{
			name:   "zero capacity",
			caller: organizer,
			params: ticketing.CreateEventParams{TotalTickets: 0, EventDate: t0.Add(time.Hour)},
			want:   ticketing.ErrInvalidCapacity,
		},
		{
			name:   "price overflow",
			caller: organizer,
			params: ticketing.CreateEventParams{TicketPrice: math.MaxUint64 / 2, TotalTickets: 3, EventDate: t0.Add(time.Hour)},
			want:   ticketing.ErrAmountOverflow,
		},
		{
			name:   "total cost above signed range",
			caller: organizer,
			params: ticketing.CreateEventParams{TicketPrice: math.MaxInt64/2 + 1, TotalTickets: 2, EventDate: t0.Add(time.Hour)},
			want:   ticketing.ErrAmountOverflow,
		},
		{
			name:   "capacity above signed range",
			caller: organizer,
			params: ticketing.CreateEventParams{TotalTickets: math.MaxInt64 + 1, EventDate: t0.Add(time.Hour)},
			want:   ticketing.ErrAmountOverflow,
		},
		{
			name:   "empty caller",
			caller: "",
			params: ticketing.CreateEventParams{TotalTickets: 1, EventDate: t0.Add(time.Hour)},
			want:   ticketing.ErrInvalidAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.CreateEvent(ctx, tt.caller, tt.params)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if n := f.engine.EventCount(); n != 0 {
		t.Errorf("expected no events after failures, got %d", n)
	}
	if len(f.notes) != 0 {
		t.Errorf("expected no notifications after failures, got %d", len(f.notes))
	}
}

func TestGetEventDetailsNotFound(t *testing.T) {
	f := newFixture(t)
	f.create(t, 1, 1)

	for _, id := range []uint64{0, 2, math.MaxUint64} {
		if _, err := f.engine.GetEventDetails(id); !errors.Is(err, ticketing.ErrNotFound) {
			t.Errorf("id %d: expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestCancelEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, 10, 10)

	if err := f.engine.CancelEvent(ctx, alice, id); !errors.Is(err, ticketing.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if err := f.engine.CancelEvent(ctx, organizer, 99); !errors.Is(err, ticketing.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := f.engine.CancelEvent(ctx, organizer, id); err != nil {
		t.Fatalf("failed to cancel: %v", err)
	}
	if !f.event(t, id).IsCanceled {
		t.Error("expected event to be canceled")
	}
	if n, ok := f.lastNote(t).(ticketing.EventCanceled); !ok || n.ID != id {
		t.Errorf("expected EventCanceled for %d, got %+v", id, f.lastNote(t))
	}
	if err := f.engine.CancelEvent(ctx, organizer, id); !errors.Is(err, ticketing.ErrAlreadyCanceled) {
		t.Errorf("expected ErrAlreadyCanceled, got %v", err)
	}
}

func TestCancelAfterDateBeforeSettlement(t *testing.T) {
	f := newFixture(t)
	id := f.create(t, 10, 10)
	f.clock.Advance(48 * time.Hour)

	if err := f.engine.CancelEvent(context.Background(), organizer, id); err != nil {
		t.Fatalf("expected cancel after date to succeed, got %v", err)
	}
}

func TestCancelAfterSettlementRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.create(t, 10, 10)
	f.fund(t, alice, 20)

	if err := f.engine.BuyTicket(ctx, alice, id, 2); err != nil {
		t.Fatalf("failed to buy: %v", err)
	}
	f.clock.Advance(25 * time.Hour)
	if _, err := f.engine.WithdrawFunds(ctx, organizer, id); err != nil {
		t.Fatalf("failed to withdraw: %v", err)
	}

	if err := f.engine.CancelEvent(ctx, organizer, id); !errors.Is(err, ticketing.ErrEventAlreadySettled) {
		t.Fatalf("expected ErrEventAlreadySettled, got %v", err)
	}
	ev := f.event(t, id)
	if ev.IsCanceled || !ev.IsEventOver {
		t.Errorf("expected settled, uncanceled event, got %+v", ev)
	}
	if _, err := f.engine.RefundTicket(ctx, alice, id); !errors.Is(err, ticketing.ErrEventNotCanceled) {
		t.Errorf("expected refund to stay closed, got %v", err)
	}
}
