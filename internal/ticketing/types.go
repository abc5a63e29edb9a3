package ticketing

import (
	"strings"
	"time"
)

// Address identifies a party on the token ledger. In production it is a
// base58 wallet address; the ledger treats it as opaque.
type Address string

// Valid reports whether the address is usable as a caller or recipient.
func (a Address) Valid() bool {
	return strings.TrimSpace(string(a)) != ""
}

func (a Address) String() string {
	return string(a)
}

// Event is a snapshot of one registry record. Values handed out by the
// engine are copies and never alias engine state.
type Event struct {
	ID           uint64    `json:"id"`
	Organizer    Address   `json:"organizer"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	TicketPrice  uint64    `json:"ticket_price"`
	TotalTickets uint64    `json:"total_tickets"`
	TicketsSold  uint64    `json:"tickets_sold"`
	EventDate    time.Time `json:"event_date"`
	IsEventOver  bool      `json:"is_event_over"`
	IsCanceled   bool      `json:"is_canceled"`
	CreatedAt    time.Time `json:"created_at"`

	// TicketsRefunded counts tickets paid back after cancellation.
	// TicketsSold is left untouched by refunds.
	TicketsRefunded uint64 `json:"tickets_refunded"`
	// PayoutPending is set while proceeds are being sent to the organizer
	// and stays set if the transfer could not be recorded.
	PayoutPending bool `json:"payout_pending"`
}

// Remaining returns the number of tickets still for sale.
func (ev Event) Remaining() uint64 {
	return ev.TotalTickets - ev.TicketsSold
}

// Active reports whether the event is open for sales at now.
func (ev Event) Active(now time.Time) bool {
	return !ev.IsEventOver && !ev.IsCanceled && now.Before(ev.EventDate)
}

// Proceeds is the amount the organizer is owed at settlement.
func (ev Event) Proceeds() uint64 {
	return ev.TicketsSold * ev.TicketPrice
}

// Outstanding is the amount the ledger still holds in escrow for this event.
func (ev Event) Outstanding() uint64 {
	if ev.IsEventOver {
		return 0
	}
	return (ev.TicketsSold - ev.TicketsRefunded) * ev.TicketPrice
}

// Holding is the ticket count one holder has for one event.
type Holding struct {
	EventID uint64  `json:"event_id"`
	Holder  Address `json:"holder"`
	Count   uint64  `json:"count"`
	// RefundPending marks a refund that was started but not recorded.
	RefundPending bool `json:"refund_pending,omitempty"`
}

// CreateEventParams carries the organizer-supplied fields of a new event.
type CreateEventParams struct {
	Name         string
	Description  string
	TicketPrice  uint64
	TotalTickets uint64
	EventDate    time.Time
}

// Page is one window of a filtered event listing. Total is the size of
// the whole registry, not of the filtered set.
type Page struct {
	Events []Event `json:"events"`
	Total  uint64  `json:"total"`
}

// AttendedPage is one window of the events a holder has tickets for.
type AttendedPage struct {
	EventIDs []uint64 `json:"event_ids"`
	Counts   []uint64 `json:"counts"`
	Total    uint64   `json:"total"`
}

// Snapshot is the persisted state used to rebuild an engine on startup.
type Snapshot struct {
	Owner    Address
	Events   []Event
	Holdings []Holding
	LastSeq  uint64
}
