package ticketing

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind names a notification variant on the wire and in storage.
type Kind string

const (
	KindEventCreated         Kind = "EventCreated"
	KindEventCanceled        Kind = "EventCanceled"
	KindTicketPurchased      Kind = "TicketPurchased"
	KindTicketRefunded       Kind = "TicketRefunded"
	KindFundsWithdrawn       Kind = "FundsWithdrawn"
	KindOwnershipTransferred Kind = "OwnershipTransferred"
)

// Notification is emitted once per committed write. The set of variants
// is closed.
type Notification interface {
	Kind() Kind
	EventID() uint64
	notification()
}

type EventCreated struct {
	ID           uint64    `json:"id"`
	Organizer    Address   `json:"organizer"`
	Name         string    `json:"name"`
	TicketPrice  uint64    `json:"ticket_price"`
	TotalTickets uint64    `json:"total_tickets"`
	EventDate    time.Time `json:"event_date"`
}

type EventCanceled struct {
	ID uint64 `json:"id"`
}

type TicketPurchased struct {
	ID       uint64  `json:"id"`
	Buyer    Address `json:"buyer"`
	Quantity uint64  `json:"quantity"`
	Cost     uint64  `json:"cost"`
}

type TicketRefunded struct {
	ID     uint64  `json:"id"`
	Holder Address `json:"holder"`
	Amount uint64  `json:"amount"`
}

type FundsWithdrawn struct {
	ID        uint64  `json:"id"`
	Organizer Address `json:"organizer"`
	Amount    uint64  `json:"amount"`
}

type OwnershipTransferred struct {
	Previous Address `json:"previous"`
	Next     Address `json:"next"`
}

func (EventCreated) Kind() Kind         { return KindEventCreated }
func (EventCanceled) Kind() Kind        { return KindEventCanceled }
func (TicketPurchased) Kind() Kind      { return KindTicketPurchased }
func (TicketRefunded) Kind() Kind       { return KindTicketRefunded }
func (FundsWithdrawn) Kind() Kind       { return KindFundsWithdrawn }
func (OwnershipTransferred) Kind() Kind { return KindOwnershipTransferred }

func (n EventCreated) EventID() uint64       { return n.ID }
func (n EventCanceled) EventID() uint64      { return n.ID }
func (n TicketPurchased) EventID() uint64    { return n.ID }
func (n TicketRefunded) EventID() uint64     { return n.ID }
func (n FundsWithdrawn) EventID() uint64     { return n.ID }
func (OwnershipTransferred) EventID() uint64 { return 0 }

func (EventCreated) notification()         {}
func (EventCanceled) notification()        {}
func (TicketPurchased) notification()      {}
func (TicketRefunded) notification()       {}
func (FundsWithdrawn) notification()       {}
func (OwnershipTransferred) notification() {}

// Envelope orders notifications. Seq increases by one per committed write.
type Envelope struct {
	Seq          uint64
	At           time.Time
	Notification Notification
}

type envelopeJSON struct {
	Seq     uint64          `json:"seq"`
	At      time.Time       `json:"at"`
	Kind    Kind            `json:"kind"`
	EventID uint64          `json:"event_id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	if e.Notification == nil {
		return nil, fmt.Errorf("envelope %d has no notification", e.Seq)
	}
	payload, err := json.Marshal(e.Notification)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelopeJSON{
		Seq:     e.Seq,
		At:      e.At,
		Kind:    e.Notification.Kind(),
		EventID: e.Notification.EventID(),
		Payload: payload,
	})
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw envelopeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n, err := DecodeNotification(raw.Kind, raw.Payload)
	if err != nil {
		return err
	}
	e.Seq = raw.Seq
	e.At = raw.At
	e.Notification = n
	return nil
}

// DecodeNotification rebuilds a typed notification from its stored kind
// and JSON payload.
func DecodeNotification(kind Kind, payload []byte) (Notification, error) {
	var n Notification
	var err error
	switch kind {
	case KindEventCreated:
		var v EventCreated
		err = json.Unmarshal(payload, &v)
		n = v
	case KindEventCanceled:
		var v EventCanceled
		err = json.Unmarshal(payload, &v)
		n = v
	case KindTicketPurchased:
		var v TicketPurchased
		err = json.Unmarshal(payload, &v)
		n = v
	case KindTicketRefunded:
		var v TicketRefunded
		err = json.Unmarshal(payload, &v)
		n = v
	case KindFundsWithdrawn:
		var v FundsWithdrawn
		err = json.Unmarshal(payload, &v)
		n = v
	case KindOwnershipTransferred:
		var v OwnershipTransferred
		err = json.Unmarshal(payload, &v)
		n = v
	default:
		return nil, fmt.Errorf("unknown notification kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", kind, err)
	}
	return n, nil
}

// Subscriber receives every committed envelope in sequence order. It is
// called while the engine holds its write lock and must not block or
// call back into engine writes.
type Subscriber func(Envelope)

type dispatcher struct {
	next uint64
	subs map[uint64]Subscriber
}

func (d *dispatcher) add(fn Subscriber) uint64 {
	if d.subs == nil {
		d.subs = make(map[uint64]Subscriber)
	}
	d.next++
	d.subs[d.next] = fn
	return d.next
}

func (d *dispatcher) remove(id uint64) {
	delete(d.subs, id)
}

func (d *dispatcher) publish(env Envelope) {
	for _, fn := range d.subs {
		fn(env)
	}
}
