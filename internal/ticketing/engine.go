package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"event-ticketing/internal/clock"
)

// Config wires an Engine to its collaborators.
type Config struct {
	// Owner is the registry administrator.
	Owner Address
	// Self is the ledger's own token account: the spender on purchases
	// and the payer on refunds and withdrawals.
	Self    Address
	Token   TokenAccounting
	Clock   clock.Clock
	Journal Journal
}

// Engine is the ticketing state machine. Writes are serialized behind a
// single lock and either commit every effect or none.
type Engine struct {
	mu      sync.RWMutex
	store   *store
	owner   Address
	self    Address
	token   TokenAccounting
	clock   clock.Clock
	journal Journal
	seq     uint64
	subs    dispatcher

	// journalBound is set when token movements roll back with the journal.
	journalBound bool
}

// NewEngine creates an empty engine.
func NewEngine(cfg Config) (*Engine, error) {
	if !cfg.Owner.Valid() {
		return nil, fmt.Errorf("owner: %w", ErrInvalidAddress)
	}
	if !cfg.Self.Valid() {
		return nil, fmt.Errorf("ledger account: %w", ErrInvalidAddress)
	}
	if cfg.Token == nil {
		return nil, errors.New("token accounting is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewSystem()
	}
	if cfg.Journal == nil {
		cfg.Journal = directJournal{}
	}

	return &Engine{
		store:   newStore(),
		owner:   cfg.Owner,
		self:    cfg.Self,
		token:   cfg.Token,
		clock:   cfg.Clock,
		journal: cfg.Journal,

		journalBound: joinsJournal(cfg.Token),
	}, nil
}

func joinsJournal(tok TokenAccounting) bool {
	bound, ok := tok.(JournalBound)
	return ok && bound.JoinsJournal()
}

// Restore replaces in-memory state with a persisted snapshot. It is meant
// to run once at startup before the engine serves requests.
func (e *Engine) Restore(snap Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.load(snap.Events, snap.Holdings); err != nil {
		return fmt.Errorf("failed to restore ledger: %w", err)
	}
	if snap.Owner.Valid() {
		e.owner = snap.Owner
	}
	e.seq = snap.LastSeq

	log.Printf("[Ticketing] Restored %d events, %d holdings (seq %d)", len(snap.Events), len(snap.Holdings), snap.LastSeq)
	return nil
}

// Self returns the ledger's own token account.
func (e *Engine) Self() Address {
	return e.self
}

// Token returns the token ledger the engine settles against.
func (e *Engine) Token() TokenAccounting {
	return e.token
}

// Now returns the ledger time.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Subscribe registers fn for every committed notification. The returned
// function removes the subscription.
func (e *Engine) Subscribe(fn Subscriber) func() {
	e.mu.Lock()
	id := e.subs.add(fn)
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			e.subs.remove(id)
			e.mu.Unlock()
		})
	}
}

// ReceivePayment rejects any attempt to fund the ledger outside BuyTicket.
func (e *Engine) ReceivePayment(_ context.Context, from Address, amount uint64) error {
	log.Printf("[Ticketing] Rejected direct payment of %d from %s", amount, from)
	return ErrDirectPaymentRejected
}

// commit journals entry, running move (the token movement, if any) inside
// the journal's unit of work, then applies the in-memory effects and
// notifies subscribers. Callers hold the write lock.
func (e *Engine) commit(ctx context.Context, entry Entry, move func(ctx context.Context) error, mutate func()) error {
	entry.Envelope.Seq = e.seq + 1

	if err := e.journal.Record(ctx, entry, move); err != nil {
		return err
	}

	mutate()
	e.seq = entry.Envelope.Seq
	e.subs.publish(entry.Envelope)
	return nil
}

// apply copies the event and holding of a recorded entry into the store.
func (e *Engine) apply(entry Entry) {
	if entry.Event != nil {
		e.store.replace(*entry.Event)
	}
	if entry.Holding != nil {
		e.store.setHolding(*entry.Holding)
	}
}

func (e *Engine) envelope(n Notification) Envelope {
	return Envelope{At: e.clock.Now(), Notification: n}
}

func (e *Engine) lookup(id uint64) (*Event, error) {
	ev, ok := e.store.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return ev, nil
}
