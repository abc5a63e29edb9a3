package ticketing

import (
	"context"
	"log"
)

// Owner returns the registry administrator.
func (e *Engine) Owner() Address {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.owner
}

// IsOwner reports whether addr is the registry administrator.
func (e *Engine) IsOwner(addr Address) bool {
	return addr.Valid() && addr == e.Owner()
}

// SetOwner hands registry administration to next. Only the current owner may call it.
func (e *Engine) SetOwner(ctx context.Context, caller, next Address) error {
	if !next.Valid() {
		return ErrInvalidAddress
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrUnauthorized
	}

	prev := e.owner
	entry := Entry{Owner: next, Envelope: e.envelope(OwnershipTransferred{Previous: prev, Next: next})}
	if err := e.commit(ctx, entry, nil, func() { e.owner = next }); err != nil {
		return err
	}

	log.Printf("[Ticketing] Ownership transferred from %s to %s", prev, next)
	return nil
}
