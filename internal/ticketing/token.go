package ticketing

import "context"

// TokenAccounting is the fungible-token ledger every payment flows through.
// Implementations report ErrInsufficientAllowance and ErrInsufficientBalance
// (possibly wrapped) when a movement cannot be made.
type TokenAccounting interface {
	BalanceOf(ctx context.Context, holder Address) (uint64, error)
	Allowance(ctx context.Context, owner, spender Address) (uint64, error)
	// Approve is issued by the token owner, never by the ticketing engine.
	Approve(ctx context.Context, owner, spender Address, amount uint64) error
	// TransferFrom moves amount from owner to recipient using the spender's allowance.
	TransferFrom(ctx context.Context, spender, owner, recipient Address, amount uint64) error
	Transfer(ctx context.Context, from, to Address, amount uint64) error
}

// JournalBound is implemented by token ledgers that write through the
// transaction the journal carries in the context, so a failed commit also
// undoes their movements.
type JournalBound interface {
	JoinsJournal() bool
}

// Entry is the post-state of one committed write. Nil fields were not
// touched. Entries that only mark a payout pending carry no notification.
type Entry struct {
	Event    *Event
	Holding  *Holding
	Owner    Address
	Envelope Envelope
}

// Journal persists entries. Record must make the entry durable together
// with apply: if apply fails nothing may be persisted, and if persisting
// fails the error is returned after apply has been undone by the
// surrounding transaction.
type Journal interface {
	Record(ctx context.Context, entry Entry, apply func(ctx context.Context) error) error
}

type directJournal struct{}

func (directJournal) Record(ctx context.Context, _ Entry, apply func(ctx context.Context) error) error {
	if apply == nil {
		return nil
	}
	return apply(ctx)
}
