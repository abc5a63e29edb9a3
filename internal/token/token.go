package token

import (
	"context"

	"event-ticketing/internal/ticketing"
)

// Ledger is a token the service can settle against and administer.
type Ledger interface {
	ticketing.TokenAccounting
	Symbol() string
	Decimals() uint8
	Mint(ctx context.Context, caller, to ticketing.Address, amount uint64) error
}

var (
	_ Ledger = (*MemoryLedger)(nil)
	_ Ledger = (*DBLedger)(nil)
)
