package token

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"event-ticketing/internal/ticketing"
)

// ErrNotMinter is returned when someone other than the token owner mints.
var ErrNotMinter = errors.New("only owner can mint")

// ErrSupplyOverflow is returned when minting would overflow a balance.
var ErrSupplyOverflow = errors.New("mint would overflow supply")

type allowanceKey struct {
	owner   ticketing.Address
	spender ticketing.Address
}

// MemoryLedger is an in-process stablecoin: the whole initial supply goes
// to the deployer, who is the only account allowed to mint more.
type MemoryLedger struct {
	mu         sync.Mutex
	symbol     string
	decimals   uint8
	owner      ticketing.Address
	supply     uint64
	balances   map[ticketing.Address]uint64
	allowances map[allowanceKey]uint64
}

// NewMemoryLedger deploys a token with initialSupply base units credited to owner.
func NewMemoryLedger(owner ticketing.Address, symbol string, decimals uint8, initialSupply uint64) *MemoryLedger {
	l := &MemoryLedger{
		symbol:     symbol,
		decimals:   decimals,
		owner:      owner,
		balances:   make(map[ticketing.Address]uint64),
		allowances: make(map[allowanceKey]uint64),
	}
	l.balances[owner] = initialSupply
	l.supply = initialSupply
	return l
}

func (l *MemoryLedger) Symbol() string  { return l.symbol }
func (l *MemoryLedger) Decimals() uint8 { return l.decimals }

// TotalSupply returns the number of base units in circulation.
func (l *MemoryLedger) TotalSupply() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.supply
}

func (l *MemoryLedger) BalanceOf(_ context.Context, holder ticketing.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[holder], nil
}

func (l *MemoryLedger) Allowance(_ context.Context, owner, spender ticketing.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowances[allowanceKey{owner, spender}], nil
}

// Approve sets, not adds to, the spender's allowance.
func (l *MemoryLedger) Approve(_ context.Context, owner, spender ticketing.Address, amount uint64) error {
	if !owner.Valid() || !spender.Valid() {
		return ticketing.ErrInvalidAddress
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowances[allowanceKey{owner, spender}] = amount
	return nil
}

func (l *MemoryLedger) TransferFrom(_ context.Context, spender, owner, recipient ticketing.Address, amount uint64) error {
	if !recipient.Valid() {
		return ticketing.ErrInvalidAddress
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	key := allowanceKey{owner, spender}
	if l.allowances[key] < amount {
		return ticketing.ErrInsufficientAllowance
	}
	if l.balances[owner] < amount {
		return ticketing.ErrInsufficientBalance
	}
	l.allowances[key] -= amount
	l.move(owner, recipient, amount)
	return nil
}

func (l *MemoryLedger) Transfer(_ context.Context, from, to ticketing.Address, amount uint64) error {
	if !to.Valid() {
		return ticketing.ErrInvalidAddress
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return ticketing.ErrInsufficientBalance
	}
	l.move(from, to, amount)
	return nil
}

// Mint creates amount new base units for to. Only the deployer may mint.
func (l *MemoryLedger) Mint(_ context.Context, caller, to ticketing.Address, amount uint64) error {
	if caller != l.owner {
		return ErrNotMinter
	}
	if !to.Valid() {
		return ticketing.ErrInvalidAddress
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.supply > math.MaxUint64-amount {
		return fmt.Errorf("minting %d: %w", amount, ErrSupplyOverflow)
	}
	l.supply += amount
	l.balances[to] += amount
	return nil
}

// move assumes the caller holds mu and has checked the source balance.
func (l *MemoryLedger) move(from, to ticketing.Address, amount uint64) {
	l.balances[from] -= amount
	l.balances[to] += amount
}
