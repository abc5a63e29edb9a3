package services

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"event-ticketing/internal/ticketing"
)

// ErrInvalidAmount is returned for negative amounts, amounts with more
// precision than the token supports, or amounts too large for the ledger.
var ErrInvalidAmount = errors.New("invalid token amount")

// Amounts converts between human token amounts ("12.5") and ledger base units.
type Amounts struct {
	decimals uint8
}

func NewAmounts(decimals uint8) Amounts {
	return Amounts{decimals: decimals}
}

func (a Amounts) Decimals() uint8 {
	return a.decimals
}

// ToUnits converts d to base units. d must be non-negative, exact at the
// token's precision and fit a signed 64-bit column.
func (a Amounts) ToUnits(d decimal.Decimal) (uint64, error) {
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}
	shifted := d.Shift(int32(a.decimals))
	if !shifted.IsInteger() {
		return 0, ErrInvalidAmount
	}
	units := shifted.BigInt()
	if !units.IsInt64() {
		return 0, fmt.Errorf("%w: %w", ErrInvalidAmount, ticketing.ErrAmountOverflow)
	}
	return units.Uint64(), nil
}

// FromUnits converts base units to a decimal amount
func (a Amounts) FromUnits(units uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -int32(a.decimals))
}

// WholeToUnits converts a count of whole tokens to base units
func (a Amounts) WholeToUnits(whole uint64) (uint64, error) {
	return a.ToUnits(decimal.NewFromBigInt(new(big.Int).SetUint64(whole), 0))
}
