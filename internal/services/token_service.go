package services

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"event-ticketing/internal/models"
	"event-ticketing/internal/ticketing"
	"event-ticketing/internal/token"
)

// approvalBuilder is implemented by ledgers where approvals must be signed by
// the owner's wallet rather than by the server.
type approvalBuilder interface {
	ApproveTransaction(ctx context.Context, owner, spender ticketing.Address, amount uint64) (string, error)
}

// TokenService exposes the payment token to API clients
type TokenService struct {
	ledger  token.Ledger
	spender ticketing.Address
	amounts Amounts
}

// NewTokenService creates a TokenService. spender is the ticketing ledger's own address.
func NewTokenService(ledger token.Ledger, spender ticketing.Address, amounts Amounts) *TokenService {
	return &TokenService{ledger: ledger, spender: spender, amounts: amounts}
}

func (s *TokenService) Symbol() string {
	return s.ledger.Symbol()
}

// Balance returns holder's token balance
func (s *TokenService) Balance(ctx context.Context, holder ticketing.Address) (*models.TokenAmountResponse, error) {
	units, err := s.ledger.BalanceOf(ctx, holder)
	if err != nil {
		return nil, err
	}
	return s.amount(holder, units), nil
}

// Allowance returns how much the ticketing ledger may still pull from owner
func (s *TokenService) Allowance(ctx context.Context, owner ticketing.Address) (*models.TokenAmountResponse, error) {
	units, err := s.ledger.Allowance(ctx, owner, s.spender)
	if err != nil {
		return nil, err
	}
	return s.amount(owner, units), nil
}

// Approve lets the ticketing ledger pull up to amount from owner. On ledgers that
// need the owner's signature the response carries a transaction to sign instead.
func (s *TokenService) Approve(ctx context.Context, owner ticketing.Address, amount decimal.Decimal) (*models.ApproveResponse, error) {
	units, err := s.amounts.ToUnits(amount)
	if err != nil {
		return nil, err
	}

	resp := &models.ApproveResponse{
		Owner:   owner.String(),
		Spender: s.spender.String(),
		Amount:  s.amounts.FromUnits(units),
		Units:   units,
	}

	if builder, ok := s.ledger.(approvalBuilder); ok {
		tx, err := builder.ApproveTransaction(ctx, owner, s.spender, units)
		if err != nil {
			return nil, err
		}
		resp.Transaction = tx
		return resp, nil
	}

	if err := s.ledger.Approve(ctx, owner, s.spender, units); err != nil {
		return nil, err
	}
	log.Printf("[Token] %s approved %s %s for the ticketing ledger", owner, resp.Amount, s.ledger.Symbol())
	return resp, nil
}

// Mint issues new tokens. Only the token owner may mint.
func (s *TokenService) Mint(ctx context.Context, caller, to ticketing.Address, amount decimal.Decimal) (*models.TokenAmountResponse, error) {
	units, err := s.amounts.ToUnits(amount)
	if err != nil {
		return nil, err
	}
	if units == 0 {
		return nil, ErrInvalidAmount
	}
	if err := s.ledger.Mint(ctx, caller, to, units); err != nil {
		return nil, err
	}
	log.Printf("[Token] Minted %s %s to %s", s.amounts.FromUnits(units), s.ledger.Symbol(), to)
	return s.Balance(ctx, to)
}

func (s *TokenService) amount(addr ticketing.Address, units uint64) *models.TokenAmountResponse {
	return &models.TokenAmountResponse{
		Address: addr.String(),
		Symbol:  s.ledger.Symbol(),
		Amount:  s.amounts.FromUnits(units),
		Units:   units,
	}
}
