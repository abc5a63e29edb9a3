package token

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"event-ticketing/internal/database"
	"event-ticketing/internal/models"
	"event-ticketing/internal/ticketing"
)

// DBLedger keeps token balances in the service database. Balance changes
// are conditional updates, so concurrent debits can never go negative, and
// they join any transaction carried by the context.
type DBLedger struct {
	db       *gorm.DB
	symbol   string
	decimals uint8
	owner    ticketing.Address
}

// NewDBLedger loads the token named symbol, deploying it with
// initialSupply credited to owner if it does not exist yet. An existing
// deployment keeps its stored owner and precision.
func NewDBLedger(ctx context.Context, db *gorm.DB, owner ticketing.Address, symbol string, decimals uint8, initialSupply uint64) (*DBLedger, error) {
	l := &DBLedger{db: db, symbol: symbol, decimals: decimals, owner: owner}

	err := database.WithTx(ctx, db, func(ctx context.Context) error {
		conn := database.Conn(ctx, db)

		var cfg models.TokenConfig
		err := conn.Where("symbol = ?", symbol).First(&cfg).Error
		if err == nil {
			l.owner = ticketing.Address(cfg.Owner)
			l.decimals = cfg.Decimals
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load token config: %w", err)
		}

		if !owner.Valid() {
			return ticketing.ErrInvalidAddress
		}
		cfg = models.TokenConfig{Symbol: symbol, Decimals: decimals, Owner: string(owner), Supply: initialSupply}
		if err := conn.Create(&cfg).Error; err != nil {
			return fmt.Errorf("failed to deploy token: %w", err)
		}
		if err := l.credit(ctx, owner, initialSupply); err != nil {
			return err
		}
		log.Printf("[Token] Deployed %s with supply %d to %s", symbol, initialSupply, owner)
		return l.audit(ctx, models.TokenTransferMint, "", owner, "", initialSupply)
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (l *DBLedger) Symbol() string  { return l.symbol }
func (l *DBLedger) Decimals() uint8 { return l.decimals }

// JoinsJournal reports that movements run in the journal's transaction.
func (l *DBLedger) JoinsJournal() bool { return true }

var _ ticketing.JournalBound = (*DBLedger)(nil)

// TotalSupply returns the number of base units in circulation.
func (l *DBLedger) TotalSupply(ctx context.Context) (uint64, error) {
	var cfg models.TokenConfig
	if err := database.Conn(ctx, l.db).Where("symbol = ?", l.symbol).First(&cfg).Error; err != nil {
		return 0, fmt.Errorf("failed to load token config: %w", err)
	}
	return cfg.Supply, nil
}

func (l *DBLedger) BalanceOf(ctx context.Context, holder ticketing.Address) (uint64, error) {
	var acc models.TokenAccount
	err := database.Conn(ctx, l.db).Where("address = ?", string(holder)).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return acc.Balance, nil
}

func (l *DBLedger) Allowance(ctx context.Context, owner, spender ticketing.Address) (uint64, error) {
	var a models.TokenAllowance
	err := database.Conn(ctx, l.db).
		Where("owner = ? AND spender = ?", string(owner), string(spender)).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get allowance: %w", err)
	}
	return a.Amount, nil
}

// Approve sets, not adds to, the spender's allowance.
func (l *DBLedger) Approve(ctx context.Context, owner, spender ticketing.Address, amount uint64) error {
	if !owner.Valid() || !spender.Valid() {
		return ticketing.ErrInvalidAddress
	}
	row := models.TokenAllowance{Owner: string(owner), Spender: string(spender), Amount: amount}
	err := database.Conn(ctx, l.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "spender"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to approve: %w", err)
	}
	return nil
}

func (l *DBLedger) TransferFrom(ctx context.Context, spender, owner, recipient ticketing.Address, amount uint64) error {
	if !recipient.Valid() {
		return ticketing.ErrInvalidAddress
	}
	return database.WithTx(ctx, l.db, func(ctx context.Context) error {
		res := database.Conn(ctx, l.db).Model(&models.TokenAllowance{}).
			Where("owner = ? AND spender = ? AND amount >= ?", string(owner), string(spender), amount).
			Update("amount", gorm.Expr("amount - ?", amount))
		if res.Error != nil {
			return fmt.Errorf("failed to spend allowance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ticketing.ErrInsufficientAllowance
		}
		if err := l.debit(ctx, owner, amount); err != nil {
			return err
		}
		if err := l.credit(ctx, recipient, amount); err != nil {
			return err
		}
		return l.audit(ctx, models.TokenTransferDelegated, owner, recipient, spender, amount)
	})
}

func (l *DBLedger) Transfer(ctx context.Context, from, to ticketing.Address, amount uint64) error {
	if !to.Valid() {
		return ticketing.ErrInvalidAddress
	}
	return database.WithTx(ctx, l.db, func(ctx context.Context) error {
		if err := l.debit(ctx, from, amount); err != nil {
			return err
		}
		if err := l.credit(ctx, to, amount); err != nil {
			return err
		}
		return l.audit(ctx, models.TokenTransferDirect, from, to, "", amount)
	})
}

// Mint creates amount new base units for to. Only the deploying owner may mint.
func (l *DBLedger) Mint(ctx context.Context, caller, to ticketing.Address, amount uint64) error {
	if caller != l.owner {
		return ErrNotMinter
	}
	if !to.Valid() {
		return ticketing.ErrInvalidAddress
	}
	if amount > math.MaxInt64 {
		return fmt.Errorf("minting %d: %w", amount, ErrSupplyOverflow)
	}
	return database.WithTx(ctx, l.db, func(ctx context.Context) error {
		res := database.Conn(ctx, l.db).Model(&models.TokenConfig{}).
			Where("symbol = ? AND supply <= ?", l.symbol, uint64(math.MaxInt64)-amount).
			Update("supply", gorm.Expr("supply + ?", amount))
		if res.Error != nil {
			return fmt.Errorf("failed to update supply: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("minting %d: %w", amount, ErrSupplyOverflow)
		}
		if err := l.credit(ctx, to, amount); err != nil {
			return err
		}
		return l.audit(ctx, models.TokenTransferMint, "", to, "", amount)
	})
}

func (l *DBLedger) debit(ctx context.Context, addr ticketing.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	res := database.Conn(ctx, l.db).Model(&models.TokenAccount{}).
		Where("address = ? AND balance >= ?", string(addr), amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return fmt.Errorf("failed to debit %s: %w", addr, res.Error)
	}
	if res.RowsAffected == 0 {
		return ticketing.ErrInsufficientBalance
	}
	return nil
}

func (l *DBLedger) credit(ctx context.Context, addr ticketing.Address, amount uint64) error {
	row := models.TokenAccount{Address: string(addr), Balance: amount}
	err := database.Conn(ctx, l.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance": gorm.Expr("token_accounts.balance + ?", amount),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to credit %s: %w", addr, err)
	}
	return nil
}

func (l *DBLedger) audit(ctx context.Context, kind models.TokenTransferType, from, to, spender ticketing.Address, amount uint64) error {
	row := models.TokenTransfer{
		ID:      uuid.New(),
		Type:    kind,
		From:    string(from),
		To:      string(to),
		Spender: string(spender),
		Amount:  amount,
	}
	if err := database.Conn(ctx, l.db).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record transfer: %w", err)
	}
	return nil
}
