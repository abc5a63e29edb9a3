package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenConfig stores the deployed ledger token: symbol, precision, minter and supply
type TokenConfig struct {
	Symbol    string    `gorm:"primaryKey;size:20" json:"symbol"`
	Decimals  uint8     `gorm:"not null;default:6" json:"decimals"`
	Owner     string    `gorm:"size:64;not null" json:"owner"`
	Supply    uint64    `gorm:"not null;default:0" json:"supply"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TokenConfig) TableName() string {
	return "token_config"
}

// TokenAccount holds one address's balance in base units
type TokenAccount struct {
	Address   string    `gorm:"primaryKey;size:64" json:"address"`
	Balance   uint64    `gorm:"not null;default:0" json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TokenAccount) TableName() string {
	return "token_accounts"
}

// TokenAllowance is the amount spender may pull from owner
type TokenAllowance struct {
	Owner     string    `gorm:"primaryKey;size:64" json:"owner"`
	Spender   string    `gorm:"primaryKey;size:64" json:"spender"`
	Amount    uint64    `gorm:"not null;default:0" json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TokenAllowance) TableName() string {
	return "token_allowances"
}

type TokenTransferType string

const (
	TokenTransferMint      TokenTransferType = "MINT"
	TokenTransferDirect    TokenTransferType = "TRANSFER"
	TokenTransferDelegated TokenTransferType = "TRANSFER_FROM"
)

// TokenTransfer is the audit trail of every balance movement
type TokenTransfer struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Type      TokenTransferType `gorm:"size:20;not null;index" json:"type"`
	From      string            `gorm:"size:64;index" json:"from"`
	To        string            `gorm:"size:64;not null;index" json:"to"`
	Spender   string            `gorm:"size:64" json:"spender,omitempty"`
	Amount    uint64            `gorm:"not null" json:"amount"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}

func (TokenTransfer) TableName() string {
	return "token_transfers"
}
