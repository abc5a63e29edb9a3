package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEventRequest is the body of POST /api/events. Prices are in whole
// token units ("12.50"), converted to base units by the service.
type CreateEventRequest struct {
	Name         string          `json:"name" binding:"required,max=255"`
	Description  string          `json:"description"`
	TicketPrice  decimal.Decimal `json:"ticket_price"`
	TotalTickets uint64          `json:"total_tickets"`
	EventDate    time.Time       `json:"event_date" binding:"required"`
}

type BuyTicketRequest struct {
	Quantity uint64 `json:"quantity" binding:"required,min=1"`
}

type SetOwnerRequest struct {
	Owner string `json:"owner" binding:"required"`
}

// ResolvePayoutRequest settles a pending payout. Paid is whether the
// transfer reached the recipient on the token ledger.
type ResolvePayoutRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Paid      *bool  `json:"paid" binding:"required"`
}

type ApproveRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type MintRequest struct {
	To     string          `json:"to" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type VerifyPassRequest struct {
	Pass string `json:"pass" binding:"required"`
}

// EventResponse is the API view of an event
type EventResponse struct {
	ID               uint64          `json:"id"`
	Organizer        string          `json:"organizer"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	TicketPrice      decimal.Decimal `json:"ticket_price"`
	TicketPriceUnits uint64          `json:"ticket_price_units"`
	TotalTickets     uint64          `json:"total_tickets"`
	TicketsSold      uint64          `json:"tickets_sold"`
	TicketsRefunded  uint64          `json:"tickets_refunded"`
	RemainingTickets uint64          `json:"remaining_tickets"`
	EventDate        time.Time       `json:"event_date"`
	IsEventOver      bool            `json:"is_event_over"`
	IsCanceled       bool            `json:"is_canceled"`
	PayoutPending    bool            `json:"payout_pending"`
	IsActive         bool            `json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
}

type EventPageResponse struct {
	Events   []EventResponse `json:"events"`
	Page     uint64          `json:"page"`
	PageSize uint64          `json:"page_size"`
	Total    uint64          `json:"total"`
}

type AttendedPageResponse struct {
	EventIDs []uint64 `json:"event_ids"`
	Counts   []uint64 `json:"counts"`
	Page     uint64   `json:"page"`
	PageSize uint64   `json:"page_size"`
	Total    uint64   `json:"total"`
}

type TokenAmountResponse struct {
	Address string          `json:"address"`
	Symbol  string          `json:"symbol"`
	Amount  decimal.Decimal `json:"amount"`
	Units   uint64          `json:"units"`
}

type PurchaseResponse struct {
	Event        EventResponse   `json:"event"`
	Quantity     uint64          `json:"quantity"`
	Cost         decimal.Decimal `json:"cost"`
	CostUnits    uint64          `json:"cost_units"`
	TicketsOwned uint64          `json:"tickets_owned"`
}

// PayoutResponse describes a refund or a settlement transfer out of escrow
type PayoutResponse struct {
	EventID   uint64          `json:"event_id"`
	Recipient string          `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
	Units     uint64          `json:"units"`
}

type ApproveResponse struct {
	Owner   string          `json:"owner"`
	Spender string          `json:"spender"`
	Amount  decimal.Decimal `json:"amount"`
	Units   uint64          `json:"units"`
	// Set when the ledger needs the owner's wallet to sign the approval
	Transaction string `json:"transaction,omitempty"`
}

type PassVerificationResponse struct {
	EventID   uint64    `json:"event_id"`
	EventName string    `json:"event_name"`
	Holder    string    `json:"holder"`
	Tickets   uint64    `json:"tickets"`
	IssuedAt  time.Time `json:"issued_at"`
}

type UpdateDisplayNameRequest struct {
	DisplayName string `json:"display_name" binding:"required,min=3,max=50"`
}

// ProfileResponse is the public view of a wallet
type ProfileResponse struct {
	WalletAddress   string     `json:"wallet_address"`
	DisplayName     string     `json:"display_name,omitempty"`
	Registered      bool       `json:"registered"`
	IsRegistryOwner bool       `json:"is_registry_owner"`
	EventsOrganized int        `json:"events_organized"`
	MemberSince     *time.Time `json:"member_since,omitempty"`
}
