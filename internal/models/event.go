package models

import (
	"time"
)

// Event is the persisted form of a registry record
type Event struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Organizer       string    `gorm:"size:64;not null;index" json:"organizer"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	TicketPrice     uint64    `gorm:"not null" json:"ticket_price"`
	TotalTickets    uint64    `gorm:"not null" json:"total_tickets"`
	TicketsSold     uint64    `gorm:"not null;default:0" json:"tickets_sold"`
	TicketsRefunded uint64    `gorm:"not null;default:0" json:"tickets_refunded"`
	EventDate       time.Time `gorm:"not null;index" json:"event_date"`
	IsEventOver     bool      `gorm:"not null;default:false" json:"is_event_over"`
	IsCanceled      bool      `gorm:"not null;default:false" json:"is_canceled"`
	PayoutPending   bool      `gorm:"not null;default:false" json:"payout_pending"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Event) TableName() string {
	return "events"
}

// TicketHolding is the ticket count of one holder for one event.
// Refunded holdings stay as zero-count rows.
type TicketHolding struct {
	EventID       uint64    `gorm:"primaryKey;autoIncrement:false" json:"event_id"`
	Holder        string    `gorm:"primaryKey;size:64" json:"holder"`
	Count         uint64    `gorm:"not null;default:0" json:"count"`
	RefundPending bool      `gorm:"not null;default:false" json:"refund_pending"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (TicketHolding) TableName() string {
	return "ticket_holdings"
}

// RegistrySetting stores registry-wide values such as the owner
type RegistrySetting struct {
	Name      string    `gorm:"primaryKey;size:64" json:"name"`
	Value     string    `gorm:"size:255;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RegistrySetting) TableName() string {
	return "registry_settings"
}

const SettingOwner = "owner"

// Notification is the outbox row for one committed ledger write
type Notification struct {
	Seq        uint64    `gorm:"primaryKey;autoIncrement:false" json:"seq"`
	Kind       string    `gorm:"size:50;not null;index" json:"kind"`
	EventID    uint64    `gorm:"index" json:"event_id"`
	Payload    string    `gorm:"type:text;not null" json:"payload"`
	OccurredAt time.Time `gorm:"not null" json:"occurred_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
