package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"event-ticketing/internal/database"
	"event-ticketing/internal/models"
	"event-ticketing/internal/ticketing"
)

// Repository persists the ticketing ledger. It implements ticketing.Journal.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

var _ ticketing.Journal = (*Repository)(nil)

// Record writes the entry and its notification, if any, then runs apply in
// the same transaction. Any error rolls all of it back.
func (r *Repository) Record(ctx context.Context, entry ticketing.Entry, apply func(ctx context.Context) error) error {
	var payload []byte
	if entry.Envelope.Notification != nil {
		var err error
		if payload, err = json.Marshal(entry.Envelope.Notification); err != nil {
			return fmt.Errorf("failed to encode notification: %w", err)
		}
	}

	return database.WithTx(ctx, r.db, func(ctx context.Context) error {
		conn := database.Conn(ctx, r.db)

		if entry.Event != nil {
			row := toEventRow(*entry.Event)
			if err := conn.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
				return fmt.Errorf("failed to save event %d: %w", row.ID, err)
			}
		}

		if entry.Holding != nil {
			row := models.TicketHolding{
				EventID:       entry.Holding.EventID,
				Holder:        string(entry.Holding.Holder),
				Count:         entry.Holding.Count,
				RefundPending: entry.Holding.RefundPending,
			}
			err := conn.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "event_id"}, {Name: "holder"}},
				DoUpdates: clause.AssignmentColumns([]string{"count", "refund_pending", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("failed to save holding: %w", err)
			}
		}

		if entry.Owner.Valid() {
			row := models.RegistrySetting{Name: models.SettingOwner, Value: string(entry.Owner)}
			err := conn.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("failed to save owner: %w", err)
			}
		}

		if entry.Envelope.Notification != nil {
			note := models.Notification{
				Seq:        entry.Envelope.Seq,
				Kind:       string(entry.Envelope.Notification.Kind()),
				EventID:    entry.Envelope.Notification.EventID(),
				Payload:    string(payload),
				OccurredAt: entry.Envelope.At,
			}
			if err := conn.Create(&note).Error; err != nil {
				return fmt.Errorf("failed to save notification %d: %w", note.Seq, err)
			}
		}

		if apply != nil {
			return apply(ctx)
		}
		return nil
	})
}

// LoadSnapshot reads the persisted ledger for ticketing.Engine.Restore.
func (r *Repository) LoadSnapshot(ctx context.Context) (ticketing.Snapshot, error) {
	var snap ticketing.Snapshot
	db := r.db.WithContext(ctx)

	var events []models.Event
	if err := db.Order("id ASC").Find(&events).Error; err != nil {
		return snap, fmt.Errorf("failed to load events: %w", err)
	}
	snap.Events = make([]ticketing.Event, 0, len(events))
	for _, row := range events {
		snap.Events = append(snap.Events, fromEventRow(row))
	}

	var holdings []models.TicketHolding
	if err := db.Where("count > 0").Order("event_id ASC, holder ASC").Find(&holdings).Error; err != nil {
		return snap, fmt.Errorf("failed to load holdings: %w", err)
	}
	snap.Holdings = make([]ticketing.Holding, 0, len(holdings))
	for _, row := range holdings {
		snap.Holdings = append(snap.Holdings, ticketing.Holding{
			EventID:       row.EventID,
			Holder:        ticketing.Address(row.Holder),
			Count:         row.Count,
			RefundPending: row.RefundPending,
		})
	}

	var owner models.RegistrySetting
	err := db.Where("name = ?", models.SettingOwner).First(&owner).Error
	switch {
	case err == nil:
		snap.Owner = ticketing.Address(owner.Value)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return snap, fmt.Errorf("failed to load owner: %w", err)
	}

	var last models.Notification
	err = db.Order("seq DESC").First(&last).Error
	switch {
	case err == nil:
		snap.LastSeq = last.Seq
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return snap, fmt.Errorf("failed to load notification sequence: %w", err)
	}

	return snap, nil
}

// ListNotifications returns up to limit envelopes with Seq greater than after.
func (r *Repository) ListNotifications(ctx context.Context, after uint64, limit int) ([]ticketing.Envelope, error) {
	var rows []models.Notification
	err := r.db.WithContext(ctx).
		Where("seq > ?", after).
		Order("seq ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	envelopes := make([]ticketing.Envelope, 0, len(rows))
	for _, row := range rows {
		n, err := ticketing.DecodeNotification(ticketing.Kind(row.Kind), []byte(row.Payload))
		if err != nil {
			return nil, fmt.Errorf("notification %d: %w", row.Seq, err)
		}
		envelopes = append(envelopes, ticketing.Envelope{Seq: row.Seq, At: row.OccurredAt, Notification: n})
	}
	return envelopes, nil
}

func toEventRow(ev ticketing.Event) models.Event {
	return models.Event{
		ID:              ev.ID,
		Organizer:       string(ev.Organizer),
		Name:            ev.Name,
		Description:     ev.Description,
		TicketPrice:     ev.TicketPrice,
		TotalTickets:    ev.TotalTickets,
		TicketsSold:     ev.TicketsSold,
		TicketsRefunded: ev.TicketsRefunded,
		EventDate:       ev.EventDate,
		IsEventOver:     ev.IsEventOver,
		IsCanceled:      ev.IsCanceled,
		PayoutPending:   ev.PayoutPending,
		CreatedAt:       ev.CreatedAt,
	}
}

func fromEventRow(row models.Event) ticketing.Event {
	return ticketing.Event{
		ID:              row.ID,
		Organizer:       ticketing.Address(row.Organizer),
		Name:            row.Name,
		Description:     row.Description,
		TicketPrice:     row.TicketPrice,
		TotalTickets:    row.TotalTickets,
		TicketsSold:     row.TicketsSold,
		TicketsRefunded: row.TicketsRefunded,
		EventDate:       row.EventDate.UTC(),
		IsEventOver:     row.IsEventOver,
		IsCanceled:      row.IsCanceled,
		PayoutPending:   row.PayoutPending,
		CreatedAt:       row.CreatedAt.UTC(),
	}
}
