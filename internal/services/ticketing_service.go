package services

import (
	"context"

	"github.com/shopspring/decimal"

	"event-ticketing/internal/models"
	"event-ticketing/internal/ticketing"
)

// TicketingService adapts the ticketing engine to the HTTP API: decimal
// amounts in and out, DTOs instead of engine snapshots.
type TicketingService struct {
	engine  *ticketing.Engine
	amounts Amounts
}

// NewTicketingService creates a new TicketingService
func NewTicketingService(engine *ticketing.Engine, amounts Amounts) *TicketingService {
	return &TicketingService{engine: engine, amounts: amounts}
}

// CreateEvent registers a new event organized by caller
func (s *TicketingService) CreateEvent(ctx context.Context, caller ticketing.Address, req models.CreateEventRequest) (*models.EventResponse, error) {
	price, err := s.amounts.ToUnits(req.TicketPrice)
	if err != nil {
		return nil, err
	}

	id, err := s.engine.CreateEvent(ctx, caller, ticketing.CreateEventParams{
		Name:         req.Name,
		Description:  req.Description,
		TicketPrice:  price,
		TotalTickets: req.TotalTickets,
		EventDate:    req.EventDate,
	})
	if err != nil {
		return nil, err
	}
	return s.GetEvent(id)
}

// CancelEvent cancels an event and returns its updated state
func (s *TicketingService) CancelEvent(ctx context.Context, caller ticketing.Address, id uint64) (*models.EventResponse, error) {
	if err := s.engine.CancelEvent(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.GetEvent(id)
}

// GetEvent returns one event
func (s *TicketingService) GetEvent(id uint64) (*models.EventResponse, error) {
	ev, err := s.engine.GetEventDetails(id)
	if err != nil {
		return nil, err
	}
	resp := s.toEventResponse(ev)
	return &resp, nil
}

// BuyTicket buys quantity tickets for caller, paid from caller's allowance to the ledger
func (s *TicketingService) BuyTicket(ctx context.Context, caller ticketing.Address, id, quantity uint64) (*models.PurchaseResponse, error) {
	if err := s.engine.BuyTicket(ctx, caller, id, quantity); err != nil {
		return nil, err
	}

	ev, err := s.engine.GetEventDetails(id)
	if err != nil {
		return nil, err
	}
	cost := ev.TicketPrice * quantity
	return &models.PurchaseResponse{
		Event:        s.toEventResponse(ev),
		Quantity:     quantity,
		Cost:         s.amounts.FromUnits(cost),
		CostUnits:    cost,
		TicketsOwned: s.engine.GetTicketsOwned(id, caller),
	}, nil
}

// RefundTicket pays caller back for every ticket held on a canceled event
func (s *TicketingService) RefundTicket(ctx context.Context, caller ticketing.Address, id uint64) (*models.PayoutResponse, error) {
	amount, err := s.engine.RefundTicket(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.payout(id, caller, amount), nil
}

// WithdrawFunds settles an event's proceeds to its organizer
func (s *TicketingService) WithdrawFunds(ctx context.Context, caller ticketing.Address, id uint64) (*models.PayoutResponse, error) {
	amount, err := s.engine.WithdrawFunds(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.payout(id, caller, amount), nil
}

// ResolvePayout records the outcome of a payout left pending. Units is zero
// when the payout was cleared instead of confirmed.
func (s *TicketingService) ResolvePayout(ctx context.Context, caller ticketing.Address, id uint64, recipient ticketing.Address, paid bool) (*models.PayoutResponse, error) {
	amount, err := s.engine.ResolvePayout(ctx, caller, id, recipient, paid)
	if err != nil {
		return nil, err
	}
	return s.payout(id, recipient, amount), nil
}

// ListEvents returns one page of events. Total counts every registered event.
func (s *TicketingService) ListEvents(page, pageSize uint64, activeOnly bool) models.EventPageResponse {
	p := s.engine.GetEventsPaginated(page, pageSize, activeOnly)
	return models.EventPageResponse{
		Events:   s.toEventResponses(p.Events),
		Page:     page,
		PageSize: pageSize,
		Total:    p.Total,
	}
}

// EventsByOrganizer returns every event created by organizer
func (s *TicketingService) EventsByOrganizer(organizer ticketing.Address) []models.EventResponse {
	return s.toEventResponses(s.engine.GetEventsByOrganizer(organizer))
}

// AttendedEvents returns one page of the events holder has tickets for
func (s *TicketingService) AttendedEvents(holder ticketing.Address, page, pageSize uint64) models.AttendedPageResponse {
	p := s.engine.GetAttendedEventsPaginated(holder, page, pageSize)
	return models.AttendedPageResponse{
		EventIDs: p.EventIDs,
		Counts:   p.Counts,
		Page:     page,
		PageSize: pageSize,
		Total:    p.Total,
	}
}

func (s *TicketingService) RemainingTickets(id uint64) (uint64, error) {
	return s.engine.GetRemainingTickets(id)
}

func (s *TicketingService) IsEventActive(id uint64) (bool, error) {
	return s.engine.IsEventActive(id)
}

func (s *TicketingService) TicketsOwned(id uint64, holder ticketing.Address) uint64 {
	return s.engine.GetTicketsOwned(id, holder)
}

// Owner returns the registry administrator
func (s *TicketingService) Owner() ticketing.Address {
	return s.engine.Owner()
}

// SetOwner hands registry administration to next
func (s *TicketingService) SetOwner(ctx context.Context, caller, next ticketing.Address) error {
	return s.engine.SetOwner(ctx, caller, next)
}

// ReceivePayment handles a payment sent straight to the ledger. It always fails.
func (s *TicketingService) ReceivePayment(ctx context.Context, from ticketing.Address, amount decimal.Decimal) error {
	units, err := s.amounts.ToUnits(amount)
	if err != nil {
		units = 0
	}
	return s.engine.ReceivePayment(ctx, from, units)
}

func (s *TicketingService) payout(id uint64, recipient ticketing.Address, amount uint64) *models.PayoutResponse {
	return &models.PayoutResponse{
		EventID:   id,
		Recipient: recipient.String(),
		Amount:    s.amounts.FromUnits(amount),
		Units:     amount,
	}
}

func (s *TicketingService) toEventResponses(events []ticketing.Event) []models.EventResponse {
	out := make([]models.EventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, s.toEventResponse(ev))
	}
	return out
}

func (s *TicketingService) toEventResponse(ev ticketing.Event) models.EventResponse {
	return models.EventResponse{
		ID:               ev.ID,
		Organizer:        ev.Organizer.String(),
		Name:             ev.Name,
		Description:      ev.Description,
		TicketPrice:      s.amounts.FromUnits(ev.TicketPrice),
		TicketPriceUnits: ev.TicketPrice,
		TotalTickets:     ev.TotalTickets,
		TicketsSold:      ev.TicketsSold,
		TicketsRefunded:  ev.TicketsRefunded,
		RemainingTickets: ev.Remaining(),
		EventDate:        ev.EventDate,
		IsEventOver:      ev.IsEventOver,
		IsCanceled:       ev.IsCanceled,
		PayoutPending:    ev.PayoutPending,
		IsActive:         ev.Active(s.engine.Now()),
		CreatedAt:        ev.CreatedAt,
	}
}
