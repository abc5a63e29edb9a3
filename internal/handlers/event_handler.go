package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"event-ticketing/internal/models"
	"event-ticketing/internal/services"
	"event-ticketing/internal/ticketing"
)

// EventHandler serves the event registry, ticket sales and settlement
type EventHandler struct {
	tickets *services.TicketingService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(tickets *services.TicketingService) *EventHandler {
	return &EventHandler{tickets: tickets}
}

// CreateEvent registers an event organized by the caller
// POST /api/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ev, err := h.tickets.CreateEvent(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": ev})
}

// CancelEvent cancels one of the caller's events
// POST /api/events/:id/cancel
func (h *EventHandler) CancelEvent(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	ev, err := h.tickets.CancelEvent(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": ev})
}

// WithdrawFunds settles an event's proceeds to its organizer
// POST /api/events/:id/withdraw
func (h *EventHandler) WithdrawFunds(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	payout, err := h.tickets.WithdrawFunds(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": payout})
}

// BuyTicket buys tickets with the caller's token allowance
// POST /api/events/:id/tickets
func (h *EventHandler) BuyTicket(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	var req models.BuyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	purchase, err := h.tickets.BuyTicket(c.Request.Context(), caller, id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": purchase})
}

// RefundTicket refunds the caller's tickets on a canceled event
// POST /api/events/:id/refund
func (h *EventHandler) RefundTicket(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	refund, err := h.tickets.RefundTicket(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": refund})
}

// GetEvent returns one event
// GET /api/events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	ev, err := h.tickets.GetEvent(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ev)
}

// ListEvents pages through the registry
// GET /api/events?page=0&page_size=20&active_only=true
func (h *EventHandler) ListEvents(c *gin.Context) {
	page, size, ok := parsePage(c)
	if !ok {
		return
	}
	activeOnly, err := strconv.ParseBool(c.DefaultQuery("active_only", "false"))
	if err != nil {
		badRequest(c, "invalid active_only")
		return
	}

	c.JSON(http.StatusOK, h.tickets.ListEvents(page, size, activeOnly))
}

// GetRemainingTickets
// GET /api/events/:id/remaining
func (h *EventHandler) GetRemainingTickets(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	remaining, err := h.tickets.RemainingTickets(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event_id": id, "remaining_tickets": remaining})
}

// IsEventActive
// GET /api/events/:id/active
func (h *EventHandler) IsEventActive(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	active, err := h.tickets.IsEventActive(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event_id": id, "is_active": active})
}

// GetTicketsOwned returns how many tickets an address holds for an event
// GET /api/events/:id/holders/:address
func (h *EventHandler) GetTicketsOwned(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	holder, ok := parseAddressParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event_id": id,
		"holder":   holder,
		"tickets":  h.tickets.TicketsOwned(id, holder),
	})
}

// GetEventsByOrganizer
// GET /api/organizers/:address/events
func (h *EventHandler) GetEventsByOrganizer(c *gin.Context) {
	organizer, ok := parseAddressParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": h.tickets.EventsByOrganizer(organizer)})
}

// GetAttendedEvents pages through the events an address holds tickets for
// GET /api/holders/:address/attended?page=0&page_size=20
func (h *EventHandler) GetAttendedEvents(c *gin.Context) {
	holder, ok := parseAddressParam(c)
	if !ok {
		return
	}
	page, size, ok := parsePage(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.tickets.AttendedEvents(holder, page, size))
}

// ReceivePayment answers tokens sent straight to the ledger. It always fails.
// POST /api/ledger/payments
func (h *EventHandler) ReceivePayment(c *gin.Context) {
	var req struct {
		From   string          `json:"from"`
		Amount decimal.Decimal `json:"amount"`
	}
	// Malformed bodies are rejected the same way
	_ = c.ShouldBindJSON(&req)

	respondError(c, h.tickets.ReceivePayment(c.Request.Context(), ticketing.Address(req.From), req.Amount))
}
