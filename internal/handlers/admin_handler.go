package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event-ticketing/internal/blockchain"
	"event-ticketing/internal/jobs"
	"event-ticketing/internal/models"
	"event-ticketing/internal/services"
	"event-ticketing/internal/ticketing"
)

// AdminHandler serves owner-only registry administration
type AdminHandler struct {
	tickets    *services.TicketingService
	reconciler *jobs.EscrowReconciler
	chain      *blockchain.SPLToken
}

// NewAdminHandler creates a new AdminHandler. chain is nil unless the token lives on Solana.
func NewAdminHandler(tickets *services.TicketingService, reconciler *jobs.EscrowReconciler, chain *blockchain.SPLToken) *AdminHandler {
	return &AdminHandler{
		tickets:    tickets,
		reconciler: reconciler,
		chain:      chain,
	}
}

// GetOwner returns the registry owner
// GET /api/admin/owner
func (h *AdminHandler) GetOwner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"owner": h.tickets.Owner()})
}

// SetOwner transfers registry ownership
// PUT /api/admin/owner
func (h *AdminHandler) SetOwner(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req models.SetOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.tickets.SetOwner(c.Request.Context(), caller, ticketing.Address(req.Owner)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "owner": h.tickets.Owner()})
}

// ResolvePayout confirms or clears a payout left pending
// POST /api/admin/events/:id/payouts/resolve
func (h *AdminHandler) ResolvePayout(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	var req models.ResolvePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.tickets.ResolvePayout(c.Request.Context(), caller, id, ticketing.Address(req.Recipient), *req.Paid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reconcile runs an escrow reconciliation pass on demand
// GET /api/admin/reconciliation
func (h *AdminHandler) Reconcile(c *gin.Context) {
	report, err := h.reconciler.Check(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Diagnostics reports on the Solana connection when the token lives on chain
// GET /api/admin/diagnostics
func (h *AdminHandler) Diagnostics(c *gin.Context) {
	if h.chain == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no chain connection configured", "code": "not_found"})
		return
	}
	c.JSON(http.StatusOK, h.chain.RunDiagnostics(c.Request.Context()))
}
