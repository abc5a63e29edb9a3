package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event-ticketing/internal/models"
	"event-ticketing/internal/services"
)

// PassHandler issues and verifies scannable ticket passes
type PassHandler struct {
	passes *services.PassService
}

func NewPassHandler(passes *services.PassService) *PassHandler {
	return &PassHandler{passes: passes}
}

// GetPass returns the caller's pass for an event as a QR code PNG,
// or as JSON with ?format=token.
// GET /api/events/:id/pass
func (h *PassHandler) GetPass(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := parseEventID(c)
	if !ok {
		return
	}

	pass, err := h.passes.Issue(id, caller)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "token" {
		c.JSON(http.StatusOK, gin.H{"event_id": id, "pass": pass.Token})
		return
	}
	c.Data(http.StatusOK, "image/png", pass.PNG)
}

// VerifyPass checks a scanned pass against the live ledger
// POST /api/passes/verify
func (h *PassHandler) VerifyPass(c *gin.Context) {
	var req models.VerifyPassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.passes.Verify(req.Pass)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "data": result})
}
