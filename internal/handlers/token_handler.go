package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"event-ticketing/internal/models"
	"event-ticketing/internal/services"
	"event-ticketing/internal/ticketing"
)

// TokenHandler exposes the payment token
type TokenHandler struct {
	tokens *services.TokenService
}

func NewTokenHandler(tokens *services.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// GetBalance
// GET /api/token/balance
func (h *TokenHandler) GetBalance(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	bal, err := h.tokens.Balance(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bal)
}

// GetAllowance returns what the ticketing ledger may still pull from the caller
// GET /api/token/allowance
func (h *TokenHandler) GetAllowance(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	allowance, err := h.tokens.Allowance(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, allowance)
}

// Approve sets the caller's allowance for the ticketing ledger. For on-chain
// tokens the response carries an unsigned transaction for the wallet.
// POST /api/token/approve
func (h *TokenHandler) Approve(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req models.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.tokens.Approve(c.Request.Context(), caller, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

// Mint issues new tokens to an address. Owner only.
// POST /api/admin/token/mint
func (h *TokenHandler) Mint(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req models.MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	bal, err := h.tokens.Mint(c.Request.Context(), caller, ticketing.Address(req.To), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": bal})
}
