package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"event-ticketing/internal/blockchain"
	"event-ticketing/internal/services"
	"event-ticketing/internal/ticketing"
	"event-ticketing/internal/token"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{ticketing.ErrNotFound, http.StatusNotFound, "not_found"},
	{ticketing.ErrUnauthorized, http.StatusForbidden, "unauthorized"},
	{token.ErrNotMinter, http.StatusForbidden, "not_minter"},

	{ticketing.ErrInvalidSchedule, http.StatusBadRequest, "invalid_schedule"},
	{ticketing.ErrInvalidCapacity, http.StatusBadRequest, "invalid_capacity"},
	{ticketing.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{ticketing.ErrAmountOverflow, http.StatusBadRequest, "amount_overflow"},
	{ticketing.ErrInvalidAddress, http.StatusBadRequest, "invalid_address"},
	{services.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{services.ErrInvalidPass, http.StatusBadRequest, "invalid_pass"},

	{ticketing.ErrAlreadyCanceled, http.StatusConflict, "already_canceled"},
	{ticketing.ErrEventCanceled, http.StatusConflict, "event_canceled"},
	{ticketing.ErrSalesClosed, http.StatusConflict, "sales_closed"},
	{ticketing.ErrInsufficientCapacity, http.StatusConflict, "insufficient_capacity"},
	{ticketing.ErrEventAlreadySettled, http.StatusConflict, "event_already_settled"},
	{ticketing.ErrEventNotYetOccurred, http.StatusConflict, "event_not_yet_occurred"},
	{ticketing.ErrAlreadyWithdrawn, http.StatusConflict, "already_withdrawn"},
	{ticketing.ErrNoProceeds, http.StatusConflict, "no_proceeds"},
	{ticketing.ErrNothingToRefund, http.StatusConflict, "nothing_to_refund"},
	{ticketing.ErrEventNotCanceled, http.StatusConflict, "event_not_canceled"},
	{ticketing.ErrPayoutPending, http.StatusConflict, "payout_pending"},
	{ticketing.ErrNoPendingPayout, http.StatusConflict, "no_pending_payout"},
	{services.ErrNoTickets, http.StatusConflict, "no_tickets"},
	{services.ErrDisplayNameTaken, http.StatusConflict, "display_name_taken"},
	{token.ErrSupplyOverflow, http.StatusConflict, "supply_overflow"},

	{ticketing.ErrInsufficientAllowance, http.StatusPaymentRequired, "insufficient_allowance"},
	{ticketing.ErrInsufficientBalance, http.StatusPaymentRequired, "insufficient_balance"},

	{ticketing.ErrDirectPaymentRejected, http.StatusMethodNotAllowed, "direct_payment_rejected"},
	{blockchain.ErrMintUnsupported, http.StatusNotImplemented, "mint_unsupported"},
	{blockchain.ErrOwnerSignatureRequired, http.StatusNotImplemented, "owner_signature_required"},
}

// statusFor maps a service error to its HTTP status and error code
func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// respondError writes err as {"error", "code"}. Internal errors are logged and not echoed.
func respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal server error", "code": code})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": "invalid_request"})
}
