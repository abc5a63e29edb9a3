package ticketing

import "errors"

var (
	ErrInvalidSchedule       = errors.New("event date must be in the future")
	ErrInvalidCapacity       = errors.New("must have at least one ticket")
	ErrNotFound              = errors.New("event does not exist")
	ErrUnauthorized          = errors.New("caller is not authorized")
	ErrAlreadyCanceled       = errors.New("event is already canceled")
	ErrEventCanceled         = errors.New("event is canceled")
	ErrSalesClosed           = errors.New("event has already started or ended")
	ErrInsufficientCapacity  = errors.New("not enough tickets available")
	ErrEventAlreadySettled   = errors.New("event is already over")
	ErrInsufficientAllowance = errors.New("insufficient token allowance")
	ErrInsufficientBalance   = errors.New("insufficient token balance")
	ErrEventNotYetOccurred   = errors.New("event has not occurred yet")
	ErrAlreadyWithdrawn      = errors.New("funds already withdrawn")
	ErrNoProceeds            = errors.New("no funds to withdraw")
	ErrNothingToRefund       = errors.New("no tickets to refund")
	ErrDirectPaymentRejected = errors.New("direct payments are not accepted, use BuyTicket")
	ErrEventNotCanceled      = errors.New("refunds are only available for canceled events")
	ErrInvalidQuantity       = errors.New("quantity must be at least one")
	ErrAmountOverflow        = errors.New("amount overflows token precision")
	ErrInvalidAddress        = errors.New("invalid address")
	ErrPayoutPending         = errors.New("a payout is pending resolution")
	ErrNoPendingPayout       = errors.New("no pending payout")
	ErrPayoutUnconfirmed     = errors.New("payout was sent but could not be recorded")
)
