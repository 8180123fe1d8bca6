package domain

import "errors"

var (
	// ErrInvalidSchedule is returned when the requested budget/duration/frequency
	// combination derives zero swaps or a zero per-swap amount. Not retriable.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrInvalidConfiguration is returned for a bad asset pair or empty identities.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrOrderNotFound is returned for any id not present in the active set,
	// including ids of orders that have been terminated.
	ErrOrderNotFound = errors.New("order not found")

	// ErrNotOrderOwner is returned when a caller other than the owner attempts
	// to cancel an order.
	ErrNotOrderOwner = errors.New("not order owner")

	// ErrTooEarly is returned when the inter-execution interval has not yet
	// elapsed. Retriable on a later timestamp.
	ErrTooEarly = errors.New("too early")

	// ErrPeriodEnded is returned when the order deadline has passed.
	ErrPeriodEnded = errors.New("period ended")

	// ErrPriceBelowMinimum and ErrPriceAboveMaximum are price-gate rejections.
	// Retriable on a later reading.
	ErrPriceBelowMinimum = errors.New("price below minimum")
	ErrPriceAboveMaximum = errors.New("price above maximum")

	// ErrInsufficientBalance is returned when the accounted balance cannot
	// cover one more swap.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrCustodyTransferFailed wraps funds-custody failures.
	ErrCustodyTransferFailed = errors.New("custody transfer failed")

	// ErrAlreadyInitialized is returned on a repeated one-time initialization.
	ErrAlreadyInitialized = errors.New("already initialized")

	// ErrUnauthorized is returned when a caller other than the trusted agent
	// triggers execution, or a non-admin touches the admin surface.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInsufficientFee is returned when the fee supplied at creation is
	// below the configured per-order fee.
	ErrInsufficientFee = errors.New("insufficient fee")
)

// Retriable reports whether the caller may usefully resubmit the same request
// later: the rejection was about timing or the current price reading, not
// about the request itself.
func Retriable(err error) bool {
	switch {
	case errors.Is(err, ErrTooEarly),
		errors.Is(err, ErrPriceBelowMinimum),
		errors.Is(err, ErrPriceAboveMaximum):
		return true
	}
	return false
}
