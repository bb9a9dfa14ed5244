package checkout

import (
	"errors"
	"fmt"
)

// ErrEmptyCart blocks checkout entry; the caller recovers by sending the
// customer back to the product listing.
var ErrEmptyCart = errors.New("cart is empty")

// ValidationError names the missing or malformed field so the caller can
// re-prompt exactly that input.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// GatewayError is a network or server failure while submitting an order.
// The cart is left untouched so the customer can retry without re-entering
// items; there is no automatic retry.
type GatewayError struct {
	Message string
}

func (e *GatewayError) Error() string {
	return "order submission failed: " + e.Message
}
