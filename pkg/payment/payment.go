// Package payment wraps the PayPal and Stripe server APIs used to confirm donations.
package payment

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrNotConfigured    = errors.New("payment provider not configured")
)

// RejectedError is a request the provider refused (bad parameters, declined
// card). Message comes from the provider and is safe to show to the caller.
type RejectedError struct {
	Provider string
	Message  string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Provider, e.Message)
}
