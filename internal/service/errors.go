package service

import (
	"errors"
	"fmt"
)

var (
	ErrGatewayNotConfigured = errors.New("payment gateway is not configured")
	ErrUnknownAction        = errors.New("unknown action")
	ErrPaymentNotFound      = errors.New("payment not found")
)

// PriceMismatchError is a client-submitted amount that does not match
// the server-side price table, i.e. a tampering attempt.
type PriceMismatchError struct {
	Expected int64
	Received int64
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("invalid payment amount: expected %d, received %d", e.Expected, e.Received)
}

// ValidationError carries per-field schema errors.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// GatewayRejectionError is a request the gateway refused; distinct from
// transport or database failures so the handler can answer 400.
type GatewayRejectionError struct {
	Reason string
}

func (e *GatewayRejectionError) Error() string {
	return "gateway rejected request: " + e.Reason
}
