// Package handlers defines the stable error codes carried by the gateway's
// error envelope. Codes are lowercase snake_case; generic ones mirror HTTP
// status semantics, the rest name saga-specific outcomes.
package handlers

const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeForbidden          = "forbidden"
	ErrCodeNotFound           = "not_found"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
	ErrCodeInternal           = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"

	// Saga-specific:
	ErrCodeDownstream     = "downstream_error"
	ErrCodeNotCancellable = "ticket_not_cancellable"
)
