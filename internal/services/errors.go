// Package services implements the gateway's orchestration layer: the
// purchase and cancel sagas, the bounded compensation retry, and the
// best-effort aggregation views. This file centralizes the service-level
// error values so handlers can translate them into HTTP responses
// consistently.
package services

import "errors"

var (
	// ErrFlightNotFound indicates the purchase referenced an unknown flight
	// number. Nothing has been written when it is returned.
	ErrFlightNotFound = errors.New("flight not found")

	// ErrUserNotFound indicates the caller has no loyalty account.
	ErrUserNotFound = errors.New("user does not exist")

	// ErrTicketNotFound indicates the requested ticket does not exist.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTicketNotOwned indicates the ticket belongs to a different user.
	ErrTicketNotOwned = errors.New("ticket does not belong to user")

	// ErrTicketNotCancellable indicates the ticket is not in the PAID state
	// and therefore cannot be cancelled (again).
	ErrTicketNotCancellable = errors.New("ticket cannot be cancelled")
)
