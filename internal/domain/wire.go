package domain

import (
	"time"

	"github.com/google/uuid"
)

// FlightInfo is the flights catalog's wire representation of a single flight.
// Airport labels are rendered as "City Name".
type FlightInfo struct {
	FlightNumber string    `json:"flightNumber"`
	FromAirport  string    `json:"fromAirport"`
	ToAirport    string    `json:"toAirport"`
	Date         time.Time `json:"date"`
	Price        int       `json:"price"`
}

// FlightPage is one page of the flights catalog listing.
type FlightPage struct {
	Page          int          `json:"page"`
	PageSize      int          `json:"pageSize"`
	TotalElements int64        `json:"totalElements"`
	Items         []FlightInfo `json:"items"`
}

// TicketCreateRequest is the payload accepted by the tickets store on create.
type TicketCreateRequest struct {
	TicketUID    uuid.UUID `json:"ticketUid"`
	Username     string    `json:"username"`
	FlightNumber string    `json:"flightNumber"`
	Price        int       `json:"price"`
}

// TransactionRequest is the payload accepted by the loyalty ledger when
// appending a history entry.
type TransactionRequest struct {
	PrivilegeID   int           `json:"privilege_id"`
	TicketUID     uuid.UUID     `json:"ticket_uid"`
	Datetime      time.Time     `json:"datetime"`
	BalanceDiff   int           `json:"balance_diff"`
	OperationType OperationType `json:"operation_type"`
}
