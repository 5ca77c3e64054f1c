// Package domain defines the persistence models shared by the flights
// catalog, the tickets store, and the loyalty ledger. These types are mapped
// with GORM and serialized with snake_case field names on the collaborator
// wire, matching the relational column names.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus enumerates the lifecycle states of a ticket.
type TicketStatus string

const (
	TicketPaid     TicketStatus = "PAID"
	TicketCanceled TicketStatus = "CANCELED"
)

// Valid reports whether s is a known ticket status.
func (s TicketStatus) Valid() bool {
	return s == TicketPaid || s == TicketCanceled
}

// PrivilegeStatus enumerates the loyalty tiers.
type PrivilegeStatus string

const (
	StatusBronze PrivilegeStatus = "BRONZE"
	StatusSilver PrivilegeStatus = "SILVER"
	StatusGold   PrivilegeStatus = "GOLD"
)

// Valid reports whether s is a known loyalty tier.
func (s PrivilegeStatus) Valid() bool {
	return s == StatusBronze || s == StatusSilver || s == StatusGold
}

// OperationType enumerates the ledger entry kinds. FILL_IN_BALANCE increases
// the account balance by the entry's diff, DEBIT_THE_ACCOUNT decreases it.
type OperationType string

const (
	OpFillInBalance   OperationType = "FILL_IN_BALANCE"
	OpDebitTheAccount OperationType = "DEBIT_THE_ACCOUNT"
)

// Valid reports whether op is a known ledger operation.
func (op OperationType) Valid() bool {
	return op == OpFillInBalance || op == OpDebitTheAccount
}

// Signed returns diff with the sign the operation applies to a balance.
func (op OperationType) Signed(diff int) int {
	if op == OpDebitTheAccount {
		return -diff
	}
	return diff
}

// Airport is a row of the flights catalog's airport table.
type Airport struct {
	ID      int    `json:"id"      gorm:"primaryKey"`
	Name    string `json:"name"    gorm:"type:varchar(255)"`
	City    string `json:"city"    gorm:"type:varchar(255)"`
	Country string `json:"country" gorm:"type:varchar(255)"`
}

// TableName returns the database table name for Airport.
func (Airport) TableName() string { return "airport" }

// Flight is a row of the flights catalog. The airport associations are used
// to render the human-readable "City Name" labels on the wire.
type Flight struct {
	ID            int       `json:"id"              gorm:"primaryKey"`
	FlightNumber  string    `json:"flight_number"   gorm:"type:varchar(20);not null;index"`
	Datetime      time.Time `json:"datetime"`
	FromAirportID int       `json:"from_airport_id" gorm:"index"`
	ToAirportID   int       `json:"to_airport_id"   gorm:"index"`
	Price         int       `json:"price"           gorm:"not null"`

	FromAirport Airport `json:"-" gorm:"foreignKey:FromAirportID;references:ID"`
	ToAirport   Airport `json:"-" gorm:"foreignKey:ToAirportID;references:ID"`
}

// TableName returns the database table name for Flight.
func (Flight) TableName() string { return "flight" }

// Ticket is a row of the tickets store. TicketUID is the caller-supplied
// unique identifier; the numeric ID is internal to the table.
type Ticket struct {
	ID           int          `json:"id"            gorm:"primaryKey"`
	TicketUID    uuid.UUID    `json:"ticket_uid"    gorm:"type:char(36);not null;uniqueIndex"`
	Username     string       `json:"username"      gorm:"type:varchar(80);not null;index"`
	FlightNumber string       `json:"flight_number" gorm:"type:varchar(20);not null"`
	Price        int          `json:"price"         gorm:"not null"`
	Status       TicketStatus `json:"status"        gorm:"type:varchar(20);not null"`
}

// TableName returns the database table name for Ticket.
func (Ticket) TableName() string { return "ticket" }

// Privilege is a loyalty account. Balance equals the opening balance plus the
// signed sum of all still-present history entries for the account.
type Privilege struct {
	ID       int             `json:"id"       gorm:"primaryKey"`
	Username string          `json:"username" gorm:"type:varchar(80);not null;uniqueIndex"`
	Status   PrivilegeStatus `json:"status"   gorm:"type:varchar(80);not null;default:'BRONZE'"`
	Balance  int             `json:"balance"  gorm:"not null;default:0"`
}

// TableName returns the database table name for Privilege.
func (Privilege) TableName() string { return "privilege" }

// PrivilegeHistory is an append-only ledger entry tied to a ticket UID.
// Deleting the entry restores the account to its pre-entry balance.
type PrivilegeHistory struct {
	ID            int           `json:"id"             gorm:"primaryKey"`
	PrivilegeID   int           `json:"privilege_id"   gorm:"not null;index"`
	TicketUID     uuid.UUID     `json:"ticket_uid"     gorm:"type:char(36);not null;index"`
	Datetime      time.Time     `json:"datetime"`
	BalanceDiff   int           `json:"balance_diff"   gorm:"not null"`
	OperationType OperationType `json:"operation_type" gorm:"type:varchar(32);not null"`

	Privilege Privilege `json:"-" gorm:"foreignKey:PrivilegeID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for PrivilegeHistory.
func (PrivilegeHistory) TableName() string { return "privilege_history" }
