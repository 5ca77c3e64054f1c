// Gateway orchestration.
//
// The gateway never talks to two collaborators concurrently: every operation
// is a strictly ordered sequence of collaborator calls, with cross-service
// consistency supplied by write ordering and compensating deletes rather
// than by a shared transaction.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/BlackLightinger/rsoi-lab-03/internal/breaker"
	"github.com/BlackLightinger/rsoi-lab-03/internal/domain"
)

//
// Collaborator contracts
//

// FlightsAPI is the flights catalog surface consumed by the gateway.
type FlightsAPI interface {
	// List returns one page of the catalog.
	List(ctx context.Context, page, size int) (*domain.FlightPage, error)
	// ByNumber resolves a flight; (nil, nil) when unknown.
	ByNumber(ctx context.Context, number string) (*domain.FlightInfo, error)
	// ByNumberOrDefault substitutes a placeholder flight when the flights
	// breaker is open.
	ByNumberOrDefault(ctx context.Context, number string) (*domain.FlightInfo, error)
}

// TicketsAPI is the tickets store surface consumed by the gateway.
type TicketsAPI interface {
	ForUser(ctx context.Context, username string) ([]domain.Ticket, error)
	ByUID(ctx context.Context, uid uuid.UUID) (*domain.Ticket, error)
	Create(ctx context.Context, req domain.TicketCreateRequest) error
	Delete(ctx context.Context, uid uuid.UUID) error
}

// PrivilegesAPI is the loyalty ledger surface consumed by the gateway.
type PrivilegesAPI interface {
	Account(ctx context.Context, username string) (*domain.Privilege, error)
	History(ctx context.Context, username string) ([]domain.PrivilegeHistory, error)
	Transaction(ctx context.Context, username string, uid uuid.UUID) (*domain.PrivilegeHistory, error)
	AddTransaction(ctx context.Context, username string, req domain.TransactionRequest) error
	DeleteTransaction(ctx context.Context, username string, uid uuid.UUID) error
}

//
// Results
//

// TicketView is a ticket enriched with its flight details.
type TicketView struct {
	TicketUID    uuid.UUID
	FlightNumber string
	FromAirport  string
	ToAirport    string
	Date         time.Time
	Price        int
	Status       domain.TicketStatus
}

// PurchaseRequest carries the caller-supplied purchase parameters. Price is
// accepted for contract compatibility; the catalog's price is authoritative.
type PurchaseRequest struct {
	FlightNumber    string
	Price           int
	PaidFromBalance bool
}

// PurchaseResult is the consolidated outcome of a successful purchase saga.
type PurchaseResult struct {
	TicketUID     uuid.UUID
	FlightNumber  string
	FromAirport   string
	ToAirport     string
	Date          time.Time
	Price         int
	PaidByMoney   int
	PaidByBonuses int
	Status        domain.TicketStatus
	Privilege     domain.Privilege
}

// Profile is the best-effort aggregate returned by /me. Privilege is nil when
// the loyalty collaborator is isolated by its breaker.
type Profile struct {
	Tickets   []TicketView
	Privilege *domain.Privilege
}

// PrivilegeInfo is the loyalty balance together with its full history.
type PrivilegeInfo struct {
	Account domain.Privilege
	History []domain.PrivilegeHistory
}

//
// Orchestrator
//

// Gateway coordinates the three collaborators. All operations are sequential;
// the only shared mutable state lives inside the per-collaborator breakers.
type Gateway struct {
	flights    FlightsAPI
	tickets    TicketsAPI
	privileges PrivilegesAPI

	// Bounded compensation retry (cancel saga).
	retryDeadline time.Duration
	retryInterval time.Duration

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	newUID func() uuid.UUID
}

// NewGateway constructs the orchestrator. retryDeadline bounds how long a
// cancellation tolerates an open loyalty breaker before giving up;
// retryInterval is the pause between polls.
func NewGateway(f FlightsAPI, t TicketsAPI, p PrivilegesAPI, retryDeadline, retryInterval time.Duration) *Gateway {
	return &Gateway{
		flights:       f,
		tickets:       t,
		privileges:    p,
		retryDeadline: retryDeadline,
		retryInterval: retryInterval,
		now:           time.Now,
		sleep:         sleepCtx,
		newUID:        uuid.New,
	}
}

// Flights returns one page of the flight catalog.
func (g *Gateway) Flights(ctx context.Context, page, size int) (*domain.FlightPage, error) {
	return g.flights.List(ctx, page, size)
}

// UserTickets lists the caller's tickets enriched with flight details.
// The caller must have a loyalty account.
func (g *Gateway) UserTickets(ctx context.Context, username string) ([]TicketView, error) {
	account, err := g.privileges.Account(ctx, username)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrUserNotFound
	}

	tickets, err := g.tickets.ForUser(ctx, username)
	if err != nil {
		return nil, err
	}
	views := make([]TicketView, 0, len(tickets))
	for _, t := range tickets {
		v, err := g.ticketView(ctx, t, false)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// Ticket returns one ticket, enforcing ownership.
func (g *Gateway) Ticket(ctx context.Context, username string, uid uuid.UUID) (*TicketView, error) {
	t, err := g.tickets.ByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTicketNotFound
	}
	if t.Username != username {
		return nil, ErrTicketNotOwned
	}
	return g.ticketView(ctx, *t, false)
}

// Profile assembles the aggregated user view. Availability is not gated on
// the least-available collaborator: an open loyalty breaker degrades the
// privilege to absent, an open ticket breaker degrades the list to empty.
func (g *Gateway) Profile(ctx context.Context, username string) (*Profile, error) {
	var open *breaker.OpenError

	account, err := g.privileges.Account(ctx, username)
	switch {
	case errors.As(err, &open):
		account = nil
	case err != nil:
		return nil, err
	case account == nil:
		return nil, ErrUserNotFound
	}

	views := []TicketView{}
	tickets, err := g.tickets.ForUser(ctx, username)
	switch {
	case errors.As(err, &open):
		// degraded: empty list
	case err != nil:
		return nil, err
	default:
		for _, t := range tickets {
			v, verr := g.ticketView(ctx, t, true)
			if verr != nil {
				return nil, verr
			}
			views = append(views, *v)
		}
	}

	return &Profile{Tickets: views, Privilege: account}, nil
}

// Privilege returns the loyalty balance and full ledger history.
func (g *Gateway) Privilege(ctx context.Context, username string) (*PrivilegeInfo, error) {
	account, err := g.privileges.Account(ctx, username)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrUserNotFound
	}
	history, err := g.privileges.History(ctx, username)
	if err != nil {
		return nil, err
	}
	return &PrivilegeInfo{Account: *account, History: history}, nil
}

// Purchase runs the purchase saga, strictly ordered:
//
//  1. resolve the flight (unknown → ErrFlightNotFound, nothing written);
//  2. resolve the loyalty account (unknown → ErrUserNotFound);
//  3. compute the payment split and append the ledger entry;
//  4. re-read the account — the ledger collaborator is the source of truth
//     for the post-transaction balance;
//  5. create the PAID ticket record.
//
// The ledger write precedes the ticket write. If a later step fails, the
// ledger entry is compensated with a best-effort delete; a failure of that
// delete is logged and accepted (no second-level retry).
func (g *Gateway) Purchase(ctx context.Context, username string, req PurchaseRequest) (*PurchaseResult, error) {
	flight, err := g.flights.ByNumber(ctx, req.FlightNumber)
	if err != nil {
		return nil, err
	}
	if flight == nil {
		return nil, ErrFlightNotFound
	}

	account, err := g.privileges.Account(ctx, username)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrUserNotFound
	}

	ticketUID := g.newUID()
	purchasedAt := g.now()

	cash := flight.Price
	bonus := 0
	ledgerWritten := false

	if req.PaidFromBalance {
		bonus = min(account.Balance, flight.Price)
		cash = flight.Price - bonus
		if bonus > 0 {
			err = g.privileges.AddTransaction(ctx, username, domain.TransactionRequest{
				PrivilegeID:   account.ID,
				TicketUID:     ticketUID,
				Datetime:      purchasedAt,
				BalanceDiff:   bonus,
				OperationType: domain.OpDebitTheAccount,
			})
			if err != nil {
				return nil, err
			}
			ledgerWritten = true
		}
	} else {
		err = g.privileges.AddTransaction(ctx, username, domain.TransactionRequest{
			PrivilegeID:   account.ID,
			TicketUID:     ticketUID,
			Datetime:      purchasedAt,
			BalanceDiff:   cash / 10,
			OperationType: domain.OpFillInBalance,
		})
		if err != nil {
			return nil, err
		}
		ledgerWritten = true
	}

	updated, err := g.privileges.Account(ctx, username)
	if err != nil {
		g.compensateLedger(ctx, username, ticketUID, ledgerWritten)
		return nil, err
	}
	if updated == nil {
		updated = account
	}

	err = g.tickets.Create(ctx, domain.TicketCreateRequest{
		TicketUID:    ticketUID,
		Username:     username,
		FlightNumber: flight.FlightNumber,
		Price:        cash,
	})
	if err != nil {
		g.compensateLedger(ctx, username, ticketUID, ledgerWritten)
		return nil, err
	}

	return &PurchaseResult{
		TicketUID:     ticketUID,
		FlightNumber:  flight.FlightNumber,
		FromAirport:   flight.FromAirport,
		ToAirport:     flight.ToAirport,
		Date:          purchasedAt,
		Price:         flight.Price,
		PaidByMoney:   cash,
		PaidByBonuses: bonus,
		Status:        domain.TicketPaid,
		Privilege:     *updated,
	}, nil
}

// Cancel runs the cancel saga: ownership and status checks, then the
// compensating ledger delete (via the bounded retry poll), then a hard
// delete of the ticket record.
func (g *Gateway) Cancel(ctx context.Context, username string, uid uuid.UUID) error {
	t, err := g.tickets.ByUID(ctx, uid)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrTicketNotFound
	}
	if t.Username != username {
		return ErrTicketNotOwned
	}
	if t.Status != domain.TicketPaid {
		return ErrTicketNotCancellable
	}

	if err := g.compensateWithRetry(ctx, username, uid); err != nil {
		return err
	}
	return g.tickets.Delete(ctx, uid)
}

// compensateWithRetry deletes the ledger entry tied to uid, if one exists.
// An open loyalty breaker on the lookup is tolerated by sleeping and polling
// again until the deadline expires; any other fault aborts immediately. The
// first poll happens with no delay, so a healthy loyalty service is hit
// exactly once.
func (g *Gateway) compensateWithRetry(ctx context.Context, username string, uid uuid.UUID) error {
	deadline := g.now().Add(g.retryDeadline)
	for {
		tx, err := g.privileges.Transaction(ctx, username, uid)
		if err == nil {
			if tx == nil {
				return nil
			}
			return g.privileges.DeleteTransaction(ctx, username, uid)
		}

		var open *breaker.OpenError
		if !errors.As(err, &open) {
			return err
		}
		if !g.now().Add(g.retryInterval).Before(deadline) {
			return err
		}
		if serr := g.sleep(ctx, g.retryInterval); serr != nil {
			return serr
		}
	}
}

// compensateLedger best-effort deletes the purchase-time ledger entry after a
// later saga step failed. Failures are logged, not retried: a double fault
// leaves the ledger entry in place.
func (g *Gateway) compensateLedger(ctx context.Context, username string, uid uuid.UUID, written bool) {
	if !written {
		return
	}
	if err := g.privileges.DeleteTransaction(ctx, username, uid); err != nil {
		log.Error().
			Err(err).
			Str("username", username).
			Str("ticket_uid", uid.String()).
			Msg("ledger compensation failed, entry leaked")
	}
}

// ticketView enriches a ticket with its flight details. With degraded=true a
// placeholder flight is substituted when the flights breaker is open.
func (g *Gateway) ticketView(ctx context.Context, t domain.Ticket, degraded bool) (*TicketView, error) {
	lookup := g.flights.ByNumber
	if degraded {
		lookup = g.flights.ByNumberOrDefault
	}
	flight, err := lookup(ctx, t.FlightNumber)
	if err != nil {
		return nil, err
	}
	if flight == nil {
		return nil, ErrFlightNotFound
	}
	return &TicketView{
		TicketUID:    t.TicketUID,
		FlightNumber: t.FlightNumber,
		FromAirport:  flight.FromAirport,
		ToAirport:    flight.ToAirport,
		Date:         flight.Date,
		Price:        t.Price,
		Status:       t.Status,
	}, nil
}

// sleepCtx sleeps for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
