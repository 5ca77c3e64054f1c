// Gateway HTTP handlers.
//
// This file exposes the public REST endpoints:
//   - GET    /flights              (paginated flight catalog)
//   - GET    /tickets              (caller's tickets)
//   - GET    /tickets/{ticketUid}  (ticket detail, ownership-checked)
//   - POST   /tickets              (purchase saga)
//   - DELETE /tickets/{ticketUid}  (cancel saga)
//   - GET    /me                   (aggregated profile, best-effort)
//   - GET    /privilege            (loyalty balance + history)
//
// Handlers are transport-thin: they extract the caller identity from the
// X-User-Name header (trusted as-is), call the orchestrator, and translate
// its results and errors into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BlackLightinger/rsoi-lab-03/internal/breaker"
	"github.com/BlackLightinger/rsoi-lab-03/internal/clients"
	"github.com/BlackLightinger/rsoi-lab-03/internal/domain"
	"github.com/BlackLightinger/rsoi-lab-03/internal/services"
)

// headerUsername is the request header carrying the caller's identity.
const headerUsername = "X-User-Name"

// GatewayService defines the orchestration operations consumed by the HTTP
// layer. Implementations must be safe for concurrent use.
type GatewayService interface {
	Flights(ctx context.Context, page, size int) (*domain.FlightPage, error)
	UserTickets(ctx context.Context, username string) ([]services.TicketView, error)
	Ticket(ctx context.Context, username string, uid uuid.UUID) (*services.TicketView, error)
	Profile(ctx context.Context, username string) (*services.Profile, error)
	Privilege(ctx context.Context, username string) (*services.PrivilegeInfo, error)
	Purchase(ctx context.Context, username string, req services.PurchaseRequest) (*services.PurchaseResult, error)
	Cancel(ctx context.Context, username string, uid uuid.UUID) error
}

// Handlers groups the gateway endpoints around one orchestrator.
type Handlers struct {
	svc GatewayService
}

// New constructs a Handlers instance bound to the given orchestrator.
func New(svc GatewayService) *Handlers {
	return &Handlers{svc: svc}
}

//
// DTOs
//

// TicketResponse is a ticket enriched with flight details.
type TicketResponse struct {
	TicketUID    uuid.UUID           `json:"ticketUid"`
	FlightNumber string              `json:"flightNumber"`
	FromAirport  string              `json:"fromAirport"`
	ToAirport    string              `json:"toAirport"`
	Date         time.Time           `json:"date"`
	Price        int                 `json:"price"`
	Status       domain.TicketStatus `json:"status"`
}

// PrivilegeShortInfo is the loyalty snapshot embedded in purchase and
// profile responses.
type PrivilegeShortInfo struct {
	Balance int                    `json:"balance"`
	Status  domain.PrivilegeStatus `json:"status"`
}

// TicketPurchaseRequest is the JSON payload of POST /tickets.
type TicketPurchaseRequest struct {
	FlightNumber    string `json:"flightNumber" binding:"required"`
	Price           int    `json:"price"`
	PaidFromBalance bool   `json:"paidFromBalance"`
}

// TicketPurchaseResponse is the consolidated purchase result.
type TicketPurchaseResponse struct {
	TicketUID     uuid.UUID           `json:"ticketUid"`
	FlightNumber  string              `json:"flightNumber"`
	FromAirport   string              `json:"fromAirport"`
	ToAirport     string              `json:"toAirport"`
	Date          time.Time           `json:"date"`
	Price         int                 `json:"price"`
	PaidByMoney   int                 `json:"paidByMoney"`
	PaidByBonuses int                 `json:"paidByBonuses"`
	Status        domain.TicketStatus `json:"status"`
	Privilege     PrivilegeShortInfo  `json:"privilege"`
}

// UserInfoResponse is the aggregated profile. Privilege is omitted when the
// loyalty collaborator is unavailable.
type UserInfoResponse struct {
	Tickets   []TicketResponse    `json:"tickets"`
	Privilege *PrivilegeShortInfo `json:"privilege,omitempty"`
}

// BalanceHistoryItem is one loyalty ledger entry on the wire.
type BalanceHistoryItem struct {
	Date          time.Time            `json:"date"`
	TicketUID     uuid.UUID            `json:"ticketUid"`
	BalanceDiff   int                  `json:"balanceDiff"`
	OperationType domain.OperationType `json:"operationType"`
}

// PrivilegeInfoResponse is the loyalty balance plus full history.
type PrivilegeInfoResponse struct {
	Balance int                    `json:"balance"`
	Status  domain.PrivilegeStatus `json:"status"`
	History []BalanceHistoryItem   `json:"history"`
}

//
// Endpoints
//

// ListFlights handles GET /flights.
func (h *Handlers) ListFlights(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	flights, err := h.svc.Flights(c.Request.Context(), page, size)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, flights)
}

// ListUserTickets handles GET /tickets.
func (h *Handlers) ListUserTickets(c *gin.Context) {
	username, okUser := h.username(c)
	if !okUser {
		return
	}
	views, err := h.svc.UserTickets(c.Request.Context(), username)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, ticketResponses(views))
}

// GetTicket handles GET /tickets/{ticketUid}.
func (h *Handlers) GetTicket(c *gin.Context) {
	username, okUser := h.username(c)
	if !okUser {
		return
	}
	uid, err := uuid.Parse(c.Param("ticketUid"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ticketUid must be a UUID")
		return
	}
	view, err := h.svc.Ticket(c.Request.Context(), username, uid)
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, http.StatusOK, ticketResponse(*view))
}

// PurchaseTicket handles POST /tickets.
func (h *Handlers) PurchaseTicket(c *gin.Context) {
	username, okUser := h.username(c)
	if !okUser {
		return
	}
	var req TicketPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "Data validation failed", ErrorDescription{
			Field: "flightNumber", Error: "required",
		})
		return
	}

	res, err := h.svc.Purchase(c.Request.Context(), username, services.PurchaseRequest{
		FlightNumber:    req.FlightNumber,
		Price:           req.Price,
		PaidFromBalance: req.PaidFromBalance,
	})
	switch {
	case errors.Is(err, services.ErrFlightNotFound):
		failValidation(c, "Data validation failed", ErrorDescription{
			Field: "flightNumber", Error: "flight not found",
		})
		return
	case errors.Is(err, services.ErrUserNotFound):
		failValidation(c, "User does not exist", ErrorDescription{
			Field: headerUsername, Error: "no loyalty account for user",
		})
		return
	case err != nil:
		h.respondError(c, err)
		return
	}

	ok(c, http.StatusOK, TicketPurchaseResponse{
		TicketUID:     res.TicketUID,
		FlightNumber:  res.FlightNumber,
		FromAirport:   res.FromAirport,
		ToAirport:     res.ToAirport,
		Date:          res.Date,
		Price:         res.Price,
		PaidByMoney:   res.PaidByMoney,
		PaidByBonuses: res.PaidByBonuses,
		Status:        res.Status,
		Privilege: PrivilegeShortInfo{
			Balance: res.Privilege.Balance,
			Status:  res.Privilege.Status,
		},
	})
}

// CancelTicket handles DELETE /tickets/{ticketUid}.
func (h *Handlers) CancelTicket(c *gin.Context) {
	username, okUser := h.username(c)
	if !okUser {
		return
	}
	uid, err := uuid.Parse(c.Param("ticketUid"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ticketUid must be a UUID")
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), username, uid); err != nil {
		h.respondError(c, err)
		return
	}
	noContent(c)
}

// Me handles GET /me.
func (h *Handlers) Me(c *gin.Context) {
	username, okUser := h.username(c)
	if !okUser {
		return
	}
	profile, err := h.svc.Profile(c.Request.Context(), username)
	if err != nil {
		h.respondError(c, err)
		return
	}
	resp := UserInfoResponse{Tickets: ticketResponses(profile.Tickets)}
	if profile.Privilege != nil {
		resp.Privilege = &PrivilegeShortInfo{
			Balance: profile.Privilege.Balance,
			Status:  profile.Privilege.Status,
		}
	}
	ok(c, http.StatusOK, resp)
}

// GetPrivilege handles GET /privilege.
func (h *Handlers) GetPrivilege(c *gin.Context) {
	username, okUser := h.username(c)
	if !okUser {
		return
	}
	info, err := h.svc.Privilege(c.Request.Context(), username)
	if err != nil {
		h.respondError(c, err)
		return
	}
	history := make([]BalanceHistoryItem, 0, len(info.History))
	for _, entry := range info.History {
		history = append(history, BalanceHistoryItem{
			Date:          entry.Datetime,
			TicketUID:     entry.TicketUID,
			BalanceDiff:   entry.BalanceDiff,
			OperationType: entry.OperationType,
		})
	}
	ok(c, http.StatusOK, PrivilegeInfoResponse{
		Balance: info.Account.Balance,
		Status:  info.Account.Status,
		History: history,
	})
}

//
// Helpers
//

// username extracts the caller identity from the X-User-Name header. The
// value is trusted without verification; an absent header is a validation
// failure.
func (h *Handlers) username(c *gin.Context) (string, bool) {
	username := c.GetHeader(headerUsername)
	if username == "" {
		failValidation(c, "Data validation failed", ErrorDescription{
			Field: headerUsername, Error: "required header",
		})
		return "", false
	}
	return username, true
}

// respondError translates orchestrator errors into HTTP responses.
// Breaker-open faults become a uniform "{service} unavailable" 503 at this
// boundary.
func (h *Handlers) respondError(c *gin.Context, err error) {
	var open *breaker.OpenError
	var downstream *clients.DownstreamError

	switch {
	case errors.As(err, &open):
		fail(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, open.Service+" unavailable")
	case errors.Is(err, services.ErrTicketNotFound),
		errors.Is(err, services.ErrFlightNotFound),
		errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrTicketNotOwned):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, services.ErrTicketNotCancellable):
		fail(c, http.StatusBadRequest, ErrCodeNotCancellable, err.Error())
	case errors.As(err, &downstream):
		fail(c, http.StatusBadGateway, ErrCodeDownstream, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}

func ticketResponse(v services.TicketView) TicketResponse {
	return TicketResponse{
		TicketUID:    v.TicketUID,
		FlightNumber: v.FlightNumber,
		FromAirport:  v.FromAirport,
		ToAirport:    v.ToAirport,
		Date:         v.Date,
		Price:        v.Price,
		Status:       v.Status,
	}
}

func ticketResponses(views []services.TicketView) []TicketResponse {
	out := make([]TicketResponse, 0, len(views))
	for _, v := range views {
		out = append(out, ticketResponse(v))
	}
	return out
}
