package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/BlackLightinger/rsoi-lab-03/internal/breaker"
	"github.com/BlackLightinger/rsoi-lab-03/internal/domain"
)

// TicketsClient talks to the tickets store service.
type TicketsClient struct {
	api
}

// NewTickets returns a TicketsClient rooted at base. Reads are guarded by cb;
// Create and Delete are not.
func NewTickets(base string, hc *http.Client, cb *breaker.Breaker) *TicketsClient {
	return &TicketsClient{api: newAPI(TicketServiceName, base, hc, cb)}
}

// ForUser lists all tickets belonging to username.
func (c *TicketsClient) ForUser(ctx context.Context, username string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	if _, err := c.get(ctx, "/tickets/user/"+url.PathEscape(username), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ByUID looks up a ticket by its unique identifier. A missing ticket yields
// (nil, nil).
func (c *TicketsClient) ByUID(ctx context.Context, uid uuid.UUID) (*domain.Ticket, error) {
	var out domain.Ticket
	found, err := c.get(ctx, "/tickets/"+uid.String(), nil, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &out, nil
}

// Create registers a new PAID ticket. The write is never short-circuited by
// the breaker. A duplicate UID surfaces as *DownstreamError with status 403.
func (c *TicketsClient) Create(ctx context.Context, req domain.TicketCreateRequest) error {
	return c.send(ctx, http.MethodPost, "/tickets", req)
}

// Delete removes the ticket record. The write is never short-circuited by
// the breaker.
func (c *TicketsClient) Delete(ctx context.Context, uid uuid.UUID) error {
	return c.send(ctx, http.MethodDelete, "/tickets/"+uid.String(), nil)
}
