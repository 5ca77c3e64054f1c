package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/BlackLightinger/rsoi-lab-03/internal/breaker"
	"github.com/BlackLightinger/rsoi-lab-03/internal/domain"
)

// PrivilegesClient talks to the loyalty ledger service.
type PrivilegesClient struct {
	api
}

// NewPrivileges returns a PrivilegesClient rooted at base. Reads are guarded
// by cb; ledger writes (append/delete) are not.
func NewPrivileges(base string, hc *http.Client, cb *breaker.Breaker) *PrivilegesClient {
	return &PrivilegesClient{api: newAPI(PrivilegeServiceName, base, hc, cb)}
}

// Account looks up the loyalty account for username. A missing account
// yields (nil, nil).
func (c *PrivilegesClient) Account(ctx context.Context, username string) (*domain.Privilege, error) {
	var out domain.Privilege
	found, err := c.get(ctx, "/privilege/"+url.PathEscape(username), nil, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &out, nil
}

// History lists all ledger entries for the account.
func (c *PrivilegesClient) History(ctx context.Context, username string) ([]domain.PrivilegeHistory, error) {
	var out []domain.PrivilegeHistory
	if _, err := c.get(ctx, "/privilege/"+url.PathEscape(username)+"/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Transaction looks up the single ledger entry tied to a ticket UID.
// A missing entry yields (nil, nil).
func (c *PrivilegesClient) Transaction(ctx context.Context, username string, uid uuid.UUID) (*domain.PrivilegeHistory, error) {
	var out domain.PrivilegeHistory
	found, err := c.get(ctx, "/privilege/"+url.PathEscape(username)+"/history/"+uid.String(), nil, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &out, nil
}

// AddTransaction appends a ledger entry, mutating the account balance by the
// entry's signed diff. The write is never short-circuited by the breaker.
func (c *PrivilegesClient) AddTransaction(ctx context.Context, username string, req domain.TransactionRequest) error {
	return c.send(ctx, http.MethodPost, "/privilege/"+url.PathEscape(username)+"/history", req)
}

// DeleteTransaction removes the ledger entry tied to a ticket UID, restoring
// the account to its pre-entry balance. The write is never short-circuited
// by the breaker.
func (c *PrivilegesClient) DeleteTransaction(ctx context.Context, username string, uid uuid.UUID) error {
	return c.send(ctx, http.MethodDelete, "/privilege/"+url.PathEscape(username)+"/history/"+uid.String(), nil)
}
