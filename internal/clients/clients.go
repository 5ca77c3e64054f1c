// Package clients provides typed REST clients for the gateway's three
// collaborators: the flights catalog, the tickets store, and the loyalty
// ledger.
//
// Error semantics shared by all three clients:
//   - A 404 on a lookup-style call maps to a nil result with a nil error,
//     never to an error value.
//   - Any other non-success status maps to *DownstreamError and, on guarded
//     calls, counts as a failure against the collaborator's breaker.
//   - Read operations (list/get) run through the collaborator's circuit
//     breaker; write operations call the collaborator directly so that a
//     saga step that needs to write is never short-circuited by a breaker
//     that tripped on reads.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BlackLightinger/rsoi-lab-03/internal/breaker"
)

// Collaborator names used for breaker identification and error messages.
const (
	FlightsServiceName   = "Flights Service"
	TicketServiceName    = "Ticket Service"
	PrivilegeServiceName = "Bonus Service"
)

// DownstreamError reports a non-success, non-404 response from a collaborator.
type DownstreamError struct {
	Service string
	Status  int
}

// Error implements the error interface.
func (e *DownstreamError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.Service, e.Status)
}

// DefaultHTTPClient returns the http.Client shared by the collaborator
// clients, with a bounded per-request timeout.
func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Second}
}

// api carries the plumbing shared by the three collaborator clients.
type api struct {
	name string
	base string
	http *http.Client
	cb   *breaker.Breaker
}

func newAPI(name, base string, hc *http.Client, cb *breaker.Breaker) api {
	if hc == nil {
		hc = DefaultHTTPClient()
	}
	return api{name: name, base: strings.TrimRight(base, "/"), http: hc, cb: cb}
}

// get performs a breaker-guarded GET of path and decodes a 2xx body into out.
// It reports found=false on a 404 without recording a breaker failure.
func (a *api) get(ctx context.Context, path string, query url.Values, out any) (found bool, err error) {
	err = a.cb.Do(func() error {
		ok, gerr := a.getDirect(ctx, path, query, out)
		found = ok
		return gerr
	})
	return found, err
}

// getDirect is the unguarded variant of get, used inside the breaker closure.
func (a *api) getDirect(ctx context.Context, path string, query url.Values, out any) (bool, error) {
	u := a.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return false, &DownstreamError{Service: a.name, Status: resp.StatusCode}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("%s: decode response: %w", a.name, err)
		}
	}
	return true, nil
}

// send performs an unguarded write (POST/DELETE) with an optional JSON body.
// Any non-2xx status maps to *DownstreamError carrying the response code.
func (a *api) send(ctx context.Context, method, path string, body any) error {
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &DownstreamError{Service: a.name, Status: resp.StatusCode}
	}
	return nil
}
