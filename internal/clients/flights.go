package clients

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/BlackLightinger/rsoi-lab-03/internal/breaker"
	"github.com/BlackLightinger/rsoi-lab-03/internal/domain"
)

// FlightsClient talks to the read-only flights catalog service.
type FlightsClient struct {
	api
}

// NewFlights returns a FlightsClient rooted at base. Reads are guarded by cb.
func NewFlights(base string, hc *http.Client, cb *breaker.Breaker) *FlightsClient {
	return &FlightsClient{api: newAPI(FlightsServiceName, base, hc, cb)}
}

// List returns one page of the flight catalog. Zero page/size values are
// omitted from the query and left to the catalog's defaults.
func (c *FlightsClient) List(ctx context.Context, page, size int) (*domain.FlightPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	var out domain.FlightPage
	if _, err := c.get(ctx, "/flights", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ByNumber looks up a flight by its number. A missing flight yields
// (nil, nil).
func (c *FlightsClient) ByNumber(ctx context.Context, number string) (*domain.FlightInfo, error) {
	var out domain.FlightInfo
	found, err := c.get(ctx, "/flights/"+url.PathEscape(number), nil, &out)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &out, nil
}

// ByNumberOrDefault behaves like ByNumber, except that when the flights
// breaker is open it substitutes a placeholder flight instead of failing.
// Used only where degraded display beats an error.
func (c *FlightsClient) ByNumberOrDefault(ctx context.Context, number string) (*domain.FlightInfo, error) {
	flight, err := c.ByNumber(ctx, number)
	if err != nil {
		var open *breaker.OpenError
		if errors.As(err, &open) {
			return &domain.FlightInfo{
				FlightNumber: "XXX",
				FromAirport:  "XXX",
				ToAirport:    "XXX",
				Date:         time.Time{},
				Price:        0,
			}, nil
		}
		return nil, err
	}
	return flight, nil
}
