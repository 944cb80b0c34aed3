package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/skynet/internal/domain"
)

// FlightLookup is the catalog's answer for one flight. Status is only set
// when Outcome is Found.
type FlightLookup struct {
	Outcome Outcome
	Status  domain.FlightStatus
	Err     error
}

type flightStatusResponse struct {
	FlightID int64  `json:"flightId"`
	Status   string `json:"status"`
}

type FlightCatalogClient struct {
	baseURL string
	http    *http.Client
}

func NewFlightCatalogClient(baseURL string, timeout time.Duration) *FlightCatalogClient {
	return &FlightCatalogClient{baseURL: trimBase(baseURL), http: newHTTPClient(timeout)}
}

// LookupFlight asks GET {base}/flights/{id}/status. Only a 404 carrying the
// catalog's flight_not_found code means the flight is absent; any other 404
// (wrong base URL, unknown route) is an unavailable catalog.
func (c *FlightCatalogClient) LookupFlight(ctx context.Context, id int64) FlightLookup {
	var body flightStatusResponse
	code, errCode, err := getJSON(ctx, c.http, fmt.Sprintf("%s/flights/%d/status", c.baseURL, id), &body)
	switch {
	case err != nil:
		return FlightLookup{Outcome: Unavailable, Err: err}
	case code == http.StatusNotFound && errCode == codeFlightNotFound:
		return FlightLookup{Outcome: NotFound}
	case code != http.StatusOK:
		return FlightLookup{Outcome: Unavailable, Err: fmt.Errorf("flight catalog returned %d %q", code, errCode)}
	}

	status, err := domain.ParseFlightStatus(body.Status)
	if err != nil {
		return FlightLookup{Outcome: Unavailable, Err: err}
	}
	return FlightLookup{Outcome: Found, Status: status}
}
