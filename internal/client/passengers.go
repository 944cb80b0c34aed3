package client

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type PassengerLookup struct {
	Outcome Outcome
	Err     error
}

type passengerExistsResponse struct {
	PassengerID int64 `json:"passengerId"`
	Exists      bool  `json:"exists"`
}

type PassengerDirectoryClient struct {
	baseURL string
	http    *http.Client
}

func NewPassengerDirectoryClient(baseURL string, timeout time.Duration) *PassengerDirectoryClient {
	return &PassengerDirectoryClient{baseURL: trimBase(baseURL), http: newHTTPClient(timeout)}
}

// LookupPassenger asks GET {base}/passengers/{id}/exists. A 404 without the
// directory's passenger_not_found code is treated as unavailable.
func (c *PassengerDirectoryClient) LookupPassenger(ctx context.Context, id int64) PassengerLookup {
	var body passengerExistsResponse
	code, errCode, err := getJSON(ctx, c.http, fmt.Sprintf("%s/passengers/%d/exists", c.baseURL, id), &body)
	switch {
	case err != nil:
		return PassengerLookup{Outcome: Unavailable, Err: err}
	case code == http.StatusNotFound && errCode == codePassengerNotFound:
		return PassengerLookup{Outcome: NotFound}
	case code != http.StatusOK:
		return PassengerLookup{Outcome: Unavailable, Err: fmt.Errorf("passenger directory returned %d %q", code, errCode)}
	case !body.Exists:
		return PassengerLookup{Outcome: NotFound}
	}
	return PassengerLookup{Outcome: Found}
}
