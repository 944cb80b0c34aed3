// Package client holds the HTTP clients the booking service uses to reach the
// flight catalog and the passenger directory. Both return a tagged outcome
// instead of an error so each call site can choose how much failure to tolerate.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Outcome int

const (
	Found Outcome = iota
	NotFound
	Unavailable
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	default:
		return "unavailable"
	}
}

const defaultTimeout = 300 * time.Millisecond

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Error codes the SkyNet services put in their {error, code} bodies.
const (
	codeFlightNotFound    = "flight_not_found"
	codePassengerNotFound = "passenger_not_found"
)

type errorBody struct {
	Code string `json:"code"`
}

// getJSON performs a GET and decodes a 200 body into dest. For any other
// status it returns the error code from the body, if there is one. Transport
// and decode failures come back as err.
func getJSON(ctx context.Context, c *http.Client, url string, dest interface{}) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body errorBody
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return resp.StatusCode, body.Code, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return resp.StatusCode, "", fmt.Errorf("decode %s: %w", url, err)
	}
	return resp.StatusCode, "", nil
}

func trimBase(base string) string {
	return strings.TrimRight(base, "/")
}
