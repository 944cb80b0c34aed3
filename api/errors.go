package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/skynet/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	codeInvalidRequestBody    = "invalid_request_body"
	codeInvalidID             = "invalid_id"
	codeInvalidArgument       = "invalid_argument"
	codeInvalidStatus         = "invalid_status"
	codeIllegalTransition     = "illegal_status_transition"
	codeFlightNotFound        = "flight_not_found"
	codeFlightNotBookable     = "flight_not_bookable"
	codePassengerNotFound     = "passenger_not_found"
	codeBookingNotFound       = "booking_not_found"
	codeNotFound              = "not_found"
	codeDuplicateFlight       = "duplicate_flight"
	codePNRExhausted          = "pnr_exhausted"
	codeStatusChanged         = "flight_status_changed"
	codeIdempotencyConflict   = "idempotency_key_conflict"
	codeConflict              = "conflict"
	codeDependencyUnavailable = "dependency_unavailable"
	codeInternalError         = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg, Code: code})
}

// specificCodes is checked in order before falling back to the category.
var specificCodes = []struct {
	err  error
	code string
}{
	{domain.ErrInvalidFlightID, codeInvalidID},
	{domain.ErrInvalidID, codeInvalidID},
	{domain.ErrInvalidFlightStatus, codeInvalidStatus},
	{domain.ErrIllegalStatusTransition, codeIllegalTransition},
	{domain.ErrFlightNotBookable, codeFlightNotBookable},
	{domain.ErrFlightNotFound, codeFlightNotFound},
	{domain.ErrPassengerNotFound, codePassengerNotFound},
	{domain.ErrBookingNotFound, codeBookingNotFound},
	{domain.ErrDuplicateFlight, codeDuplicateFlight},
	{domain.ErrPNRExhausted, codePNRExhausted},
	{domain.ErrFlightStatusChanged, codeStatusChanged},
	{domain.ErrIdempotencyConflict, codeIdempotencyConflict},
}

// statusFor maps an error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	code := ""
	for _, sc := range specificCodes {
		if errors.Is(err, sc.err) {
			code = sc.code
			break
		}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, orDefault(code, codeInvalidArgument)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, orDefault(code, codeNotFound)
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, orDefault(code, codeConflict)
	case errors.Is(err, domain.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable, codeDependencyUnavailable
	}
	return http.StatusInternalServerError, codeInternalError
}

func respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	writeError(c, status, code, msg)
}

func orDefault(code, fallback string) string {
	if code == "" {
		return fallback
	}
	return code
}
