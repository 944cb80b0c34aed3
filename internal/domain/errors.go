package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the services wraps exactly one of them.
var (
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrNotFound              = errors.New("not found")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrDependencyDegraded    = errors.New("dependency degraded")
)

var (
	ErrInvalidFlightID         = fmt.Errorf("%w: flight id must be positive", ErrInvalidArgument)
	ErrInvalidFlight           = fmt.Errorf("%w: flight", ErrInvalidArgument)
	ErrInvalidFlightStatus     = fmt.Errorf("%w: unknown flight status", ErrInvalidArgument)
	ErrIllegalStatusTransition = fmt.Errorf("%w: illegal flight status transition", ErrInvalidArgument)
	ErrInvalidLuggage          = fmt.Errorf("%w: luggage count and weight must not be negative", ErrInvalidArgument)
	ErrInvalidID               = fmt.Errorf("%w: id must be positive", ErrInvalidArgument)

	ErrFlightNotFound    = fmt.Errorf("flight %w", ErrNotFound)
	ErrFlightNotBookable = fmt.Errorf("flight %w or not open for booking", ErrNotFound)
	ErrPassengerNotFound = fmt.Errorf("passenger %w", ErrNotFound)
	ErrBookingNotFound   = fmt.Errorf("booking %w", ErrNotFound)

	ErrDuplicateFlight         = fmt.Errorf("%w: a flight with the same carrier, route and departure date already exists", ErrConflict)
	ErrDuplicatePNR            = fmt.Errorf("%w: pnr already taken", ErrConflict)
	ErrDuplicateIdempotencyKey = fmt.Errorf("%w: idempotency key already used", ErrConflict)
	ErrPNRExhausted            = fmt.Errorf("%w: could not allocate a unique pnr", ErrConflict)
	ErrFlightStatusChanged     = fmt.Errorf("%w: flight status changed concurrently", ErrConflict)
	ErrIdempotencyConflict     = fmt.Errorf("%w: idempotency key reused with a different request", ErrConflict)

	ErrFlightCatalogUnavailable   = fmt.Errorf("flight catalog: %w", ErrDependencyUnavailable)
	ErrPassengerDirectoryDegraded = fmt.Errorf("passenger directory: %w", ErrDependencyDegraded)
)
