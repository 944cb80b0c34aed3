package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type FlightStatus string

const (
	FlightStatusOnTime    FlightStatus = "ON_TIME"
	FlightStatusDelayed   FlightStatus = "DELAYED"
	FlightStatusCancelled FlightStatus = "CANCELLED"
	FlightStatusBoarding  FlightStatus = "BOARDING"
	FlightStatusDeparted  FlightStatus = "DEPARTED"
	FlightStatusArrived   FlightStatus = "ARRIVED"
)

// flightTransitions is the flight lifecycle. Statuses with no outgoing edges are terminal.
var flightTransitions = map[FlightStatus][]FlightStatus{
	FlightStatusOnTime:    {FlightStatusDelayed, FlightStatusCancelled, FlightStatusBoarding},
	FlightStatusDelayed:   {FlightStatusOnTime, FlightStatusCancelled, FlightStatusBoarding},
	FlightStatusBoarding:  {FlightStatusDeparted},
	FlightStatusDeparted:  {FlightStatusArrived},
	FlightStatusCancelled: {},
	FlightStatusArrived:   {},
}

var flightStatusColors = map[FlightStatus]string{
	FlightStatusOnTime:    "#4CAF50",
	FlightStatusDelayed:   "#FF9800",
	FlightStatusCancelled: "#F44336",
	FlightStatusBoarding:  "#2196F3",
	FlightStatusDeparted:  "#9C27B0",
	FlightStatusArrived:   "#00BCD4",
}

const defaultStatusColor = "#808080"

// ParseFlightStatus accepts the canonical names as well as the display forms
// ("On Time", "on-time"). A blank value means ON_TIME.
func ParseFlightStatus(s string) (FlightStatus, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FlightStatusOnTime, nil
	}
	normalized := strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_").Replace(s))
	status := FlightStatus(normalized)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFlightStatus, s)
	}
	return status, nil
}

func (s FlightStatus) IsValid() bool {
	_, ok := flightTransitions[s]
	return ok
}

// CanTransitionTo reports whether the lifecycle allows moving from s to target.
// Staying in the same status is always allowed.
func (s FlightStatus) CanTransitionTo(target FlightStatus) bool {
	if !target.IsValid() {
		return false
	}
	if s == target {
		return true
	}
	for _, next := range flightTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

func (s FlightStatus) IsTerminal() bool {
	next, ok := flightTransitions[s]
	return !ok || len(next) == 0
}

// AcceptsBookings holds while the flight can still reach boarding.
func (s FlightStatus) AcceptsBookings() bool {
	return s.IsValid() && s.CanTransitionTo(FlightStatusBoarding)
}

func (s FlightStatus) Color() string {
	if c, ok := flightStatusColors[s]; ok {
		return c
	}
	return defaultStatusColor
}

// TransitionFlightStatus is the single place where status changes are validated.
func TransitionFlightStatus(from, to FlightStatus) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFlightStatus, to)
	}
	if from != to && from.IsTerminal() {
		return fmt.Errorf("%w: %s is final", ErrIllegalStatusTransition, from)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalStatusTransition, from, to)
	}
	return nil
}

type Flight struct {
	ID                 int64
	AirlineID          int64
	DepartureAirportID int64
	ArrivalAirportID   int64
	DepartureTime      time.Time
	ArrivalTime        time.Time
	FirstPrice         float64
	BusinessPrice      float64
	EconomyPrice       float64
	LuggagePrice       float64
	WeightPrice        float64
	Status             FlightStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Validate checks the fields the catalog needs to place a flight in a slot.
func (f *Flight) Validate() error {
	switch {
	case f.AirlineID <= 0:
		return fmt.Errorf("%w: airline id must be positive", ErrInvalidFlight)
	case f.DepartureAirportID <= 0 || f.ArrivalAirportID <= 0:
		return fmt.Errorf("%w: airport ids must be positive", ErrInvalidFlight)
	case f.DepartureAirportID == f.ArrivalAirportID:
		return fmt.Errorf("%w: departure and arrival airports must differ", ErrInvalidFlight)
	case f.DepartureTime.IsZero():
		return fmt.Errorf("%w: departure time is required", ErrInvalidFlight)
	case !f.ArrivalTime.IsZero() && f.ArrivalTime.Before(f.DepartureTime):
		return fmt.Errorf("%w: arrival must not precede departure", ErrInvalidFlight)
	case f.FirstPrice < 0 || f.BusinessPrice < 0 || f.EconomyPrice < 0 || f.LuggagePrice < 0 || f.WeightPrice < 0:
		return fmt.Errorf("%w: prices must not be negative", ErrInvalidFlight)
	}
	return nil
}

// MinPrice is the cheapest positive cabin fare, or 0 when no fare is set.
func (f *Flight) MinPrice() float64 {
	lowest := math.MaxFloat64
	for _, p := range []float64{f.FirstPrice, f.BusinessPrice, f.EconomyPrice} {
		if p > 0 && p < lowest {
			lowest = p
		}
	}
	if lowest == math.MaxFloat64 {
		return 0
	}
	return lowest
}

// DurationMinutes returns false when either timestamp is missing.
func (f *Flight) DurationMinutes() (int64, bool) {
	if f.DepartureTime.IsZero() || f.ArrivalTime.IsZero() {
		return 0, false
	}
	return int64(f.ArrivalTime.Sub(f.DepartureTime) / time.Minute), true
}

func (f *Flight) StatusColor() string {
	return f.Status.Color()
}

// DepartureDate is the UTC calendar date used for slot comparisons.
func (f *Flight) DepartureDate() time.Time {
	return CalendarDate(f.DepartureTime)
}

// SlotKey identifies the slot for advisory locking.
func (f *Flight) SlotKey() string {
	return fmt.Sprintf("flight-slot:%d:%d:%d:%s", f.AirlineID, f.DepartureAirportID, f.ArrivalAirportID, f.DepartureDate().Format(time.DateOnly))
}

func CalendarDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
