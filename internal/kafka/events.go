package kafka

import (
	"strconv"
	"time"

	"github.com/Domenick1991/skynet/internal/domain"
)

const (
	EventBookingCreated      = "booking_created"
	EventBookingCancelled    = "booking_cancelled"
	EventFlightStatusChanged = "flight_status_changed"
)

type BookingEvent struct {
	Type        string    `json:"type"`
	BookingID   int64     `json:"booking_id"`
	PNR         string    `json:"pnr"`
	FlightID    int64     `json:"flight_id"`
	PassengerID int64     `json:"passenger_id"`
	SeatID      int       `json:"seat_id"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking) BookingEvent {
	return BookingEvent{
		Type:        eventType,
		BookingID:   b.ID,
		PNR:         b.PNR,
		FlightID:    b.FlightID,
		PassengerID: b.PassengerID,
		SeatID:      b.SeatID,
		Status:      string(b.Status),
		OccurredAt:  time.Now().UTC(),
	}
}

// Key partitions booking events by PNR so a booking's history stays ordered.
func (e BookingEvent) Key() string {
	return e.PNR
}

type FlightEvent struct {
	Type       string    `json:"type"`
	FlightID   int64     `json:"flight_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewFlightStatusEvent(flightID int64, from, to domain.FlightStatus) FlightEvent {
	return FlightEvent{
		Type:       EventFlightStatusChanged,
		FlightID:   flightID,
		From:       string(from),
		To:         string(to),
		OccurredAt: time.Now().UTC(),
	}
}

func (e FlightEvent) Key() string {
	return strconv.FormatInt(e.FlightID, 10)
}
