package domain

import "time"

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "BOOKED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// IsTerminal is true for CANCELLED. BOOKED -> CANCELLED is the only transition.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled
}

// Booking is a reservation. The PNR never changes once assigned and bookings are
// never deleted; cancellation is a status change.
type Booking struct {
	ID             int64
	PNR            string
	FlightID       int64
	PassengerID    int64
	SeatID         int
	LuggageCount   int
	LuggageWeight  float64
	Status         BookingStatus
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusBooked
}
