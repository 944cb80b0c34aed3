package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/skynet/internal/kafka"
	"github.com/sirupsen/logrus"
)

type Notification struct {
	PassengerID int64  `json:"passenger_id"`
	PNR         string `json:"pnr"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
}

const publishAttempts = 3

type publisher interface {
	PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error
}

// Sender turns booking events into passenger notifications. Without a
// publisher the notification is only logged.
type Sender struct {
	publisher publisher
	topic     string
	log       logrus.FieldLogger
}

func NewSender(p publisher, topic string, log logrus.FieldLogger) *Sender {
	return &Sender{publisher: p, topic: topic, log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	n, ok := Compose(event)
	if !ok {
		return nil
	}

	s.log.WithFields(logrus.Fields{
		"pnr":          n.PNR,
		"passenger_id": n.PassengerID,
		"subject":      n.Subject,
	}).Info("sending booking notification")

	if s.publisher == nil || s.topic == "" {
		return nil
	}
	if err := s.publisher.PublishWithRetry(ctx, s.topic, n.PNR, n, publishAttempts); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Compose reports false for event types that do not notify the passenger.
func Compose(event kafka.BookingEvent) (Notification, bool) {
	n := Notification{PassengerID: event.PassengerID, PNR: event.PNR}
	switch event.Type {
	case kafka.EventBookingCreated:
		n.Subject = fmt.Sprintf("Booking confirmed: %s", event.PNR)
		n.Body = fmt.Sprintf("Your booking %s on flight %d is confirmed. Seat: %s.", event.PNR, event.FlightID, seatLabel(event.SeatID))
	case kafka.EventBookingCancelled:
		n.Subject = fmt.Sprintf("Booking cancelled: %s", event.PNR)
		n.Body = fmt.Sprintf("Your booking %s on flight %d has been cancelled.", event.PNR, event.FlightID)
	default:
		return Notification{}, false
	}
	return n, true
}

func seatLabel(seat int) string {
	if seat <= 0 {
		return "unassigned"
	}
	return fmt.Sprintf("%d", seat)
}
