// Package worker handles booking events off the bus: every event goes to the
// audit trail, and events a passenger should hear about become notifications.
package worker

import (
	"context"
	"fmt"

	"github.com/Domenick1991/skynet/internal/audit"
	"github.com/Domenick1991/skynet/internal/kafka"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Notifier interface {
	Send(ctx context.Context, event kafka.BookingEvent) error
}

type Processor struct {
	audit    audit.Repository
	notifier Notifier
	log      logrus.FieldLogger
}

func NewProcessor(auditRepo audit.Repository, notifier Notifier, log logrus.FieldLogger) *Processor {
	return &Processor{audit: auditRepo, notifier: notifier, log: log}
}

// Handle is the consumer callback. Undecodable messages are dropped with a warning.
func (p *Processor) Handle(ctx context.Context, msg kafkaGo.Message) error {
	event, err := kafka.DecodeBookingEvent(msg)
	if err != nil {
		p.log.WithError(err).WithField("offset", msg.Offset).Warn("dropping malformed booking event")
		return nil
	}
	return p.Process(ctx, event)
}

// Process records the event, then notifies. No notification goes out for an
// event missing from the audit trail or one that was recorded before.
func (p *Processor) Process(ctx context.Context, event kafka.BookingEvent) error {
	if event.Type == "" || event.BookingID <= 0 {
		p.log.WithField("event", event.Type).Warn("ignoring booking event without type or booking id")
		return nil
	}

	stored, err := p.audit.Save(ctx, audit.NewRecord(event))
	if err != nil {
		return fmt.Errorf("audit %s for booking %d: %w", event.Type, event.BookingID, err)
	}
	if !stored {
		p.log.WithFields(logrus.Fields{
			"event":      event.Type,
			"booking_id": event.BookingID,
		}).Info("booking event already processed, skipping notification")
		return nil
	}
	if p.notifier != nil {
		if err := p.notifier.Send(ctx, event); err != nil {
			return fmt.Errorf("notify %s for booking %d: %w", event.Type, event.BookingID, err)
		}
	}

	p.log.WithFields(logrus.Fields{
		"event":      event.Type,
		"booking_id": event.BookingID,
		"pnr":        event.PNR,
	}).Debug("booking event processed")
	return nil
}
