package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/skynet/internal/client"
	"github.com/Domenick1991/skynet/internal/domain"
	"github.com/Domenick1991/skynet/internal/kafka"
	"github.com/Domenick1991/skynet/internal/metrics"
	"github.com/Domenick1991/skynet/internal/pnr"
	"github.com/Domenick1991/skynet/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id int64) (bool, error)
	ValidateBooking(ctx context.Context, id int64) (bool, error)
	RetrieveBookingPNR(ctx context.Context, id int64) (string, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
}

type FlightCatalog interface {
	LookupFlight(ctx context.Context, id int64) client.FlightLookup
}

type PassengerDirectory interface {
	LookupPassenger(ctx context.Context, id int64) client.PassengerLookup
}

type EventProducer interface {
	PublishBookingEvent(ctx context.Context, topic string, event kafka.BookingEvent) error
}

const (
	defaultCallTimeout    = 300 * time.Millisecond
	defaultPNRMaxAttempts = 5
)

type BookingService struct {
	bookings       repository.BookingRepository
	flights        FlightCatalog
	passengers     PassengerDirectory
	producer       EventProducer
	bookingTopic   string
	pnrs           pnr.Generator
	callTimeout    time.Duration
	pnrMaxAttempts int
	metrics        *metrics.Metrics
	log            logrus.FieldLogger
}

type CreateBookingInput struct {
	FlightID       int64
	PassengerID    int64
	SeatSelection  string
	LuggageCount   int
	LuggageWeight  float64
	IdempotencyKey string
}

type BookingServiceOption func(*BookingService)

func WithEvents(producer EventProducer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = topic
	}
}

func WithPNRGenerator(g pnr.Generator) BookingServiceOption {
	return func(s *BookingService) {
		s.pnrs = g
	}
}

func WithCallTimeout(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

func WithPNRMaxAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.pnrMaxAttempts = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) BookingServiceOption {
	return func(s *BookingService) {
		s.metrics = m
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights FlightCatalog,
	passengers PassengerDirectory,
	log logrus.FieldLogger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:       bookings,
		flights:        flights,
		passengers:     passengers,
		pnrs:           pnr.NewUUIDGenerator(),
		callTimeout:    defaultCallTimeout,
		pnrMaxAttempts: defaultPNRMaxAttempts,
		metrics:        metrics.Noop(),
		log:            log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking checks the flight and the passenger concurrently, then writes
// exactly one reservation. The flight check is authoritative: any failure there
// aborts the booking. The passenger check degrades to accepting the id when the
// directory cannot be reached.
//
// The checks and the write are not atomic; a flight cancelled in between still
// gets the booking.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.FlightID <= 0 {
		return nil, domain.ErrInvalidFlightID
	}
	if input.PassengerID <= 0 {
		return nil, domain.ErrPassengerNotFound
	}
	if input.LuggageCount < 0 || input.LuggageWeight < 0 {
		return nil, domain.ErrInvalidLuggage
	}

	booking := &domain.Booking{
		FlightID:       input.FlightID,
		PassengerID:    input.PassengerID,
		SeatID:         ParseSeatSelection(input.SeatSelection),
		LuggageCount:   input.LuggageCount,
		LuggageWeight:  input.LuggageWeight,
		Status:         domain.BookingStatusBooked,
		IdempotencyKey: input.IdempotencyKey,
	}

	if existing, err := s.bookings.FindByIdempotencyKey(ctx, input.IdempotencyKey); err != nil {
		return nil, err
	} else if existing != nil {
		return replay(booking, existing)
	}

	if err := s.checkDependencies(ctx, input.FlightID, input.PassengerID); err != nil {
		return nil, err
	}

	created, err := s.insertWithUniquePNR(ctx, booking)
	if err != nil {
		return nil, err
	}
	if created != booking {
		// a concurrent request with the same idempotency key won
		return replay(booking, created)
	}

	s.metrics.BookingsCreated.Inc()
	s.log.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"pnr":          booking.PNR,
		"flight_id":    booking.FlightID,
		"passenger_id": booking.PassengerID,
	}).Info("booking created")
	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

func (s *BookingService) checkDependencies(ctx context.Context, flightID, passengerID int64) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.checkFlight(gctx, flightID)
	})
	g.Go(func() error {
		return s.checkPassenger(gctx, passengerID)
	})

	return g.Wait()
}

func (s *BookingService) checkFlight(ctx context.Context, id int64) error {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	start := time.Now()
	res := s.flights.LookupFlight(callCtx, id)
	s.metrics.RemoteCallDuration.WithLabelValues(metrics.DependencyFlightCatalog).Observe(time.Since(start).Seconds())

	switch res.Outcome {
	case client.Found:
		if !res.Status.AcceptsBookings() {
			return fmt.Errorf("%w: flight %d is %s", domain.ErrFlightNotBookable, id, res.Status)
		}
		return nil
	case client.NotFound:
		return domain.ErrFlightNotFound
	default:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.metrics.DependencyFailures.WithLabelValues(metrics.DependencyFlightCatalog, metrics.OutcomeUnavailable).Inc()
		s.log.WithError(res.Err).WithField("flight_id", id).Error("flight catalog unavailable")
		return domain.ErrFlightCatalogUnavailable
	}
}

// checkPassenger fails only on a definite "no such passenger".
func (s *BookingService) checkPassenger(ctx context.Context, id int64) error {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	start := time.Now()
	res := s.passengers.LookupPassenger(callCtx, id)
	s.metrics.RemoteCallDuration.WithLabelValues(metrics.DependencyPassengerDirectory).Observe(time.Since(start).Seconds())

	switch res.Outcome {
	case client.Found:
		return nil
	case client.NotFound:
		return domain.ErrPassengerNotFound
	default:
		if ctx.Err() != nil {
			// the flight check already failed
			return nil
		}
		s.metrics.DependencyFailures.WithLabelValues(metrics.DependencyPassengerDirectory, metrics.OutcomeDegraded).Inc()
		s.log.WithError(res.Err).WithField("passenger_id", id).
			Warn(domain.ErrPassengerDirectoryDegraded.Error() + ", accepting passenger id provisionally")
		return nil
	}
}

// insertWithUniquePNR regenerates the PNR on a unique violation, up to
// pnrMaxAttempts. If the idempotency key collides, the booking that holds it
// is returned instead.
func (s *BookingService) insertWithUniquePNR(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	for attempt := 1; attempt <= s.pnrMaxAttempts; attempt++ {
		booking.PNR = s.pnrs.Generate()

		err := s.bookings.Create(ctx, booking)
		switch {
		case err == nil:
			return booking, nil
		case errors.Is(err, domain.ErrDuplicatePNR):
			s.metrics.PNRCollisions.Inc()
			s.log.WithFields(logrus.Fields{"pnr": booking.PNR, "attempt": attempt}).Warn("pnr collision, regenerating")
		case errors.Is(err, domain.ErrDuplicateIdempotencyKey):
			existing, findErr := s.bookings.FindByIdempotencyKey(ctx, booking.IdempotencyKey)
			if findErr != nil {
				return nil, findErr
			}
			if existing == nil {
				return nil, err
			}
			return existing, nil
		default:
			return nil, err
		}
	}
	return nil, domain.ErrPNRExhausted
}

// replay returns the booking already stored under the request's idempotency
// key, provided it was made from the same request.
func replay(requested, stored *domain.Booking) (*domain.Booking, error) {
	if requested.FlightID != stored.FlightID ||
		requested.PassengerID != stored.PassengerID ||
		requested.SeatID != stored.SeatID ||
		requested.LuggageCount != stored.LuggageCount ||
		requested.LuggageWeight != stored.LuggageWeight {
		return nil, fmt.Errorf("%w: key %q belongs to booking %s", domain.ErrIdempotencyConflict, requested.IdempotencyKey, stored.PNR)
	}
	return stored, nil
}

// CancelBooking is idempotent: cancelling a cancelled booking succeeds
// without a write.
func (s *BookingService) CancelBooking(ctx context.Context, id int64) (bool, error) {
	current, err := s.GetBooking(ctx, id)
	if err != nil {
		return false, err
	}
	if current.Status.IsTerminal() {
		return true, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, domain.BookingStatusCancelled)
	if err != nil {
		return false, err
	}

	s.metrics.BookingsCancelled.Inc()
	s.log.WithFields(logrus.Fields{"booking_id": id, "pnr": updated.PNR}).Info("booking cancelled")
	s.publish(ctx, kafka.EventBookingCancelled, updated)
	return true, nil
}

// ValidateBooking is true only for an existing BOOKED reservation.
func (s *BookingService) ValidateBooking(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return false, nil
		}
		return false, err
	}
	return b.IsActive(), nil
}

func (s *BookingService) RetrieveBookingPNR(ctx context.Context, id int64) (string, error) {
	b, err := s.GetBooking(ctx, id)
	if err != nil {
		return "", err
	}
	return b.PNR, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) GetByPNR(ctx context.Context, ref string) (*domain.Booking, error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	if !pnr.Valid(ref) {
		return nil, fmt.Errorf("%w: malformed pnr %q", domain.ErrInvalidArgument, ref)
	}
	return s.bookings.GetByPNR(ctx, ref)
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	if err := s.producer.PublishBookingEvent(ctx, s.bookingTopic, kafka.NewBookingEvent(eventType, booking)); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"event": eventType, "pnr": booking.PNR}).
			Warn("failed to publish booking event")
	}
}

// ParseSeatSelection reads an optional numeric seat id. Anything else,
// including negative numbers, means unassigned (0).
func ParseSeatSelection(s string) int {
	seat, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || seat < 0 {
		return 0
	}
	return seat
}

var _ BookingUseCase = (*BookingService)(nil)
