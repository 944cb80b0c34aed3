package flights

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/skynet/internal/domain"
	"github.com/Domenick1991/skynet/internal/kafka"
	"github.com/Domenick1991/skynet/internal/metrics"
	"github.com/Domenick1991/skynet/internal/repository"
	"github.com/sirupsen/logrus"
)

type FlightUseCase interface {
	Create(ctx context.Context, flight *domain.Flight) (*domain.Flight, error)
	Update(ctx context.Context, id int64, flight *domain.Flight) (*domain.Flight, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*domain.Flight, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
	ListByAirline(ctx context.Context, airlineID int64) ([]domain.Flight, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Flight, error)
	IsDuplicate(ctx context.Context, flight *domain.Flight, excludeID int64) (bool, error)
	SearchByDate(ctx context.Context, date time.Time) ([]domain.Flight, error)
	SearchByRoute(ctx context.Context, depAirportID, arrAirportID int64) ([]domain.Flight, error)
	SearchByRouteAndDate(ctx context.Context, depAirportID, arrAirportID int64, date time.Time) ([]domain.Flight, error)
	FilterByMaxPrice(ctx context.Context, maxPrice float64) ([]domain.Flight, error)
	FilterByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]domain.Flight, error)
	FilterByMaxDuration(ctx context.Context, maxMinutes int64) ([]domain.Flight, error)
	FilterByDurationRange(ctx context.Context, minMinutes, maxMinutes int64) ([]domain.Flight, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	GetFlight(ctx context.Context, id int64) (*domain.Flight, error)
	SetFlight(ctx context.Context, flight *domain.Flight) error
	InvalidateFlights(ctx context.Context, ids ...int64) error
}

type EventProducer interface {
	PublishFlightEvent(ctx context.Context, topic string, event kafka.FlightEvent) error
}

type FlightService struct {
	repo     repository.FlightRepository
	cache    FlightCache
	producer EventProducer
	topic    string
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
}

type FlightServiceOption func(*FlightService)

func WithCache(cache FlightCache) FlightServiceOption {
	return func(s *FlightService) {
		s.cache = cache
	}
}

// WithEvents publishes flight_status_changed events to topic.
func WithEvents(producer EventProducer, topic string) FlightServiceOption {
	return func(s *FlightService) {
		s.producer = producer
		s.topic = topic
	}
}

func WithMetrics(m *metrics.Metrics) FlightServiceOption {
	return func(s *FlightService) {
		s.metrics = m
	}
}

func NewFlightService(repo repository.FlightRepository, log logrus.FieldLogger, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{repo: repo, log: log, metrics: metrics.Noop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create rejects a flight whose carrier/route/date slot is taken. The slot is
// locked for the duration of the check and insert.
func (s *FlightService) Create(ctx context.Context, flight *domain.Flight) (*domain.Flight, error) {
	status, err := domain.ParseFlightStatus(string(flight.Status))
	if err != nil {
		return nil, err
	}
	flight.Status = status
	if err := flight.Validate(); err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.LockSlot(ctx, flight.SlotKey()); err != nil {
			return err
		}
		dup, err := s.repo.ExistsDuplicate(ctx, flight, 0)
		if err != nil {
			return err
		}
		if dup {
			return domain.ErrDuplicateFlight
		}
		return s.repo.Create(ctx, flight)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.FlightsCreated.Inc()
	s.invalidate(ctx)
	return flight, nil
}

// statusWriteAttempts bounds how often UpdateStatus re-reads a flight whose
// status moved between the check and the write.
const statusWriteAttempts = 3

// stored reads the flight from the database, skipping the cache. Status
// transitions are checked against it.
func (s *FlightService) stored(ctx context.Context, id int64) (*domain.Flight, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidFlightID
	}
	return s.repo.GetByID(ctx, id)
}

// Update replaces the flight's fields. A blank status keeps the current one.
// A slot collision is only logged. The write fails with
// domain.ErrFlightStatusChanged if the status moved after it was read.
func (s *FlightService) Update(ctx context.Context, id int64, flight *domain.Flight) (*domain.Flight, error) {
	current, err := s.stored(ctx, id)
	if err != nil {
		return nil, err
	}

	if flight.Status == "" {
		flight.Status = current.Status
	} else {
		next, err := domain.ParseFlightStatus(string(flight.Status))
		if err != nil {
			return nil, err
		}
		if err := domain.TransitionFlightStatus(current.Status, next); err != nil {
			return nil, err
		}
		flight.Status = next
	}
	flight.ID = id
	if err := flight.Validate(); err != nil {
		return nil, err
	}

	dup, err := s.repo.ExistsDuplicate(ctx, flight, id)
	if err != nil {
		return nil, err
	}
	if dup {
		s.metrics.DuplicateRouteWarnings.Inc()
		s.log.WithFields(logrus.Fields{
			"flight_id":      id,
			"airline_id":     flight.AirlineID,
			"dep_airport_id": flight.DepartureAirportID,
			"arr_airport_id": flight.ArrivalAirportID,
			"date":           flight.DepartureDate().Format(time.DateOnly),
		}).Warn("updated flight shares its slot with another flight")
	}

	if err := s.repo.Update(ctx, flight, current.Status); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	if flight.Status != current.Status {
		s.publishStatusChange(ctx, id, current.Status, flight.Status)
	}
	return flight, nil
}

// UpdateStatus moves the flight along its lifecycle. Setting the current
// status again is a no-op. When the stored status moves between the check and
// the write, the transition is checked again against the new status.
func (s *FlightService) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Flight, error) {
	next, err := domain.ParseFlightStatus(status)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		current, err := s.stored(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := domain.TransitionFlightStatus(current.Status, next); err != nil {
			return nil, err
		}
		if current.Status == next {
			return current, nil
		}

		updated, err := s.repo.UpdateStatus(ctx, id, current.Status, next)
		if errors.Is(err, domain.ErrFlightStatusChanged) && attempt < statusWriteAttempts {
			s.log.WithFields(logrus.Fields{"flight_id": id, "attempt": attempt}).Debug("flight status changed concurrently, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}

		s.invalidate(ctx, id)
		s.publishStatusChange(ctx, id, current.Status, next)
		return updated, nil
	}
}

func (s *FlightService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidFlightID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidFlightID
	}
	if s.cache != nil {
		if cached, err := s.cache.GetFlight(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	flight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlight(ctx, flight); err != nil {
			s.log.WithError(err).Debug("flight cache write failed")
		}
	}
	return flight, nil
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.WithError(err).Debug("flights cache write failed")
		}
	}
	return flights, nil
}

func (s *FlightService) ListByAirline(ctx context.Context, airlineID int64) ([]domain.Flight, error) {
	if airlineID <= 0 {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListByAirline(ctx, airlineID)
}

func (s *FlightService) ListByStatus(ctx context.Context, status string) ([]domain.Flight, error) {
	parsed, err := domain.ParseFlightStatus(status)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByStatus(ctx, parsed)
}

func (s *FlightService) IsDuplicate(ctx context.Context, flight *domain.Flight, excludeID int64) (bool, error) {
	return s.repo.ExistsDuplicate(ctx, flight, excludeID)
}

func (s *FlightService) invalidate(ctx context.Context, ids ...int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx, ids...); err != nil {
		s.log.WithError(err).Warn("failed to invalidate flights cache")
	}
}

func (s *FlightService) publishStatusChange(ctx context.Context, id int64, from, to domain.FlightStatus) {
	if s.producer == nil || s.topic == "" {
		return
	}
	if err := s.producer.PublishFlightEvent(ctx, s.topic, kafka.NewFlightStatusEvent(id, from, to)); err != nil {
		s.log.WithError(err).WithField("flight_id", id).Warn("failed to publish flight_status_changed event")
	}
}

var _ FlightUseCase = (*FlightService)(nil)
