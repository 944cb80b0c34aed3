package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "skynet"

// Dependency names used as label values.
const (
	DependencyFlightCatalog      = "flight_catalog"
	DependencyPassengerDirectory = "passenger_directory"
)

// Dependency outcomes.
const (
	OutcomeDegraded    = "degraded"
	OutcomeUnavailable = "unavailable"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	BookingsCreated        prometheus.Counter
	BookingsCancelled      prometheus.Counter
	PNRCollisions          prometheus.Counter
	DependencyFailures     *prometheus.CounterVec
	DuplicateRouteWarnings prometheus.Counter
	FlightsCreated         prometheus.Counter
	RemoteCallDuration     *prometheus.HistogramVec
}

// New registers the metrics on reg. Pass prometheus.DefaultRegisterer in
// binaries and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BookingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of reservations created",
		}),
		BookingsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_cancelled_total",
			Help:      "The total number of reservations moved to CANCELLED",
		}),
		PNRCollisions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pnr_collisions_total",
			Help:      "Generated booking references rejected by the unique constraint",
		}),
		DependencyFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dependency_failures_total",
			Help:      "Remote dependency calls that could not be answered",
		}, []string{"dependency", "outcome"}),
		DuplicateRouteWarnings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_route_warnings_total",
			Help:      "Flight updates that collided with another flight's slot",
		}),
		FlightsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_created_total",
			Help:      "The total number of flights added to the catalog",
		}),
		RemoteCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_call_duration_seconds",
			Help:      "Latency of calls to remote dependencies",
			Buckets:   []float64{.01, .025, .05, .1, .2, .3, .5, 1},
		}, []string{"dependency"}),
	}
}

// Noop returns metrics registered on a private registry.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}
