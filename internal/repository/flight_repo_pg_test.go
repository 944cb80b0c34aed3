package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/skynet/internal/domain"
	"github.com/Domenick1991/skynet/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFlightRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewFlightRepository(pool)
	assert.NotNil(t, repo)
}

func newFlightRepo(t *testing.T) (FlightRepository, context.Context) {
	t.Helper()
	ctx := context.Background()
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)
	return NewFlightRepository(pool), ctx
}

func sampleFlight(departure time.Time) *domain.Flight {
	return &domain.Flight{
		AirlineID:          1,
		DepartureAirportID: 10,
		ArrivalAirportID:   20,
		DepartureTime:      departure,
		ArrivalTime:        departure.Add(2 * time.Hour),
		EconomyPrice:       120,
		BusinessPrice:      450,
		Status:             domain.FlightStatusOnTime,
	}
}

func TestFlightRepository_CRUD(t *testing.T) {
	repo, ctx := newFlightRepo(t)
	dep := time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

	f := sampleFlight(dep)
	require.NoError(t, repo.Create(ctx, f))
	assert.NotZero(t, f.ID)

	got, err := repo.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, got.DepartureTime.Equal(dep))
	assert.Equal(t, 120.0, got.EconomyPrice)

	got.EconomyPrice = 99
	require.NoError(t, repo.Update(ctx, got, domain.FlightStatusOnTime))

	updated, err := repo.UpdateStatus(ctx, f.ID, domain.FlightStatusOnTime, domain.FlightStatusDelayed)
	require.NoError(t, err)
	assert.Equal(t, domain.FlightStatusDelayed, updated.Status)
	assert.Equal(t, 99.0, updated.EconomyPrice)

	require.NoError(t, repo.Delete(ctx, f.ID))
	_, err = repo.GetByID(ctx, f.ID)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, f.ID), domain.ErrFlightNotFound)
}

func TestFlightRepository_StatusWritesAreConditional(t *testing.T) {
	repo, ctx := newFlightRepo(t)

	f := sampleFlight(time.Date(2026, 5, 11, 9, 30, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, f))
	_, err := repo.UpdateStatus(ctx, f.ID, domain.FlightStatusOnTime, domain.FlightStatusCancelled)
	require.NoError(t, err)

	_, err = repo.UpdateStatus(ctx, f.ID, domain.FlightStatusOnTime, domain.FlightStatusBoarding)
	assert.ErrorIs(t, err, domain.ErrFlightStatusChanged)

	f.Status = domain.FlightStatusDelayed
	assert.ErrorIs(t, repo.Update(ctx, f, domain.FlightStatusOnTime), domain.ErrFlightStatusChanged)

	got, err := repo.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.FlightStatusCancelled, got.Status)

	_, err = repo.UpdateStatus(ctx, f.ID+1000, domain.FlightStatusOnTime, domain.FlightStatusBoarding)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}

func TestFlightRepository_NullArrival(t *testing.T) {
	repo, ctx := newFlightRepo(t)

	f := sampleFlight(time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC))
	f.ArrivalTime = time.Time{}
	require.NoError(t, repo.Create(ctx, f))

	got, err := repo.GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, got.ArrivalTime.IsZero())
}

func TestFlightRepository_Searches(t *testing.T) {
	repo, ctx := newFlightRepo(t)
	day := time.Date(2026, 5, 10, 6, 0, 0, 0, time.UTC)

	a := sampleFlight(day)
	b := sampleFlight(day.Add(24 * time.Hour))
	c := sampleFlight(day.Add(3 * time.Hour))
	c.AirlineID = 2
	c.ArrivalAirportID = 30
	c.Status = domain.FlightStatusCancelled
	for _, f := range []*domain.Flight{a, b, c} {
		require.NoError(t, repo.Create(ctx, f))
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byDate, err := repo.SearchByDate(ctx, day.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	byRoute, err := repo.SearchByRoute(ctx, 10, 20)
	require.NoError(t, err)
	assert.Len(t, byRoute, 2)

	byRouteDate, err := repo.SearchByRouteAndDate(ctx, 10, 20, day)
	require.NoError(t, err)
	require.Len(t, byRouteDate, 1)
	assert.Equal(t, a.ID, byRouteDate[0].ID)

	byAirline, err := repo.ListByAirline(ctx, 2)
	require.NoError(t, err)
	require.Len(t, byAirline, 1)
	assert.Equal(t, c.ID, byAirline[0].ID)

	byStatus, err := repo.ListByStatus(ctx, domain.FlightStatusCancelled)
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)

	empty, err := repo.SearchByRoute(ctx, 77, 88)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestFlightRepository_ExistsDuplicate(t *testing.T) {
	repo, ctx := newFlightRepo(t)
	dep := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

	f := sampleFlight(dep)
	require.NoError(t, repo.Create(ctx, f))

	sameDay := sampleFlight(dep.Add(8 * time.Hour))
	dup, err := repo.ExistsDuplicate(ctx, sameDay, 0)
	require.NoError(t, err)
	assert.True(t, dup)

	dup, err = repo.ExistsDuplicate(ctx, f, f.ID)
	require.NoError(t, err)
	assert.False(t, dup)

	otherCarrier := sampleFlight(dep)
	otherCarrier.AirlineID = 9
	dup, err = repo.ExistsDuplicate(ctx, otherCarrier, 0)
	require.NoError(t, err)
	assert.False(t, dup)
}

func TestFlightRepository_WithTxRollsBack(t *testing.T) {
	repo, ctx := newFlightRepo(t)
	f := sampleFlight(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))

	err := repo.WithTx(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.LockSlot(ctx, f.SlotKey()))
		require.NoError(t, repo.Create(ctx, f))
		return domain.ErrDuplicateFlight
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateFlight)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
