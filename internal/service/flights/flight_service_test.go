package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/skynet/internal/domain"
	"github.com/Domenick1991/skynet/internal/kafka"
	"github.com/Domenick1991/skynet/internal/logger"
	"github.com/Domenick1991/skynet/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *MockFlightRepository) LockSlot(ctx context.Context, slotKey string) error {
	args := m.Called(ctx, slotKey)
	return args.Error(0)
}

func (m *MockFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightRepository) Update(ctx context.Context, flight *domain.Flight, expected domain.FlightStatus) error {
	args := m.Called(ctx, flight, expected)
	return args.Error(0)
}

func (m *MockFlightRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.FlightStatus) (*domain.Flight, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ListByAirline(ctx context.Context, airlineID int64) ([]domain.Flight, error) {
	args := m.Called(ctx, airlineID)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ListByStatus(ctx context.Context, status domain.FlightStatus) ([]domain.Flight, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) SearchByDate(ctx context.Context, date time.Time) ([]domain.Flight, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) SearchByRoute(ctx context.Context, dep, arr int64) ([]domain.Flight, error) {
	args := m.Called(ctx, dep, arr)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) SearchByRouteAndDate(ctx context.Context, dep, arr int64, date time.Time) ([]domain.Flight, error) {
	args := m.Called(ctx, dep, arr, date)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ExistsDuplicate(ctx context.Context, flight *domain.Flight, excludeID int64) (bool, error) {
	args := m.Called(ctx, flight, excludeID)
	return args.Bool(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func (m *MockCache) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlight(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockCache) InvalidateFlights(ctx context.Context, ids ...int64) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) PublishFlightEvent(ctx context.Context, topic string, event kafka.FlightEvent) error {
	args := m.Called(ctx, topic, event)
	return args.Error(0)
}

// KLIA -> SIN on 2025-01-01 for carrier 7.
func kliaToSin() *domain.Flight {
	dep := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	return &domain.Flight{
		AirlineID:          7,
		DepartureAirportID: 1,
		ArrivalAirportID:   2,
		DepartureTime:      dep,
		ArrivalTime:        dep.Add(70 * time.Minute),
		EconomyPrice:       250,
	}
}

func newService(repo *MockFlightRepository, opts ...FlightServiceOption) *FlightService {
	return NewFlightService(repo, logger.Discard(), opts...)
}

func TestFlightService_Create(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	m := metrics.Noop()
	service := newService(mockRepo, WithMetrics(m))
	ctx := context.Background()

	flight := kliaToSin()
	mockRepo.On("LockSlot", ctx, "flight-slot:7:1:2:2025-01-01").Return(nil).Once()
	mockRepo.On("ExistsDuplicate", ctx, flight, int64(0)).Return(false, nil).Once()
	mockRepo.On("Create", ctx, flight).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Flight).ID = 10
	}).Return(nil).Once()

	created, err := service.Create(ctx, flight)

	require.NoError(t, err)
	assert.Equal(t, int64(10), created.ID)
	assert.Equal(t, domain.FlightStatusOnTime, created.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FlightsCreated))
	mockRepo.AssertExpectations(t)
}

func TestFlightService_Create_Duplicate(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()

	// same slot, different time of day
	second := kliaToSin()
	second.DepartureTime = second.DepartureTime.Add(9 * time.Hour)
	second.ArrivalTime = time.Time{}

	mockRepo.On("LockSlot", ctx, mock.Anything).Return(nil).Once()
	mockRepo.On("ExistsDuplicate", ctx, second, int64(0)).Return(true, nil).Once()

	created, err := service.Create(ctx, second)

	assert.Nil(t, created)
	assert.ErrorIs(t, err, domain.ErrDuplicateFlight)
	assert.ErrorIs(t, err, domain.ErrConflict)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestFlightService_Create_Invalid(t *testing.T) {
	service := newService(&MockFlightRepository{})
	ctx := context.Background()

	f := kliaToSin()
	f.ArrivalAirportID = f.DepartureAirportID
	_, err := service.Create(ctx, f)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	f = kliaToSin()
	f.Status = "LOST"
	_, err = service.Create(ctx, f)
	assert.ErrorIs(t, err, domain.ErrInvalidFlightStatus)
}

func TestFlightService_Update_DuplicateOnlyWarns(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	m := metrics.Noop()
	service := newService(mockRepo, WithMetrics(m))
	ctx := context.Background()

	current := kliaToSin()
	current.ID = 5
	current.Status = domain.FlightStatusDelayed

	input := kliaToSin()
	input.EconomyPrice = 199

	mockRepo.On("GetByID", ctx, int64(5)).Return(current, nil).Once()
	mockRepo.On("ExistsDuplicate", ctx, input, int64(5)).Return(true, nil).Once()
	mockRepo.On("Update", ctx, input, domain.FlightStatusDelayed).Return(nil).Once()

	updated, err := service.Update(ctx, 5, input)

	require.NoError(t, err)
	assert.Equal(t, domain.FlightStatusDelayed, updated.Status, "blank status keeps the current one")
	assert.Equal(t, int64(5), updated.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DuplicateRouteWarnings))
	mockRepo.AssertExpectations(t)
}

func TestFlightService_Update_IllegalTransition(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()

	current := kliaToSin()
	current.ID = 5
	current.Status = domain.FlightStatusCancelled

	input := kliaToSin()
	input.Status = domain.FlightStatusOnTime

	mockRepo.On("GetByID", ctx, int64(5)).Return(current, nil).Once()

	_, err := service.Update(ctx, 5, input)
	assert.ErrorIs(t, err, domain.ErrIllegalStatusTransition)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_Update_StatusChangedConcurrently(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()

	current := kliaToSin()
	current.ID = 5
	current.Status = domain.FlightStatusOnTime

	input := kliaToSin()
	input.Status = domain.FlightStatusDelayed

	mockRepo.On("GetByID", ctx, int64(5)).Return(current, nil).Once()
	mockRepo.On("ExistsDuplicate", ctx, input, int64(5)).Return(false, nil).Once()
	mockRepo.On("Update", ctx, input, domain.FlightStatusOnTime).Return(domain.ErrFlightStatusChanged).Once()

	_, err := service.Update(ctx, 5, input)

	assert.ErrorIs(t, err, domain.ErrFlightStatusChanged)
	assert.ErrorIs(t, err, domain.ErrConflict)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_UpdateStatus(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	producer := &MockProducer{}
	service := newService(mockRepo, WithCache(mockCache), WithEvents(producer, "flight-events"))
	ctx := context.Background()

	current := kliaToSin()
	current.ID = 3
	current.Status = domain.FlightStatusOnTime
	boarding := *current
	boarding.Status = domain.FlightStatusBoarding

	mockRepo.On("GetByID", ctx, int64(3)).Return(current, nil).Once()
	mockRepo.On("UpdateStatus", ctx, int64(3), domain.FlightStatusOnTime, domain.FlightStatusBoarding).Return(&boarding, nil).Once()
	mockCache.On("InvalidateFlights", ctx, []int64{3}).Return(nil).Once()
	producer.On("PublishFlightEvent", ctx, "flight-events", mock.MatchedBy(func(e kafka.FlightEvent) bool {
		return e.FlightID == 3 && e.From == "ON_TIME" && e.To == "BOARDING"
	})).Return(errors.New("broker down")).Once()

	updated, err := service.UpdateStatus(ctx, 3, "boarding")

	require.NoError(t, err, "publish failures never fail the caller")
	assert.Equal(t, domain.FlightStatusBoarding, updated.Status)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
	producer.AssertExpectations(t)
	mockCache.AssertNotCalled(t, "GetFlight", mock.Anything, mock.Anything)
}

func TestFlightService_UpdateStatus_CancelledBetweenReadAndWrite(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	producer := &MockProducer{}
	service := newService(mockRepo, WithCache(mockCache), WithEvents(producer, "flight-events"))
	ctx := context.Background()

	onTime := kliaToSin()
	onTime.ID = 5
	onTime.Status = domain.FlightStatusOnTime
	cancelled := *onTime
	cancelled.Status = domain.FlightStatusCancelled

	// another writer cancels the flight after the first read
	mockRepo.On("GetByID", ctx, int64(5)).Return(onTime, nil).Once()
	mockRepo.On("UpdateStatus", ctx, int64(5), domain.FlightStatusOnTime, domain.FlightStatusBoarding).
		Return(nil, domain.ErrFlightStatusChanged).Once()
	mockRepo.On("GetByID", ctx, int64(5)).Return(&cancelled, nil).Once()

	updated, err := service.UpdateStatus(ctx, 5, "BOARDING")

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, domain.ErrIllegalStatusTransition)
	mockRepo.AssertExpectations(t)
	mockCache.AssertNotCalled(t, "InvalidateFlights", mock.Anything, mock.Anything)
	producer.AssertNotCalled(t, "PublishFlightEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_UpdateStatus_GivesUpAfterRepeatedConflicts(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()

	current := kliaToSin()
	current.ID = 5
	current.Status = domain.FlightStatusDelayed

	mockRepo.On("GetByID", ctx, int64(5)).Return(current, nil).Times(statusWriteAttempts)
	mockRepo.On("UpdateStatus", ctx, int64(5), domain.FlightStatusDelayed, domain.FlightStatusBoarding).
		Return(nil, domain.ErrFlightStatusChanged).Times(statusWriteAttempts)

	_, err := service.UpdateStatus(ctx, 5, "BOARDING")

	assert.ErrorIs(t, err, domain.ErrFlightStatusChanged)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_UpdateStatus_Rules(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		from    domain.FlightStatus
		to      string
		wantErr error
	}{
		{"cancelled is terminal", domain.FlightStatusCancelled, "ON_TIME", domain.ErrIllegalStatusTransition},
		{"arrived is terminal", domain.FlightStatusArrived, "DELAYED", domain.ErrIllegalStatusTransition},
		{"departed only arrives", domain.FlightStatusDeparted, "BOARDING", domain.ErrIllegalStatusTransition},
		{"unknown status", domain.FlightStatusOnTime, "HIJACKED", domain.ErrInvalidFlightStatus},
		{"same status is a no-op", domain.FlightStatusDelayed, "Delayed", nil},
		{"blank means on time", domain.FlightStatusDelayed, " ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockFlightRepository{}
			service := newService(mockRepo)

			current := kliaToSin()
			current.ID = 1
			current.Status = tt.from
			mockRepo.On("GetByID", ctx, int64(1)).Return(current, nil).Maybe()
			mockRepo.On("UpdateStatus", ctx, int64(1), tt.from, mock.Anything).Return(current, nil).Maybe()

			_, err := service.UpdateStatus(ctx, 1, tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFlightService_GetByID(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()

	_, err := service.GetByID(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidFlightID)

	mockRepo.On("GetByID", ctx, int64(404)).Return(nil, domain.ErrFlightNotFound).Once()
	_, err = service.GetByID(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFlightService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := newService(mockRepo, WithCache(mockCache))
	ctx := context.Background()

	flights := []domain.Flight{*kliaToSin()}

	mockCache.On("GetFlights", ctx).Return(([]domain.Flight)(nil), nil).Once()
	mockRepo.On("List", ctx).Return(flights, nil).Once()
	mockCache.On("SetFlights", ctx, flights).Return(nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_List_CacheHit(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := newService(mockRepo, WithCache(mockCache))
	ctx := context.Background()

	flights := []domain.Flight{*kliaToSin()}
	mockCache.On("GetFlights", ctx).Return(flights, nil).Once()

	result, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockRepo.AssertNotCalled(t, "List", mock.Anything)
}

func TestFlightService_List_RepositoryError(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()

	mockRepo.On("List", ctx).Return([]domain.Flight(nil), errors.New("db down")).Once()

	result, err := service.List(ctx)
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestFlightService_Delete(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := newService(mockRepo, WithCache(mockCache))
	ctx := context.Background()

	mockRepo.On("Delete", ctx, int64(9)).Return(nil).Once()
	mockCache.On("InvalidateFlights", ctx, []int64{9}).Return(errors.New("redis down")).Once()

	assert.NoError(t, service.Delete(ctx, 9))
	assert.ErrorIs(t, service.Delete(ctx, -1), domain.ErrInvalidFlightID)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_ListByStatus(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := newService(mockRepo)
	ctx := context.Background()

	mockRepo.On("ListByStatus", ctx, domain.FlightStatusOnTime).Return([]domain.Flight{}, nil).Once()
	_, err := service.ListByStatus(ctx, "On Time")
	assert.NoError(t, err)

	_, err = service.ListByStatus(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
