package passengers

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/skynet/internal/domain"
	"github.com/Domenick1991/skynet/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPassengerRepository struct {
	mock.Mock
}

func (m *MockPassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPassengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *MockPassengerRepository) List(ctx context.Context) ([]domain.Passenger, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Passenger), args.Error(1)
}

func (m *MockPassengerRepository) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func TestPassengerService_Exists(t *testing.T) {
	repo := &MockPassengerRepository{}
	service := NewPassengerService(repo, logger.Discard())
	ctx := context.Background()

	repo.On("Exists", ctx, int64(202)).Return(true, nil).Once()
	repo.On("Exists", ctx, int64(5)).Return(false, errors.New("db down")).Once()

	ok, err := service.Exists(ctx, 202)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = service.Exists(ctx, 5)
	assert.Error(t, err)

	ok, err = service.Exists(ctx, -1)
	require.NoError(t, err)
	assert.False(t, ok)
	repo.AssertNotCalled(t, "Exists", ctx, int64(-1))
}

func TestPassengerService_GetByID(t *testing.T) {
	repo := &MockPassengerRepository{}
	service := NewPassengerService(repo, logger.Discard())
	ctx := context.Background()

	repo.On("GetByID", ctx, int64(7)).Return(&domain.Passenger{ID: 7, FirstName: "Ada"}, nil).Once()

	p, err := service.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.FirstName)

	_, err = service.GetByID(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPassengerService_Register(t *testing.T) {
	repo := &MockPassengerRepository{}
	service := NewPassengerService(repo, logger.Discard())
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(p *domain.Passenger) bool {
		return p.FirstName == "Grace" && p.Email == "grace@example.com"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Passenger).ID = 11
	}).Return(nil).Once()

	p, err := service.Register(ctx, &domain.Passenger{FirstName: " Grace ", LastName: "Hopper", Email: "grace@example.com "})
	require.NoError(t, err)
	assert.Equal(t, int64(11), p.ID)

	_, err = service.Register(ctx, &domain.Passenger{FirstName: "Nameless"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	repo.AssertExpectations(t)
}
