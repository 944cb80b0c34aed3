package passengers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/skynet/internal/domain"
	"github.com/Domenick1991/skynet/internal/repository"
	"github.com/sirupsen/logrus"
)

type PassengerUseCase interface {
	Register(ctx context.Context, p *domain.Passenger) (*domain.Passenger, error)
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
	List(ctx context.Context) ([]domain.Passenger, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type PassengerService struct {
	repo repository.PassengerRepository
	log  logrus.FieldLogger
}

func NewPassengerService(repo repository.PassengerRepository, log logrus.FieldLogger) *PassengerService {
	return &PassengerService{repo: repo, log: log}
}

func (s *PassengerService) Register(ctx context.Context, p *domain.Passenger) (*domain.Passenger, error) {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	if p.FirstName == "" || p.LastName == "" {
		return nil, fmt.Errorf("%w: first and last name are required", domain.ErrInvalidArgument)
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.WithField("passenger_id", p.ID).Info("passenger registered")
	return p, nil
}

func (s *PassengerService) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	if id <= 0 {
		return nil, domain.ErrPassengerNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *PassengerService) List(ctx context.Context) ([]domain.Passenger, error) {
	return s.repo.List(ctx)
}

// Exists never reports a non-positive id as present.
func (s *PassengerService) Exists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	return s.repo.Exists(ctx, id)
}

var _ PassengerUseCase = (*PassengerService)(nil)
