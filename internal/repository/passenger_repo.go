package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Domenick1991/skynet/config"
	"github.com/Domenick1991/skynet/internal/domain"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB is the subset of *sqlx.DB the passenger directory needs.
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	PingContext(ctx context.Context) error
	Close() error
}

// NewPassengerDB opens the passenger directory database through lib/pq.
func NewPassengerDB(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

type PassengerRepository interface {
	Create(ctx context.Context, p *domain.Passenger) error
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
	List(ctx context.Context) ([]domain.Passenger, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type SQLPassengerRepository struct {
	db DB
}

func NewPassengerRepository(db DB) PassengerRepository {
	return &SQLPassengerRepository{db: db}
}

const passengerColumns = `id, first_name, last_name, email, nationality, created_at, updated_at`

func (r *SQLPassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	query := `
		INSERT INTO passengers (first_name, last_name, email, nationality)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + passengerColumns

	if err := r.db.GetContext(ctx, p, query, p.FirstName, p.LastName, p.Email, p.Nationality); err != nil {
		return fmt.Errorf("failed to create passenger: %w", err)
	}
	return nil
}

func (r *SQLPassengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	var p domain.Passenger
	err := r.db.GetContext(ctx, &p, `SELECT `+passengerColumns+` FROM passengers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPassengerNotFound
		}
		return nil, fmt.Errorf("failed to get passenger: %w", err)
	}
	return &p, nil
}

func (r *SQLPassengerRepository) List(ctx context.Context) ([]domain.Passenger, error) {
	passengers := make([]domain.Passenger, 0)
	if err := r.db.SelectContext(ctx, &passengers, `SELECT `+passengerColumns+` FROM passengers ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list passengers: %w", err)
	}
	return passengers, nil
}

func (r *SQLPassengerRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM passengers WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("failed to check passenger: %w", err)
	}
	return exists, nil
}

var _ PassengerRepository = (*SQLPassengerRepository)(nil)
