package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/skynet/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Constraint names come from migrations/0002_bookings.sql.
const (
	constraintBookingPNR            = "bookings_pnr_key"
	constraintBookingIdempotencyKey = "bookings_idempotency_key_key"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error)
}

type PGBookingRepository struct {
	conn
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{conn: conn{pool: pool}}
}

const bookingColumns = `id, pnr, flight_id, passenger_id, seat_id, luggage_count, luggage_weight, status,
	COALESCE(idempotency_key, ''), created_at, updated_at`

// Create inserts the booking. Collisions on the pnr or idempotency key unique
// constraints come back as ErrDuplicatePNR and ErrDuplicateIdempotencyKey.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	if booking.Status == "" {
		booking.Status = domain.BookingStatusBooked
	}
	err := r.queryRow(ctx, `INSERT INTO bookings (pnr, flight_id, passenger_id, seat_id, luggage_count, luggage_weight, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING id, created_at, updated_at`,
		booking.PNR, booking.FlightID, booking.PassengerID, booking.SeatID, booking.LuggageCount, booking.LuggageWeight,
		booking.Status, booking.IdempotencyKey).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err, constraintBookingPNR):
		return domain.ErrDuplicatePNR
	case isUniqueViolation(err, constraintBookingIdempotencyKey):
		return domain.ErrDuplicateIdempotencyKey
	default:
		return fmt.Errorf("create booking: %w", err)
	}
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
}

func (r *PGBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr=$1`, pnr)
}

// FindByIdempotencyKey returns nil, nil when no booking carries the key.
func (r *PGBookingRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error) {
	if key == "" {
		return nil, nil
	}
	b, err := r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE idempotency_key=$1`, key)
	if errors.Is(err, domain.ErrBookingNotFound) {
		return nil, nil
	}
	return b, err
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	return r.get(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+bookingColumns, status, id)
}

func (r *PGBookingRepository) get(ctx context.Context, sql string, args ...any) (*domain.Booking, error) {
	var b domain.Booking
	err := r.queryRow(ctx, sql, args...).Scan(&b.ID, &b.PNR, &b.FlightID, &b.PassengerID, &b.SeatID,
		&b.LuggageCount, &b.LuggageWeight, &b.Status, &b.IdempotencyKey, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("query booking: %w", err)
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
