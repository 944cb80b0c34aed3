package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/skynet/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	LockSlot(ctx context.Context, slotKey string) error
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, flight *domain.Flight, expected domain.FlightStatus) error
	UpdateStatus(ctx context.Context, id int64, from, to domain.FlightStatus) (*domain.Flight, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	List(ctx context.Context) ([]domain.Flight, error)
	ListByAirline(ctx context.Context, airlineID int64) ([]domain.Flight, error)
	ListByStatus(ctx context.Context, status domain.FlightStatus) ([]domain.Flight, error)
	SearchByDate(ctx context.Context, date time.Time) ([]domain.Flight, error)
	SearchByRoute(ctx context.Context, depAirportID, arrAirportID int64) ([]domain.Flight, error)
	SearchByRouteAndDate(ctx context.Context, depAirportID, arrAirportID int64, date time.Time) ([]domain.Flight, error)
	ExistsDuplicate(ctx context.Context, flight *domain.Flight, excludeID int64) (bool, error)
}

type PGFlightRepository struct {
	pool *pgxpool.Pool
	conn
}

func NewFlightRepository(pool *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{pool: pool, conn: conn{pool: pool}}
}

const flightColumns = `id, airline_id, dep_airport_id, arr_airport_id, departure_time, arrival_time,
	first_price, business_price, economy_price, luggage_price, weight_price, status, created_at, updated_at`

// departureDate compares slot dates in UTC, matching domain.CalendarDate.
const departureDate = `(departure_time AT TIME ZONE 'UTC')::date`

func (r *PGFlightRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// LockSlot takes a transaction-scoped advisory lock so two creates for the same
// slot cannot both pass the duplicate check.
func (r *PGFlightRepository) LockSlot(ctx context.Context, slotKey string) error {
	if _, err := r.exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, slotKey); err != nil {
		return fmt.Errorf("lock flight slot: %w", err)
	}
	return nil
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	err := r.queryRow(ctx, `INSERT INTO flights (airline_id, dep_airport_id, arr_airport_id, departure_time, arrival_time,
		first_price, business_price, economy_price, luggage_price, weight_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		flight.AirlineID, flight.DepartureAirportID, flight.ArrivalAirportID, flight.DepartureTime, nullableTime(flight.ArrivalTime),
		flight.FirstPrice, flight.BusinessPrice, flight.EconomyPrice, flight.LuggagePrice, flight.WeightPrice, flight.Status).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create flight: %w", err)
	}
	return nil
}

// Update writes the flight only while its stored status is still expected.
func (r *PGFlightRepository) Update(ctx context.Context, flight *domain.Flight, expected domain.FlightStatus) error {
	err := r.queryRow(ctx, `UPDATE flights SET airline_id=$1, dep_airport_id=$2, arr_airport_id=$3, departure_time=$4, arrival_time=$5,
		first_price=$6, business_price=$7, economy_price=$8, luggage_price=$9, weight_price=$10, status=$11, updated_at=now()
		WHERE id=$12 AND status=$13
		RETURNING created_at, updated_at`,
		flight.AirlineID, flight.DepartureAirportID, flight.ArrivalAirportID, flight.DepartureTime, nullableTime(flight.ArrivalTime),
		flight.FirstPrice, flight.BusinessPrice, flight.EconomyPrice, flight.LuggagePrice, flight.WeightPrice, flight.Status, flight.ID, expected).
		Scan(&flight.CreatedAt, &flight.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missedWrite(ctx, flight.ID)
		}
		return fmt.Errorf("update flight: %w", err)
	}
	return nil
}

// UpdateStatus moves the flight from one status to another. It fails with
// domain.ErrFlightStatusChanged when the stored status is no longer from.
func (r *PGFlightRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.FlightStatus) (*domain.Flight, error) {
	row := r.queryRow(ctx, `UPDATE flights SET status=$1, updated_at=now() WHERE id=$2 AND status=$3 RETURNING `+flightColumns, to, id, from)
	f, err := scanFlight(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.missedWrite(ctx, id)
		}
		return nil, fmt.Errorf("update flight status: %w", err)
	}
	return f, nil
}

// missedWrite tells a deleted flight apart from one whose status moved on.
func (r *PGFlightRepository) missedWrite(ctx context.Context, id int64) error {
	var exists bool
	if err := r.queryRow(ctx, `SELECT EXISTS(SELECT 1 FROM flights WHERE id=$1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check flight %d: %w", id, err)
	}
	if !exists {
		return domain.ErrFlightNotFound
	}
	return domain.ErrFlightStatusChanged
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete flight: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.queryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, fmt.Errorf("get flight: %w", err)
	}
	return f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	return r.list(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY id`)
}

func (r *PGFlightRepository) ListByAirline(ctx context.Context, airlineID int64) ([]domain.Flight, error) {
	return r.list(ctx, `SELECT `+flightColumns+` FROM flights WHERE airline_id=$1 ORDER BY id`, airlineID)
}

func (r *PGFlightRepository) ListByStatus(ctx context.Context, status domain.FlightStatus) ([]domain.Flight, error) {
	return r.list(ctx, `SELECT `+flightColumns+` FROM flights WHERE status=$1 ORDER BY id`, status)
}

func (r *PGFlightRepository) SearchByDate(ctx context.Context, date time.Time) ([]domain.Flight, error) {
	return r.list(ctx, `SELECT `+flightColumns+` FROM flights WHERE `+departureDate+` = $1::date ORDER BY id`, domain.CalendarDate(date))
}

func (r *PGFlightRepository) SearchByRoute(ctx context.Context, depAirportID, arrAirportID int64) ([]domain.Flight, error) {
	return r.list(ctx, `SELECT `+flightColumns+` FROM flights WHERE dep_airport_id=$1 AND arr_airport_id=$2 ORDER BY id`, depAirportID, arrAirportID)
}

func (r *PGFlightRepository) SearchByRouteAndDate(ctx context.Context, depAirportID, arrAirportID int64, date time.Time) ([]domain.Flight, error) {
	return r.list(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE dep_airport_id=$1 AND arr_airport_id=$2 AND `+departureDate+` = $3::date ORDER BY id`,
		depAirportID, arrAirportID, domain.CalendarDate(date))
}

// ExistsDuplicate looks for another flight in the same carrier/route/date slot.
// excludeID <= 0 means nothing is excluded.
func (r *PGFlightRepository) ExistsDuplicate(ctx context.Context, flight *domain.Flight, excludeID int64) (bool, error) {
	var exists bool
	err := r.queryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM flights
		WHERE airline_id=$1 AND dep_airport_id=$2 AND arr_airport_id=$3 AND `+departureDate+` = $4::date
		AND ($5::bigint <= 0 OR id <> $5::bigint))`,
		flight.AirlineID, flight.DepartureAirportID, flight.ArrivalAirportID, flight.DepartureDate(), excludeID).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check duplicate flight: %w", err)
	}
	return exists, nil
}

func (r *PGFlightRepository) list(ctx context.Context, sql string, args ...any) ([]domain.Flight, error) {
	rows, err := r.query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var (
		f       domain.Flight
		arrival *time.Time
	)
	if err := row.Scan(&f.ID, &f.AirlineID, &f.DepartureAirportID, &f.ArrivalAirportID, &f.DepartureTime, &arrival,
		&f.FirstPrice, &f.BusinessPrice, &f.EconomyPrice, &f.LuggagePrice, &f.WeightPrice, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	if arrival != nil {
		f.ArrivalTime = *arrival
	}
	return &f, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

var _ FlightRepository = (*PGFlightRepository)(nil)
