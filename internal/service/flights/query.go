package flights

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Domenick1991/skynet/internal/domain"
)

func (s *FlightService) SearchByDate(ctx context.Context, date time.Time) ([]domain.Flight, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidArgument)
	}
	return s.repo.SearchByDate(ctx, date)
}

func (s *FlightService) SearchByRoute(ctx context.Context, depAirportID, arrAirportID int64) ([]domain.Flight, error) {
	if depAirportID <= 0 || arrAirportID <= 0 {
		return nil, domain.ErrInvalidID
	}
	return s.repo.SearchByRoute(ctx, depAirportID, arrAirportID)
}

func (s *FlightService) SearchByRouteAndDate(ctx context.Context, depAirportID, arrAirportID int64, date time.Time) ([]domain.Flight, error) {
	if depAirportID <= 0 || arrAirportID <= 0 {
		return nil, domain.ErrInvalidID
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidArgument)
	}
	return s.repo.SearchByRouteAndDate(ctx, depAirportID, arrAirportID, date)
}

// Price filters match on the lowest cabin fare. Flights with no fare set never match.
func (s *FlightService) FilterByMaxPrice(ctx context.Context, maxPrice float64) ([]domain.Flight, error) {
	return s.FilterByPriceRange(ctx, 0, maxPrice)
}

func (s *FlightService) FilterByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]domain.Flight, error) {
	if minPrice < 0 || maxPrice < minPrice {
		return nil, fmt.Errorf("%w: invalid price range %.2f-%.2f", domain.ErrInvalidArgument, minPrice, maxPrice)
	}
	return s.filter(ctx, func(f *domain.Flight) bool {
		price := f.MinPrice()
		return price > 0 && price >= minPrice && price <= maxPrice
	})
}

// Duration filters skip flights without an arrival time.
func (s *FlightService) FilterByMaxDuration(ctx context.Context, maxMinutes int64) ([]domain.Flight, error) {
	return s.FilterByDurationRange(ctx, 0, maxMinutes)
}

func (s *FlightService) FilterByDurationRange(ctx context.Context, minMinutes, maxMinutes int64) ([]domain.Flight, error) {
	if minMinutes < 0 || maxMinutes < minMinutes {
		return nil, fmt.Errorf("%w: invalid duration range %d-%d", domain.ErrInvalidArgument, minMinutes, maxMinutes)
	}
	return s.filter(ctx, func(f *domain.Flight) bool {
		d, ok := f.DurationMinutes()
		return ok && d >= minMinutes && d <= maxMinutes
	})
}

func (s *FlightService) filter(ctx context.Context, keep func(*domain.Flight) bool) ([]domain.Flight, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Flight, 0, len(all))
	for i := range all {
		if keep(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

type SortKey string

const (
	SortByDepartureTime    SortKey = "departure-time"
	SortByLowestPrice      SortKey = "lowest-price"
	SortByShortestDuration SortKey = "shortest-duration"
)

func ParseSortKey(s string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case SortByDepartureTime, SortByLowestPrice, SortByShortestDuration:
		return key, nil
	}
	return "", fmt.Errorf("%w: unknown sort %q", domain.ErrInvalidArgument, s)
}

// Sort returns a sorted copy. Ties keep their input order, and flights missing
// the sort value (no fare, no arrival) go last in either direction.
func Sort(flights []domain.Flight, key SortKey, descending bool) []domain.Flight {
	out := slices.Clone(flights)
	if out == nil {
		out = []domain.Flight{}
	}

	compare := sortOrder(key)
	slices.SortStableFunc(out, func(a, b domain.Flight) int {
		c, oka, okb := compare(&a, &b)
		switch {
		case !oka && !okb:
			return 0
		case !oka:
			return 1
		case !okb:
			return -1
		}
		if descending {
			return -c
		}
		return c
	})
	return out
}

// sortOrder compares two flights on key. The flags report whether each
// flight has a value to sort by.
func sortOrder(key SortKey) func(a, b *domain.Flight) (int, bool, bool) {
	switch key {
	case SortByLowestPrice:
		return func(a, b *domain.Flight) (int, bool, bool) {
			pa, pb := a.MinPrice(), b.MinPrice()
			return cmp.Compare(pa, pb), pa > 0, pb > 0
		}
	case SortByShortestDuration:
		return func(a, b *domain.Flight) (int, bool, bool) {
			da, oka := a.DurationMinutes()
			db, okb := b.DurationMinutes()
			return cmp.Compare(da, db), oka, okb
		}
	default:
		return func(a, b *domain.Flight) (int, bool, bool) {
			return a.DepartureTime.Compare(b.DepartureTime), !a.DepartureTime.IsZero(), !b.DepartureTime.IsZero()
		}
	}
}
