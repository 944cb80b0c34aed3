package domain

import "time"

// Passenger is the directory's view of a traveller. The booking side only
// ever asks whether one exists.
type Passenger struct {
	ID          int64     `db:"id"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	Email       string    `db:"email"`
	Nationality string    `db:"nationality"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
