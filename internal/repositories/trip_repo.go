package repositories

import (
	"database/sql"
	"errors"
	"strings"

	intconfig "busbooking/internal/config"
	intdb "busbooking/internal/db"
	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
)

type TripRepo struct {
	DB *sql.DB
}

func (r TripRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const tripColumns = `id, route_from, route_to, trip_date, trip_time, vehicle_code,
	total_seats, price_per_seat, available_seats, status`

func scanTrip(row *sql.Row) (models.Trip, error) {
	var t models.Trip
	err := row.Scan(
		&t.ID,
		&t.RouteFrom,
		&t.RouteTo,
		&t.TripDate,
		&t.TripTime,
		&t.VehicleCode,
		&t.TotalSeats,
		&t.PricePerSeat,
		&t.AvailableSeats,
		&t.Status,
	)
	return t, err
}

// Create inserts a new schedule; available_seats starts at total_seats.
func (r TripRepo) Create(in models.TripInput) (models.Trip, error) {
	db := r.db()
	res, err := db.Exec(`
		INSERT INTO trips (route_from, route_to, trip_date, trip_time, vehicle_code,
			total_seats, price_per_seat, available_seats, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(in.RouteFrom),
		strings.TrimSpace(in.RouteTo),
		strings.TrimSpace(in.TripDate),
		strings.TrimSpace(in.TripTime),
		strings.TrimSpace(in.VehicleCode),
		in.TotalSeats,
		in.PricePerSeat,
		in.TotalSeats,
		models.TripScheduled,
	)
	if err != nil {
		return models.Trip{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Trip{}, err
	}
	return r.GetByID(id)
}

func (r TripRepo) GetByID(id int64) (models.Trip, error) {
	return r.get(r.db(), id, "")
}

// GetForUpdate reads the trip row under an exclusive row lock. Every
// mutating path in the core takes this lock first, which serializes
// reconciliations and booking transitions per trip.
func (r TripRepo) GetForUpdate(q intdb.Queryer, id int64) (models.Trip, error) {
	return r.get(q, id, " FOR UPDATE")
}

func (r TripRepo) get(q intdb.Queryer, id int64, suffix string) (models.Trip, error) {
	if id <= 0 {
		return models.Trip{}, domain.NotFoundError{Resource: "trip"}
	}
	t, err := scanTrip(q.QueryRow(`SELECT `+tripColumns+` FROM trips WHERE id=? LIMIT 1`+suffix, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Trip{}, domain.NotFoundError{Resource: "trip"}
		}
		return models.Trip{}, err
	}
	return t, nil
}

func (r TripRepo) List() ([]models.Trip, error) {
	rows, err := r.db().Query(`SELECT ` + tripColumns + ` FROM trips ORDER BY trip_date ASC, trip_time ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		var t models.Trip
		if err := rows.Scan(
			&t.ID,
			&t.RouteFrom,
			&t.RouteTo,
			&t.TripDate,
			&t.TripTime,
			&t.VehicleCode,
			&t.TotalSeats,
			&t.PricePerSeat,
			&t.AvailableSeats,
			&t.Status,
		); err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AdjustAvailableSeats moves the denormalized counter by delta, clamped
// to [0, total_seats] so a stray double-adjust can never push it out of
// range. Must run inside the same transaction as the booking transition
// that justifies it.
func (r TripRepo) AdjustAvailableSeats(q intdb.Queryer, id int64, delta int) error {
	_, err := q.Exec(`
		UPDATE trips
		SET available_seats = LEAST(total_seats, GREATEST(available_seats + ?, 0))
		WHERE id=?`, delta, id)
	return err
}

// SetStatus moves the trip itself (scheduled/cancelled/completed).
func (r TripRepo) SetStatus(q intdb.Queryer, id int64, status string) error {
	_, err := q.Exec(`UPDATE trips SET status=? WHERE id=?`, status, id)
	return err
}
