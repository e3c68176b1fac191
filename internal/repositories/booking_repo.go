package repositories

import (
	"database/sql"
	"errors"
	"time"

	intconfig "busbooking/internal/config"
	intdb "busbooking/internal/db"
	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
)

type BookingRepo struct {
	DB *sql.DB
}

func (r BookingRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const bookingColumns = `id, reference, trip_id, customer_id, session_id, status, seat_count,
	fare, fees, total, COALESCE(payment_reference, ''), expires_at,
	COALESCE(cancel_reason, ''), cancelled_at, created_at`

func scanBooking(row *sql.Row) (models.Booking, error) {
	var b models.Booking
	var expiresAt, cancelledAt sql.NullTime
	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.TripID,
		&b.CustomerID,
		&b.SessionID,
		&b.Status,
		&b.SeatCount,
		&b.Fare,
		&b.Fees,
		&b.Total,
		&b.PaymentRef,
		&expiresAt,
		&b.CancelReason,
		&cancelledAt,
		&b.CreatedAt,
	)
	if err != nil {
		return b, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		b.ExpiresAt = &t
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}
	return b, nil
}

// Insert stores the booking row; passengers and lock links are inserted
// separately inside the same transaction.
func (r BookingRepo) Insert(q intdb.Queryer, b models.Booking) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO bookings (reference, trip_id, customer_id, session_id, status,
			seat_count, fare, fees, total, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Reference,
		b.TripID,
		b.CustomerID,
		b.SessionID,
		b.Status,
		b.SeatCount,
		b.Fare,
		b.Fees,
		b.Total,
		b.ExpiresAt,
		b.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r BookingRepo) InsertPassengers(q intdb.Queryer, bookingID int64, passengers []models.Passenger) error {
	for _, p := range passengers {
		if _, err := q.Exec(`
			INSERT INTO booking_passengers (booking_id, seat_code, passenger_name, passenger_phone)
			VALUES (?, ?, ?, ?)`,
			bookingID, p.SeatCode, p.Name, p.Phone,
		); err != nil {
			return err
		}
	}
	return nil
}

// LinkLocks records which lock rows the booking consumed so confirm and
// cancel can target exact rows instead of re-deriving a match by value.
func (r BookingRepo) LinkLocks(q intdb.Queryer, bookingID int64, lockIDs []int64) error {
	for _, lockID := range lockIDs {
		if _, err := q.Exec(`INSERT INTO booking_locks (booking_id, lock_id) VALUES (?, ?)`, bookingID, lockID); err != nil {
			return err
		}
	}
	return nil
}

func (r BookingRepo) LockIDs(q intdb.Queryer, bookingID int64) ([]int64, error) {
	rows, err := q.Query(`SELECT lock_id FROM booking_locks WHERE booking_id=? ORDER BY lock_id ASC`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return out, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r BookingRepo) GetByID(id int64) (models.Booking, error) {
	return r.Get(r.db(), id)
}

func (r BookingRepo) Get(q intdb.Queryer, id int64) (models.Booking, error) {
	return r.get(q, id, "")
}

// GetForUpdate locks the booking row; callers lock the trip row first to
// keep a single lock order (trip, then booking) across the core.
func (r BookingRepo) GetForUpdate(q intdb.Queryer, id int64) (models.Booking, error) {
	return r.get(q, id, " FOR UPDATE")
}

func (r BookingRepo) get(q intdb.Queryer, id int64, suffix string) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	b, err := scanBooking(q.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id=? LIMIT 1`+suffix, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking"}
		}
		return models.Booking{}, err
	}
	if err := r.loadPassengers(q, &b); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

func (r BookingRepo) loadPassengers(q intdb.Queryer, b *models.Booking) error {
	rows, err := q.Query(`
		SELECT seat_code, passenger_name, passenger_phone
		FROM booking_passengers
		WHERE booking_id=?
		ORDER BY seat_code ASC, id ASC`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	b.SeatCodes = []string{}
	b.Passengers = []models.Passenger{}
	for rows.Next() {
		var p models.Passenger
		if err := rows.Scan(&p.SeatCode, &p.Name, &p.Phone); err != nil {
			return err
		}
		b.SeatCodes = append(b.SeatCodes, p.SeatCode)
		b.Passengers = append(b.Passengers, p)
	}
	return rows.Err()
}

// ActiveSeatsByTrip returns the deduplicated seat codes held by active
// bookings: confirmed, completed, or pending with an unexpired TTL.
// This is the authoritative "already booked" set; the schema carries no
// uniqueness constraint on (trip, seat), so every conflict check goes
// through here.
func (r BookingRepo) ActiveSeatsByTrip(q intdb.Queryer, tripID int64, now time.Time) ([]string, error) {
	rows, err := q.Query(`
		SELECT DISTINCT bp.seat_code
		FROM bookings b
		JOIN booking_passengers bp ON bp.booking_id = b.id
		WHERE b.trip_id=?
		  AND (b.status IN (?, ?) OR (b.status=? AND b.expires_at > ?))
		ORDER BY bp.seat_code ASC`,
		tripID, models.BookingConfirmed, models.BookingCompleted, models.BookingPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return out, err
		}
		out = append(out, seat)
	}
	return out, rows.Err()
}

// Confirm flips a pending booking to confirmed, clears the TTL and
// records the verified payment reference. Conditional on status so a
// racing confirm cannot apply twice.
func (r BookingRepo) Confirm(q intdb.Queryer, id int64, paymentRef string) (bool, error) {
	res, err := q.Exec(`
		UPDATE bookings
		SET status=?, expires_at=NULL, payment_reference=?
		WHERE id=? AND status=?`,
		models.BookingConfirmed, paymentRef, id, models.BookingPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r BookingRepo) Cancel(q intdb.Queryer, id int64, reason string, now time.Time) (bool, error) {
	res, err := q.Exec(`
		UPDATE bookings
		SET status=?, cancel_reason=?, cancelled_at=?
		WHERE id=? AND status IN (?, ?)`,
		models.BookingCancelled, reason, now, id, models.BookingPending, models.BookingConfirmed)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Expire flips a pending booking past its TTL to expired. Conditional on
// both status and expiry so the lazy path and the sweep cannot
// double-process a row.
func (r BookingRepo) Expire(q intdb.Queryer, id int64, now time.Time) (bool, error) {
	res, err := q.Exec(`
		UPDATE bookings
		SET status=?
		WHERE id=? AND status=? AND expires_at IS NOT NULL AND expires_at <= ?`,
		models.BookingExpired, id, models.BookingPending, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// OverduePendingIDs lists pending bookings whose TTL has passed, for the
// maintenance sweep.
func (r BookingRepo) OverduePendingIDs(q intdb.Queryer, now time.Time) ([]int64, error) {
	rows, err := q.Query(`
		SELECT id FROM bookings
		WHERE status=? AND expires_at IS NOT NULL AND expires_at <= ?
		ORDER BY id ASC`,
		models.BookingPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return out, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ActiveIDsByTrip lists pending and confirmed bookings on a trip, used
// when operations cancels or completes the whole schedule.
func (r BookingRepo) ActiveIDsByTrip(q intdb.Queryer, tripID int64, statuses ...string) ([]int64, error) {
	if len(statuses) == 0 {
		statuses = []string{models.BookingPending, models.BookingConfirmed}
	}
	args := []any{tripID}
	for _, s := range statuses {
		args = append(args, s)
	}
	rows, err := q.Query(`
		SELECT id FROM bookings
		WHERE trip_id=? AND status IN (`+placeholders(len(statuses))+`)
		ORDER BY id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return out, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// CompleteConfirmed moves a trip's confirmed bookings to completed when
// operations marks the schedule done.
func (r BookingRepo) CompleteConfirmed(q intdb.Queryer, tripID int64) (int64, error) {
	res, err := q.Exec(`
		UPDATE bookings SET status=? WHERE trip_id=? AND status=?`,
		models.BookingCompleted, tripID, models.BookingConfirmed)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
