package repositories

import (
	"database/sql"
	"strings"
	"time"

	intconfig "busbooking/internal/config"
	intdb "busbooking/internal/db"
	"busbooking/internal/domain/models"
)

type SeatLockRepo struct {
	DB *sql.DB
}

func (r SeatLockRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

func seatArgs(seats []string) []any {
	out := make([]any, 0, len(seats))
	for _, s := range seats {
		out = append(out, s)
	}
	return out
}

func idArgs(ids []int64) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, id)
	}
	return out
}

const lockColumns = `id, trip_id, seat_code, session_id, COALESCE(customer_id, 0), status, created_at, expires_at`

func collectLocks(rows *sql.Rows) ([]models.SeatLock, error) {
	defer rows.Close()
	out := []models.SeatLock{}
	for rows.Next() {
		var l models.SeatLock
		if err := rows.Scan(
			&l.ID,
			&l.TripID,
			&l.SeatCode,
			&l.SessionID,
			&l.CustomerID,
			&l.Status,
			&l.CreatedAt,
			&l.ExpiresAt,
		); err != nil {
			return out, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ActiveHeldByTrip returns unexpired held locks on a trip, any session.
func (r SeatLockRepo) ActiveHeldByTrip(q intdb.Queryer, tripID int64, now time.Time) ([]models.SeatLock, error) {
	rows, err := q.Query(`
		SELECT `+lockColumns+`
		FROM seat_locks
		WHERE trip_id=? AND status=? AND expires_at > ?
		ORDER BY seat_code ASC, id ASC`,
		tripID, models.LockHeld, now)
	if err != nil {
		return nil, err
	}
	return collectLocks(rows)
}

// ActiveBySession returns the session's unexpired held and attached
// locks on a trip.
func (r SeatLockRepo) ActiveBySession(q intdb.Queryer, tripID int64, sessionID string, now time.Time) ([]models.SeatLock, error) {
	rows, err := q.Query(`
		SELECT `+lockColumns+`
		FROM seat_locks
		WHERE trip_id=? AND session_id=? AND status IN (?, ?) AND expires_at > ?
		ORDER BY seat_code ASC, id ASC`,
		tripID, sessionID, models.LockHeld, models.LockAttached, now)
	if err != nil {
		return nil, err
	}
	return collectLocks(rows)
}

func (r SeatLockRepo) Insert(q intdb.Queryer, l models.SeatLock) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO seat_locks (trip_id, seat_code, session_id, customer_id, status, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.TripID,
		l.SeatCode,
		l.SessionID,
		nullCustomer(l.CustomerID),
		l.Status,
		l.CreatedAt,
		l.ExpiresAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func nullCustomer(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}

// ExtendByIDs pushes expires_at for the given rows to the shared expiry.
func (r SeatLockRepo) ExtendByIDs(q intdb.Queryer, ids []int64, expiresAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	args := append([]any{expiresAt}, idArgs(ids)...)
	_, err := q.Exec(`UPDATE seat_locks SET expires_at=? WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	return err
}

// UpdateStatusByIDs flips the given rows to status unconditionally;
// callers select the rows under the trip lock first.
func (r SeatLockRepo) UpdateStatusByIDs(q intdb.Queryer, ids []int64, status string) error {
	if len(ids) == 0 {
		return nil
	}
	args := append([]any{status}, idArgs(ids)...)
	_, err := q.Exec(`UPDATE seat_locks SET status=? WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	return err
}

// ReleaseSession drops a session's held locks, optionally narrowed to a
// trip and/or seat set. Returns the number of rows released.
func (r SeatLockRepo) ReleaseSession(q intdb.Queryer, tripID int64, sessionID string, seats []string) (int64, error) {
	query := `UPDATE seat_locks SET status=? WHERE session_id=? AND status=?`
	args := []any{models.LockReleased, sessionID, models.LockHeld}
	if tripID > 0 {
		query += ` AND trip_id=?`
		args = append(args, tripID)
	}
	if len(seats) > 0 {
		query += ` AND seat_code IN (` + placeholders(len(seats)) + `)`
		args = append(args, seatArgs(seats)...)
	}
	res, err := q.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// AttachSession flips a session's unexpired held locks to attached,
// optionally narrowed to a seat set. Returns rows transitioned.
func (r SeatLockRepo) AttachSession(q intdb.Queryer, tripID int64, sessionID string, seats []string, now time.Time) (int64, error) {
	query := `UPDATE seat_locks SET status=? WHERE trip_id=? AND session_id=? AND status=? AND expires_at > ?`
	args := []any{models.LockAttached, tripID, sessionID, models.LockHeld, now}
	if len(seats) > 0 {
		query += ` AND seat_code IN (` + placeholders(len(seats)) + `)`
		args = append(args, seatArgs(seats)...)
	}
	res, err := q.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExtendSession renews all of a session's unexpired locks on a trip to
// the new shared expiry. Sessions renew their locks together, not
// seat by seat.
func (r SeatLockRepo) ExtendSession(q intdb.Queryer, tripID int64, sessionID string, expiresAt, now time.Time) (int64, error) {
	res, err := q.Exec(`
		UPDATE seat_locks
		SET expires_at=?
		WHERE trip_id=? AND session_id=? AND status IN (?, ?) AND expires_at > ?`,
		expiresAt, tripID, sessionID, models.LockHeld, models.LockAttached, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExpireOverdue transitions held locks past their expiry to expired.
// The conditional WHERE keeps the sweep idempotent and safe against a
// concurrent sweep or reconciliation. tripID of zero sweeps all trips.
func (r SeatLockRepo) ExpireOverdue(q intdb.Queryer, tripID int64, now time.Time) (int64, error) {
	query := `UPDATE seat_locks SET status=? WHERE status=? AND expires_at <= ?`
	args := []any{models.LockExpired, models.LockHeld, now}
	if tripID > 0 {
		query += ` AND trip_id=?`
		args = append(args, tripID)
	}
	res, err := q.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ReleaseAllByTrip drops every held lock on a trip, used when the
// schedule itself is cancelled.
func (r SeatLockRepo) ReleaseAllByTrip(q intdb.Queryer, tripID int64) (int64, error) {
	res, err := q.Exec(`UPDATE seat_locks SET status=? WHERE trip_id=? AND status=?`,
		models.LockReleased, tripID, models.LockHeld)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ReleaseByTripSeats is the best-effort fallback used when a booking has
// no recorded lock ids: match by value (trip, session, seats) and drop
// anything still claiming the seats.
func (r SeatLockRepo) ReleaseByTripSeats(q intdb.Queryer, tripID int64, sessionID string, seats []string) (int64, error) {
	if len(seats) == 0 {
		return 0, nil
	}
	query := `UPDATE seat_locks SET status=? WHERE trip_id=? AND status IN (?, ?) AND seat_code IN (` + placeholders(len(seats)) + `)`
	args := []any{models.LockReleased, tripID, models.LockHeld, models.LockAttached}
	args = append(args, seatArgs(seats)...)
	if sessionID != "" {
		query += ` AND session_id=?`
		args = append(args, sessionID)
	}
	res, err := q.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
