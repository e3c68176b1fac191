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

type PaymentRepo struct {
	DB *sql.DB
}

func (r PaymentRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r PaymentRepo) Insert(q intdb.Queryer, p models.PaymentSession) (int64, error) {
	res, err := q.Exec(`
		INSERT INTO payment_sessions (reference, booking_id, amount, method, status)
		VALUES (?, ?, ?, ?, ?)`,
		p.Reference, p.BookingID, p.Amount, p.Method, p.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r PaymentRepo) GetByReference(q intdb.Queryer, reference string) (models.PaymentSession, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return models.PaymentSession{}, domain.NotFoundError{Resource: "payment session"}
	}
	var p models.PaymentSession
	err := q.QueryRow(`
		SELECT id, reference, booking_id, amount, method, status, created_at, updated_at
		FROM payment_sessions
		WHERE reference=? LIMIT 1`, reference).Scan(
		&p.ID,
		&p.Reference,
		&p.BookingID,
		&p.Amount,
		&p.Method,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PaymentSession{}, domain.NotFoundError{Resource: "payment session"}
		}
		return models.PaymentSession{}, err
	}
	return p, nil
}

// UpdateStatus moves a payment session from one status to another.
// Conditional on the current status so a completed session cannot be
// replayed into a different outcome.
func (r PaymentRepo) UpdateStatus(q intdb.Queryer, reference, from, to string) (bool, error) {
	res, err := q.Exec(`
		UPDATE payment_sessions SET status=? WHERE reference=? AND status=?`,
		to, reference, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
