package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func tripRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "route_from", "route_to", "trip_date", "trip_time", "vehicle_code",
		"total_seats", "price_per_seat", "available_seats", "status",
	})
}

func lockRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "trip_id", "seat_code", "session_id", "customer_id", "status", "created_at", "expires_at",
	})
}

func TestReconcileLocksGrantsNewSeats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM trips WHERE id=\\? LIMIT 1 FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(tripRows().AddRow(7, "Jakarta", "Bandung", "2025-06-10", "08:00", "BUS-01", 12, 150000, 12, models.TripScheduled))
	mock.ExpectQuery("SELECT DISTINCT bp.seat_code").
		WillReturnRows(sqlmock.NewRows([]string{"seat_code"}))
	mock.ExpectQuery("FROM seat_locks").
		WithArgs(int64(7), models.LockHeld, testNow).
		WillReturnRows(lockRows())
	mock.ExpectExec("INSERT INTO seat_locks").
		WithArgs(int64(7), "A1", "sess-1", nil, models.LockHeld, testNow, testNow.Add(15*time.Minute)).
		WillReturnResult(sqlmock.NewResult(101, 1))
	mock.ExpectExec("INSERT INTO seat_locks").
		WithArgs(int64(7), "A2", "sess-1", nil, models.LockHeld, testNow, testNow.Add(15*time.Minute)).
		WillReturnResult(sqlmock.NewResult(102, 1))
	mock.ExpectCommit()

	svc := LockService{
		TripRepo:     repositories.TripRepo{DB: db},
		SeatLockRepo: repositories.SeatLockRepo{DB: db},
		BookingRepo:  repositories.BookingRepo{DB: db},
		DB:           db,
		Now:          func() time.Time { return testNow },
	}

	grant, err := svc.ReconcileLocks(context.Background(), ReconcileInput{
		TripID:    7,
		Seats:     []string{"A1", "A2"},
		SessionID: "sess-1",
	})
	if err != nil {
		t.Fatalf("reconcile error: %v", err)
	}
	if len(grant.Seats) != 2 || grant.Seats[0] != "A1" || grant.Seats[1] != "A2" {
		t.Fatalf("grant seats = %v", grant.Seats)
	}
	if !grant.ExpiresAt.Equal(testNow.Add(15 * time.Minute)) {
		t.Fatalf("grant expiry = %v", grant.ExpiresAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReconcileLocksRejectsForeignLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM trips WHERE id=\\? LIMIT 1 FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(tripRows().AddRow(7, "Jakarta", "Bandung", "2025-06-10", "08:00", "BUS-01", 12, 150000, 12, models.TripScheduled))
	mock.ExpectQuery("SELECT DISTINCT bp.seat_code").
		WillReturnRows(sqlmock.NewRows([]string{"seat_code"}))
	mock.ExpectQuery("FROM seat_locks").
		WillReturnRows(lockRows().
			AddRow(55, 7, "A1", "sess-other", 0, models.LockHeld, testNow, testNow.Add(10*time.Minute)))
	mock.ExpectRollback()

	svc := LockService{
		TripRepo:     repositories.TripRepo{DB: db},
		SeatLockRepo: repositories.SeatLockRepo{DB: db},
		BookingRepo:  repositories.BookingRepo{DB: db},
		DB:           db,
		Now:          func() time.Time { return testNow },
	}

	_, err = svc.ReconcileLocks(context.Background(), ReconcileInput{
		TripID:    7,
		Seats:     []string{"A1"},
		SessionID: "sess-1",
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	var conflict domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("error is not a ConflictError: %v", err)
	}
	if len(conflict.Seats) != 1 || conflict.Seats[0] != "A1" {
		t.Fatalf("conflict seats = %v", conflict.Seats)
	}
	if conflict.Blocking["A1"] != "sess-other" {
		t.Fatalf("conflict blocking = %v", conflict.Blocking)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReconcileLocksRejectsBookedSeat(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM trips WHERE id=\\? LIMIT 1 FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(tripRows().AddRow(7, "Jakarta", "Bandung", "2025-06-10", "08:00", "BUS-01", 12, 150000, 10, models.TripScheduled))
	mock.ExpectQuery("SELECT DISTINCT bp.seat_code").
		WillReturnRows(sqlmock.NewRows([]string{"seat_code"}).AddRow("A1"))
	mock.ExpectRollback()

	svc := LockService{
		TripRepo:     repositories.TripRepo{DB: db},
		SeatLockRepo: repositories.SeatLockRepo{DB: db},
		BookingRepo:  repositories.BookingRepo{DB: db},
		DB:           db,
		Now:          func() time.Time { return testNow },
	}

	_, err = svc.ReconcileLocks(context.Background(), ReconcileInput{
		TripID:    7,
		Seats:     []string{"A1", "B1"},
		SessionID: "sess-1",
	})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReconcileLocksSwapsSeatSet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM trips WHERE id=\\? LIMIT 1 FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(tripRows().AddRow(7, "Jakarta", "Bandung", "2025-06-10", "08:00", "BUS-01", 12, 150000, 12, models.TripScheduled))
	mock.ExpectQuery("SELECT DISTINCT bp.seat_code").
		WillReturnRows(sqlmock.NewRows([]string{"seat_code"}))
	mock.ExpectQuery("FROM seat_locks").
		WillReturnRows(lockRows().
			AddRow(40, 7, "A1", "sess-1", 0, models.LockHeld, testNow, testNow.Add(5*time.Minute)).
			AddRow(41, 7, "A2", "sess-1", 0, models.LockHeld, testNow, testNow.Add(5*time.Minute)))
	// A2 dropped, A1 renewed, B1 added
	mock.ExpectExec("UPDATE seat_locks SET status=\\?").
		WithArgs(models.LockReleased, int64(41)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE seat_locks SET expires_at=\\?").
		WithArgs(testNow.Add(15*time.Minute), int64(40)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO seat_locks").
		WithArgs(int64(7), "B1", "sess-1", nil, models.LockHeld, testNow, testNow.Add(15*time.Minute)).
		WillReturnResult(sqlmock.NewResult(103, 1))
	mock.ExpectCommit()

	svc := LockService{
		TripRepo:     repositories.TripRepo{DB: db},
		SeatLockRepo: repositories.SeatLockRepo{DB: db},
		BookingRepo:  repositories.BookingRepo{DB: db},
		DB:           db,
		Now:          func() time.Time { return testNow },
	}

	grant, err := svc.ReconcileLocks(context.Background(), ReconcileInput{
		TripID:    7,
		Seats:     []string{"A1", "B1"},
		SessionID: "sess-1",
	})
	if err != nil {
		t.Fatalf("reconcile error: %v", err)
	}
	if len(grant.Seats) != 2 || grant.Seats[0] != "A1" || grant.Seats[1] != "B1" {
		t.Fatalf("grant seats = %v", grant.Seats)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReconcileLocksRequiresSession(t *testing.T) {
	svc := LockService{}
	_, err := svc.ReconcileLocks(context.Background(), ReconcileInput{TripID: 1, Seats: []string{"A1"}})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCleanupExpiredLocks(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE seat_locks SET status=\\? WHERE status=\\? AND expires_at <= \\?").
		WithArgs(models.LockExpired, models.LockHeld, testNow).
		WillReturnResult(sqlmock.NewResult(0, 3))

	svc := LockService{
		SeatLockRepo: repositories.SeatLockRepo{DB: db},
		DB:           db,
		Now:          func() time.Time { return testNow },
	}
	n, err := svc.CleanupExpiredLocks(context.Background(), 0)
	if err != nil {
		t.Fatalf("cleanup error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expired = %d, want 3", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
