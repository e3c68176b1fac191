package repositories

import (
	"testing"
	"time"

	"busbooking/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var repoNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestExpireOverdueAllTrips(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE seat_locks SET status=\\? WHERE status=\\? AND expires_at <= \\?").
		WithArgs(models.LockExpired, models.LockHeld, repoNow).
		WillReturnResult(sqlmock.NewResult(0, 4))

	repo := SeatLockRepo{DB: db}
	n, err := repo.ExpireOverdue(db, 0, repoNow)
	if err != nil {
		t.Fatalf("expire error: %v", err)
	}
	if n != 4 {
		t.Fatalf("expired = %d, want 4", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExpireOverdueSingleTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE seat_locks SET status=\\? WHERE status=\\? AND expires_at <= \\? AND trip_id=\\?").
		WithArgs(models.LockExpired, models.LockHeld, repoNow, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := SeatLockRepo{DB: db}
	n, err := repo.ExpireOverdue(db, 7, repoNow)
	if err != nil {
		t.Fatalf("expire error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired = %d, want 1", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReleaseSessionNarrowsByTripAndSeats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE seat_locks SET status=\\? WHERE session_id=\\? AND status=\\? AND trip_id=\\? AND seat_code IN").
		WithArgs(models.LockReleased, "sess-1", models.LockHeld, int64(7), "A1", "A2").
		WillReturnResult(sqlmock.NewResult(0, 2))

	repo := SeatLockRepo{DB: db}
	n, err := repo.ReleaseSession(db, 7, "sess-1", []string{"A1", "A2"})
	if err != nil {
		t.Fatalf("release error: %v", err)
	}
	if n != 2 {
		t.Fatalf("released = %d, want 2", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAttachSessionOnlyUnexpiredHeld(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE seat_locks SET status=\\? WHERE trip_id=\\? AND session_id=\\? AND status=\\? AND expires_at > \\?").
		WithArgs(models.LockAttached, int64(7), "sess-1", models.LockHeld, repoNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := SeatLockRepo{DB: db}
	n, err := repo.AttachSession(db, 7, "sess-1", nil, repoNow)
	if err != nil {
		t.Fatalf("attach error: %v", err)
	}
	if n != 1 {
		t.Fatalf("attached = %d, want 1", n)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestActiveBySessionScansLocks(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"id", "trip_id", "seat_code", "session_id", "customer_id", "status", "created_at", "expires_at",
	}).
		AddRow(40, 7, "A1", "sess-1", 0, models.LockHeld, repoNow, repoNow.Add(10*time.Minute)).
		AddRow(41, 7, "A2", "sess-1", 9, models.LockAttached, repoNow, repoNow.Add(10*time.Minute))

	mock.ExpectQuery("FROM seat_locks").
		WithArgs(int64(7), "sess-1", models.LockHeld, models.LockAttached, repoNow).
		WillReturnRows(rows)

	repo := SeatLockRepo{DB: db}
	locks, err := repo.ActiveBySession(db, 7, "sess-1", repoNow)
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	if len(locks) != 2 {
		t.Fatalf("locks = %d, want 2", len(locks))
	}
	if locks[0].SeatCode != "A1" || locks[0].Status != models.LockHeld {
		t.Fatalf("first lock = %+v", locks[0])
	}
	if locks[1].CustomerID != 9 {
		t.Fatalf("second lock customer = %d", locks[1].CustomerID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
