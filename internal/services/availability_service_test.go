package services

import (
	"testing"
	"time"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestTripSeatsDedupesAcrossBookedAndLocked(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM trips WHERE id=\\? LIMIT 1").
		WithArgs(int64(7)).
		WillReturnRows(tripRows().AddRow(7, "Jakarta", "Bandung", "2025-06-10", "08:00", "BUS-01", 12, 150000, 9, models.TripScheduled))
	mock.ExpectQuery("SELECT DISTINCT bp.seat_code").
		WillReturnRows(sqlmock.NewRows([]string{"seat_code"}).AddRow("A1").AddRow("A2"))
	// A1 is both pending-booked and still carrying a held lock; the count
	// must not charge it twice.
	mock.ExpectQuery("FROM seat_locks").
		WithArgs(int64(7), models.LockHeld, testNow).
		WillReturnRows(lockRows().
			AddRow(40, 7, "A1", "sess-1", 0, models.LockHeld, testNow, testNow.Add(5*time.Minute)).
			AddRow(41, 7, "B1", "sess-2", 0, models.LockHeld, testNow, testNow.Add(5*time.Minute)))

	svc := AvailabilityService{
		TripRepo:     repositories.TripRepo{DB: db},
		BookingRepo:  repositories.BookingRepo{DB: db},
		SeatLockRepo: repositories.SeatLockRepo{DB: db},
		DB:           db,
		Now:          func() time.Time { return testNow },
	}

	out, err := svc.TripSeats(7)
	if err != nil {
		t.Fatalf("trip seats error: %v", err)
	}
	if out.TotalSeats != 12 {
		t.Fatalf("total = %d", out.TotalSeats)
	}
	if len(out.BookedSeats) != 2 {
		t.Fatalf("booked = %v", out.BookedSeats)
	}
	if len(out.LockedSeats) != 2 {
		t.Fatalf("locked = %v", out.LockedSeats)
	}
	// A1, A2, B1 taken once each
	if out.Available != 9 {
		t.Fatalf("available = %d, want 9", out.Available)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTripSeatsUnknownTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM trips WHERE id=\\? LIMIT 1").
		WithArgs(int64(99)).
		WillReturnRows(tripRows())

	svc := AvailabilityService{
		TripRepo: repositories.TripRepo{DB: db},
		DB:       db,
		Now:      func() time.Time { return testNow },
	}

	_, err = svc.TripSeats(99)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
