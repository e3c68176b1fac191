package services

import (
	"context"
	"errors"
	"testing"

	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
)

func verifyReason(t *testing.T, err error, want string) {
	t.Helper()
	var pv domain.PaymentVerificationError
	if !errors.As(err, &pv) {
		t.Fatalf("expected payment verification error, got %v", err)
	}
	if pv.Reason != want {
		t.Fatalf("reason = %q, want %q", pv.Reason, want)
	}
}

func TestVerifyForBookingUnknownReference(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM payment_sessions").
		WithArgs("PAY-NOPE").
		WillReturnRows(paymentRows())

	svc := PaymentService{PaymentRepo: repositories.PaymentRepo{DB: db}, DB: db}
	err = svc.VerifyForBooking(db, "PAY-NOPE", 10)
	verifyReason(t, err, domain.PaymentReasonNotFound)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVerifyForBookingNotSuccessful(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM payment_sessions").
		WithArgs("PAY-1").
		WillReturnRows(paymentRows().
			AddRow(1, "PAY-1", 10, 155000, "sandbox", models.PaymentFailed, testNow, testNow))

	svc := PaymentService{PaymentRepo: repositories.PaymentRepo{DB: db}, DB: db}
	err = svc.VerifyForBooking(db, "PAY-1", 10)
	verifyReason(t, err, domain.PaymentReasonNotSuccessful)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVerifyForBookingWrongBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM payment_sessions").
		WithArgs("PAY-1").
		WillReturnRows(paymentRows().
			AddRow(1, "PAY-1", 99, 155000, "sandbox", models.PaymentSuccess, testNow, testNow))

	svc := PaymentService{PaymentRepo: repositories.PaymentRepo{DB: db}, DB: db}
	err = svc.VerifyForBooking(db, "PAY-1", 10)
	verifyReason(t, err, domain.PaymentReasonMismatch)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVerifyForBookingSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM payment_sessions").
		WithArgs("PAY-1").
		WillReturnRows(paymentRows().
			AddRow(1, "PAY-1", 10, 155000, "sandbox", models.PaymentSuccess, testNow, testNow))

	svc := PaymentService{PaymentRepo: repositories.PaymentRepo{DB: db}, DB: db}
	if err := svc.VerifyForBooking(db, "PAY-1", 10); err != nil {
		t.Fatalf("verify error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCompleteSandboxRejectsReplay(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM payment_sessions").
		WithArgs("PAY-1").
		WillReturnRows(paymentRows().
			AddRow(1, "PAY-1", 10, 155000, "sandbox", models.PaymentSuccess, testNow, testNow))
	mock.ExpectRollback()

	svc := PaymentService{PaymentRepo: repositories.PaymentRepo{DB: db}, DB: db}
	_, err = svc.CompleteSandbox(context.Background(), "PAY-1", false)
	if !domain.IsIllegalTransition(err) {
		t.Fatalf("expected illegal transition error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
