package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	intconfig "busbooking/internal/config"
	intdb "busbooking/internal/db"
	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/repositories"
	"busbooking/internal/utils"

	"github.com/google/uuid"
)

// PaymentService is the sandbox payment gateway: it creates payment
// sessions for pending bookings and lets the caller flip them to
// success or failure. Confirmation consults it through VerifyForBooking
// and never trusts the reference string on its own.
type PaymentService struct {
	PaymentRepo repositories.PaymentRepo
	BookingRepo repositories.BookingRepo
	DB          *sql.DB
	RequestID   string
}

func (s PaymentService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

// CreateSandbox opens a payment session for a pending booking. Amount
// is taken from the booking row, not the request.
func (s PaymentService) CreateSandbox(ctx context.Context, bookingID int64, method string) (models.PaymentSession, error) {
	method = strings.TrimSpace(strings.ToLower(method))
	if method == "" {
		method = "sandbox"
	}

	b, err := s.BookingRepo.GetByID(bookingID)
	if err != nil {
		return models.PaymentSession{}, err
	}
	if b.Status != models.BookingPending {
		return models.PaymentSession{}, domain.IllegalTransitionError{
			Resource: "booking", From: b.Status, To: models.BookingConfirmed,
		}
	}

	p := models.PaymentSession{
		Reference: newPaymentReference(),
		BookingID: b.ID,
		Amount:    b.Total,
		Method:    method,
		Status:    models.PaymentCreated,
	}

	var id int64
	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		var err error
		id, err = s.PaymentRepo.Insert(tx, p)
		return err
	})
	if err != nil {
		return models.PaymentSession{}, err
	}
	p.ID = id

	utils.LogEvent(s.RequestID, "payments", "create",
		fmt.Sprintf("reference=%s booking_id=%d amount=%d", p.Reference, p.BookingID, p.Amount))
	return p, nil
}

// CompleteSandbox settles a created payment session as success or
// failure. Settling is one-way; a session that already reached a final
// status cannot be replayed into a different outcome.
func (s PaymentService) CompleteSandbox(ctx context.Context, reference string, succeed bool) (models.PaymentSession, error) {
	reference = strings.TrimSpace(reference)
	target := models.PaymentSuccess
	if !succeed {
		target = models.PaymentFailed
	}

	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		p, err := s.PaymentRepo.GetByReference(tx, reference)
		if err != nil {
			return err
		}
		if p.Status != models.PaymentCreated {
			return domain.IllegalTransitionError{Resource: "payment", From: p.Status, To: target}
		}
		ok, err := s.PaymentRepo.UpdateStatus(tx, reference, models.PaymentCreated, target)
		if err != nil {
			return err
		}
		if !ok {
			return domain.IllegalTransitionError{Resource: "payment", From: p.Status, To: target}
		}
		return nil
	})
	if err != nil {
		return models.PaymentSession{}, err
	}

	utils.LogEvent(s.RequestID, "payments", "complete",
		fmt.Sprintf("reference=%s status=%s", reference, target))
	return s.PaymentRepo.GetByReference(s.db(), reference)
}

// VerifyForBooking checks that the reference names a real payment
// session, that it settled successfully, and that it belongs to the
// booking being confirmed. Each failure mode is reported distinctly so
// the caller can tell a typo from an unpaid or cross-wired payment.
func (s PaymentService) VerifyForBooking(q intdb.Queryer, reference string, bookingID int64) error {
	p, err := s.PaymentRepo.GetByReference(q, reference)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.PaymentVerificationError{Reason: domain.PaymentReasonNotFound, Reference: reference}
		}
		return err
	}
	if p.Status != models.PaymentSuccess {
		return domain.PaymentVerificationError{Reason: domain.PaymentReasonNotSuccessful, Reference: reference}
	}
	if p.BookingID != bookingID {
		return domain.PaymentVerificationError{Reason: domain.PaymentReasonMismatch, Reference: reference}
	}
	return nil
}

func newPaymentReference() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "PAY-" + raw[:12]
}
