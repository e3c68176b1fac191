package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	intconfig "busbooking/internal/config"
	intdb "busbooking/internal/db"
	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/repositories"
	"busbooking/internal/utils"

	"github.com/google/uuid"
)

// DefaultBookingTTL is how long a pending booking may wait for payment.
const DefaultBookingTTL = 15 * time.Minute

// PaymentVerifier asserts that a payment reference is a successful
// payment for exactly the given booking. The booking core treats this
// as an opaque external fact and never inspects payment rows itself.
type PaymentVerifier interface {
	VerifyForBooking(q intdb.Queryer, reference string, bookingID int64) error
}

// BookingService drives the booking state machine: creation from a
// session's locks, payment-backed confirmation, cancellation and
// expiry. Capacity on the trip row moves only here, inside the same
// transaction as the status transition that justifies it.
type BookingService struct {
	TripRepo     repositories.TripRepo
	BookingRepo  repositories.BookingRepo
	SeatLockRepo repositories.SeatLockRepo
	Verifier     PaymentVerifier
	DB           *sql.DB
	BookingTTL   time.Duration
	RequestID    string
	Now          func() time.Time
}

func (s BookingService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s BookingService) ttl() time.Duration {
	if s.BookingTTL > 0 {
		return s.BookingTTL
	}
	return DefaultBookingTTL
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s BookingService) verifier() PaymentVerifier {
	if s.Verifier != nil {
		return s.Verifier
	}
	return PaymentService{DB: s.DB, RequestID: s.RequestID}
}

type CreateBookingInput struct {
	TripID     int64
	Seats      []string
	Passengers []models.Passenger
	SessionID  string
	CustomerID int64
}

// Create converts a session's locks into a pending booking. The session
// must hold an unexpired lock for every requested seat; price comes
// fresh from the trip row and the monetary breakdown is computed here,
// never taken from the caller.
func (s BookingService) Create(ctx context.Context, in CreateBookingInput) (models.Booking, error) {
	if in.SessionID == "" {
		return models.Booking{}, domain.ValidationError{Field: "session_id", Msg: "required"}
	}
	if len(in.Seats) == 0 {
		return models.Booking{}, domain.ValidationError{Field: "seat_numbers", Msg: "at least one seat required"}
	}
	if len(in.Passengers) != len(in.Seats) {
		return models.Booking{}, domain.ValidationError{
			Field: "passengers",
			Msg:   fmt.Sprintf("passenger count %d does not match seat count %d", len(in.Passengers), len(in.Seats)),
		}
	}

	passengers, err := alignPassengers(in.Seats, in.Passengers)
	if err != nil {
		return models.Booking{}, err
	}

	var out models.Booking
	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		now := s.now()

		trip, err := s.TripRepo.GetForUpdate(tx, in.TripID)
		if err != nil {
			return err
		}
		if trip.Status != models.TripScheduled {
			return domain.ValidationError{Field: "trip", Msg: "trip is not open for booking"}
		}

		booked, err := s.BookingRepo.ActiveSeatsByTrip(tx, in.TripID, now)
		if err != nil {
			return err
		}
		if conflicts := intersect(in.Seats, toSet(booked)); len(conflicts) > 0 {
			return domain.ConflictError{Resource: "seat", Msg: "seats already booked", Seats: conflicts}
		}

		locks, err := s.SeatLockRepo.ActiveBySession(tx, in.TripID, in.SessionID, now)
		if err != nil {
			return err
		}
		bySeat := map[string]models.SeatLock{}
		for _, l := range locks {
			bySeat[l.SeatCode] = l
		}

		lockIDs := []int64{}
		heldIDs := []int64{}
		for _, seat := range in.Seats {
			l, ok := bySeat[seat]
			if !ok {
				return domain.ValidationError{Field: "seat_numbers", Msg: "seats not properly locked, try again"}
			}
			lockIDs = append(lockIDs, l.ID)
			if l.Status == models.LockHeld {
				heldIDs = append(heldIDs, l.ID)
			}
		}

		fare := utils.ComputeFareBreakdown(trip.PricePerSeat, len(in.Seats))
		expiresAt := now.Add(s.ttl())

		b := models.Booking{
			Reference:  newBookingReference(),
			TripID:     in.TripID,
			CustomerID: in.CustomerID,
			SessionID:  in.SessionID,
			Status:     models.BookingPending,
			SeatCount:  len(in.Seats),
			SeatCodes:  in.Seats,
			Passengers: passengers,
			Fare:       fare.Fare,
			Fees:       fare.Fees,
			Total:      fare.Total,
			ExpiresAt:  &expiresAt,
			CreatedAt:  now,
		}

		id, err := s.BookingRepo.Insert(tx, b)
		if err != nil {
			return err
		}
		b.ID = id

		if err := s.BookingRepo.InsertPassengers(tx, id, passengers); err != nil {
			return err
		}
		if err := s.SeatLockRepo.UpdateStatusByIDs(tx, heldIDs, models.LockAttached); err != nil {
			return err
		}
		if err := s.BookingRepo.LinkLocks(tx, id, lockIDs); err != nil {
			return err
		}

		out = b
		return nil
	})
	if err != nil {
		return models.Booking{}, err
	}

	utils.LogEvent(s.RequestID, "bookings", "create",
		fmt.Sprintf("booking_id=%d reference=%s trip_id=%d seats=%d", out.ID, out.Reference, out.TripID, out.SeatCount))
	return out, nil
}

// Get returns a booking, lazily expiring it first when it is pending
// and past its TTL. Consumers therefore never observe an overdue
// pending booking, whether or not the sweep has run.
func (s BookingService) Get(ctx context.Context, id int64) (models.Booking, error) {
	b, err := s.BookingRepo.GetByID(id)
	if err != nil {
		return models.Booking{}, err
	}
	if !s.isOverdue(b) {
		return b, nil
	}

	err = intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		return s.expireTx(tx, b, s.now())
	})
	if err != nil {
		return models.Booking{}, err
	}
	return s.BookingRepo.GetByID(id)
}

// Confirm applies an externally verified payment to a pending booking:
// the booking becomes confirmed, its TTL clears, and the trip capacity
// counter drops by the seat count, all in one transaction.
func (s BookingService) Confirm(ctx context.Context, id int64, paymentReference string) (models.Booking, error) {
	paymentReference = strings.TrimSpace(paymentReference)
	if paymentReference == "" {
		return models.Booking{}, domain.ValidationError{Field: "payment_reference", Msg: "required"}
	}

	var expired bool
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		now := s.now()

		b, trip, err := s.lockTripThenBooking(tx, id)
		if err != nil {
			return err
		}

		if b.Status != models.BookingPending {
			return domain.IllegalTransitionError{Resource: "booking", From: b.Status, To: models.BookingConfirmed}
		}
		if s.isOverdueAt(b, now) {
			// Heal and commit; the error goes out after the commit so
			// the expiry is not rolled back with it.
			expired = true
			return s.expireTx(tx, b, now)
		}

		if err := s.verifier().VerifyForBooking(tx, paymentReference, b.ID); err != nil {
			return err
		}

		ok, err := s.BookingRepo.Confirm(tx, b.ID, paymentReference)
		if err != nil {
			return err
		}
		if !ok {
			return domain.IllegalTransitionError{Resource: "booking", From: b.Status, To: models.BookingConfirmed}
		}

		return s.TripRepo.AdjustAvailableSeats(tx, trip.ID, -b.SeatCount)
	})
	if err != nil {
		return models.Booking{}, err
	}
	if expired {
		return models.Booking{}, domain.ExpiredError{Resource: "booking", ID: id}
	}

	utils.LogEvent(s.RequestID, "bookings", "confirm",
		fmt.Sprintf("booking_id=%d payment_reference=%s", id, paymentReference))
	return s.BookingRepo.GetByID(id)
}

// Cancel moves a pending or confirmed booking to cancelled, releases
// its locks, and restores trip capacity when the booking had already
// been confirmed (pending bookings never touched the counter).
func (s BookingService) Cancel(ctx context.Context, id int64, reason string) (models.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "cancelled by user"
	}

	var expired bool
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		now := s.now()

		b, trip, err := s.lockTripThenBooking(tx, id)
		if err != nil {
			return err
		}

		if b.Status == models.BookingPending && s.isOverdueAt(b, now) {
			expired = true
			return s.expireTx(tx, b, now)
		}
		if b.Status != models.BookingPending && b.Status != models.BookingConfirmed {
			return domain.IllegalTransitionError{Resource: "booking", From: b.Status, To: models.BookingCancelled}
		}

		return s.cancelTx(tx, b, trip.ID, reason, now)
	})
	if err != nil {
		return models.Booking{}, err
	}
	if expired {
		return models.Booking{}, domain.ExpiredError{Resource: "booking", ID: id}
	}

	utils.LogEvent(s.RequestID, "bookings", "cancel", fmt.Sprintf("booking_id=%d reason=%s", id, reason))
	return s.BookingRepo.GetByID(id)
}

// SweepExpiredBookings expires every pending booking past its TTL,
// releasing the associated locks. Each booking is processed in its own
// transaction so one bad row cannot wedge the sweep.
func (s BookingService) SweepExpiredBookings(ctx context.Context) (int64, error) {
	ids, err := s.BookingRepo.OverduePendingIDs(s.db(), s.now())
	if err != nil {
		return 0, err
	}

	var swept int64
	for _, id := range ids {
		err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
			now := s.now()
			b, _, err := s.lockTripThenBooking(tx, id)
			if err != nil {
				return err
			}
			if b.Status != models.BookingPending || !s.isOverdueAt(b, now) {
				return nil
			}
			if err := s.expireTx(tx, b, now); err != nil {
				return err
			}
			swept++
			return nil
		})
		if err != nil {
			return swept, err
		}
	}

	if swept > 0 {
		utils.LogEvent(s.RequestID, "bookings", "sweep", fmt.Sprintf("expired=%d", swept))
	}
	return swept, nil
}

// CompleteTrip marks a schedule done: the trip and its confirmed
// bookings move to completed. Capacity is untouched (the seats were
// consumed at confirmation and the trip is over).
func (s BookingService) CompleteTrip(ctx context.Context, tripID int64) (int64, error) {
	var completed int64
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		trip, err := s.TripRepo.GetForUpdate(tx, tripID)
		if err != nil {
			return err
		}
		if trip.Status != models.TripScheduled {
			return domain.IllegalTransitionError{Resource: "trip", From: trip.Status, To: models.TripCompleted}
		}
		if err := s.TripRepo.SetStatus(tx, tripID, models.TripCompleted); err != nil {
			return err
		}
		n, err := s.BookingRepo.CompleteConfirmed(tx, tripID)
		if err != nil {
			return err
		}
		completed = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	utils.LogEvent(s.RequestID, "bookings", "complete_trip",
		fmt.Sprintf("trip_id=%d completed=%d", tripID, completed))
	return completed, nil
}

// CancelTrip cancels a schedule: every pending or confirmed booking on
// it is cancelled (restoring capacity for the confirmed ones) and all
// remaining held locks are released.
func (s BookingService) CancelTrip(ctx context.Context, tripID int64, reason string) (int64, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "trip cancelled"
	}

	var cancelled int64
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		now := s.now()

		trip, err := s.TripRepo.GetForUpdate(tx, tripID)
		if err != nil {
			return err
		}
		if trip.Status != models.TripScheduled {
			return domain.IllegalTransitionError{Resource: "trip", From: trip.Status, To: models.TripCancelled}
		}
		if err := s.TripRepo.SetStatus(tx, tripID, models.TripCancelled); err != nil {
			return err
		}

		ids, err := s.BookingRepo.ActiveIDsByTrip(tx, tripID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			b, err := s.BookingRepo.Get(tx, id)
			if err != nil {
				return err
			}
			if err := s.cancelTx(tx, b, tripID, reason, now); err != nil {
				return err
			}
			cancelled++
		}

		_, err = s.SeatLockRepo.ReleaseAllByTrip(tx, tripID)
		return err
	})
	if err != nil {
		return 0, err
	}

	utils.LogEvent(s.RequestID, "bookings", "cancel_trip",
		fmt.Sprintf("trip_id=%d cancelled=%d", tripID, cancelled))
	return cancelled, nil
}

// lockTripThenBooking reads the booking to learn its trip, then takes
// the row locks in the core's single order: trip first, booking second.
func (s BookingService) lockTripThenBooking(tx *sql.Tx, id int64) (models.Booking, models.Trip, error) {
	peek, err := s.BookingRepo.Get(tx, id)
	if err != nil {
		return models.Booking{}, models.Trip{}, err
	}
	trip, err := s.TripRepo.GetForUpdate(tx, peek.TripID)
	if err != nil {
		return models.Booking{}, models.Trip{}, err
	}
	b, err := s.BookingRepo.GetForUpdate(tx, id)
	if err != nil {
		return models.Booking{}, models.Trip{}, err
	}
	return b, trip, nil
}

// cancelTx applies the cancel transition for a booking already loaded
// under the trip lock. Capacity is restored only for bookings that were
// confirmed, since pending ones never decremented it.
func (s BookingService) cancelTx(tx *sql.Tx, b models.Booking, tripID int64, reason string, now time.Time) error {
	wasConfirmed := b.Status == models.BookingConfirmed

	ok, err := s.BookingRepo.Cancel(tx, b.ID, reason, now)
	if err != nil {
		return err
	}
	if !ok {
		return domain.IllegalTransitionError{Resource: "booking", From: b.Status, To: models.BookingCancelled}
	}

	if err := s.releaseBookingLocks(tx, b); err != nil {
		return err
	}

	if wasConfirmed {
		return s.TripRepo.AdjustAvailableSeats(tx, tripID, b.SeatCount)
	}
	return nil
}

// expireTx applies the expire transition: conditional status flip plus
// lock release. Capacity stays untouched, pending bookings never
// decremented it.
func (s BookingService) expireTx(tx *sql.Tx, b models.Booking, now time.Time) error {
	ok, err := s.BookingRepo.Expire(tx, b.ID, now)
	if err != nil {
		return err
	}
	if !ok {
		// Another request already healed it; nothing to do.
		return nil
	}
	return s.releaseBookingLocks(tx, b)
}

// releaseBookingLocks frees the lock rows a booking consumed, by
// recorded lock id when present, falling back to a best-effort match by
// (trip, session, seats) for rows created before linkage existed.
func (s BookingService) releaseBookingLocks(tx *sql.Tx, b models.Booking) error {
	lockIDs, err := s.BookingRepo.LockIDs(tx, b.ID)
	if err != nil {
		return err
	}
	if len(lockIDs) > 0 {
		return s.SeatLockRepo.UpdateStatusByIDs(tx, lockIDs, models.LockReleased)
	}
	if _, err := s.SeatLockRepo.ReleaseByTripSeats(tx, b.TripID, b.SessionID, b.SeatCodes); err != nil {
		utils.LogEvent(s.RequestID, "bookings", "release_locks_fallback",
			fmt.Sprintf("booking_id=%d err=%v", b.ID, err))
	}
	return nil
}

func (s BookingService) isOverdue(b models.Booking) bool {
	return s.isOverdueAt(b, s.now())
}

func (s BookingService) isOverdueAt(b models.Booking, now time.Time) bool {
	return b.Status == models.BookingPending && b.ExpiresAt != nil && !b.ExpiresAt.After(now)
}

func alignPassengers(seats []string, in []models.Passenger) ([]models.Passenger, error) {
	out := make([]models.Passenger, len(in))
	assigned := map[string]bool{}
	seatSet := toSet(seats)

	for i, p := range in {
		seat := utils.NormalizeSeat(p.SeatCode)
		if seat == "" {
			seat = seats[i]
		}
		if !seatSet[seat] {
			return nil, domain.ValidationError{Field: "passengers", Msg: fmt.Sprintf("passenger seat %s is not in the requested seat set", seat)}
		}
		if assigned[seat] {
			return nil, domain.ValidationError{Field: "passengers", Msg: fmt.Sprintf("duplicate passenger for seat %s", seat)}
		}
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, domain.ValidationError{Field: "passengers", Msg: "passenger name required"}
		}
		assigned[seat] = true
		out[i] = models.Passenger{
			SeatCode: seat,
			Name:     name,
			Phone:    strings.TrimSpace(p.Phone),
		}
	}
	return out, nil
}

func newBookingReference() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "BK-" + raw[:10]
}
