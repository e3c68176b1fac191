package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	intconfig "busbooking/internal/config"
	intdb "busbooking/internal/db"
	"busbooking/internal/domain"
	"busbooking/internal/domain/models"
	"busbooking/internal/repositories"
	"busbooking/internal/utils"
)

const (
	// DefaultLockTTL bounds how long a checkout session may sit on a
	// seat before it is treated as free again.
	DefaultLockTTL = 15 * time.Minute

	maxExtendMinutes = 60
)

// LockService owns the seat-lock lifecycle: granting, renewing,
// releasing and sweeping. All mutating paths run inside one transaction
// that starts by locking the trip row, so two reconciliations for the
// same trip can never interleave between conflict check and write.
type LockService struct {
	TripRepo     repositories.TripRepo
	SeatLockRepo repositories.SeatLockRepo
	BookingRepo  repositories.BookingRepo
	DB           *sql.DB
	LockTTL      time.Duration
	RequestID    string
	Now          func() time.Time
}

func (s LockService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s LockService) ttl() time.Duration {
	if s.LockTTL > 0 {
		return s.LockTTL
	}
	return DefaultLockTTL
}

func (s LockService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

// ReconcileInput is a session's desired seat set for one trip. Seats
// must already be normalized (uppercase, deduplicated).
type ReconcileInput struct {
	TripID     int64
	Seats      []string
	SessionID  string
	CustomerID int64
}

// LockGrant is the session's full lock set after reconciliation. All of
// a session's locks share one expiry; renewing any renews all.
type LockGrant struct {
	TripID    int64             `json:"trip_id"`
	SessionID string            `json:"session_id"`
	Seats     []string          `json:"seats"`
	ExpiresAt time.Time         `json:"expires_at"`
	Locks     []models.SeatLock `json:"locks"`
}

// ReconcileLocks atomically replaces the session's lock set on a trip
// with the desired seat set: new seats are locked, kept seats renewed,
// dropped seats released. The whole operation fails without partial
// effect when any desired seat is held by an active booking or by
// another session's unexpired lock.
func (s LockService) ReconcileLocks(ctx context.Context, in ReconcileInput) (LockGrant, error) {
	if in.SessionID == "" {
		return LockGrant{}, domain.ValidationError{Field: "session_id", Msg: "required"}
	}
	if len(in.Seats) == 0 {
		return LockGrant{}, domain.ValidationError{Field: "seat_numbers", Msg: "at least one seat required"}
	}

	var grant LockGrant
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
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
		bookedSet := toSet(booked)
		if conflicts := intersect(in.Seats, bookedSet); len(conflicts) > 0 {
			return domain.ConflictError{
				Resource: "seat",
				Msg:      "seats already booked",
				Seats:    conflicts,
			}
		}

		held, err := s.SeatLockRepo.ActiveHeldByTrip(tx, in.TripID, now)
		if err != nil {
			return err
		}

		blocking := map[string]string{}
		own := map[string]models.SeatLock{}
		for _, l := range held {
			if l.SessionID == in.SessionID {
				own[l.SeatCode] = l
				continue
			}
			blocking[l.SeatCode] = l.SessionID
		}

		conflictSeats := []string{}
		conflictOwners := map[string]string{}
		for _, seat := range in.Seats {
			if sid, ok := blocking[seat]; ok {
				conflictSeats = append(conflictSeats, seat)
				conflictOwners[seat] = sid
			}
		}
		if len(conflictSeats) > 0 {
			return domain.ConflictError{
				Resource: "seat",
				Msg:      "seats locked by another session",
				Seats:    conflictSeats,
				Blocking: conflictOwners,
			}
		}

		desired := toSet(in.Seats)
		expiresAt := now.Add(s.ttl())

		keepIDs := []int64{}
		releaseIDs := []int64{}
		finalLocks := []models.SeatLock{}
		for seat, l := range own {
			if desired[seat] {
				keepIDs = append(keepIDs, l.ID)
				l.ExpiresAt = expiresAt
				finalLocks = append(finalLocks, l)
			} else {
				releaseIDs = append(releaseIDs, l.ID)
			}
		}

		if err := s.SeatLockRepo.UpdateStatusByIDs(tx, releaseIDs, models.LockReleased); err != nil {
			return err
		}
		if err := s.SeatLockRepo.ExtendByIDs(tx, keepIDs, expiresAt); err != nil {
			return err
		}

		for _, seat := range in.Seats {
			if _, ok := own[seat]; ok {
				continue
			}
			l := models.SeatLock{
				TripID:     in.TripID,
				SeatCode:   seat,
				SessionID:  in.SessionID,
				CustomerID: in.CustomerID,
				Status:     models.LockHeld,
				CreatedAt:  now,
				ExpiresAt:  expiresAt,
			}
			id, err := s.SeatLockRepo.Insert(tx, l)
			if err != nil {
				return err
			}
			l.ID = id
			finalLocks = append(finalLocks, l)
		}

		sort.Slice(finalLocks, func(i, j int) bool { return finalLocks[i].SeatCode < finalLocks[j].SeatCode })
		seats := make([]string, 0, len(finalLocks))
		for _, l := range finalLocks {
			seats = append(seats, l.SeatCode)
		}

		grant = LockGrant{
			TripID:    in.TripID,
			SessionID: in.SessionID,
			Seats:     seats,
			ExpiresAt: expiresAt,
			Locks:     finalLocks,
		}
		return nil
	})
	if err != nil {
		return LockGrant{}, err
	}

	utils.LogEvent(s.RequestID, "locks", "reconcile",
		fmt.Sprintf("trip_id=%d session=%s seats=%d", in.TripID, in.SessionID, len(grant.Seats)))
	return grant, nil
}

// ReleaseSeats drops the session's held locks, narrowed by trip and/or
// seat set when given. Returns the number of locks released.
func (s LockService) ReleaseSeats(ctx context.Context, tripID int64, sessionID string, seats []string) (int64, error) {
	if sessionID == "" {
		return 0, domain.ValidationError{Field: "session_id", Msg: "required"}
	}

	var released int64
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		if tripID > 0 {
			if _, err := s.TripRepo.GetForUpdate(tx, tripID); err != nil {
				return err
			}
		}
		n, err := s.SeatLockRepo.ReleaseSession(tx, tripID, sessionID, seats)
		if err != nil {
			return err
		}
		released = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	utils.LogEvent(s.RequestID, "locks", "release",
		fmt.Sprintf("trip_id=%d session=%s released=%d", tripID, sessionID, released))
	return released, nil
}

// AttachSeats flips the session's held locks to attached ahead of
// booking creation. Booking creation also performs this transition for
// any still-held seats, so calling this endpoint is optional.
func (s LockService) AttachSeats(ctx context.Context, tripID int64, sessionID string, seats []string) (int64, error) {
	if sessionID == "" {
		return 0, domain.ValidationError{Field: "session_id", Msg: "required"}
	}
	if tripID <= 0 {
		return 0, domain.ValidationError{Field: "trip_id", Msg: "required"}
	}

	var attached int64
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		if _, err := s.TripRepo.GetForUpdate(tx, tripID); err != nil {
			return err
		}
		n, err := s.SeatLockRepo.AttachSession(tx, tripID, sessionID, seats, s.now())
		if err != nil {
			return err
		}
		attached = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return attached, nil
}

// ExtendLocks renews all of the session's unexpired locks on a trip to
// now + additionalMinutes (clamped to 1..60) and returns the new shared
// expiry with the number of locks renewed.
func (s LockService) ExtendLocks(ctx context.Context, tripID int64, sessionID string, additionalMinutes int) (time.Time, int64, error) {
	if sessionID == "" {
		return time.Time{}, 0, domain.ValidationError{Field: "session_id", Msg: "required"}
	}
	if tripID <= 0 {
		return time.Time{}, 0, domain.ValidationError{Field: "trip_id", Msg: "required"}
	}
	if additionalMinutes <= 0 {
		additionalMinutes = int(s.ttl() / time.Minute)
	}
	if additionalMinutes > maxExtendMinutes {
		additionalMinutes = maxExtendMinutes
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(additionalMinutes) * time.Minute)

	var extended int64
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		if _, err := s.TripRepo.GetForUpdate(tx, tripID); err != nil {
			return err
		}
		n, err := s.SeatLockRepo.ExtendSession(tx, tripID, sessionID, expiresAt, now)
		if err != nil {
			return err
		}
		extended = n
		return nil
	})
	if err != nil {
		return time.Time{}, 0, err
	}
	if extended == 0 {
		return time.Time{}, 0, domain.NotFoundError{Resource: "active lock"}
	}
	return expiresAt, extended, nil
}

// CleanupExpiredLocks is the idempotent maintenance sweep: held locks
// past their expiry become expired. Safe to run concurrently with
// itself and with reconciliation because the update is conditional on
// both status and timestamp. tripID of zero sweeps every trip.
func (s LockService) CleanupExpiredLocks(ctx context.Context, tripID int64) (int64, error) {
	_ = ctx
	n, err := s.SeatLockRepo.ExpireOverdue(s.db(), tripID, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		utils.LogEvent(s.RequestID, "locks", "sweep", fmt.Sprintf("expired=%d", n))
	}
	return n, nil
}

func toSet(seats []string) map[string]bool {
	out := make(map[string]bool, len(seats))
	for _, s := range seats {
		out[s] = true
	}
	return out
}

func intersect(seats []string, set map[string]bool) []string {
	out := []string{}
	for _, s := range seats {
		if set[s] {
			out = append(out, s)
		}
	}
	return out
}
