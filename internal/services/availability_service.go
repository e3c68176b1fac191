package services

import (
	"database/sql"
	"time"

	intconfig "busbooking/internal/config"
	"busbooking/internal/domain/models"
	"busbooking/internal/repositories"
	"busbooking/internal/utils"
)

// AvailabilityService answers "what's free right now" for a trip. It is
// strictly read-only and recomputes from the lock and booking stores;
// the trips.available_seats counter is never consulted, it is a display
// cache maintained by the booking state machine.
type AvailabilityService struct {
	TripRepo     repositories.TripRepo
	BookingRepo  repositories.BookingRepo
	SeatLockRepo repositories.SeatLockRepo
	DB           *sql.DB
	Now          func() time.Time
}

func (s AvailabilityService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s AvailabilityService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

// TripSeats returns the booked list, the locked list (with owning
// session and expiry) and the derived available count. Expired locks
// and expired pending bookings are excluded purely by timestamp
// comparison, so correctness never depends on sweep timing. A seat may
// appear in both lists (pending booking plus a stale lock); the two are
// independent views, and the count dedupes across them.
func (s AvailabilityService) TripSeats(tripID int64) (models.TripAvailability, error) {
	trip, err := s.TripRepo.GetByID(tripID)
	if err != nil {
		return models.TripAvailability{}, err
	}

	db := s.db()
	now := s.now()

	booked, err := s.BookingRepo.ActiveSeatsByTrip(db, tripID, now)
	if err != nil {
		return models.TripAvailability{}, err
	}

	locks, err := s.SeatLockRepo.ActiveHeldByTrip(db, tripID, now)
	if err != nil {
		return models.TripAvailability{}, err
	}

	locked := make([]models.LockedSeat, 0, len(locks))
	taken := map[string]bool{}
	for _, seat := range booked {
		taken[seat] = true
	}
	for _, l := range locks {
		locked = append(locked, models.LockedSeat{
			SeatCode:  l.SeatCode,
			SessionID: l.SessionID,
			ExpiresAt: l.ExpiresAt,
		})
		taken[l.SeatCode] = true
	}

	available := trip.TotalSeats - len(taken)
	if available < 0 {
		available = 0
	}

	return models.TripAvailability{
		TripID:      trip.ID,
		TotalSeats:  trip.TotalSeats,
		BookedSeats: booked,
		LockedSeats: locked,
		Available:   available,
	}, nil
}
