package models

import "time"

// Seat lock states. "held" is a live claim by a checkout session;
// "attached" means the lock has been consumed by a booking (which may
// itself still be pending). The names are deliberately disjoint from
// booking states so the two lifecycles cannot be confused.
const (
	LockHeld     = "held"
	LockAttached = "attached"
	LockReleased = "released"
	LockExpired  = "expired"
)

// SeatLock is one seat provisionally claimed by one session on one trip.
type SeatLock struct {
	ID         int64     `json:"id"`
	TripID     int64     `json:"trip_id"`
	SeatCode   string    `json:"seat_code"`
	SessionID  string    `json:"session_id"`
	CustomerID int64     `json:"customer_id,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// LockedSeat is the resolver's view of an active lock: enough for a
// seat map to show who is blocking and until when.
type LockedSeat struct {
	SeatCode  string    `json:"seat_code"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TripAvailability is the resolver output for one trip.
type TripAvailability struct {
	TripID      int64        `json:"trip_id"`
	TotalSeats  int          `json:"total_seats"`
	BookedSeats []string     `json:"booked_seats"`
	LockedSeats []LockedSeat `json:"locked_seats"`
	Available   int          `json:"available"`
}
