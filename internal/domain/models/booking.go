package models

import "time"

// Booking states. "confirmed" here always means paid and durable; the
// lock-side equivalent is a separate enum (see seat_lock.go).
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
	BookingExpired   = "expired"
)

// Booking is a durable reservation of one or more seats on a trip.
// SeatCodes and Passengers stay index-aligned (one passenger per seat);
// SeatCount mirrors the seat_count column for rows read without their
// passenger list.
type Booking struct {
	ID           int64       `json:"id"`
	Reference    string      `json:"reference"`
	TripID       int64       `json:"trip_id"`
	CustomerID   int64       `json:"customer_id"`
	SessionID    string      `json:"session_id,omitempty"`
	Status       string      `json:"status"`
	SeatCount    int         `json:"seat_count"`
	SeatCodes    []string    `json:"seat_codes"`
	Passengers   []Passenger `json:"passengers"`
	Fare         int64       `json:"fare"`
	Fees         int64       `json:"fees"`
	Total        int64       `json:"total"`
	PaymentRef   string      `json:"payment_reference,omitempty"`
	ExpiresAt    *time.Time  `json:"expires_at,omitempty"`
	CancelReason string      `json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time  `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Passenger holds per-seat traveller details.
type Passenger struct {
	SeatCode string `json:"seat_code"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}
