package models

import "time"

// Payment session states for the sandbox payment component.
const (
	PaymentCreated = "created"
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
)

// PaymentSession links an externally presented payment reference to
// exactly one booking. Confirmation re-validates the linkage instead of
// trusting a client-side flag.
type PaymentSession struct {
	ID        int64     `json:"id"`
	Reference string    `json:"reference"`
	BookingID int64     `json:"booking_id"`
	Amount    int64     `json:"amount"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
