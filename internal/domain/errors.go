package domain

import (
	"errors"
	"fmt"
	"strings"
)

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// ConflictError reports seats that blocked an operation. Seats always names
// the offending seat codes; Blocking maps seat code to the owning session id
// when the conflict comes from another session's lock rather than a booking.
type ConflictError struct {
	Resource string
	Seats    []string
	Blocking map[string]string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = "conflict"
	}
	if len(e.Seats) > 0 {
		return fmt.Sprintf("%s: %s", msg, strings.Join(e.Seats, ", "))
	}
	return msg
}

func (e ConflictError) Unwrap() error { return e.Err }

// ExpiredError marks an operation against a lock or pending booking whose
// expires_at has passed. Detection flips the record to expired as a side
// effect, so the caller sees the post-heal state.
type ExpiredError struct {
	Resource string
	ID       int64
	Err      error
}

func (e ExpiredError) Error() string {
	if e.Resource == "" {
		return "expired"
	}
	return fmt.Sprintf("%s expired", e.Resource)
}

func (e ExpiredError) Unwrap() error { return e.Err }

// Payment verification failure reasons, kept distinct per the boundary
// contract: each maps to its own message so replayed or mismatched
// references are diagnosable.
const (
	PaymentReasonNotFound      = "payment_not_found"
	PaymentReasonNotSuccessful = "payment_not_successful"
	PaymentReasonMismatch      = "payment_booking_mismatch"
)

type PaymentVerificationError struct {
	Reason    string
	Reference string
	Err       error
}

func (e PaymentVerificationError) Error() string {
	switch e.Reason {
	case PaymentReasonNotFound:
		return fmt.Sprintf("payment session %s not found", e.Reference)
	case PaymentReasonNotSuccessful:
		return fmt.Sprintf("payment session %s is not successful", e.Reference)
	case PaymentReasonMismatch:
		return fmt.Sprintf("payment session %s belongs to a different booking", e.Reference)
	default:
		return "payment verification failed"
	}
}

func (e PaymentVerificationError) Unwrap() error { return e.Err }

type IllegalTransitionError struct {
	Resource string
	From     string
	To       string
	Err      error
}

func (e IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Resource, e.From, e.To)
}

func (e IllegalTransitionError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsExpired(err error) bool {
	var target ExpiredError
	return errors.As(err, &target)
}

func IsPaymentVerification(err error) bool {
	var target PaymentVerificationError
	return errors.As(err, &target)
}

func IsIllegalTransition(err error) bool {
	var target IllegalTransitionError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
