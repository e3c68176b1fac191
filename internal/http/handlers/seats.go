package handlers

import (
	"net/http"

	"busbooking/internal/http/middleware"
	"busbooking/internal/services"

	"github.com/gin-gonic/gin"
)

type seatRequest struct {
	TripID     int64       `json:"trip_id"`
	Seats      []Stringish `json:"seat_numbers"`
	SeatsAlt   []Stringish `json:"seats"`
	SeatsAlt2  []Stringish `json:"seat_codes"`
	SessionID  Stringish   `json:"session_id"`
	CustomerID int64       `json:"customer_id"`
	Minutes    int         `json:"additional_minutes"`
}

func lockService(c *gin.Context) services.LockService {
	return services.LockService{
		LockTTL:   envCfg().LockTTL,
		RequestID: middleware.GetRequestID(c),
	}
}

// POST /api/seats/lock
//
// Declares the session's full desired seat set for a trip. The response
// is the session's lock set after reconciliation; all locks share one
// expiry.
func LockSeats(c *gin.Context) {
	var req seatRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	grant, err := lockService(c).ReconcileLocks(c.Request.Context(), services.ReconcileInput{
		TripID:     req.TripID,
		Seats:      seatList(req.Seats, req.SeatsAlt, req.SeatsAlt2),
		SessionID:  sessionFrom(c, req.SessionID),
		CustomerID: req.CustomerID,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, grant)
}

// POST /api/seats/release
func ReleaseSeats(c *gin.Context) {
	var req seatRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	released, err := lockService(c).ReleaseSeats(
		c.Request.Context(),
		req.TripID,
		sessionFrom(c, req.SessionID),
		seatList(req.Seats, req.SeatsAlt, req.SeatsAlt2),
	)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}

// POST /api/seats/confirm
//
// Pins the session's held locks to attached ahead of booking creation.
// Optional; creating the booking performs the same transition.
func ConfirmSeats(c *gin.Context) {
	var req seatRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	attached, err := lockService(c).AttachSeats(
		c.Request.Context(),
		req.TripID,
		sessionFrom(c, req.SessionID),
		seatList(req.Seats, req.SeatsAlt, req.SeatsAlt2),
	)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"confirmed": attached})
}

// POST /api/seats/extend
func ExtendLocks(c *gin.Context) {
	var req seatRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	expiresAt, extended, err := lockService(c).ExtendLocks(
		c.Request.Context(),
		req.TripID,
		sessionFrom(c, req.SessionID),
		req.Minutes,
	)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"extended": extended, "expires_at": expiresAt})
}
