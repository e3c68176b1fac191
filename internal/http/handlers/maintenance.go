package handlers

import (
	"net/http"
	"strconv"

	"busbooking/internal/http/middleware"
	"busbooking/internal/services"

	"github.com/gin-gonic/gin"
)

// POST /api/maintenance/cleanup-expired-locks
//
// Idempotent: flips held locks past their expiry to expired. Optional
// trip_id query narrows the sweep to one trip.
func CleanupExpiredLocks(c *gin.Context) {
	tripID, _ := strconv.ParseInt(c.Query("trip_id"), 10, 64)

	svc := services.LockService{RequestID: middleware.GetRequestID(c)}
	expired, err := svc.CleanupExpiredLocks(c.Request.Context(), tripID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired_locks": expired})
}

// POST /api/maintenance/cleanup-expired-bookings
func CleanupExpiredBookings(c *gin.Context) {
	svc := services.BookingService{
		BookingTTL: envCfg().BookingTTL,
		RequestID:  middleware.GetRequestID(c),
	}
	swept, err := svc.SweepExpiredBookings(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expired_bookings": swept})
}
