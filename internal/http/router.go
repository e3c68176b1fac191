package api

import (
	"log"
	stdhttp "net/http"

	intconfig "busbooking/internal/config"
	h "busbooking/internal/http/handlers"
	"busbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	h.Configure(env)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(env.CORSOrigins),
		middleware.Session(env.SessionSecret),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		api.POST("/sessions", h.CreateSession)

		trips := api.Group("/trips")
		trips.GET("", h.GetTrips)
		trips.POST("", h.CreateTrip)
		trips.GET("/:id", h.GetTrip)
		trips.GET("/:id/seats", h.GetTripSeats)
		trips.POST("/:id/complete", h.CompleteTrip)
		trips.POST("/:id/cancel", h.CancelTrip)

		seats := api.Group("/seats")
		seats.POST("/lock", h.LockSeats)
		seats.POST("/release", h.ReleaseSeats)
		seats.POST("/confirm", h.ConfirmSeats)
		seats.POST("/extend", h.ExtendLocks)

		bookings := api.Group("/bookings")
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/confirm", h.ConfirmBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.GET("/:id/e-ticket", h.GetBookingETicketPDF)

		payments := api.Group("/payments")
		payments.POST("/sandbox", h.CreateSandboxPayment)
		payments.POST("/sandbox/:reference/complete", h.CompleteSandboxPayment)

		maintenance := api.Group("/maintenance")
		maintenance.POST("/cleanup-expired-locks", h.CleanupExpiredLocks)
		maintenance.POST("/cleanup-expired-bookings", h.CleanupExpiredBookings)
	}

	h.SetRouter(r)
	return r
}
