package handlers

import (
	"net/http"
	"strings"

	"busbooking/internal/domain/models"
	"busbooking/internal/http/middleware"
	"busbooking/internal/repositories"
	"busbooking/internal/services"
	"busbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

type tripPayload struct {
	RouteFrom    Stringish `json:"route_from"`
	RouteTo      Stringish `json:"route_to"`
	TripDate     Stringish `json:"trip_date"`
	TripTime     Stringish `json:"trip_time"`
	VehicleCode  Stringish `json:"vehicle_code"`
	TotalSeats   int       `json:"total_seats"`
	PricePerSeat int64     `json:"price_per_seat"`
}

// POST /api/trips
func CreateTrip(c *gin.Context) {
	var p tripPayload
	if !BindJSONOrError(c, &p) {
		return
	}

	from := strings.TrimSpace(p.RouteFrom.String())
	to := strings.TrimSpace(p.RouteTo.String())
	if from == "" || to == "" {
		RespondError(c, http.StatusBadRequest, "route_from and route_to required", nil)
		return
	}
	if p.TotalSeats <= 0 {
		RespondError(c, http.StatusBadRequest, "total_seats must be positive", nil)
		return
	}
	if p.PricePerSeat < 0 {
		RespondError(c, http.StatusBadRequest, "price_per_seat cannot be negative", nil)
		return
	}
	if d := strings.TrimSpace(p.TripDate.String()); d != "" {
		if _, err := utils.ParseDate(d); err != nil {
			RespondError(c, http.StatusBadRequest, "trip_date must be YYYY-MM-DD", err)
			return
		}
	}

	repo := repositories.TripRepo{}
	trip, err := repo.Create(toTripInput(p))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

// GET /api/trips
func GetTrips(c *gin.Context) {
	repo := repositories.TripRepo{}
	trips, err := repo.List()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// GET /api/trips/:id
func GetTrip(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	repo := repositories.TripRepo{}
	trip, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// GET /api/trips/:id/seats
func GetTripSeats(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	svc := services.AvailabilityService{}
	availability, err := svc.TripSeats(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

// POST /api/trips/:id/complete
func CompleteTrip(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	svc := services.BookingService{RequestID: middleware.GetRequestID(c)}
	completed, err := svc.CompleteTrip(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip_id": id, "completed_bookings": completed})
}

type cancelTripPayload struct {
	Reason Stringish `json:"reason"`
}

// POST /api/trips/:id/cancel
func CancelTrip(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p cancelTripPayload
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if !BindJSONOrError(c, &p) {
			return
		}
	}

	svc := services.BookingService{RequestID: middleware.GetRequestID(c)}
	cancelled, err := svc.CancelTrip(c.Request.Context(), id, p.Reason.String())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip_id": id, "cancelled_bookings": cancelled})
}

func toTripInput(p tripPayload) (in models.TripInput) {
	in.RouteFrom = strings.TrimSpace(p.RouteFrom.String())
	in.RouteTo = strings.TrimSpace(p.RouteTo.String())
	in.TripDate = strings.TrimSpace(p.TripDate.String())
	in.TripTime = strings.TrimSpace(p.TripTime.String())
	in.VehicleCode = strings.TrimSpace(p.VehicleCode.String())
	in.TotalSeats = p.TotalSeats
	in.PricePerSeat = p.PricePerSeat
	return in
}
