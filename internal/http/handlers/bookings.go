package handlers

import (
	"net/http"

	"busbooking/internal/domain/models"
	"busbooking/internal/http/middleware"
	"busbooking/internal/services"

	"github.com/gin-gonic/gin"
)

type passengerPayload struct {
	SeatCode      Stringish `json:"seat_code"`
	SeatCodeCamel Stringish `json:"seatCode"`
	SeatCodeAlt   Stringish `json:"seat"`

	Name           Stringish `json:"name"`
	PassengerName  Stringish `json:"passengerName"`
	PassengerName2 Stringish `json:"passenger_name"`

	Phone           Stringish `json:"phone"`
	PassengerPhone  Stringish `json:"passengerPhone"`
	PassengerPhone2 Stringish `json:"passenger_phone"`
}

type createBookingPayload struct {
	TripID     int64              `json:"trip_id"`
	Seats      []Stringish        `json:"seat_numbers"`
	SeatsAlt   []Stringish        `json:"seats"`
	SeatsAlt2  []Stringish        `json:"seat_codes"`
	Passengers []passengerPayload `json:"passengers"`
	SessionID  Stringish          `json:"session_id"`
	CustomerID int64              `json:"customer_id"`
}

func bookingService(c *gin.Context) services.BookingService {
	return services.BookingService{
		BookingTTL: envCfg().BookingTTL,
		RequestID:  middleware.GetRequestID(c),
	}
}

// POST /api/bookings
func CreateBooking(c *gin.Context) {
	var p createBookingPayload
	if !BindJSONOrError(c, &p) {
		return
	}

	passengers := make([]models.Passenger, 0, len(p.Passengers))
	for _, pp := range p.Passengers {
		passengers = append(passengers, models.Passenger{
			SeatCode: firstNonEmpty(pp.SeatCode, pp.SeatCodeCamel, pp.SeatCodeAlt),
			Name:     firstNonEmpty(pp.Name, pp.PassengerName, pp.PassengerName2),
			Phone:    firstNonEmpty(pp.Phone, pp.PassengerPhone, pp.PassengerPhone2),
		})
	}

	booking, err := bookingService(c).Create(c.Request.Context(), services.CreateBookingInput{
		TripID:     p.TripID,
		Seats:      seatList(p.Seats, p.SeatsAlt, p.SeatsAlt2),
		Passengers: passengers,
		SessionID:  sessionFrom(c, p.SessionID),
		CustomerID: p.CustomerID,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GET /api/bookings/:id
func GetBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := bookingService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

type confirmBookingPayload struct {
	PaymentReference Stringish `json:"payment_reference"`
	PaymentRefAlt    Stringish `json:"paymentReference"`
}

// POST /api/bookings/:id/confirm
func ConfirmBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p confirmBookingPayload
	if !BindJSONOrError(c, &p) {
		return
	}

	booking, err := bookingService(c).Confirm(c.Request.Context(), id, firstNonEmpty(p.PaymentReference, p.PaymentRefAlt))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

type cancelBookingPayload struct {
	Reason Stringish `json:"reason"`
}

// POST /api/bookings/:id/cancel
func CancelBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p cancelBookingPayload
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if !BindJSONOrError(c, &p) {
			return
		}
	}

	booking, err := bookingService(c).Cancel(c.Request.Context(), id, p.Reason.String())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
