package handlers

import (
	"net/http"

	"busbooking/internal/http/middleware"
	"busbooking/internal/services"

	"github.com/gin-gonic/gin"
)

// GetBookingETicketPDF returns the booking's e-ticket (inline).
//
// GET /api/bookings/:id/e-ticket
func GetBookingETicketPDF(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	svc := services.TicketService{RequestID: middleware.GetRequestID(c)}
	pdfBytes, filename, err := svc.GenerateETicket(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
