package handlers

import (
	"net/http"
	"strings"

	"busbooking/internal/http/middleware"
	"busbooking/internal/services"

	"github.com/gin-gonic/gin"
)

type createPaymentPayload struct {
	BookingID int64     `json:"booking_id"`
	Method    Stringish `json:"method"`
}

// POST /api/payments/sandbox
func CreateSandboxPayment(c *gin.Context) {
	var p createPaymentPayload
	if !BindJSONOrError(c, &p) {
		return
	}
	if p.BookingID <= 0 {
		RespondError(c, http.StatusBadRequest, "booking_id required", nil)
		return
	}

	svc := services.PaymentService{RequestID: middleware.GetRequestID(c)}
	session, err := svc.CreateSandbox(c.Request.Context(), p.BookingID, p.Method.String())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

type completePaymentPayload struct {
	Outcome Stringish `json:"outcome"`
	Succeed *bool     `json:"succeed"`
}

// POST /api/payments/sandbox/:reference/complete
//
// Settles a sandbox payment. Outcome defaults to success; send
// {"outcome": "failed"} or {"succeed": false} to simulate a failure.
func CompleteSandboxPayment(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		RespondError(c, http.StatusBadRequest, "payment reference required", nil)
		return
	}

	var p completePaymentPayload
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if !BindJSONOrError(c, &p) {
			return
		}
	}

	succeed := true
	if p.Succeed != nil {
		succeed = *p.Succeed
	}
	switch strings.ToLower(strings.TrimSpace(p.Outcome.String())) {
	case "failed", "failure", "fail":
		succeed = false
	}

	svc := services.PaymentService{RequestID: middleware.GetRequestID(c)}
	session, err := svc.CompleteSandbox(c.Request.Context(), reference, succeed)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
