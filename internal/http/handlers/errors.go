package handlers

import (
	"errors"
	"net/http"

	"busbooking/internal/domain"
	"busbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses. Conflicts
// carry the offending seats (and blocking sessions when known) so the
// frontend can highlight them; payment failures carry their reason.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsConflict(err):
		var conflict domain.ConflictError
		errors.As(err, &conflict)
		details := gin.H{"seats": conflict.Seats}
		if len(conflict.Blocking) > 0 {
			details["blocking"] = conflict.Blocking
		}
		respondError(c, http.StatusConflict, "conflict", err.Error(), details)
	case domain.IsExpired(err):
		respondError(c, http.StatusGone, "expired", err.Error(), nil)
	case domain.IsPaymentVerification(err):
		var pv domain.PaymentVerificationError
		errors.As(err, &pv)
		respondError(c, http.StatusBadRequest, pv.Reason, err.Error(), nil)
	case domain.IsIllegalTransition(err):
		respondError(c, http.StatusConflict, "illegal_transition", err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong", nil)
	}
}
