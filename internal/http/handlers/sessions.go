package handlers

import (
	"net/http"

	"busbooking/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// CreateSession mints a checkout-session token. The frontend sends it
// back in X-Session-Token on every lock and booking call.
//
// POST /api/sessions
func CreateSession(c *gin.Context) {
	token, sessionID, err := middleware.IssueSessionToken(envCfg().SessionSecret)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "failed to create session", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session_id": sessionID,
		"token":      token,
	})
}
