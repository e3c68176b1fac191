package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionIDKey       = "session_id"
	sessionTokenHeader = "X-Session-Token"
	sessionTokenTTL    = 24 * time.Hour
)

// IssueSessionToken mints a new checkout-session identity as a signed
// token. The session id inside cannot be forged without the secret, so
// one browser cannot release or attach another browser's locks.
func IssueSessionToken(secret string) (token, sessionID string, err error) {
	sessionID = uuid.NewString()
	claims := jwt.MapClaims{
		"sid": sessionID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(sessionTokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}
	return token, sessionID, nil
}

// ParseSessionToken verifies the token signature and returns the
// session id, or empty when the token is missing, expired or tampered.
func ParseSessionToken(secret, token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return ""
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sid, _ := claims["sid"].(string)
	return sid
}

// Session resolves the caller's session id from the X-Session-Token
// header and stores it on the context. It never rejects; handlers that
// need a session check SessionID themselves.
func Session(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sid := ParseSessionToken(secret, c.GetHeader(sessionTokenHeader)); sid != "" {
			c.Set(sessionIDKey, sid)
		}
		c.Next()
	}
}

// SessionID returns the verified session id for the request, empty when
// no valid token was presented.
func SessionID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if v, ok := c.Get(sessionIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
