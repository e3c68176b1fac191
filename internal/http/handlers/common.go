package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	intconfig "busbooking/internal/config"
	"busbooking/internal/http/middleware"
	"busbooking/internal/utils"

	"github.com/gin-gonic/gin"
)

var (
	cfgMu sync.RWMutex
	cfg   intconfig.Env
)

// Configure stores the process config for handlers that need TTLs and
// the session secret. Called once from the router.
func Configure(env intconfig.Env) {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	cfg = env
}

func envCfg() intconfig.Env {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return cfg
}

// RespondError sends standard error payload with request_id included.
// Keeps backward compatibility by always providing "message".
func RespondError(c *gin.Context, status int, message string, err error) {
	reqID := middleware.GetRequestID(c)
	payload := gin.H{
		"message":    message,
		"request_id": reqID,
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		RespondError(c, http.StatusBadRequest, "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}

// Stringish tolerates string/number/bool payload values as strings.
// Frontends send seat codes both ways ("12" and 12).
type Stringish string

func (s *Stringish) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case string(b) == "null" || len(b) == 0:
		*s = ""
		return nil
	case len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Stringish(str)
		return nil
	default:
		*s = Stringish(strings.Trim(string(b), `"`))
		return nil
	}
}

func (s Stringish) String() string { return string(s) }

func firstNonEmpty(vals ...Stringish) string {
	for _, v := range vals {
		s := strings.TrimSpace(v.String())
		if s != "" {
			return s
		}
	}
	return ""
}

// seatList collapses the aliases a payload may use for its seat set and
// returns the normalized, deduplicated codes. A lone entry may itself be
// a comma-separated list ("A1,A2"), which some frontends still send.
func seatList(alts ...[]Stringish) []string {
	for _, raw := range alts {
		if len(raw) == 0 {
			continue
		}
		seats := make([]string, 0, len(raw))
		for _, v := range raw {
			seats = append(seats, utils.SplitSeatList(v.String())...)
		}
		if out := utils.NormalizeSeatSet(seats); len(out) > 0 {
			return out
		}
	}
	return nil
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid "+name, err)
		return 0, false
	}
	return id, true
}

// sessionFrom prefers the verified session token, falling back to the
// session id carried in the payload for callers that have not adopted
// the token header yet.
func sessionFrom(c *gin.Context, bodySession Stringish) string {
	if sid := middleware.SessionID(c); sid != "" {
		return sid
	}
	return strings.TrimSpace(bodySession.String())
}
