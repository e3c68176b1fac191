package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Env struct {
	AppAddr       string
	GinMode       string
	DBDSN         string
	CORSOrigins   []string
	SessionSecret string
	LockTTL       time.Duration
	BookingTTL    time.Duration
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		user := envOr("DB_USER", "root")
		pass := strings.TrimSpace(os.Getenv("DB_PASS"))
		host := envOr("DB_HOST", "127.0.0.1:3306")
		name := envOr("DB_NAME", "bus_booking")
		dsn = fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s",
			user, pass, host, name)
	}

	origins := []string{}
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:3000", "http://127.0.0.1:3000",
			"http://localhost:5173", "http://127.0.0.1:5173",
		}
	}

	secret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if secret == "" {
		secret = "dev-session-secret-change-me"
	}

	return Env{
		AppAddr:       appAddr,
		GinMode:       ginMode,
		DBDSN:         dsn,
		CORSOrigins:   origins,
		SessionSecret: secret,
		LockTTL:       envMinutes("LOCK_TTL_MINUTES", 15),
		BookingTTL:    envMinutes("BOOKING_TTL_MINUTES", 15),
	}
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envMinutes(key string, def int) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return time.Duration(def) * time.Minute
}
