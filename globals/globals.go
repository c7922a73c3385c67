package globals

import (
	"context"
	"os"
)

var (
	JwtSecret = []byte(envOr("JWT_SECRET", "panenku_dev_secret"))
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// CronSecret guards the subscription cron endpoint.
func CronSecret() string { return os.Getenv("CRON_SECRET") }

// AppBaseURL is the public URL of the storefront, used in payment callbacks.
func AppBaseURL() string { return envOr("APP_BASE_URL", "http://localhost:3000") }

// Context keys
type ContextKey string

const RoleKey ContextKey = "role"
const UserIDKey ContextKey = "userId"

var Ctx = context.Background()
