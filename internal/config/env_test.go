package config

import (
	"os"
	"testing"
)

// unsetEnv clears keys for the duration of the test and restores them afterwards.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

var allKeys = []string{
	"PORT", "DATABASE_URL", "FRONTEND_BASE_URL", "UPLOAD_DIR", "UPLOAD_CONCURRENCY",
	"MAX_UPLOAD_MB", "CLERK_SECRET_KEY", "RABBITMQ_URL", "AUTH_REQUIRED", "SIGNUP_CODE_TTL",
	"LOG_LEVEL", "LOG_FORMAT", "S3_BUCKET", "S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY",
	"S3_SECRET_KEY", "SENDGRID_API_KEY", "SENDGRID_FROM_EMAIL", "GITHUB_TOKEN", "GITHUB_ENABLED",
	"JWT_SECRET", "JWT_PREVIOUS_SECRET", "JWT_EXPIRATION_HOURS", "JWT_KEY_CACHE_TTL",
	"BCRYPT_COST", "PASSWORD_PEPPER",
}
