package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/srgjo27/livestock_booking/internal/core/domain"
	"github.com/srgjo27/livestock_booking/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "https://api.paystack.co", cfg.PaystackBaseURL)
	assert.Equal(t, 15*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 48*time.Hour, cfg.PendingBookingTTL)
	assert.Equal(t, domain.OverlapHalfOpen, cfg.Overlap())
	assert.Equal(t, "postgres://postgres:@localhost:5432/livestock_booking?sslmode=disable", cfg.Database().DSN())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/farm")
	t.Setenv("BOOKING_OVERLAP_MODE", "inclusive")
	t.Setenv("PENDING_BOOKING_TTL", "0")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/farm", cfg.Database().DSN())
	assert.Equal(t, domain.OverlapInclusive, cfg.Overlap())
	assert.Zero(t, cfg.PendingBookingTTL)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("missing secrets", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("PAYSTACK_SECRET_KEY", "")
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("PAYSTACK_SECRET_KEY")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("unknown overlap mode", func(t *testing.T) {
		setRequired(t)
		t.Setenv("BOOKING_OVERLAP_MODE", "or_filter")

		_, err := config.Load()
		assert.ErrorContains(t, err, "BOOKING_OVERLAP_MODE")
	})
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`
# comment
LB_TEST_FROM_FILE="from file"
LB_TEST_ALREADY_SET=from file
not a pair
`), 0o600))

	t.Setenv("LB_TEST_FROM_FILE", "")
	os.Unsetenv("LB_TEST_FROM_FILE")
	t.Setenv("LB_TEST_ALREADY_SET", "from env")

	require.NoError(t, config.LoadDotEnv(path))

	assert.Equal(t, "from file", os.Getenv("LB_TEST_FROM_FILE"))
	assert.Equal(t, "from env", os.Getenv("LB_TEST_ALREADY_SET"))

	assert.NoError(t, config.LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
