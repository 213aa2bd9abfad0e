package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutEnvFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "bookings", cfg.RabbitMQ.Exchange)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
	assert.Equal(t, 30*time.Second, cfg.Cache.AvailabilityTTL)
	assert.Empty(t, cfg.RabbitMQ.URL)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_PORT", "9000")
	t.Setenv("JWT_ACCESS_EXPIRY", "1h")
	t.Setenv("AVAILABILITY_CACHE_TTL", "not-a-duration")
	t.Setenv("REDIS_DB", "2")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, time.Hour, cfg.JWT.AccessExpiry)
	assert.Equal(t, 30*time.Second, cfg.Cache.AvailabilityTTL)
	assert.Equal(t, 2, cfg.Redis.DB)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
