package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("REMINDER_TZ", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Minute, cfg.ReminderInterval)
	assert.Equal(t, 30*time.Second, cfg.ReminderSourceTimeout)
	assert.True(t, cfg.ReminderRunOnStart)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoad_ProdRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_InvalidTimezone(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("REMINDER_TZ", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REMINDER_TZ")
}

func TestLoad_LockTTLShorterThanSourceTimeout(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("REMINDER_SOURCE_TIMEOUT", "2m")
	t.Setenv("REMINDER_LOCK_TTL", "1m")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REMINDER_LOCK_TTL")
}

func TestLoad_InvalidEncryption(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SMTP_ENCRYPTION", "rot13")

	_, err := Load()
	require.Error(t, err)
}
