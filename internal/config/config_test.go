package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 1, cfg.ScoreboardRows)
	assert.Equal(t, 30, cfg.MaxDice)
	assert.Equal(t, 100, cfg.MaxRows)
	assert.Equal(t, []string{"https://*", "http://*"}, cfg.AllowedOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", " Redis ")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SCOREBOARD_ROWS", "5")
	t.Setenv("SLOT_PREFIX", "club:")
	t.Setenv("ALLOWED_ORIGINS", "https://games.example.com, ,http://localhost:5173")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 5, cfg.ScoreboardRows)
	assert.Equal(t, "club:", cfg.SlotPrefix)
	assert.Equal(t, []string{"https://games.example.com", "http://localhost:5173"}, cfg.AllowedOrigins)
	// untouched fields keep their defaults
	assert.Equal(t, 30, cfg.MaxDice)
}

func TestLoadWithInvalidEnv(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("SCOREBOARD_ROWS", "-4")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 1, cfg.ScoreboardRows)
}

func TestLoadClampsRowSettings(t *testing.T) {
	t.Setenv("MAX_ROWS", "12")
	t.Setenv("SCOREBOARD_ROWS", "40")

	cfg := Load()

	assert.Equal(t, 12, cfg.MaxRows)
	assert.Equal(t, 12, cfg.ScoreboardRows, "initial rows never exceed the cap")

	t.Setenv("MAX_ROWS", "0")
	assert.Equal(t, 1, Load().MaxRows)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.StorageBackend = BackendPostgres
	require.Error(t, cfg.Validate())

	cfg.DatabaseURL = "postgres://localhost/gamenight"
	require.NoError(t, cfg.Validate())

	cfg.StorageBackend = "floppy"
	require.ErrorIs(t, cfg.Validate(), ErrUnknownBackend)
}

func TestLevel(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, logrus.InfoLevel, cfg.Level())

	cfg.LogLevel = "debug"
	assert.Equal(t, logrus.DebugLevel, cfg.Level())

	cfg.LogLevel = "chatty"
	assert.Equal(t, logrus.InfoLevel, cfg.Level())
}
