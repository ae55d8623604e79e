package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Storage backends understood by storage.Open.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Config holds process-level settings read from the environment.
type Config struct {
	Port     int
	LogLevel string

	StorageBackend string
	SlotPrefix     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DatabaseURL string

	// ScoreboardRows is the row count a fresh scoreboard starts with.
	ScoreboardRows int
	// MaxDice caps a single dice roll.
	MaxDice int
	// MaxRows caps the scoreboard row count.
	MaxRows int

	// AllowedOrigins feeds the CORS middleware; wildcards like "https://*" work.
	AllowedOrigins []string
}

// Defaults returns a Config with every default value.
func Defaults() *Config {
	return &Config{
		Port:           8080,
		LogLevel:       "info",
		StorageBackend: BackendMemory,
		RedisAddr:      "localhost:6379",
		ScoreboardRows: 1,
		MaxDice:        30,
		MaxRows:        100,
		AllowedOrigins: []string{"https://*", "http://*"},
	}
}

// Load starts from Defaults and applies environment overrides.
// Invalid integers are logged and ignored.
func Load() *Config {
	cfg := Defaults()

	overrideInt(&cfg.Port, "PORT")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.StorageBackend, "STORAGE_BACKEND")
	overrideString(&cfg.SlotPrefix, "SLOT_PREFIX")
	overrideString(&cfg.RedisAddr, "REDIS_ADDR")
	overrideString(&cfg.RedisPassword, "REDIS_PASSWORD")
	overrideInt(&cfg.RedisDB, "REDIS_DB")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideInt(&cfg.ScoreboardRows, "SCOREBOARD_ROWS")
	overrideInt(&cfg.MaxDice, "MAX_DICE")
	overrideInt(&cfg.MaxRows, "MAX_ROWS")
	if val := os.Getenv("ALLOWED_ORIGINS"); val != "" {
		cfg.AllowedOrigins = splitOrigins(val)
	}

	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	if cfg.ScoreboardRows < 1 {
		cfg.ScoreboardRows = 1
	}
	if cfg.MaxDice < 1 {
		cfg.MaxDice = 1
	}
	if cfg.MaxRows < 1 {
		cfg.MaxRows = 1
	}
	cfg.ScoreboardRows = min(cfg.ScoreboardRows, cfg.MaxRows)
	return cfg
}

// Validate checks settings that Load cannot repair on its own.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendRedis:
		return nil
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres backend")
		}
		return nil
	}
	return ErrUnknownBackend
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			logrus.Warnf("invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func splitOrigins(val string) []string {
	var out []string
	for _, o := range strings.Split(val, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
