package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime settings for the application.
type Config struct {
	DBPath         string
	RemindInterval time.Duration
	PurgeSchedule  string // cron spec with seconds field
	PurgeAfterDays int
	Logger         LoggerConfig
}

type LoggerConfig struct {
	Level    string
	Encoding string
	Path     string // log file; empty means stderr
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults so the app can start with no setup at all.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	dbPath := os.Getenv("MUSE_DB_PATH")
	if dbPath == "" {
		var err error
		dbPath, err = defaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		DBPath:         dbPath,
		RemindInterval: getDuration("MUSE_REMIND_INTERVAL", 30*time.Second),
		PurgeSchedule:  getString("MUSE_PURGE_SCHEDULE", "0 0 4 * * *"),
		PurgeAfterDays: getInt("MUSE_PURGE_AFTER_DAYS", 30),
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
			Path:     getString("LOG_PATH", filepath.Join(filepath.Dir(dbPath), "muse.log")),
		},
	}

	return cfg, nil
}

// defaultDBPath returns the database location under the XDG data
// directory, falling back to ~/.local/share.
func defaultDBPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "muse", "muse.db"), nil
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
