package config

import (
	"fmt"
	"os"
	"time"

	"fantasy-market/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	BackendURL   string
	BackendToken string
	UserID       string
	Username     string
	LeagueID     string
	DBPath       string
	ServerPort   string
	LogLevel     string
	PollInterval time.Duration
	SyncSchedule string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		BackendURL:   getEnv("BACKEND_URL", ""),
		BackendToken: getEnv("BACKEND_TOKEN", ""),
		UserID:       getEnv("USER_ID", ""),
		Username:     getEnv("USERNAME", ""),
		LeagueID:     getEnv("LEAGUE_ID", ""),
		DBPath:       getEnv("DB_PATH", "fantasy-market.db"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		PollInterval: getDurationEnv("POLL_INTERVAL", constants.ActivityPollInterval),
		SyncSchedule: getEnv("SYNC_SCHEDULE", constants.BufferSyncSchedule),
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}

	logger.Info().
		Str("backend_url", cfg.BackendURL).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("poll_interval", cfg.PollInterval).
		Str("sync_schedule", cfg.SyncSchedule).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

var Module = fx.Provide(Load)
