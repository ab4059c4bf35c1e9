// Package config loads process configuration from .env files and the environment.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadEnv reads .env (if present) into the process environment and registers defaults.
// Variables already set in the environment win over the file.
func LoadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Failed to load env file", "file", f, "error", err)
		}
	}
	SetDefaults(viper.GetViper())
}

// SetDefaults registers every known key with its default and enables env lookup.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3001")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_NAME", "Library")

	v.SetDefault("STORE", "postgres")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "library")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("LOCK_TIMEOUT", "2s")
	v.SetDefault("LOAN_MAX_ATTEMPTS", 4)

	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("WEB_ORIGIN", "http://localhost:5173")
	v.SetDefault("SESSION_TTL_SECONDS", 86400)
	v.SetDefault("SEEN_THROTTLE", "5m")

	v.SetDefault("NOTIFY_CHANNEL", "log")
	v.SetDefault("NOTIFY_RATE_PER_SEC", 1.0)
	v.SetDefault("NOTIFY_QUEUE_SIZE", 64)
	v.SetDefault("NOTIFY_REDIS_CHANNEL", "library:loans:created")
	v.SetDefault("SMTP_PORT", "587")

	v.AutomaticEnv()
}

// SplitList parses a comma separated value, trimming blanks. lower folds case.
func SplitList(csv string, lower bool) []string {
	var out []string
	for _, s := range strings.Split(csv, ",") {
		t := strings.TrimSpace(s)
		if t == "" {
			continue
		}
		if lower {
			t = strings.ToLower(t)
		}
		out = append(out, t)
	}
	return out
}
