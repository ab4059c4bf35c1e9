package app

import (
	"log/slog"
	"os"
	"strings"

	"github.com/lepinkainen/humanlog"
)

// InitLogging installs a human-readable slog handler as the process default.
func InitLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: lvl,
	})
	slog.SetDefault(slog.New(handler))
}
