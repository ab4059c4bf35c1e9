// app/bootstrap.go
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// BootstrapFirstAdmin makes cfg.BootstrapAdmin an admin and prints a session token for it.
// There is no login flow, so this token is how the first operator gets in.
func BootstrapFirstAdmin(ctx context.Context, cfg Config, users UserDirectory, sessions SessionStore) (string, error) {
	if cfg.BootstrapAdmin == "" {
		return "", nil
	}
	slog.Info("Checking bootstrap admin", "username", cfg.BootstrapAdmin)

	u, err := users.FindOrCreateUser(ctx, cfg.BootstrapAdmin, uuid.NewString())
	if err != nil {
		return "", fmt.Errorf("bootstrap admin user: %w", err)
	}
	if !u.IsAdmin {
		if err := users.SetUserAdmin(ctx, u.ID, true); err != nil {
			return "", fmt.Errorf("bootstrap admin flag: %w", err)
		}
	}

	token, err := sessions.Create(ctx, u.ID)
	if err != nil {
		return "", fmt.Errorf("bootstrap admin session: %w", err)
	}
	slog.Info("[BOOTSTRAP] admin session issued",
		"username", u.Username, "user_id", u.ID, "expires_in", sessions.TTL().String())
	slog.Info("[BOOTSTRAP] use it as: Authorization: Bearer " + token)
	return token, nil
}
