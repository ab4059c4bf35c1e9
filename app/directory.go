package app

import (
	"context"
	"time"

	"Gin_postgres_redis_library/models"
	"Gin_postgres_redis_library/session"
)

// UserDirectory is the identity store; db.Repo and memstore.Store both satisfy it.
type UserDirectory interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindOrCreateUser(ctx context.Context, username, newID string) (*models.User, error)
	SetUserAdmin(ctx context.Context, userID string, isAdmin bool) error
	TouchUserSeen(ctx context.Context, userID string) error
}

// SessionStore issues and resolves opaque session tokens.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Get(ctx context.Context, token string) (*session.AppSession, error)
	Delete(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	TTL() time.Duration
}
