package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"Gin_postgres_redis_library/db"
	"Gin_postgres_redis_library/lending"
	"Gin_postgres_redis_library/memstore"
	"Gin_postgres_redis_library/notify"
	"Gin_postgres_redis_library/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// short aliases for handlers
type Ctx = gin.Context
type H = gin.H

// App aggregates the process-wide dependencies.
type App struct {
	Router *gin.Engine
	DB     *gorm.DB // nil with STORE=memory
	RDB    *redis.Client
	Config Config

	Store    lending.Store
	Users    UserDirectory
	Manager  *lending.Manager
	Catalog  *lending.Catalog
	Sessions SessionStore

	notifier *notify.Async
}

func New(ctx context.Context, cfg Config) (*App, error) {
	a := &App{Config: cfg}

	// --- Store ---
	switch cfg.Store {
	case "memory":
		ms := memstore.New()
		a.Store, a.Users = ms, ms
		slog.Warn("Using in-memory store; data is lost on restart")
	case "", "postgres":
		conn, err := db.ConnectDB(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := db.Migrate(conn); err != nil {
				return nil, err
			}
		}
		repo := db.NewRepo(conn)
		if cfg.LockTimeout > 0 {
			repo.LockTimeout = cfg.LockTimeout
		}
		a.DB, a.Store, a.Users = conn, repo, repo
	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	// --- Redis ---
	a.RDB = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.RDB.Ping(pingCtx).Err(); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("redis: %w", err)
	}
	a.Sessions = session.NewAppSessionStore(a.RDB, cfg.SessionTTL)

	// --- Lending ---
	lendLog := slog.Default().With("component", "lending")
	n, err := buildNotifier(cfg, a.RDB, slog.Default().With("component", "notify"))
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.notifier = n

	var retry []lending.RetryOption
	if cfg.LoanMaxAttempts > 0 {
		retry = append(retry, lending.WithMaxAttempts(cfg.LoanMaxAttempts))
	}
	a.Manager, err = lending.NewManager(a.Store,
		lending.WithNotifier(n),
		lending.WithLogger(lendLog),
		lending.WithRetryOptions(retry...),
	)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Catalog = lending.NewCatalog(a.Store)

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)
	a.Router = r
	return a, nil
}

// Close drains pending notifications and releases connections.
func (a *App) Close(ctx context.Context) {
	if a.notifier != nil {
		drainCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := a.notifier.Close(drainCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("notifier close", "error", err)
		}
		cancel()
	}
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
