package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Gin_postgres_redis_library/app"
	"Gin_postgres_redis_library/config"
	"Gin_postgres_redis_library/controllers"
	"Gin_postgres_redis_library/db"
	"Gin_postgres_redis_library/routes"

	"github.com/alecthomas/kong"
	"github.com/spf13/viper"
)

type CLI struct {
	EnvFile string `help:"Path to a .env file" default:".env" type:"path"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the HTTP API"`
	Migrate MigrateCmd `cmd:"" help:"Create or update the database schema and exit"`
}

type ServeCmd struct {
	Port string `help:"Listen port (overrides PORT)"`
}

type MigrateCmd struct{}

func (s *ServeCmd) Run(cfg app.Config) error {
	if s.Port != "" {
		cfg.Port = s.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close(context.Background())

	if _, err := app.BootstrapFirstAdmin(ctx, cfg, application.Users, application.Sessions); err != nil {
		slog.Error("bootstrap admin failed", "error", err)
	}

	routes.RegisterRoutes(application.Router, controllers.GetSrv(application), routes.AppMiddleware(application))

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: application.Router}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr, "store", cfg.Store)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
	return nil
}

func (m *MigrateCmd) Run(cfg app.Config) error {
	conn, err := db.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if sqlDB, err := conn.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.Migrate(conn); err != nil {
		return err
	}
	slog.Info("migration complete")
	return nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("library"),
		kong.Description("Library lending API: books, loans and inventory."),
		kong.UsageOnError(),
	)

	config.LoadEnv(cli.EnvFile)
	cfg := app.LoadConfig(viper.GetViper())
	app.InitLogging(cfg.LogLevel)

	if err := kctx.Run(cfg); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
