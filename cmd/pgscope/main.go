// pgscope serves read-only PostgreSQL catalog metadata over HTTP.
//
// It connects to every database named in the config file at startup and
// exposes schemas, tables, columns, constraints, indexes, a full database
// document, and bounded row samples per connection.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pgscope/pgscope/internal/config"
	"github.com/pgscope/pgscope/internal/database"
	"github.com/pgscope/pgscope/internal/database/postgres"
	"github.com/pgscope/pgscope/internal/logger"
	"github.com/pgscope/pgscope/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pgscope: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the config file is the source of truth.
	_ = godotenv.Load()

	path := flag.String("config", defaultConfigPath(), "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	ctx := context.Background()

	registry, err := database.NewRegistry(ctx, poolConfigs(cfg), postgres.Connect)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer registry.Close()
	log.With().Int("connections", len(registry.IDs())).Logger().Info("connected")

	srv := server.New(registry, log, cfg.Server.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case sig := <-stop:
		log.With().Str("signal", sig.String()).Logger().Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("stopped")
	return nil
}

func defaultConfigPath() string {
	if v := os.Getenv("PGSCOPE_CONFIG"); v != "" {
		return v
	}
	return config.DefaultPath
}

// poolConfigs turns the named connection settings into pool configs,
// filling unset tuning fields from the database package defaults.
func poolConfigs(cfg *config.Config) map[string]*database.Config {
	out := make(map[string]*database.Config, len(cfg.Connections))
	for id, conn := range cfg.Connections {
		pc := database.DefaultConfig(conn.DSN)
		if conn.MaxConns > 0 {
			pc.MaxConns = conn.MaxConns
		}
		if conn.MinConns > 0 {
			pc.MinConns = conn.MinConns
		}
		if conn.MaxConnLifetime > 0 {
			pc.MaxConnLifetime = conn.MaxConnLifetime
		}
		if conn.MaxConnIdleTime > 0 {
			pc.MaxConnIdleTime = conn.MaxConnIdleTime
		}
		if conn.ConnectTimeout > 0 {
			pc.ConnectTimeout = conn.ConnectTimeout
		}
		if conn.QueryTimeout > 0 {
			pc.QueryTimeout = conn.QueryTimeout
		}
		out[id] = pc
	}
	return out
}
