// Command userforms serves the users page and its JSON API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/arllen133/userforms/config"
	"github.com/arllen133/userforms/store"
	"github.com/arllen133/userforms/users"
	"github.com/arllen133/userforms/web"
	"github.com/gin-gonic/gin"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(web.NewContextHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}),
	))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("userforms exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dialect, err := store.DialectFor(cfg.DBDriver)
	if err != nil {
		return err
	}
	db, err := sql.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.DBMaxConns)

	session := store.NewSession(db, dialect,
		store.WithLogger(logger),
		store.WithDefaultTracer(),
		store.WithDefaultMeter(),
		store.WithSlowQueryThreshold(cfg.SlowQuery),
		store.WithQueryLogging(cfg.LogQueries),
	)
	if err := session.Ping(ctx); err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := store.Migrate(ctx, session, users.CreateTable); err != nil {
		return err
	}

	gateway := users.NewSQLGateway(session)
	dispatcher := users.NewDispatcher(gateway, users.WithLogger(logger))
	handler := web.NewHandler(gateway, dispatcher, session, logger)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: web.NewRouter(handler, logger),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", cfg.Addr), slog.String("driver", dialect.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}
