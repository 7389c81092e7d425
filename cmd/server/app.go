package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/voicebox/voicebox-api/internal/config"
	"github.com/voicebox/voicebox-api/internal/platform/artifact"
	"github.com/voicebox/voicebox-api/internal/platform/postgres"
	"github.com/voicebox/voicebox-api/internal/platform/synth"
	"github.com/voicebox/voicebox-api/internal/queue"
	"github.com/voicebox/voicebox-api/internal/service"
	"github.com/voicebox/voicebox-api/internal/service/auth"
	"github.com/voicebox/voicebox-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// application holds the wired dependency graph.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore queue.TaskStore
	artifacts *artifact.Store

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	userService      service.UserService

	taskQueue *queue.Queue
}

// newApplication creates the application with all dependencies
// initialized. Core dependencies (config, logger, database) must already
// be established.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()
	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost)
	app.taskStore = postgres.NewPostgresTaskStore(db)
	app.userService = service.NewUserService(app.userStore, app.passwordVerifier, db, logger)

	app.artifacts, err = artifact.NewStore(cfg.Synth.OutputDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize artifact store: %w", err)
	}

	synthesizer := synth.NewStubSynthesizer()
	logger.Info("synthesis engine initialized", "model_dir", cfg.Synth.ModelDir)

	app.taskQueue = queue.NewQueue(
		queue.Config{
			MaxConcurrent:   cfg.Queue.MaxConcurrentTasks,
			TaskTimeout:     cfg.Queue.TaskTimeout(),
			TaskRetention:   cfg.Queue.TaskRetention(),
			CleanupInterval: cfg.Queue.CleanupInterval(),
		},
		app.taskStore,
		app.artifacts,
		synthesizer,
		logger,
	)
	if err := app.taskQueue.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start task queue: %w", err)
	}

	return app, nil
}

// Run serves HTTP until the context is cancelled, then shuts down the
// server and the task queue gracefully.
func (app *application) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("http server shutdown failed", "error", err)
	}
	if err := app.taskQueue.Stop(shutdownCtx); err != nil {
		app.logger.Error("task queue shutdown failed", "error", err)
	}

	app.logger.Info("server stopped")
	return nil
}
