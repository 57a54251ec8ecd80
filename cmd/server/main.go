package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clintrovert/jirabridge/internal/api/rest"
	"github.com/clintrovert/jirabridge/internal/auth"
	"github.com/clintrovert/jirabridge/internal/config"
	"github.com/clintrovert/jirabridge/internal/jira"
	"github.com/clintrovert/jirabridge/internal/store"
	"github.com/clintrovert/jirabridge/internal/usersync"
	"github.com/clintrovert/jirabridge/pkg/types"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Persistent stores: PostgreSQL when configured, in-memory otherwise.
	var (
		users  store.LocalUserRepository
		mirror store.MirrorRepository
	)
	if cfg.DatabaseURL != "" {
		db, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to open database", zap.Error(err))
		}
		defer db.Close()

		if err := store.RunMigrations(context.Background(), db); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}

		users = store.NewPostgresLocalUsers(db)
		mirror = store.NewPostgresMirror(db)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		users = store.NewMemoryLocalUsers()
		mirror = store.NewMemoryMirror()
	}

	// Create Jira gateway client bound to the service account
	gateway, err := jira.NewClient(cfg.JiraBaseURL, types.Credential{
		Identifier: cfg.JiraUsername,
		Secret:     cfg.JiraToken,
	}, logger)
	if err != nil {
		logger.Fatal("failed to create jira client", zap.Error(err))
	}

	validator := jira.NewValidator(cfg.JiraBaseURL, logger)
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	orchestrator := auth.NewOrchestrator(validator, gateway, users, tokens, logger)
	syncService := usersync.NewService(users, mirror, logger)

	handler := rest.NewHandler(orchestrator, gateway, syncService, mirror, tokens, logger)

	// Setup REST API
	router := chi.NewRouter()
	router.Use(rest.RequestLogger(logger))
	router.Route("/api/v1", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	addr := fmt.Sprintf(":%s", cfg.HTTPPort)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("starting REST API server", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start REST server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	server.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
