/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the dairy record-keeping server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and configuration (file + env)
  2. Build the structured logger
  3. Open the SQLite store
  4. Start the local replica (subscribes to all collections)
  5. Wire gateway, transliteration client, handlers, router
  6. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Cancel subscriptions and close the database
  4. Exit

CONFIGURATION:
  All settings come from dairybook.yaml or DAIRYBOOK_* environment
  variables; see config/config.go for the full list.

EXAMPLES:
  # Run with defaults (dairybook.db in the working directory)
  ./server

  # Run on a different port with auth enabled
  DAIRYBOOK_HTTP_PORT=3000 DAIRYBOOK_AUTH_ENABLED=true ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mahalaxmi/dairybook/api"
	"github.com/mahalaxmi/dairybook/config"
	"github.com/mahalaxmi/dairybook/dairy"
	"github.com/mahalaxmi/dairybook/logger"
	"github.com/mahalaxmi/dairybook/store/sqlite"
	"github.com/mahalaxmi/dairybook/translit"
)

func main() {
	// A missing .env file is fine; env vars still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		log.Fatal("failed to open database", zap.String("path", cfg.DB.Path), zap.Error(err))
	}
	defer store.Close()

	replica := dairy.NewReplica()
	cancelSubs := replica.Start(store)
	defer cancelSubs()

	gateway := dairy.NewGateway(store, log)
	translitOpts := []translit.Option{translit.WithTimeout(cfg.Translit.Timeout)}
	if cfg.Translit.TransliterateURL != "" && cfg.Translit.TranslateURL != "" {
		translitOpts = append(translitOpts,
			translit.WithEndpoints(cfg.Translit.TransliterateURL, cfg.Translit.TranslateURL))
	}
	tc := translit.New(log, translitOpts...)

	handler := api.NewHandler(replica, gateway, tc, cfg.Auth, log)
	router := api.NewRouter(handler, cfg.HTTP.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.Int("port", cfg.HTTP.Port),
			zap.String("db", cfg.DB.Path),
			zap.Bool("auth", cfg.Auth.Enabled))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
