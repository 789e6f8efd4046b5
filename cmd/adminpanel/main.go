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

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/adminpanel/internal/adapter/driven/backend"
	"github.com/ericfisherdev/adminpanel/internal/adapter/driven/notify"
	sqliteadapter "github.com/ericfisherdev/adminpanel/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/adminpanel/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/adminpanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/adminpanel/internal/application"
	"github.com/ericfisherdev/adminpanel/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"backend_url", cfg.BackendURL,
		"encrypted_credentials", cfg.HasSecretKey(),
	)
	if !cfg.HasSecretKey() {
		slog.Warn("ADMINPANEL_SECRET_KEY not set, admin token will be stored unencrypted")
	}

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters.
	credentialStore := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	creds := application.LoadCredentialHolder(ctx, credentialStore)
	if creds.HasToken() {
		slog.Info("stored admin token loaded")
	} else {
		slog.Info("no admin token stored, log in via the dashboard")
	}

	backendClient, err := backend.NewClient(cfg.BackendURL)
	if err != nil {
		return err
	}

	toaster := notify.NewToaster(notify.DefaultCapacity, slog.Default())

	// 6. Create the admin session store shared by every consumer.
	session := application.NewAdminSession(backendClient, toaster, creds)

	// 7. Register API and GUI routes.
	mux := http.NewServeMux()
	apiHandler := httphandler.NewHandler(session, toaster, slog.Default())
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	webHandler := webhandler.NewHandler(session, toaster, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 9. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
