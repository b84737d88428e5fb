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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/welldanyogia/mail-dispatch/internal/api"
	"github.com/welldanyogia/mail-dispatch/internal/config"
	"github.com/welldanyogia/mail-dispatch/internal/delivery"
	"github.com/welldanyogia/mail-dispatch/internal/health"
	"github.com/welldanyogia/mail-dispatch/internal/logger"
	"github.com/welldanyogia/mail-dispatch/internal/metrics"
	applog "github.com/welldanyogia/mail-dispatch/internal/middleware"
	"github.com/welldanyogia/mail-dispatch/internal/parser"
	"github.com/welldanyogia/mail-dispatch/internal/provider"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.Log)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	chain, err := provider.BuildChain(
		cfg.Delivery.Providers,
		provider.OSEnv{},
		&http.Client{Timeout: cfg.Delivery.HTTPTimeout},
		cfg.Delivery.Endpoints(),
		log,
	)
	if err != nil {
		log.Error("Failed to build provider chain", "error", err)
		os.Exit(1)
	}

	healthHandler := health.NewHandler(health.Config{Providers: chain, Version: cfg.Version})
	for _, p := range chain {
		if checker, ok := p.(provider.CredentialChecker); ok && !checker.Configured() {
			log.Warn("Provider credentials missing", "provider", p.Name())
		}
	}

	orchestrator := delivery.NewOrchestrator(chain, delivery.WithLogger(log))
	builder := parser.NewMessageBuilder(parser.NewAddressParser(cfg.Delivery.Delimiter()))
	apiHandler := api.NewHandler(builder, orchestrator, log)

	r := newRouter(cfg, log, apiHandler, healthHandler)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting server", "addr", srv.Addr, "providers", cfg.Delivery.Providers, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	healthHandler.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

// newRouter wires middleware and every HTTP endpoint.
func newRouter(cfg *config.Config, log *slog.Logger, apiHandler *api.Handler, healthHandler *health.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(applog.StructuredLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Handle("/metrics", metrics.Handler())

	api.RegisterRoutes(r, apiHandler)

	return r
}
