package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/chris/account-transfers/pkg/api"
	"github.com/chris/account-transfers/pkg/bootstrap"
	"github.com/chris/account-transfers/pkg/config"
	"github.com/chris/account-transfers/pkg/handlers"
	"github.com/chris/account-transfers/pkg/handlers/respond"
	"github.com/chris/account-transfers/pkg/handlers/transfers"
	"github.com/chris/account-transfers/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	deps, err := bootstrap.NewAWS(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to initialize AWS clients", "error", err)
		os.Exit(1)
	}

	handler := handlers.NewApiHandler(nil, transfers.NewTransfersHandler(deps.Orchestrator(cfg), deps.Store))

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.NewStructuredLogger(logger))
	router.Use(middleware.Metrics)
	router.Use(chimiddleware.Recoverer)
	router.Handle("/metrics", promhttp.Handler())

	api.HandlerWithOptions(handler, api.ChiServerOptions{
		BaseRouter:       router,
		ErrorHandlerFunc: respond.ParamError,
	})

	logger.Info("starting transfer service", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}
