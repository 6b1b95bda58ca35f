package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/anupamd/billsplit/internal/config"
	"github.com/anupamd/billsplit/internal/metrics"
	"github.com/anupamd/billsplit/internal/receipt"
	"github.com/anupamd/billsplit/internal/server"
	"github.com/anupamd/billsplit/internal/service"
	"github.com/anupamd/billsplit/internal/storage/sqlite"
	"github.com/anupamd/billsplit/pkg/logging"
)

// disabledExtractor answers every scan with an error so the rest of the API
// keeps working when no vision credentials are configured.
type disabledExtractor struct{}

func (disabledExtractor) ExtractReceipt(context.Context, string) (*receipt.Receipt, error) {
	return nil, errors.New("receipt extraction is not configured")
}

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	var extractor receipt.Extractor = disabledExtractor{}
	if cfg.Vision.Enabled() {
		extractor = receipt.NewVisionClient(cfg.Vision.APIKey, cfg.Vision.Endpoint,
			cfg.Vision.Timeout, cfg.Vision.MaxTokens)
		slog.Info("Receipt extraction enabled", "endpoint", cfg.Vision.Endpoint)
	} else {
		slog.Warn("Receipt extraction disabled, set VISION_API_KEY and VISION_ENDPOINT to enable")
	}

	handler := server.NewHandler(service.NewBillService(store, extractor))

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(server.RequestLogger)
	r.Use(metrics.Middleware)

	r.Mount("/api/v1/bills", handler.Routes())
	r.Handle("/metrics", metrics.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		slog.Info("Shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
