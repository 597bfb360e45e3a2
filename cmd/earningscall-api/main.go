package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"earningscall/internal/config"
	"earningscall/internal/httpapi"
	"earningscall/internal/observability"
	"earningscall/internal/summarizer"
	"earningscall/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, os.Stdout)
	metrics := observability.NewMetrics()

	upstreamHTTPClient := upstream.NewHTTPClient(cfg.RequestTimeout, metrics.ObserveUpstream)
	generator, err := upstream.New(context.Background(), cfg, upstreamHTTPClient)
	if err != nil {
		logger.Error("generator setup failed", "provider", cfg.Provider, "error", err)
		os.Exit(1)
	}

	summaryService := summarizer.New(generator,
		summarizer.WithConcurrency(cfg.SummaryConcurrency),
		summarizer.WithTimeout(cfg.CategoryTimeout),
		summarizer.WithLogger(logger),
		summarizer.WithObserver(metrics.ForProvider(generator.Name())),
	)

	handler := httpapi.NewServer(cfg, logger, httpapi.Dependencies{
		Summarizer:     summaryService,
		Readiness:      generator,
		Metrics:        metrics,
		MetricsHandler: metrics.Handler(),
	})

	// Worst case is every category call running to its timeout one after another.
	writeTimeout := time.Duration(len(summarizer.Categories()))*cfg.CategoryTimeout + 30*time.Second

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       35 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"addr", cfg.ListenAddr,
			"provider", generator.Name(),
			"model", cfg.Model,
			"concurrency", cfg.SummaryConcurrency,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server exited", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
