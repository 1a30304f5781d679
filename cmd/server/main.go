// Package main runs the token gate HTTP service:
// - /process: eligibility check and channel invite
// - /health, /status, /metrics: operations endpoints
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"token-gate/internal/config"
	"token-gate/internal/httpapi"
	"token-gate/internal/observability"
	"token-gate/internal/orchestrator"
)

func main() {
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Flags override env
	httpAddr := flag.String("http-addr", cfg.HTTPAddr, "HTTP listen address")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "Separate Prometheus metrics address (optional)")
	useMemory := flag.Bool("use-memory", cfg.UseMemory, "Use in-memory audit storage instead of PostgreSQL/ClickHouse")
	clientRate := flag.Float64("client-rate", 2, "Per-IP /process requests per second")
	clientBurst := flag.Int("client-burst", 5, "Per-IP /process burst")
	flag.Parse()

	cfg.HTTPAddr = *httpAddr
	cfg.MetricsAddr = *metricsAddr
	cfg.UseMemory = *useMemory

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config:\n%v", err)
	}
	if !cfg.AuditEnabled() {
		logger.Println("Audit storage not configured; outcomes will not be recorded")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := orchestrator.Build(ctx, cfg, orchestrator.Options{
		Logger: log.New(os.Stdout, "", log.LstdFlags),
	})
	if err != nil {
		logger.Fatalf("Failed to build components: %v", err)
	}
	defer components.Close()

	api := httpapi.NewServer(httpapi.Options{
		Checker:      components.Checker,
		RateLimit:    rate.Limit(*clientRate),
		RateBurst:    *clientBurst,
		HealthChecks: components.HealthChecks,
		Logger:       log.New(os.Stdout, "[http] ", log.LstdFlags),
	})

	servers := []*http.Server{{
		Addr:              cfg.HTTPAddr,
		Handler:           api,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.MetricsAddr != "" && cfg.MetricsAddr != cfg.HTTPAddr {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			logger.Printf("Starting HTTP server on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(srv)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-errCh:
		logger.Printf("HTTP server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown %s: %v", srv.Addr, err)
		}
	}
	cancel()

	logger.Println("Shutdown complete")
}
