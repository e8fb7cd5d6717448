package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"crewlink/internal/config"
	"crewlink/internal/directory"
	"crewlink/internal/logging"
	"crewlink/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is what every subcommand needs once configuration is loaded
type app struct {
	cfg     *config.ClientConfig
	base    *url.URL
	log     *zap.Logger
	reg     *prometheus.Registry
	metrics *metrics.Collector
}

func loadApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadConfig(path, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logging.New(cfg.Client.LogLevel, cfg.Client.LogFormat)
	if err != nil {
		return nil, err
	}

	base, err := cfg.Client.BaseURL()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, base: base, log: log}
	if cfg.Client.EnableMetrics {
		a.reg = prometheus.NewRegistry()
		if a.metrics, err = metrics.New(a.reg); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	log.Debug("loaded configuration",
		zap.String("server", base.String()),
		zap.Bool("metrics", cfg.Client.EnableMetrics),
	)
	return a, nil
}

func (a *app) directory() *directory.Client {
	return directory.New(a.base, a.cfg.Client.DirectoryTimeout, a.log.Named("directory"))
}

// serveMetrics exposes /metrics until ctx is done
func (a *app) serveMetrics(ctx context.Context) {
	if a.reg == nil {
		return
	}

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{}))
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:              a.cfg.Client.MetricsAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.log.Info("serving metrics", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("metrics server forced to shutdown", zap.Error(err))
		}
	}()
}
