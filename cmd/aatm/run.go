package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tradeforge/aatm/internal/metrics"
	"github.com/tradeforge/aatm/internal/state"
	"github.com/tradeforge/aatm/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the AATM module",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	// Fail closed: a partially configured store must not reach ready.
	if !cfg.Validate(log) {
		return fmt.Errorf("config validation failed")
	}

	log.Info("starting AATM",
		zap.String("module", cfg.ModuleName),
		zap.String("mode", string(cfg.TradingMode)),
		zap.String("symbol", cfg.Market.Symbol),
	)

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()

		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg.Registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}

		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", zap.Error(err))
			}
		}()
		defer srv.Close()

		log.Info("metrics exposed",
			zap.String("addr", cfg.Metrics.Addr),
			zap.String("path", cfg.Metrics.Path))
	}

	mgrOpts := []store.Option{}
	if reg != nil {
		mgrOpts = append(mgrOpts, store.WithMetrics(reg))
	}
	mgr := store.NewManager(cfg.Store, log, mgrOpts...)
	defer mgr.Close()

	client, err := mgr.Initialize(context.Background())
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}

	accOpts := []state.Option{}
	if reg != nil {
		accOpts = append(accOpts, state.WithMetrics(reg))
	}
	accessor := state.New(client, cfg.Store, log, accOpts...)

	active, err := accessor.ListStrategies(context.Background(), true)
	if err != nil {
		return fmt.Errorf("listing strategies: %w", err)
	}
	log.Info("state accessor ready",
		zap.Int("active_strategies", len(active)),
		zap.Bool("auto_evolution", cfg.Features.AutoEvolution),
		zap.Bool("performance_tracking", cfg.Features.PerformanceTracking),
	)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down AATM")
	return nil
}
