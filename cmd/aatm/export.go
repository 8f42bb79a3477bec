package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tradeforge/aatm/internal/archive"
	"github.com/tradeforge/aatm/internal/state"
	"github.com/tradeforge/aatm/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trade logs and market state to the cold archive",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if !cfg.Validate(log) {
		return fmt.Errorf("config validation failed")
	}

	backend, err := archive.New(cfg.Archive)
	if err != nil {
		return fmt.Errorf("creating archive backend: %w", err)
	}

	mgr := store.NewManager(cfg.Store, log)
	defer mgr.Close()

	client, err := mgr.Initialize(context.Background())
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}

	exporter := state.NewExporter(client, backend, cfg.Store, log, nil)
	n, err := exporter.ExportState(context.Background(), time.Now())
	if err != nil {
		return fmt.Errorf("exporting state: %w", err)
	}

	log.Info("export complete",
		zap.Int("documents", n),
		zap.String("backend", cfg.Archive.Type))
	return nil
}
