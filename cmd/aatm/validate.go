package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration without connecting to the store",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if !cfg.Validate(log) {
		return fmt.Errorf("configuration invalid")
	}

	fmt.Printf("configuration OK (mode=%s, module=%s, store project=%s)\n",
		cfg.TradingMode, cfg.ModuleName, cfg.Store.ProjectID)
	return nil
}
