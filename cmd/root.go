package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hydrosight/ipastat/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ipastat",
	Short: "Irrigation-scheme performance indicators",
	Long:  "Computes water adequacy, productivity, equity, cropping intensity, and irrigation utilization from season/crop records, and scores them against critical/target thresholds.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
