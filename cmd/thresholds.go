package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hydrosight/ipastat/internal/model"
)

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Manage threshold presets",
}

var thresholdsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default thresholds file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = cfg.Thresholds.Path
		}
		if err := model.SaveThresholds(output, model.DefaultThresholds()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
		return nil
	},
}

func init() {
	thresholdsInitCmd.Flags().String("output", "", "output path (default from config)")
	thresholdsCmd.AddCommand(thresholdsInitCmd)
	rootCmd.AddCommand(thresholdsCmd)
}
