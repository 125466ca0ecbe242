package main

import (
	"github.com/marmos91/dittocmis/internal/logger"
	"github.com/marmos91/dittocmis/pkg/config"
	"github.com/spf13/cobra"
)

var gcDryRun bool

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Remove document bodies no document references",
	Long: `Run one garbage collection over the configured stores and print what was
found. With --dry-run orphans are counted but kept.

Only persistent stores benefit: memory stores start empty on every run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
			return err
		}
		defer logger.Sync()
		if gcDryRun {
			cfg.GC.DryRun = true
		}

		reg, err := config.InitializeRegistry(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		defer func() { _ = reg.Close() }()

		collector, err := config.CreateCollector(cfg, reg)
		if err != nil {
			return err
		}
		stats, err := collector.RunNow(cmd.Context())
		if err != nil {
			return err
		}

		cmd.Printf("%s\n", stats.Summary())
		return nil
	},
}

func init() {
	gcCmd.Flags().BoolVar(&gcDryRun, "dry-run", false, "report orphans without deleting them")
	rootCmd.AddCommand(gcCmd)
}
