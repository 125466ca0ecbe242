package main

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "dittocmis",
	Short: "Document management server over a hierarchical resource store",
	Long: `DittoCMIS exposes folders, documents and relations held in a resource
store through a CMIS style object model and browser binding.

Run "dittocmis init" to write a sample configuration, then "dittocmis serve".`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the configuration file (default $XDG_CONFIG_HOME/dittocmis/config.yaml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
