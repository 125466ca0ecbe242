package main

import (
	"github.com/marmos91/dittocmis/pkg/config"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("dittocmis version %s\n", config.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
