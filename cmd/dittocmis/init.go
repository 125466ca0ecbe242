package main

import (
	"github.com/marmos91/dittocmis/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample configuration file",
	Long: `Write a configuration file holding every default value, a demo tree in the
memory store and an admin user.

The file goes to --config when given, to the default location otherwise.
An existing file is only replaced with --force.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := configPath
		if path == "" {
			p, err := config.InitConfig(initForce)
			if err != nil {
				return err
			}
			path = p
		} else if err := config.InitConfigToPath(path, initForce); err != nil {
			return err
		}

		cmd.Printf("Configuration written to %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing configuration file")
	rootCmd.AddCommand(initCmd)
}
