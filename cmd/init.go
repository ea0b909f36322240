package cmd

import (
	"github.com/josephlewis42/nopwsh/core/config"
	"github.com/spf13/cobra"
)

// initCmd writes a default configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the configuration in the --config directory.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		_, err := config.Initialize(cfgPath, newDiagLogger(cmd.ErrOrStderr()))
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
