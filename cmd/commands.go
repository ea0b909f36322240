package cmd

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/nopwsh/commands"
	"github.com/spf13/cobra"
)

// commandsCmd lists the built-in cmdlets
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Show the built-in cmdlets and their aliases.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, d := range commands.NewRegistry().Descriptors() {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(d.AllAliases(), ", "))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}
