package cmd

import (
	"os"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/nopwsh/core"
	"github.com/spf13/cobra"
)

// shellCmd runs the interactive prompt over the local terminal.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Run cmdlets from an interactive prompt.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		diag := newDiagLogger(cmd.ErrOrStderr())
		configuration, err := loadConfig(diag, true)
		if err != nil {
			return err
		}

		interp, err := newInterpreter(configuration, diag)
		if err != nil {
			return err
		}

		isTerminal := readline.IsTerminal(int(os.Stdin.Fd()))
		interp.Color = isTerminal

		sh, err := core.NewShell(interp, configuration.PromptFor(configuration.Username), core.Terminal{
			Stdin:      cmd.InOrStdin(),
			Stdout:     cmd.OutOrStdout(),
			Stderr:     cmd.ErrOrStderr(),
			IsTerminal: isTerminal,
			Width:      readline.GetScreenWidth,
		}, nil)
		if err != nil {
			return err
		}
		defer sh.Close()

		sh.Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
