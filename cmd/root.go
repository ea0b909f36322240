package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/abiosoft/readline"
	"github.com/charmbracelet/log"
	"github.com/josephlewis42/nopwsh/commands"
	"github.com/josephlewis42/nopwsh/core"
	"github.com/josephlewis42/nopwsh/core/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const banner = `nopwsh - PowerShell style cmdlets without PowerShell.
Run "nopwsh Get-Help <cmdlet>" to learn more about a command.
`

// errPipelineFailed is returned after the pipeline already reported its
// error on stderr.
var errPipelineFailed = errors.New("pipeline failed")

var (
	cfgPath string
	verbose bool

	// overrides holds the connection settings given as flags or NOPWSH_*
	// environment variables.
	overrides = viper.New()
)

func newDiagLogger(w io.Writer) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "nopwsh",
		Level:  level,
	})
}

// loadConfig loads the configuration directory. If allowDefault is set and
// the directory has no configuration the built-in one is used.
func loadConfig(diag *log.Logger, allowDefault bool) (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)
	switch {
	case errors.Is(err, fs.ErrNotExist) && allowDefault:
		diag.Debug("No configuration found, using defaults", "path", cfgPath)
		configuration = config.Default()
	case errors.Is(err, fs.ErrNotExist):
		diag.Error("Couldn't load config: did you run init?", "path", cfgPath)
		return nil, err
	case err != nil:
		return nil, err
	}

	if overrides.IsSet("host") {
		configuration.Host = overrides.GetString("host")
	}
	if overrides.IsSet("username") {
		configuration.Username = overrides.GetString("username")
	}
	if overrides.IsSet("password") {
		configuration.Password = overrides.GetString("password")
	}
	return configuration, nil
}

func newInterpreter(configuration *config.Configuration, diag *log.Logger) (*core.Interpreter, error) {
	return core.NewInterpreter(commands.NewRegistry(), configuration, diag)
}

// rootCmd runs the pipeline given as arguments.
var rootCmd = &cobra.Command{
	Use:   "nopwsh [flags] [pipeline...]",
	Short: "PowerShell style cmdlets without PowerShell",
	Long: `Runs a pipeline of PowerShell style cmdlets, e.g.

  nopwsh Get-ADUser -Filter '*' '|' select Name

Without a pipeline the available cmdlets are listed.`,
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
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

		interp.Color = readline.IsTerminal(int(os.Stderr.Fd()))

		if len(args) == 0 {
			fmt.Fprint(cmd.OutOrStdout(), banner+"\n")
			args = []string{"Get-Command"}
		}

		if interp.RunArgs(args, cmd.OutOrStdout(), cmd.ErrOrStderr(), nil) != 0 {
			return errPipelineFailed
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errPipelineFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	// Everything after the first cmdlet name belongs to the pipeline.
	rootCmd.Flags().SetInterspersed(false)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgPath, "config", ".", "config path")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log diagnostics to stderr")
	flags.String("host", "", "default computer for remote capable cmdlets")
	flags.String("username", "", "default user for remote capable cmdlets")
	flags.String("password", "", "default password for remote capable cmdlets")

	overrides.SetEnvPrefix("NOPWSH")
	overrides.AutomaticEnv()
	for _, name := range []string{"host", "username", "password"} {
		cobra.CheckErr(overrides.BindPFlag(name, flags.Lookup(name)))
	}
}
