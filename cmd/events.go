package cmd

import (
	"fmt"
	"io"

	"github.com/josephlewis42/nopwsh/core/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var (
	eventLogPath string
	reportBugs   bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Summarize the pipelines run against the SSH server.",
	Long: `Read the JSON lines event log that serve writes and summarize it as YAML.

The log in the configuration directory is used unless --log names another file.`,
}

// readEvents feeds every entry of the event log to handler.
func readEvents(cmd *cobra.Command, handler func(le *logger.LogEntry)) error {
	var (
		fd  io.ReadCloser
		err error
	)
	if eventLogPath != "" {
		fd, err = afero.NewOsFs().Open(eventLogPath)
	} else {
		configuration, cfgErr := loadConfig(newDiagLogger(cmd.ErrOrStderr()), false)
		if cfgErr != nil {
			return cfgErr
		}
		fd, err = configuration.ReadAppLog()
	}
	if err != nil {
		return fmt.Errorf("opening event log: %w", err)
	}
	defer fd.Close()

	return logger.ReadJSONLinesLog(fd, handler)
}

func printYAML(cmd *cobra.Command, v interface{}) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

var eventsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Count logins, pipelines, commands and errors.",
	Example: `  nopwsh events report
  nopwsh events report --bugs --log /var/log/nopwsh/app.log`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		if reportBugs {
			report := logger.NewBugReport()
			if err := readEvents(cmd, report.Update); err != nil {
				return err
			}
			return printYAML(cmd, report)
		}

		var report logger.Report
		if err := readEvents(cmd, report.Update); err != nil {
			return err
		}
		return printYAML(cmd, &report)
	},
}

var eventsSessionCmd = &cobra.Command{
	Use:   "session [id]",
	Short: "Show the login and lines of one session, or of all sessions.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var report logger.InteractionReport
		if err := readEvents(cmd, report.Update); err != nil {
			return err
		}

		if len(args) == 0 {
			return printYAML(cmd, &report)
		}

		session := report.Session(args[0])
		if session == nil {
			return fmt.Errorf("no events for session %q", args[0])
		}
		return printYAML(cmd, session)
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsReportCmd)
	eventsCmd.AddCommand(eventsSessionCmd)

	eventsCmd.PersistentFlags().StringVar(&eventLogPath, "log", "", "Event log to read instead of the configured one.")
	eventsReportCmd.Flags().BoolVar(&reportBugs, "bugs", false, "Only report unhandled errors, unknown commands and panics.")
}
