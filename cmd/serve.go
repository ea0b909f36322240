package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/josephlewis42/nopwsh/core"
	"github.com/josephlewis42/nopwsh/core/logger"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive prompt over SSH.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		os.Stdin.Close()
		cmd.SilenceUsage = true

		diag := newDiagLogger(cmd.ErrOrStderr())
		diag.Info("Initializing server...")

		configuration, err := loadConfig(diag, false)
		if err != nil {
			return err
		}

		interp, err := newInterpreter(configuration, diag)
		if err != nil {
			return err
		}

		logFd, err := configuration.OpenAppLog()
		if err != nil {
			return err
		}
		defer logFd.Close()

		server, err := core.NewServer(configuration, interp, logger.NewJsonLinesLogRecorder(logFd), diag)
		if err != nil {
			return err
		}

		errs := make(chan error, 1)
		go func() {
			errs <- server.ListenAndServe()
		}()

		sigs := make(chan os.Signal, 1)
		diag.Info("Starting interrupt handler")
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-errs:
			return err
		case sig := <-sigs:
			diag.Info("Terminating", "signal", sig)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return err
		}
		if err := <-errs; err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return err
		}
		diag.Info("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
