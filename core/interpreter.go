package core

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/josephlewis42/nopwsh/core/cmdlet"
	"github.com/josephlewis42/nopwsh/core/config"
	"github.com/josephlewis42/nopwsh/core/logger"
	"github.com/josephlewis42/nopwsh/core/pipeline"
	"github.com/josephlewis42/nopwsh/core/render"
	"github.com/josephlewis42/nopwsh/core/shell"
	"github.com/josephlewis42/nopwsh/core/sources"
	"github.com/spf13/afero"
)

// Interpreter runs lines of piped cmdlets. It's safe to share between
// sessions as long as its fields aren't modified.
type Interpreter struct {
	Registry    *cmdlet.Registry
	Host        string
	Credentials cmdlet.Credentials
	Directory   cmdlet.DirectoryQuery
	Management  cmdlet.ManagementQuery
	FS          afero.Fs
	// Log receives diagnostics, it may be nil.
	Log *log.Logger
	// Color enables red error output.
	Color bool
}

// NewInterpreter creates an interpreter backed by the configured fixtures.
func NewInterpreter(registry *cmdlet.Registry, configuration *config.Configuration, diag *log.Logger) (*Interpreter, error) {
	files, err := configuration.FilesFs()
	if err != nil {
		return nil, fmt.Errorf("opening files directory: %w", err)
	}

	return &Interpreter{
		Registry: registry,
		Host:     configuration.Host,
		Credentials: cmdlet.Credentials{
			Username: configuration.Username,
			Password: configuration.Password,
		},
		Directory:  sources.NewDirectory(configuration.Directory),
		Management: sources.NewManagement(configuration.Management),
		FS:         files,
		Log:        diag,
	}, nil
}

func (i *Interpreter) newContext(stdout io.Writer) *cmdlet.Context {
	return &cmdlet.Context{
		Host:        i.Host,
		Credentials: i.Credentials,
		Directory:   i.Directory,
		Management:  i.Management,
		FS:          i.FS,
		Stdout:      stdout,
		Log:         i.Log,
	}
}

// Run executes one line, writing the rendered result to stdout and errors to
// stderr. It returns the exit status of the line. Events are recorded to
// events if it's not nil.
func (i *Interpreter) Run(line string, stdout, stderr io.Writer, events *logger.SessionLogger) int {
	p, err := pipeline.Parse(i.Registry, line)
	if err != nil {
		return i.fail(line, err, stderr, events)
	}

	res, err := i.execute(p, stdout, events)
	if err != nil {
		return i.fail(line, err, stderr, events)
	}

	if err := render.Auto(stdout, res); err != nil {
		return i.fail(line, err, stderr, events)
	}

	if events != nil {
		events.Record(&logger.RunPipeline{
			Line:     line,
			Commands: p.Commands(),
			Records:  len(res),
		})
	}
	return 0
}

// RunArgs is like Run for a line split into an argument vector.
func (i *Interpreter) RunArgs(argv []string, stdout, stderr io.Writer, events *logger.SessionLogger) int {
	return i.Run(shell.JoinArgs(argv), stdout, stderr, events)
}

func (i *Interpreter) execute(p *pipeline.Pipeline, stdout io.Writer, events *logger.SessionLogger) (cmdlet.Result, error) {
	res, err := p.Run(i.newContext(stdout))

	var panicErr *pipeline.PanicError
	if errors.As(err, &panicErr) {
		tagged := cmdlet.AsError(err)
		if events != nil {
			events.Record(&logger.Panic{
				Context:    fmt.Sprintf("%s (stage %d)", tagged.Command, tagged.Stage),
				Stacktrace: string(panicErr.Stack),
			})
		}
		if i.Log != nil {
			i.Log.Error("command panicked", "command", tagged.Command, "stage", tagged.Stage, "panic", panicErr.Value)
		}
	}
	return res, err
}

func (i *Interpreter) fail(line string, err error, stderr io.Writer, events *logger.SessionLogger) int {
	tagged := cmdlet.AsError(err)
	if events != nil {
		events.Record(&logger.PipelineError{
			Line:    line,
			Kind:    tagged.Kind.String(),
			Stage:   tagged.Stage,
			Command: tagged.Command,
			Message: tagged.Msg,
		})
	}
	if i.Log != nil {
		i.Log.Debug("pipeline failed", "line", line, "kind", tagged.Kind, "err", err)
	}

	WriteError(stderr, err, i.Color)
	return 1
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// FormatError renders err as the single line shown to the user.
func FormatError(err error) string {
	tagged := cmdlet.AsError(err)
	msg := tagged.Error()
	if tagged.Kind == cmdlet.KindTokenize {
		msg = "syntax error: " + msg
	}
	return lineBreaks.Replace(msg)
}

// WriteError writes the formatted error as one line, red if colorize is set.
func WriteError(w io.Writer, err error, colorize bool) {
	c := color.New(color.FgRed)
	if colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	c.Fprintln(w, FormatError(err))
}
