package commands

import (
	"bytes"
	"errors"
	"io"

	"github.com/josephlewis42/nopwsh/core/cmdlet"
	"github.com/josephlewis42/nopwsh/core/render"
	"github.com/spf13/afero"
)

var errNoFilesystem = errors.New("no filesystem is available")

func stdout(ctx *cmdlet.Context) io.Writer {
	if ctx.Stdout == nil {
		return io.Discard
	}
	return ctx.Stdout
}

// formatter creates a sink that writes its input with renderFunc and passes
// nothing on.
func formatter(renderFunc func(io.Writer, cmdlet.Result) error) cmdlet.CommandFunc {
	return func(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
		res := project(in, splitList(args.String("Property")))
		if err := renderFunc(stdout(ctx), res); err != nil {
			return nil, err
		}
		return cmdlet.Result{}, nil
	}
}

// OutFile writes the rendered input to a file.
func OutFile(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
	if ctx.FS == nil {
		return nil, errNoFilesystem
	}

	var buf bytes.Buffer
	if err := render.Auto(&buf, in); err != nil {
		return nil, err
	}
	if err := afero.WriteFile(ctx.FS, args.String("FilePath"), buf.Bytes(), 0644); err != nil {
		return nil, err
	}
	return cmdlet.Result{}, nil
}

func init() {
	addCmdlet(&cmdlet.Descriptor{
		Name:    "Format-Table",
		Aliases: []string{"ft"},
		Schema: cmdlet.Schema{
			cmdlet.StringArg("Property", cmdlet.Positional(), cmdlet.Usage("Comma separated properties to show.")),
		},
		Synopsis: "Formats the output as a table.",
		Examples: []cmdlet.Example{
			{Description: "Show computers as a table", Lines: []string{"Get-ADComputer -Filter * | ft Name,DNSHostName"}},
		},
		Command: formatter(render.Table),
	})

	addCmdlet(&cmdlet.Descriptor{
		Name:    "Format-List",
		Aliases: []string{"fl"},
		Schema: cmdlet.Schema{
			cmdlet.StringArg("Property", cmdlet.Positional(), cmdlet.Usage("Comma separated properties to show.")),
		},
		Synopsis: "Formats the output as a list of properties in which each property appears on a new line.",
		Examples: []cmdlet.Example{
			{Description: "Show routes as a list", Lines: []string{"Get-NetRoute | fl"}},
		},
		Command: formatter(render.List),
	})

	addCmdlet(&cmdlet.Descriptor{
		Name: "Out-File",
		Schema: cmdlet.Schema{
			cmdlet.StringArg("FilePath", cmdlet.Positional(), cmdlet.Required(), cmdlet.Usage("File to write.")),
		},
		Synopsis: "Sends output to a file.",
		Examples: []cmdlet.Example{
			{Description: "Save the system information", Lines: []string{"systeminfo | Out-File systeminfo.txt"}},
		},
		Command: cmdlet.CommandFunc(OutFile),
	})
}
