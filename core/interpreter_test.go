package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/josephlewis42/nopwsh/core/cmdlet"
	"github.com/josephlewis42/nopwsh/core/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *cmdlet.Registry {
	reg := cmdlet.NewRegistry()

	reg.MustRegister(&cmdlet.Descriptor{
		Name:    "Get-Greeting",
		Aliases: []string{"greet"},
		Schema:  cmdlet.Schema{cmdlet.StringArg("Name", cmdlet.Positional(), cmdlet.Default("World"))},
		Command: cmdlet.CommandFunc(func(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
			return cmdlet.Result{cmdlet.RecordOf("Greeting", "Hello, "+args.String("Name"))}, nil
		}),
	})

	reg.MustRegister(&cmdlet.Descriptor{
		Name: "Get-Host",
		Command: cmdlet.CommandFunc(func(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
			return cmdlet.Result{cmdlet.RecordOf("Host", ctx.Host, "User", ctx.Credentials.Username)}, nil
		}),
	})

	reg.MustRegister(&cmdlet.Descriptor{
		Name: "Stop-Here",
		Command: cmdlet.CommandFunc(func(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
			return nil, cmdlet.DomainError("input had %d records", len(in))
		}),
	})

	reg.MustRegister(&cmdlet.Descriptor{
		Name: "Fail-Remote",
		Command: cmdlet.CommandFunc(func(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
			return nil, errors.New("The RPC server is unavailable.")
		}),
	})

	reg.MustRegister(&cmdlet.Descriptor{
		Name: "Write-Direct",
		Command: cmdlet.CommandFunc(func(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
			ctx.Stdout.Write([]byte("direct\n"))
			return cmdlet.Result{}, nil
		}),
	})

	reg.MustRegister(&cmdlet.Descriptor{
		Name: "Invoke-Panic",
		Command: cmdlet.CommandFunc(func(ctx *cmdlet.Context, args cmdlet.Arguments, in cmdlet.Result) (cmdlet.Result, error) {
			panic("boom")
		}),
	})

	return reg
}

type runResult struct {
	status int
	stdout string
	stderr string
	report *logger.Report
}

func runLine(t *testing.T, interpreter *Interpreter, line string) runResult {
	t.Helper()

	var stdout, stderr, events bytes.Buffer
	session := logger.NewJsonLinesLogRecorder(&events).NewSession()
	status := interpreter.Run(line, &stdout, &stderr, session)

	report := &logger.Report{}
	require.NoError(t, logger.ReadJSONLinesLog(&events, report.Update))

	return runResult{status: status, stdout: stdout.String(), stderr: stderr.String(), report: report}
}

func TestInterpreter_Run(t *testing.T) {
	interpreter := &Interpreter{
		Registry:    testRegistry(),
		Host:        "DC01",
		Credentials: cmdlet.Credentials{Username: "administrator"},
	}

	cases := []struct {
		name       string
		line       string
		wantStatus int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "table",
			line:       `greet "Alice Smith"`,
			wantStdout: "Greeting\n--------\nHello, Alice Smith\n",
		},
		{
			name:       "context",
			line:       "Get-Host",
			wantStdout: "Host User\n---- ----\nDC01 administrator\n",
		},
		{
			name:       "direct-output",
			line:       "Write-Direct",
			wantStdout: "direct\n",
		},
		{
			name:       "syntax-error",
			line:       `greet "Alice`,
			wantStatus: 1,
			wantStderr: "syntax error: stage 1: unterminated \" quote\n",
		},
		{
			name:       "empty-stage",
			line:       "greet | | greet",
			wantStatus: 1,
			wantStderr: "syntax error: stage 2: empty pipeline stage\n",
		},
		{
			name:       "not-found",
			line:       "greet | Get-Foo",
			wantStatus: 1,
			wantStderr: "Get-Foo : The term 'Get-Foo' is not recognized as the name of a cmdlet. " +
				"Available: Fail-Remote, Get-Greeting, Get-Host, Invoke-Panic, Stop-Here, Write-Direct\n",
		},
		{
			name:       "binding",
			line:       "greet -Nmae Bob",
			wantStatus: 1,
			wantStderr: "Get-Greeting : unknown parameter -Nmae\n",
		},
		{
			name:       "domain",
			line:       "greet | Stop-Here | greet",
			wantStatus: 1,
			wantStderr: "Stop-Here (stage 2) : input had 1 records\n",
		},
		{
			name:       "unhandled",
			line:       "Fail-Remote",
			wantStatus: 1,
			wantStderr: "Fail-Remote (stage 1) : The RPC server is unavailable.\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := runLine(t, interpreter, tc.line)

			assert.Equal(t, tc.wantStatus, got.status)
			assert.Equal(t, tc.wantStdout, got.stdout)
			assert.Equal(t, tc.wantStderr, got.stderr)
			assert.Equal(t, 1, got.report.LogEntries)
			if tc.wantStatus == 0 {
				assert.Equal(t, 1, got.report.RunPipeline.Count)
			}
		})
	}
}

func TestInterpreter_Run_panic(t *testing.T) {
	interpreter := &Interpreter{Registry: testRegistry()}

	got := runLine(t, interpreter, "greet | Invoke-Panic")

	assert.Equal(t, 1, got.status)
	assert.Empty(t, got.stdout)
	assert.Equal(t, "Invoke-Panic (stage 2) : internal error: boom\n", got.stderr)
	assert.Equal(t, []string{"Invoke-Panic (stage 2)"}, got.report.Panic.Contexts)
	assert.Equal(t, 2, got.report.LogEntries)
	assert.Equal(t, 1, got.report.PipelineError.CommandNames.Get("Invoke-Panic"))
	assert.Equal(t, 1, got.report.PipelineError.Kinds.Get("unhandled"))
}

func TestFormatError_singleLine(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"not-found": {
			err:  &cmdlet.Error{Kind: cmdlet.KindNotFound, Command: "Get\nX", Msg: "The term 'Get\nX' is not recognized"},
			want: "Get X : The term 'Get X' is not recognized",
		},
		"crlf": {
			err:  errors.New("line one\r\nline two\rthree"),
			want: "line one line two three",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatError(tc.err))
		})
	}
}

func TestInterpreter_RunArgs(t *testing.T) {
	interpreter := &Interpreter{Registry: testRegistry()}

	var stdout, stderr bytes.Buffer
	status := interpreter.RunArgs([]string{"Get-Greeting", "-Name", "Bob Jones"}, &stdout, &stderr, nil)

	assert.Equal(t, 0, status)
	assert.Equal(t, "Greeting\n--------\nHello, Bob Jones\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestWriteError(t *testing.T) {
	err := &cmdlet.Error{Kind: cmdlet.KindDomain, Stage: 1, Command: "Get-ADComputer", Msg: "Currently only * filter is supported"}

	var plain bytes.Buffer
	WriteError(&plain, err, false)
	assert.Equal(t, "Get-ADComputer (stage 1) : Currently only * filter is supported\n", plain.String())

	var colored bytes.Buffer
	WriteError(&colored, err, true)
	assert.True(t, strings.HasPrefix(colored.String(), "\x1b[31m"), colored.String())
	assert.Contains(t, colored.String(), "Currently only * filter is supported")
}

func TestShell_Exec(t *testing.T) {
	var stdout, stderr bytes.Buffer
	shell := &Shell{
		Interpreter: &Interpreter{Registry: testRegistry()},
		stdout:      &stdout,
		stderr:      &stderr,
	}

	assert.True(t, shell.Exec("   "))
	assert.True(t, shell.Exec("greet Bob"))
	assert.True(t, shell.Exec("Get-Foo"))
	assert.False(t, shell.Exec("EXIT"))

	assert.Equal(t, "Greeting\n--------\nHello, Bob\n", stdout.String())
	assert.Contains(t, stderr.String(), "The term 'Get-Foo' is not recognized")
}
