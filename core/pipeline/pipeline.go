// Package pipeline resolves, binds and runs a line of piped commands.
package pipeline

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/josephlewis42/nopwsh/core/cmdlet"
	"github.com/josephlewis42/nopwsh/core/shell"
)

// ErrAlreadyRun is returned when Run is called twice on the same pipeline.
var ErrAlreadyRun = errors.New("pipeline has already run")

// PanicError is returned in place of a panic raised by a command.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("internal error: %v", e.Value)
}

// State tracks the progress of a single stage.
type State int

const (
	Pending State = iota
	Bound
	BindFailed
	Executed
	ExecFailed
)

func (s State) String() string {
	switch s {
	case Bound:
		return "bound"
	case BindFailed:
		return "bind_failed"
	case Executed:
		return "executed"
	case ExecFailed:
		return "exec_failed"
	default:
		return "pending"
	}
}

// Stage is one resolved command of the pipeline.
type Stage struct {
	// Index is the 1-based position of the stage.
	Index      int
	Tokens     shell.Stage
	Descriptor *cmdlet.Descriptor
	Args       cmdlet.Arguments

	state State
}

// State returns the current state of the stage.
func (s *Stage) State() State {
	return s.state
}

// Pipeline is a fully bound sequence of stages. It lives for one invocation.
type Pipeline struct {
	Line   string
	Stages []*Stage

	ran bool
}

// ParseArgs is like Parse for a line split into an argument vector.
func ParseArgs(reg *cmdlet.Registry, argv []string) (*Pipeline, error) {
	return Parse(reg, shell.JoinArgs(argv))
}

// Parse tokenizes the line, resolves every stage's command and binds its
// arguments. Nothing is executed; the first failure aborts the whole line.
func Parse(reg *cmdlet.Registry, line string) (*Pipeline, error) {
	tokenized, err := shell.Tokenize(line)
	if err != nil {
		out := &cmdlet.Error{Kind: cmdlet.KindTokenize, Msg: err.Error(), Err: err}

		var syntaxErr *shell.SyntaxError
		if errors.As(err, &syntaxErr) {
			out.Stage = syntaxErr.Stage
			out.Msg = syntaxErr.Msg
		}
		return nil, out
	}

	p := &Pipeline{Line: line}
	for i, tokens := range tokenized {
		stage := &Stage{Index: i + 1, Tokens: tokens}
		p.Stages = append(p.Stages, stage)

		alias := tokens[0].Text
		d, err := reg.Resolve(alias)
		if err != nil {
			stage.state = BindFailed
			return nil, stageError(err, stage.Index, alias)
		}
		stage.Descriptor = d

		args, err := d.Bind(tokens[1:])
		if err != nil {
			stage.state = BindFailed
			return nil, stageError(err, stage.Index, d.Name)
		}
		stage.Args = args
		stage.state = Bound
	}

	return p, nil
}

// Run executes the stages in order. The first stage receives an empty
// Result, each following stage the Result of the one before it. Execution
// stops at the first failing stage.
func (p *Pipeline) Run(ctx *cmdlet.Context) (cmdlet.Result, error) {
	if p.ran {
		return nil, ErrAlreadyRun
	}
	p.ran = true

	if ctx == nil {
		ctx = &cmdlet.Context{}
	}

	in := cmdlet.Result{}
	for _, stage := range p.Stages {
		if stage.state != Bound {
			return nil, stageError(errors.New("stage is not bound"), stage.Index, stage.Tokens[0].Text)
		}

		if ctx.Log != nil {
			ctx.Log.Debug("running stage", "stage", stage.Index, "command", stage.Descriptor.Name, "input", len(in))
		}

		out, err := stage.execute(ctx, in)
		if err != nil {
			stage.state = ExecFailed
			if ctx.Log != nil {
				ctx.Log.Debug("stage failed", "stage", stage.Index, "command", stage.Descriptor.Name, "err", err)
			}
			return nil, stageError(err, stage.Index, stage.Descriptor.Name)
		}
		stage.state = Executed

		if out == nil {
			out = cmdlet.Result{}
		}
		in = out
	}

	return in, nil
}

func (s *Stage) execute(ctx *cmdlet.Context, in cmdlet.Result) (out cmdlet.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	return s.Descriptor.Command.Execute(ctx, s.Args, in)
}

// Commands returns the canonical name of every stage.
func (p *Pipeline) Commands() []string {
	out := make([]string, len(p.Stages))
	for i, stage := range p.Stages {
		if stage.Descriptor != nil {
			out[i] = stage.Descriptor.Name
		} else {
			out[i] = stage.Tokens[0].Text
		}
	}
	return out
}

func (p *Pipeline) String() string {
	return strings.Join(p.Commands(), " | ")
}

// stageError tags err with the stage it came from. The error passed in is
// left untouched.
func stageError(err error, index int, command string) error {
	tagged := *cmdlet.AsError(err)
	if tagged.Err == nil {
		tagged.Err = err
	}
	if tagged.Stage == 0 {
		tagged.Stage = index
	}
	if tagged.Command == "" {
		tagged.Command = command
	}
	return &tagged
}
