package core

import (
	"io"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/nopwsh/core/logger"
)

// Terminal describes the streams an interactive shell is attached to.
type Terminal struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// IsTerminal is set if the streams belong to a TTY.
	IsTerminal bool
	// Width returns the current width of the terminal, it may be nil.
	Width func() int
}

// Shell is an interactive read-eval-print loop over an Interpreter.
type Shell struct {
	Interpreter *Interpreter
	Readline    *readline.Instance
	Events      *logger.SessionLogger

	prompt string
	stdout io.Writer
	stderr io.Writer
}

func NewShell(interpreter *Interpreter, prompt string, term Terminal, events *logger.SessionLogger) (*Shell, error) {
	width := term.Width
	if width == nil {
		width = func() int { return 80 }
	}

	cfg := &readline.Config{
		Prompt: prompt,
		Stdin:  readline.NewCancelableStdin(term.Stdin),
		Stdout: term.Stdout,
		Stderr: term.Stderr,
		FuncGetWidth: func() int {
			return width()
		},

		FuncIsTerminal: func() bool {
			return term.IsTerminal
		},
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	return &Shell{
		Interpreter: interpreter,
		Readline:    rl,
		Events:      events,
		prompt:      prompt,
		stdout:      rl.Stdout(),
		stderr:      rl.Stderr(),
	}, nil
}

// Run reads and executes lines until the input closes or the user exits.
func (s *Shell) Run() {
	for {
		s.Readline.SetPrompt(s.prompt)
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			return // Input closed, quit.

		case err == readline.ErrInterrupt:
			continue // Drop the partial line.

		case err != nil:
			if s.Interpreter.Log != nil {
				s.Interpreter.Log.Error("readline failed", "err", err)
			}
			return

		default:
			if !s.Exec(line) {
				return
			}
		}
	}
}

// Exec runs a single line and reports whether the shell should keep going.
func (s *Shell) Exec(line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return true
	case strings.EqualFold(line, "exit"):
		return false
	}

	s.Interpreter.Run(line, s.stdout, s.stderr, s.Events)
	return true
}

func (s *Shell) Close() error {
	return s.Readline.Close()
}
