package cmdlet

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so the top level can format it without
// inspecting concrete error types.
type ErrorKind int

const (
	// KindUnhandled is any fault surfaced from a collaborator.
	KindUnhandled ErrorKind = iota
	// KindTokenize is malformed quoting or an empty stage.
	KindTokenize
	// KindNotFound is an alias that matches no registered command.
	KindNotFound
	// KindBinding is a parameter that couldn't be bound.
	KindBinding
	// KindDomain is a command rejecting its validly bound inputs.
	KindDomain
)

func (k ErrorKind) String() string {
	switch k {
	case KindTokenize:
		return "tokenize"
	case KindNotFound:
		return "not_found"
	case KindBinding:
		return "binding"
	case KindDomain:
		return "domain"
	default:
		return "unhandled"
	}
}

// Error is the single error type produced by the interpreter core.
type Error struct {
	Kind ErrorKind
	// Stage is the 1-based pipeline stage, 0 if not known.
	Stage int
	// Command is the canonical name of the failing command, if known.
	Command string
	Msg     string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Command != "" && e.Stage > 0 && (e.Kind == KindDomain || e.Kind == KindUnhandled):
		return fmt.Sprintf("%s (stage %d) : %s", e.Command, e.Stage, e.Msg)
	case e.Command != "":
		return fmt.Sprintf("%s : %s", e.Command, e.Msg)
	case e.Stage > 0:
		return fmt.Sprintf("stage %d: %s", e.Stage, e.Msg)
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DomainError creates an error for a command that rejects its inputs.
func DomainError(format string, a ...interface{}) error {
	return &Error{Kind: KindDomain, Msg: fmt.Sprintf(format, a...)}
}

// BindingError creates a parameter binding error.
func BindingError(format string, a ...interface{}) error {
	return &Error{Kind: KindBinding, Msg: fmt.Sprintf(format, a...)}
}

// AsError converts err into an *Error. Errors that aren't already tagged are
// wrapped as KindUnhandled.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged
	}
	return &Error{Kind: KindUnhandled, Msg: err.Error(), Err: err}
}

// KindOf returns the kind of err, or KindUnhandled for untagged errors.
func KindOf(err error) ErrorKind {
	return AsError(err).Kind
}
