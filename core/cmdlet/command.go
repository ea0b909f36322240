package cmdlet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/josephlewis42/nopwsh/core/shell"
	"github.com/spf13/afero"
)

// Credentials authenticate against remote collaborators. The zero value means
// "use the current identity".
type Credentials struct {
	Username string
	Password string
}

// IsZero reports whether no credentials were supplied.
func (c Credentials) IsZero() bool {
	return c.Username == "" && c.Password == ""
}

// DirectoryQuery searches a directory service.
type DirectoryQuery interface {
	// Query returns one record per matching object with the requested
	// properties, "*" requests all of them.
	Query(searchBase, filter string, properties []string, server string, creds Credentials) (Result, error)
}

// ManagementQuery runs management (WQL) queries against a host.
type ManagementQuery interface {
	Query(query, host string, creds Credentials) (Result, error)
}

// Context is constructed once per pipeline invocation and shared by every
// stage. Stages must not modify it.
type Context struct {
	// Host is the default target of remote capable commands.
	Host        string
	Credentials Credentials

	Directory  DirectoryQuery
	Management ManagementQuery

	// FS is the filesystem used by commands that read or write files.
	FS afero.Fs
	// Stdout receives output of commands that format results themselves.
	Stdout io.Writer
	// Log receives diagnostics, it may be nil.
	Log *log.Logger
}

// Command is the capability every cmdlet implements.
type Command interface {
	// Execute runs the command. in holds the previous stage's output, it is
	// empty for the first stage.
	Execute(ctx *Context, args Arguments, in Result) (Result, error)
}

// CommandFunc adapts a function to the Command interface.
type CommandFunc func(ctx *Context, args Arguments, in Result) (Result, error)

// Execute implements Command.
func (f CommandFunc) Execute(ctx *Context, args Arguments, in Result) (Result, error) {
	return f(ctx, args, in)
}

var _ Command = (CommandFunc)(nil)

// Example documents one use of a command.
type Example struct {
	Description string
	Lines       []string
}

// Descriptor describes a registered command.
type Descriptor struct {
	// Name is the canonical name, e.g. "Get-ADComputer".
	Name string
	// Aliases are additional names, the canonical name is always an alias.
	Aliases  []string
	Schema   Schema
	Synopsis string
	Examples []Example
	// Validate enforces rules spanning several parameters, e.g. mutually
	// exclusive ones. It runs during binding, before anything executes.
	Validate func(args Arguments) error

	Command Command
}

// AllAliases returns the canonical name followed by the other aliases.
func (d *Descriptor) AllAliases() []string {
	out := []string{d.Name}
	for _, alias := range d.Aliases {
		if !strings.EqualFold(alias, d.Name) {
			out = append(out, alias)
		}
	}
	return out
}

// Bind binds tokens against the schema and applies the command rules.
func (d *Descriptor) Bind(tokens []shell.Token) (Arguments, error) {
	args, err := Bind(d.Schema, tokens)
	if err != nil {
		return Arguments{}, err
	}

	if d.Validate != nil {
		if err := d.Validate(args); err != nil {
			var tagged *Error
			if errors.As(err, &tagged) {
				return Arguments{}, err
			}
			return Arguments{}, &Error{Kind: KindBinding, Msg: err.Error(), Err: err}
		}
	}

	return args, nil
}

// Syntax renders a one line usage string from the schema.
func (d *Descriptor) Syntax() string {
	parts := []string{d.Name}
	for _, spec := range d.Schema {
		var part string
		switch {
		case spec.Kind == Bool:
			part = fmt.Sprintf("-%s", spec.Name)
		case spec.Positional:
			part = fmt.Sprintf("[-%s] <%s>", spec.Name, spec.Kind)
		default:
			part = fmt.Sprintf("-%s <%s>", spec.Name, spec.Kind)
		}

		if !spec.Required {
			part = "[" + part + "]"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

// ExclusiveArgs returns a Validate rule that fails if more than one of the
// parameters is bound.
func ExclusiveArgs(names ...string) func(Arguments) error {
	return func(args Arguments) error {
		var set []string
		for _, name := range names {
			if args.Has(name) {
				set = append(set, name)
			}
		}
		if len(set) > 1 {
			return BindingError("Specify either %s, not both", strings.Join(set, " or "))
		}
		return nil
	}
}

// OneOfArgs returns a Validate rule that fails if none of the parameters is
// bound.
func OneOfArgs(names ...string) func(Arguments) error {
	return func(args Arguments) error {
		for _, name := range names {
			if args.Has(name) {
				return nil
			}
		}
		return BindingError("Specify either %s", joinOr(names))
	}
}

// AllRules combines several Validate rules, the first failure wins.
func AllRules(rules ...func(Arguments) error) func(Arguments) error {
	return func(args Arguments) error {
		for _, rule := range rules {
			if err := rule(args); err != nil {
				return err
			}
		}
		return nil
	}
}

func joinOr(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}
