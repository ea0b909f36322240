package cmdlet

import (
	"strings"

	"github.com/josephlewis42/nopwsh/core/shell"
)

// Arguments holds the values bound for one command invocation.
type Arguments struct {
	values *foldMap[Value]
}

// NewArguments creates an empty set of bound arguments.
func NewArguments() Arguments {
	return Arguments{values: newFoldMap[Value]()}
}

// Lookup gets a bound value by case-insensitive name.
func (a Arguments) Lookup(name string) (Value, bool) {
	if a.values == nil {
		return Value{}, false
	}
	return a.values.Get(name)
}

// Has reports whether the parameter was bound, either explicitly or through
// its default.
func (a Arguments) Has(name string) bool {
	_, ok := a.Lookup(name)
	return ok
}

// String returns the string value of a parameter or "" if it's unbound.
func (a Arguments) String(name string) string {
	v, _ := a.Lookup(name)
	return v.Str()
}

// Bool returns the boolean value of a parameter or false if it's unbound.
func (a Arguments) Bool(name string) bool {
	v, _ := a.Lookup(name)
	return v.Bool()
}

// Names returns the bound parameter names in binding order.
func (a Arguments) Names() []string {
	if a.values == nil {
		return nil
	}
	return a.values.Keys()
}

func (a Arguments) set(name string, v Value) bool {
	return a.values.Put(name, v)
}

// parameterName returns the name referenced by a -Name token.
func parameterName(tok shell.Token) (string, bool) {
	if tok.Quoted || len(tok.Text) < 2 || tok.Text[0] != '-' {
		return "", false
	}
	return tok.Text[1:], true
}

// Bind matches tokens against the schema. The tokens must not include the
// command name.
func Bind(schema Schema, tokens []shell.Token) (Arguments, error) {
	args := NewArguments()
	positional, hasPositional := schema.Positional()

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if name, ok := parameterName(tok); ok {
			spec, found := schema.Lookup(name)
			if !found {
				return Arguments{}, BindingError("unknown parameter %s", tok.Text)
			}
			if args.Has(spec.Name) {
				return Arguments{}, BindingError("duplicate parameter %s", spec.Name)
			}

			switch spec.Kind {
			case Bool:
				args.set(spec.Name, BoolValue(true))
			default:
				if i+1 >= len(tokens) {
					return Arguments{}, BindingError("missing value for %s", spec.Name)
				}
				i++
				args.set(spec.Name, StringValue(tokens[i].Text))
			}
			continue
		}

		if !hasPositional || args.Has(positional.Name) {
			return Arguments{}, BindingError("unexpected value %s", tok.Text)
		}
		args.set(positional.Name, StringValue(tok.Text))
	}

	var missing []string
	for _, spec := range schema {
		if args.Has(spec.Name) {
			continue
		}
		switch {
		case spec.Default != nil:
			args.set(spec.Name, *spec.Default)
		case spec.Required:
			missing = append(missing, spec.Name)
		}
	}

	if len(missing) > 0 {
		return Arguments{}, BindingError("missing required parameter(s): %s", strings.Join(missing, ", "))
	}

	return args, nil
}
