package cmdlet

import (
	"errors"
	"fmt"
	"strconv"
)

// ArgKind is the type of value a parameter accepts.
type ArgKind int

const (
	// String parameters consume the token following their name.
	String ArgKind = iota
	// Bool parameters are switches, their presence binds true.
	Bool
)

func (k ArgKind) String() string {
	if k == Bool {
		return "Switch"
	}
	return "String"
}

// Value is a bound parameter value.
type Value struct {
	kind ArgKind
	str  string
	b    bool
}

// StringValue creates a string value.
func StringValue(s string) Value {
	return Value{kind: String, str: s}
}

// BoolValue creates a boolean value.
func BoolValue(b bool) Value {
	return Value{kind: Bool, b: b}
}

// Kind returns the kind of the value.
func (v Value) Kind() ArgKind {
	return v.kind
}

// Str returns the string form of the value.
func (v Value) Str() string {
	if v.kind == Bool {
		return strconv.FormatBool(v.b)
	}
	return v.str
}

// Bool returns the value as a boolean, strings are true if they're non-empty.
func (v Value) Bool() bool {
	if v.kind == Bool {
		return v.b
	}
	return v.str != ""
}

// Spec describes one parameter of a command.
type Spec struct {
	Name       string
	Kind       ArgKind
	Required   bool
	Positional bool
	// Default is used when the parameter isn't bound, nil for no default.
	Default *Value
	// Usage is a short description shown in help output.
	Usage string
}

// SpecOption modifies a Spec while building a schema.
type SpecOption func(*Spec)

// Required marks the parameter as mandatory.
func Required() SpecOption {
	return func(s *Spec) { s.Required = true }
}

// Positional allows the parameter to receive a single unlabeled token.
func Positional() SpecOption {
	return func(s *Spec) { s.Positional = true }
}

// Default sets the value used when the parameter isn't given.
func Default(value string) SpecOption {
	return func(s *Spec) {
		v := StringValue(value)
		if s.Kind == Bool {
			v = BoolValue(value == "true")
		}
		s.Default = &v
	}
}

// Usage sets the help text of the parameter.
func Usage(text string) SpecOption {
	return func(s *Spec) { s.Usage = text }
}

// StringArg declares a string parameter.
func StringArg(name string, opts ...SpecOption) Spec {
	spec := Spec{Name: name, Kind: String}
	for _, opt := range opts {
		opt(&spec)
	}
	return spec
}

// BoolArg declares a switch parameter, switches default to false.
func BoolArg(name string, opts ...SpecOption) Spec {
	off := BoolValue(false)
	spec := Spec{Name: name, Kind: Bool, Default: &off}
	for _, opt := range opts {
		opt(&spec)
	}
	return spec
}

// Schema is the ordered parameter list of a command.
type Schema []Spec

// Lookup finds a parameter by case-insensitive name.
func (s Schema) Lookup(name string) (Spec, bool) {
	folded := foldKey(name)
	for _, spec := range s {
		if foldKey(spec.Name) == folded {
			return spec, true
		}
	}
	return Spec{}, false
}

// Positional returns the parameter that accepts unlabeled tokens, if any.
func (s Schema) Positional() (Spec, bool) {
	for _, spec := range s {
		if spec.Positional {
			return spec, true
		}
	}
	return Spec{}, false
}

// Validate checks the schema for declaration mistakes.
func (s Schema) Validate() error {
	seen := newFoldMap[struct{}]()
	positional := ""
	for _, spec := range s {
		switch {
		case spec.Name == "":
			return errors.New("parameter with empty name")
		case !seen.Put(spec.Name, struct{}{}):
			return fmt.Errorf("parameter %q declared twice", spec.Name)
		}

		if spec.Default != nil && spec.Default.Kind() != spec.Kind {
			return fmt.Errorf("parameter %q default has the wrong kind", spec.Name)
		}

		if !spec.Positional {
			continue
		}
		if spec.Kind != String {
			return fmt.Errorf("positional parameter %q must be a string", spec.Name)
		}
		if positional != "" {
			return fmt.Errorf("parameters %q and %q are both positional", positional, spec.Name)
		}
		positional = spec.Name
	}
	return nil
}
