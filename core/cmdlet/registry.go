package cmdlet

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Registry maps case-insensitive aliases to command descriptors.
//
// A registry is filled once at startup and only read afterwards, so it does
// no locking of its own.
type Registry struct {
	aliases     *foldMap[*Descriptor]
	descriptors []*Descriptor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		aliases: newFoldMap[*Descriptor](),
	}
}

// Register adds a descriptor. It fails if the descriptor is malformed or if
// any of its aliases is already taken.
func (r *Registry) Register(d *Descriptor) error {
	switch {
	case d == nil:
		return errors.New("cannot register nil descriptor")
	case d.Name == "":
		return errors.New("cannot register command with empty name")
	case d.Command == nil:
		return fmt.Errorf("command %q has no implementation", d.Name)
	}

	if err := d.Schema.Validate(); err != nil {
		return fmt.Errorf("command %q: %w", d.Name, err)
	}

	// Check every alias before inserting any so a failure leaves the
	// registry untouched.
	pending := newFoldMap[struct{}]()
	for _, alias := range d.AllAliases() {
		if alias == "" {
			return fmt.Errorf("command %q has an empty alias", d.Name)
		}
		if existing, ok := r.aliases.Get(alias); ok {
			return fmt.Errorf("alias %q of %q already registered by %q", alias, d.Name, existing.Name)
		}
		if !pending.Put(alias, struct{}{}) {
			return fmt.Errorf("alias %q of %q is declared twice", alias, d.Name)
		}
	}

	for _, alias := range pending.Keys() {
		r.aliases.Put(alias, d)
	}
	r.descriptors = append(r.descriptors, d)
	return nil
}

// MustRegister is like Register but panics on failure. It's meant for
// building the command table at startup.
func (r *Registry) MustRegister(d *Descriptor) {
	if err := r.Register(d); err != nil {
		panic(fmt.Sprintf("cmdlet: %v", err))
	}
}

// Resolve finds the descriptor registered under alias.
func (r *Registry) Resolve(alias string) (*Descriptor, error) {
	if d, ok := r.aliases.Get(alias); ok {
		return d, nil
	}

	return nil, &Error{
		Kind:    KindNotFound,
		Command: alias,
		Msg: fmt.Sprintf(
			"The term '%s' is not recognized as the name of a cmdlet. Available: %s",
			alias,
			strings.Join(r.Names(), ", ")),
	}
}

// Descriptors returns the registered descriptors sorted by name.
func (r *Registry) Descriptors() []*Descriptor {
	out := make([]*Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	sort.Slice(out, func(i, j int) bool {
		return foldKey(out[i].Name) < foldKey(out[j].Name)
	})
	return out
}

// Names returns the canonical names of all commands in sorted order.
func (r *Registry) Names() []string {
	var names []string
	for _, d := range r.Descriptors() {
		names = append(names, d.Name)
	}
	return names
}

// Aliases returns every registered alias in registration order.
func (r *Registry) Aliases() []string {
	return r.aliases.Keys()
}
