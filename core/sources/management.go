package sources

import (
	"errors"
	"sort"
	"strings"

	"github.com/josephlewis42/nopwsh/core/cmdlet"
	"github.com/josephlewis42/nopwsh/core/config"
)

// ErrRPCUnavailable is returned for hosts that aren't configured.
var ErrRPCUnavailable = errors.New("The RPC server is unavailable. (Exception from HRESULT: 0x800706BA)")

// Management answers WQL queries from configured class instances.
type Management struct {
	hosts []config.ManagementHost
}

var _ cmdlet.ManagementQuery = (*Management)(nil)

// NewManagement creates a management source over the configured hosts. The
// first host is the one queried when no host is given.
func NewManagement(cfg config.Management) *Management {
	return &Management{hosts: cfg.Hosts}
}

func (m *Management) lookup(host string) *config.ManagementHost {
	if host == "" && len(m.hosts) > 0 {
		return &m.hosts[0]
	}
	for i := range m.hosts {
		for _, name := range m.hosts[i].Names() {
			if strings.EqualFold(name, host) {
				return &m.hosts[i]
			}
		}
	}
	return nil
}

// Query implements cmdlet.ManagementQuery.
func (m *Management) Query(query, host string, creds cmdlet.Credentials) (cmdlet.Result, error) {
	q, err := ParseWQL(query)
	if err != nil {
		return nil, err
	}

	target := m.lookup(host)
	if target == nil {
		return nil, ErrRPCUnavailable
	}
	if err := checkCredentials(target.Credentials, creds); err != nil {
		return nil, err
	}

	var instances []map[string]string
	for class, values := range target.Classes {
		if strings.EqualFold(class, q.Class) {
			instances = values
			break
		}
	}

	out := cmdlet.Result{}
	for _, instance := range instances {
		inst := newInstance(instance)
		if q.Where != nil {
			v, ok := inst.get(q.Where.Property)
			if !ok || !strings.EqualFold(v, q.Where.Value) {
				continue
			}
		}
		out = append(out, inst.record(q))
	}
	return out, nil
}

type instance struct {
	values map[string]string
	// names maps lowercased property names to their spelling.
	names map[string]string
}

func newInstance(values map[string]string) *instance {
	out := &instance{values: values, names: make(map[string]string)}
	for name := range values {
		out.names[strings.ToLower(name)] = name
	}
	return out
}

func (i *instance) get(prop string) (string, bool) {
	name, ok := i.names[strings.ToLower(prop)]
	if !ok {
		return "", false
	}
	return i.values[name], true
}

func (i *instance) record(q *WQLQuery) *cmdlet.Record {
	out := cmdlet.NewRecord()
	if q.All() {
		var names []string
		for name := range i.values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out.Set(name, i.values[name])
		}
		return out
	}

	for _, prop := range q.Properties {
		name, ok := i.names[strings.ToLower(prop)]
		if !ok {
			out.SetNull(prop)
			continue
		}
		out.Set(name, i.values[name])
	}
	return out
}
