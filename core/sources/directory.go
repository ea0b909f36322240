// Package sources implements the directory and management collaborators
// over fixture data from the configuration.
package sources

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/josephlewis42/nopwsh/core/cmdlet"
	"github.com/josephlewis42/nopwsh/core/config"
)

var (
	// ErrAccessDenied is returned when supplied credentials don't match.
	ErrAccessDenied = errors.New("Access is denied.")
	// ErrNoSuchObject is returned for a search base outside the directory.
	ErrNoSuchObject = errors.New("Directory object not found")
)

// checkCredentials allows the current identity (zero credentials) and
// otherwise requires an exact match when the fixture defines credentials.
func checkCredentials(want *config.Credentials, got cmdlet.Credentials) error {
	if want == nil || got.IsZero() {
		return nil
	}
	if !strings.EqualFold(want.Username, got.Username) || want.Password != got.Password {
		return ErrAccessDenied
	}
	return nil
}

// normalizeDN lowercases a distinguished name and strips the spaces around
// its separators.
func normalizeDN(dn string) string {
	parts := strings.Split(dn, ",")
	for i, part := range parts {
		kv := strings.SplitN(part, "=", 2)
		for j := range kv {
			kv[j] = strings.TrimSpace(kv[j])
		}
		parts[i] = strings.Join(kv, "=")
	}
	return strings.ToLower(strings.Join(parts, ","))
}

func isUnder(dn, base string) bool {
	return dn == base || strings.HasSuffix(dn, ","+base)
}

type directoryObject struct {
	dn    string
	attrs map[string][]string
	names []string
}

func newDirectoryObject(obj config.DirectoryObject) *directoryObject {
	out := &directoryObject{
		dn:    obj.DN,
		attrs: make(map[string][]string),
	}
	for name, values := range obj.Attributes {
		out.attrs[strings.ToLower(name)] = values
		out.names = append(out.names, name)
	}
	sort.Slice(out.names, func(i, j int) bool {
		return strings.ToLower(out.names[i]) < strings.ToLower(out.names[j])
	})
	return out
}

// propertyAttributes maps friendly property names to the LDAP attributes
// that hold them.
var propertyAttributes = map[string]string{
	"surname":      "sn",
	"emailaddress": "mail",
}

// Values implements Entry.
func (o *directoryObject) Values(attr string) []string {
	if strings.EqualFold(attr, "distinguishedName") {
		return []string{o.dn}
	}
	key := strings.ToLower(attr)
	if values, ok := o.attrs[key]; ok {
		return values
	}
	return o.attrs[propertyAttributes[key]]
}

func (o *directoryObject) record(properties []string) *cmdlet.Record {
	out := cmdlet.NewRecord()
	for _, prop := range properties {
		if prop != "*" {
			setValues(out, prop, o.Values(prop))
			continue
		}

		out.Set("DistinguishedName", o.dn)
		for _, name := range o.names {
			if !strings.EqualFold(name, "distinguishedName") {
				setValues(out, name, o.attrs[strings.ToLower(name)])
			}
		}
	}
	return out
}

func setValues(r *cmdlet.Record, key string, values []string) {
	if len(values) == 0 {
		r.SetNull(key)
		return
	}
	r.Set(key, strings.Join(values, ", "))
}

// Directory answers LDAP style searches from configured objects.
type Directory struct {
	cfg     config.Directory
	objects []*directoryObject
}

var _ cmdlet.DirectoryQuery = (*Directory)(nil)

// NewDirectory creates a directory over the configured objects.
func NewDirectory(cfg config.Directory) *Directory {
	d := &Directory{cfg: cfg}
	for _, obj := range cfg.Objects {
		d.objects = append(d.objects, newDirectoryObject(obj))
	}
	return d
}

func (d *Directory) servesName(server string) bool {
	if server == "" {
		return true
	}
	for _, name := range d.cfg.Servers {
		if strings.EqualFold(name, server) {
			return true
		}
	}
	return false
}

// Query implements cmdlet.DirectoryQuery.
func (d *Directory) Query(searchBase, filter string, properties []string, server string, creds cmdlet.Credentials) (cmdlet.Result, error) {
	if !d.servesName(server) {
		return nil, fmt.Errorf("Unable to contact the server %s", server)
	}
	if err := checkCredentials(d.cfg.Credentials, creds); err != nil {
		return nil, err
	}

	base := normalizeDN(d.cfg.BaseDN)
	if searchBase != "" {
		requested := normalizeDN(searchBase)
		if !isUnder(requested, base) {
			return nil, ErrNoSuchObject
		}
		base = requested
	}

	parsed, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}

	props := cleanProperties(properties)
	out := cmdlet.Result{}
	for _, obj := range d.objects {
		if !isUnder(normalizeDN(obj.dn), base) || !parsed.Match(obj) {
			continue
		}
		out = append(out, obj.record(props))
	}
	return out, nil
}

func cleanProperties(properties []string) []string {
	var out []string
	for _, prop := range properties {
		if prop = strings.TrimSpace(prop); prop != "" {
			out = append(out, prop)
		}
	}
	return out
}
