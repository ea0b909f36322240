package sources

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Filter is a parsed LDAP search filter.
type Filter interface {
	// Match reports whether the entry satisfies the filter. Attribute names
	// are looked up case-insensitively.
	Match(entry Entry) bool
	String() string
}

// Entry is the attribute set a filter is evaluated against.
type Entry interface {
	Values(attr string) []string
}

type andFilter []Filter

func (f andFilter) Match(e Entry) bool {
	for _, sub := range f {
		if !sub.Match(e) {
			return false
		}
	}
	return true
}

func (f andFilter) String() string {
	return "(&" + joinFilters(f) + ")"
}

type orFilter []Filter

func (f orFilter) Match(e Entry) bool {
	for _, sub := range f {
		if sub.Match(e) {
			return true
		}
	}
	return false
}

func (f orFilter) String() string {
	return "(|" + joinFilters(f) + ")"
}

type notFilter struct {
	inner Filter
}

func (f notFilter) Match(e Entry) bool {
	return !f.inner.Match(e)
}

func (f notFilter) String() string {
	return "(!" + f.inner.String() + ")"
}

type presentFilter struct {
	attr string
}

func (f presentFilter) Match(e Entry) bool {
	return len(e.Values(f.attr)) > 0
}

func (f presentFilter) String() string {
	return "(" + f.attr + "=*)"
}

type equalityFilter struct {
	attr  string
	value string
}

func (f equalityFilter) Match(e Entry) bool {
	for _, v := range e.Values(f.attr) {
		if strings.EqualFold(v, f.value) {
			return true
		}
	}
	return false
}

func (f equalityFilter) String() string {
	return "(" + f.attr + "=" + f.value + ")"
}

// substringFilter matches values made of the parts in order, a value like
// "a*b*c" is split into the parts "a", "b" and "c".
type substringFilter struct {
	attr  string
	parts []string
}

func (f substringFilter) Match(e Entry) bool {
	for _, v := range e.Values(f.attr) {
		if matchSubstrings(strings.ToLower(v), f.parts) {
			return true
		}
	}
	return false
}

func (f substringFilter) String() string {
	return "(" + f.attr + "=" + strings.Join(f.parts, "*") + ")"
}

func matchSubstrings(value string, parts []string) bool {
	last := len(parts) - 1
	for i, part := range parts {
		part = strings.ToLower(part)
		switch {
		case i == 0:
			if !strings.HasPrefix(value, part) {
				return false
			}
			value = value[len(part):]
		case i == last:
			return strings.HasSuffix(value, part)
		default:
			idx := strings.Index(value, part)
			if idx < 0 {
				return false
			}
			value = value[idx+len(part):]
		}
	}
	return true
}

func joinFilters(filters []Filter) string {
	var sb strings.Builder
	for _, f := range filters {
		sb.WriteString(f.String())
	}
	return sb.String()
}

// FilterSyntaxError is returned for filters that can't be parsed.
type FilterSyntaxError struct {
	Filter string
	Offset int
	Msg    string
}

func (e *FilterSyntaxError) Error() string {
	return fmt.Sprintf("The search filter %q is invalid: %s at offset %d", e.Filter, e.Msg, e.Offset)
}

// ParseFilter parses the RFC 4515 string form of a filter. Supported are the
// &, | and ! operators, equality, presence and substring assertions. An
// empty filter matches everything.
func ParseFilter(text string) (Filter, error) {
	if strings.TrimSpace(text) == "" {
		return andFilter{}, nil
	}

	p := &filterParser{text: text}
	f, err := p.parseFilter()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.text) {
		return nil, p.errorf("unexpected trailing data")
	}
	return f, nil
}

type filterParser struct {
	text string
	pos  int
}

func (p *filterParser) errorf(format string, a ...interface{}) error {
	return &FilterSyntaxError{Filter: p.text, Offset: p.pos, Msg: fmt.Sprintf(format, a...)}
}

func (p *filterParser) peek() byte {
	if p.pos >= len(p.text) {
		return 0
	}
	return p.text[p.pos]
}

func (p *filterParser) expect(c byte) error {
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *filterParser) parseFilter() (Filter, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}

	var (
		f   Filter
		err error
	)
	switch p.peek() {
	case '&':
		p.pos++
		var list []Filter
		list, err = p.parseList()
		f = andFilter(list)
	case '|':
		p.pos++
		var list []Filter
		list, err = p.parseList()
		f = orFilter(list)
	case '!':
		p.pos++
		var inner Filter
		inner, err = p.parseFilter()
		f = notFilter{inner: inner}
	default:
		f, err = p.parseItem()
	}
	if err != nil {
		return nil, err
	}

	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *filterParser) parseList() ([]Filter, error) {
	var out []Filter
	for p.peek() == '(' {
		f, err := p.parseFilter()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, p.errorf("empty filter list")
	}
	return out, nil
}

func (p *filterParser) parseItem() (Filter, error) {
	start := p.pos
	for p.pos < len(p.text) && p.text[p.pos] != '=' && p.text[p.pos] != ')' && p.text[p.pos] != '(' {
		p.pos++
	}
	attr := p.text[start:p.pos]

	if p.peek() != '=' {
		return nil, p.errorf("missing '='")
	}
	switch {
	case attr == "":
		return nil, p.errorf("missing attribute name")
	case strings.ContainsAny(attr, "<>~:"):
		return nil, p.errorf("unsupported match type in %q", attr)
	}
	p.pos++

	start = p.pos
	for p.pos < len(p.text) && p.text[p.pos] != ')' && p.text[p.pos] != '(' {
		p.pos++
	}
	raw := p.text[start:p.pos]

	if raw == "*" {
		return presentFilter{attr: attr}, nil
	}

	rawParts := strings.Split(raw, "*")
	parts := make([]string, len(rawParts))
	for i, rawPart := range rawParts {
		part, err := unescapeValue(rawPart)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		parts[i] = part
	}

	if len(parts) == 1 {
		return equalityFilter{attr: attr, value: parts[0]}, nil
	}
	return substringFilter{attr: attr, parts: parts}, nil
}

var filterValueEscaper = strings.NewReplacer(
	`\`, `\5c`,
	`*`, `\2a`,
	`(`, `\28`,
	`)`, `\29`,
	"\x00", `\00`,
)

// EscapeFilterValue escapes s so it can be used as a literal assertion
// value in a filter.
func EscapeFilterValue(s string) string {
	return filterValueEscaper.Replace(s)
}

// unescapeValue decodes the \XX hex escapes of an assertion value.
func unescapeValue(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			sb.WriteByte(s[i])
			continue
		}
		if i+3 > len(s) {
			return "", fmt.Errorf("truncated escape in %q", s)
		}
		decoded, err := hex.DecodeString(s[i+1 : i+3])
		if err != nil {
			return "", fmt.Errorf("invalid escape in %q", s)
		}
		sb.Write(decoded)
		i += 2
	}
	return sb.String(), nil
}
