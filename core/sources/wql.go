package sources

import (
	"fmt"
	"regexp"
	"strings"
)

var wqlRegex = regexp.MustCompile(`(?is)^\s*select\s+(.+?)\s+from\s+(\w+)(?:\s+where\s+(\w+)\s*=\s*'([^']*)')?\s*$`)

// WQLQuery is a parsed management query of the form
//
//	SELECT <property, ...|*> FROM <class> [WHERE <property> = '<value>']
type WQLQuery struct {
	Properties []string
	Class      string
	// Where is nil when the query has no condition.
	Where *WQLCondition
}

// WQLCondition is a single equality test.
type WQLCondition struct {
	Property string
	Value    string
}

// ParseWQL parses the supported subset of WQL. Keywords are
// case-insensitive.
func ParseWQL(text string) (*WQLQuery, error) {
	m := wqlRegex.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("Invalid query %q", text)
	}

	q := &WQLQuery{Class: m[2]}
	for _, prop := range strings.Split(m[1], ",") {
		prop = strings.TrimSpace(prop)
		if prop == "" {
			return nil, fmt.Errorf("Invalid query %q: empty property", text)
		}
		q.Properties = append(q.Properties, prop)
	}
	if len(q.Properties) > 1 {
		for _, prop := range q.Properties {
			if prop == "*" {
				return nil, fmt.Errorf("Invalid query %q: * can't be combined with properties", text)
			}
		}
	}

	if m[3] != "" {
		q.Where = &WQLCondition{Property: m[3], Value: m[4]}
	}
	return q, nil
}

// All reports whether the query selects every property.
func (q *WQLQuery) All() bool {
	return len(q.Properties) == 1 && q.Properties[0] == "*"
}
