// Package catalog holds the fixed set of named SQL templates the service runs.
package catalog

import (
	"errors"
	"fmt"
	"sort"
)

// ErrParamCount is returned when bound arguments do not match a template's placeholders.
var ErrParamCount = errors.New("parameter count mismatch")

// Query encapsulates a named SQL statement and the ordered names of its
// positional '?' parameters.
type Query struct {
	Name   string
	SQL    string
	Params []string

	// Dialects overrides SQL for a specific database/sql driver.
	Dialects map[string]string
}

// Text returns the statement text for driver.
func (q Query) Text(driver string) string {
	if sql, ok := q.Dialects[driver]; ok {
		return sql
	}
	return q.SQL
}

// Bind checks that args match the template's parameters and returns them in order.
func (q Query) Bind(args ...any) ([]any, error) {
	if len(args) != len(q.Params) {
		return nil, fmt.Errorf("%s expects %d parameter(s) %v, got %d: %w",
			q.Name, len(q.Params), q.Params, len(args), ErrParamCount)
	}
	bound := make([]any, len(args))
	copy(bound, args)
	return bound, nil
}

var registry = map[string]Query{}

func register(q Query) Query {
	if _, exists := registry[q.Name]; exists {
		panic("catalog: duplicate query " + q.Name)
	}
	registry[q.Name] = q
	return q
}

// Lookup returns the query registered under name.
func Lookup(name string) (Query, bool) {
	q, ok := registry[name]
	return q, ok
}

// All returns every registered query ordered by name.
func All() []Query {
	out := make([]Query, 0, len(registry))
	for _, q := range registry {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the registered query names in order.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, q := range all {
		names[i] = q.Name
	}
	return names
}
