// Package sqlq composes parameterized PostgreSQL statements.
//
// User supplied values only ever travel as bound arguments. Identifiers
// placed in the statement text come from package level allow-lists or
// from constants of the caller.
package sqlq

import (
	"strconv"
	"strings"
)

// Marker is the placeholder a predicate template uses for its value.
// A template may reference its value several times.
const Marker = "$?"

// A Predicate is a single boolean condition bound to one value.
type Predicate struct {
	Template string
	Value    any
}

func Eq(column string, v any) Predicate {
	return Predicate{Template: column + " = " + Marker, Value: v}
}

// A Statement is SQL text with its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

// binder hands out positional parameters in order of appearance.
type binder struct {
	args []any
}

func (b *binder) bind(template string, v any) string {
	b.args = append(b.args, v)
	return strings.ReplaceAll(template, Marker, b.next())
}

func (b *binder) next() string {
	return "$" + strconv.Itoa(len(b.args))
}

// where renders predicates joined with AND. An empty list renders an
// empty clause.
func (b *binder) where(ps []Predicate) string {
	if len(ps) == 0 {
		return ""
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = b.bind(p.Template, p.Value)
	}
	return "WHERE " + strings.Join(parts, " AND ")
}
