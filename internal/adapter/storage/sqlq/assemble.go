package sqlq

import "strings"

// Assemble composes base, the AND-joined predicates, the ORDER BY list
// and an optional LIMIT/OFFSET into one statement. orderBy must be an
// [Order] rendering or a constant of the caller, never request text.
func Assemble(base string, ps []Predicate, orderBy string, p Page) Statement {
	var (
		b  binder
		sb strings.Builder
	)

	sb.WriteString(base)

	if where := b.where(ps); where != "" {
		sb.WriteString(" ")
		sb.WriteString(where)
	}

	if orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBy)
	}

	if p.Limited {
		sb.WriteString(" LIMIT ")
		sb.WriteString(b.bind(Marker, p.Limit))
		sb.WriteString(" OFFSET ")
		sb.WriteString(b.bind(Marker, p.Offset))
	}

	return Statement{SQL: sb.String(), Args: b.args}
}

// An Assignment sets one column in an UPDATE.
type Assignment struct {
	Column string
	Value  any
}

// UpdateByID builds "UPDATE table SET ... WHERE id = $n RETURNING ...".
// Only the given assignments are set, each bound in order; the id is
// bound last. table, the assignment columns and returning are trusted.
func UpdateByID(table string, as []Assignment, id any, returning string) Statement {
	var b binder

	sets := make([]string, len(as))
	for i, a := range as {
		sets[i] = b.bind(a.Column+" = "+Marker, a.Value)
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(table)
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(sets, ", "))
	sb.WriteString(" WHERE ")
	sb.WriteString(b.bind("id = "+Marker, id))
	if returning != "" {
		sb.WriteString(" RETURNING ")
		sb.WriteString(returning)
	}

	return Statement{SQL: sb.String(), Args: b.args}
}
