package sqlq

import (
	"math"
	"strconv"
	"strings"
)

const (
	defaultSortColumn = "id"
	tiebreakColumn    = "id"
	maxPageValue      = math.MaxInt32
)

// sortColumns is the allow-list of sortable product columns keyed by
// the accepted request value.
var sortColumns = map[string]string{
	"price":  "price",
	"rating": "rating",
	"title":  "title",
	"stock":  "stock",
	"id":     "id",
}

// An Order is an ORDER BY clause whose column always comes from
// an allow-list.
type Order struct {
	column string
	desc   bool
}

// ResolveSort maps the requested field and direction onto the product
// allow-list. Unknown or empty fields fall back to id. Only "desc", in
// any letter case, sorts descending.
func ResolveSort(field, direction string) Order {
	column, ok := sortColumns[field]
	if !ok {
		column = defaultSortColumn
	}
	return Order{column: column, desc: strings.EqualFold(direction, "desc")}
}

func (o Order) Column() string {
	if o.column == "" {
		return defaultSortColumn
	}
	return o.column
}

// String renders the ORDER BY list. Sorting on anything other than id
// gets id as a tiebreaker.
func (o Order) String() string {
	column := o.Column()
	dir := "ASC"
	if o.desc {
		dir = "DESC"
	}
	s := column + " " + dir
	if column != tiebreakColumn {
		s += ", " + tiebreakColumn + " ASC"
	}
	return s
}

// A Page is a normalized LIMIT/OFFSET pair. Without a limit the whole
// result set is returned and the offset is ignored.
type Page struct {
	Limit   int
	Offset  int
	Limited bool
}

// ResolvePage parses the raw limit and offset values. A limit is applied
// only when it is numeric and not negative; fractional values are
// truncated. The offset defaults to 0.
func ResolvePage(limit, offset string) Page {
	l, ok := parseCount(limit)
	if !ok {
		return Page{}
	}
	o, _ := parseCount(offset)
	return Page{Limit: l, Offset: o, Limited: true}
}

func parseCount(s string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return int(math.Min(math.Trunc(f), maxPageValue)), true
}
