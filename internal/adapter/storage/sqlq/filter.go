package sqlq

import (
	"github.com/goccy/go-json"
	"github.com/niksmo/storefront/internal/core/domain"
)

const (
	searchTemplate = "(LOWER(title) LIKE LOWER($?) OR " +
		"LOWER(brand) LIKE LOWER($?) OR " +
		"LOWER(description) LIKE LOWER($?))"
	titleTemplate    = "LOWER(title) = LOWER($?)"
	categoryTemplate = "category = $?"
	minPriceTemplate = "price >= $?"
	maxPriceTemplate = "price <= $?"
	tagTemplate      = "tags @> $?::jsonb"
)

// ProductFilterClauses turns the requested product filters into
// predicates, in a fixed order. Each tag yields its own containment
// predicate, so a row must carry every requested tag.
func ProductFilterClauses(f domain.ProductFilter) []Predicate {
	var ps []Predicate

	if f.Search != "" {
		ps = append(ps, Predicate{searchTemplate, "%" + f.Search + "%"})
	}

	if f.Title != "" {
		ps = append(ps, Predicate{titleTemplate, f.Title})
	}

	if f.Category != "" {
		ps = append(ps, Predicate{categoryTemplate, f.Category})
	}

	if f.MinPrice != nil {
		ps = append(ps, Predicate{minPriceTemplate, *f.MinPrice})
	}

	if f.MaxPrice != nil {
		ps = append(ps, Predicate{maxPriceTemplate, *f.MaxPrice})
	}

	for _, tag := range f.Tags {
		if tag == "" {
			continue
		}
		ps = append(ps, Predicate{tagTemplate, tagSet(tag)})
	}

	return ps
}

// tagSet encodes a single element JSON array for jsonb containment.
func tagSet(tag string) string {
	b, _ := json.Marshal([]string{tag}) // a []string always marshals
	return string(b)
}
