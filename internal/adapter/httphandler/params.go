package httphandler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/niksmo/storefront/internal/core/domain"
)

// Identifier columns are PostgreSQL INTEGER.
const idBitSize = 32

// pathID reads an integer path parameter. ok is false when the value is
// not an integer or is out of the identifier range, which no stored row
// can match.
func pathID(r *http.Request, name string) (id int64, ok bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, idBitSize)
	return id, err == nil
}

func parseProductQuery(r *http.Request) (domain.ProductQuery, error) {
	q := r.URL.Query()

	minPrice, err := optionalFloat(q.Get("minPrice"), "minPrice")
	if err != nil {
		return domain.ProductQuery{}, err
	}
	maxPrice, err := optionalFloat(q.Get("maxPrice"), "maxPrice")
	if err != nil {
		return domain.ProductQuery{}, err
	}

	return domain.ProductQuery{
		Filter: domain.ProductFilter{
			Search:   q.Get("search"),
			Title:    q.Get("title"),
			Category: q.Get("category"),
			MinPrice: minPrice,
			MaxPrice: maxPrice,
			Tags:     splitTags(q.Get("tags")),
		},
		SortBy: q.Get("sortBy"),
		Order:  q.Get("order"),
		Limit:  q.Get("limit"),
		Offset: q.Get("offset"),
	}, nil
}

func optionalFloat(s, name string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, domain.NewValidationError(name + " must be a number")
	}
	return &v, nil
}

// splitTags splits a comma separated tag list. Empty segments are dropped.
func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func optionalInt(s, name string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, idBitSize)
	if errors.Is(err, strconv.ErrRange) {
		return nil, domain.NewValidationError(name + " is out of range")
	}
	if err != nil {
		return nil, domain.NewValidationError(name + " must be an integer")
	}
	return &v, nil
}
