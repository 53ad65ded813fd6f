package domain

import "time"

const (
	TrendingLimit      = 10
	SimilarLimit       = 10
	TodaysSalesLimit   = 10
	NotificationsLimit = 5
)

type (
	Product struct {
		ID                   int64
		Title                string
		Description          string
		Category             string
		Brand                string
		SKU                  string
		Thumbnail            string
		Price                float64
		DiscountPercentage   float64
		Rating               float64
		Stock                int
		Weight               float64
		AvailabilityStatus   string
		MinimumOrderQuantity int
		WarrantyInformation  string
		ShippingInformation  string
		ReturnPolicy         string
		Sale                 ProductSale
		Tags                 []string
		Dimensions           map[string]any
		Meta                 map[string]any
		Images               []any

		// TrendingScore is set only by the trending listing.
		TrendingScore *float64
	}

	ProductSale struct {
		Active bool
		Start  *time.Time
		End    *time.Time
	}
)

// ProductFilter holds the optional product listing filters.
// Zero values mean "not requested".
type ProductFilter struct {
	Search   string
	Title    string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Tags     []string
}

// ProductQuery is a product listing request. Sorting and paging values
// are kept as received and normalized by the storage query resolver.
type ProductQuery struct {
	Filter ProductFilter
	SortBy string
	Order  string
	Limit  string
	Offset string
}
