package domain

import "time"

type Category struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	ImageURL    string
}

type CarouselImage struct {
	ID       int64
	Title    string
	ImageURL string
}

type (
	Review struct {
		ID            int64
		ProductID     int64
		Rating        int
		Comment       string
		Date          time.Time
		ReviewerName  string
		ReviewerEmail string
	}

	// ProductReview is a review joined with its product summary.
	ProductReview struct {
		Review
		ProductTitle     string
		ProductThumbnail string
	}
)

type Notification struct {
	Type      string
	Title     string
	Message   string
	Timestamp time.Time
}

// NewProductNotification announces a recently added product.
func NewProductNotification(p Product, at time.Time) Notification {
	return Notification{
		Type:      "product",
		Title:     "New Product: " + p.Title,
		Message:   p.Description + " (" + p.Category + ")",
		Timestamp: at,
	}
}
