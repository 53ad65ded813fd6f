package httphandler

import (
	"math"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
)

// Date is a calendar date rendered as YYYY-MM-DD.
type Date time.Time

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(d).Format(time.DateOnly) + `"`), nil
}

type (
	Product struct {
		ID                   int64          `json:"id"`
		Title                string         `json:"title"`
		Description          string         `json:"description"`
		Category             string         `json:"category"`
		Price                float64        `json:"price"`
		DiscountPercentage   float64        `json:"discountpercentage"`
		Rating               float64        `json:"rating"`
		Stock                int            `json:"stock"`
		Tags                 []string       `json:"tags"`
		Brand                string         `json:"brand"`
		SKU                  string         `json:"sku"`
		Weight               float64        `json:"weight"`
		Dimensions           map[string]any `json:"dimensions"`
		WarrantyInformation  string         `json:"warrantyinformation"`
		ShippingInformation  string         `json:"shippinginformation"`
		AvailabilityStatus   string         `json:"availabilitystatus"`
		ReturnPolicy         string         `json:"returnpolicy"`
		MinimumOrderQuantity int            `json:"minimumorderquantity"`
		Meta                 map[string]any `json:"meta"`
		Images               []any          `json:"images"`
		Thumbnail            string         `json:"thumbnail"`
		IsOnSale             bool           `json:"is_on_sale"`
		SaleStart            *Date          `json:"sale_start"`
		SaleEnd              *Date          `json:"sale_end"`
		TrendingScore        *float64       `json:"trending_score,omitempty"`
	}

	Category struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
	}

	CarouselImage struct {
		ID       int64  `json:"id"`
		Title    string `json:"title"`
		ImageURL string `json:"image_url"`
	}

	Review struct {
		ID            int64     `json:"id"`
		ProductID     int64     `json:"product_id"`
		Rating        int       `json:"rating"`
		Comment       string    `json:"comment"`
		Date          time.Time `json:"date"`
		ReviewerName  string    `json:"reviewerName"`
		ReviewerEmail string    `json:"reviewerEmail"`
	}

	ProductReview struct {
		Review
		ProductTitle     string `json:"productTitle"`
		ProductThumbnail string `json:"productThumbnail"`
	}

	CartItem struct {
		ID        int64     `json:"id"`
		UserUID   string    `json:"user_uid"`
		ProductID int64     `json:"product_id"`
		ImgURL    string    `json:"img_url"`
		Quantity  int       `json:"quantity"`
		Price     *float64  `json:"price"`
		AddedAt   time.Time `json:"added_at"`
	}

	CartItemResult struct {
		Message string   `json:"message"`
		Item    CartItem `json:"item"`
	}

	Notification struct {
		Type      string    `json:"type"`
		Title     string    `json:"title"`
		Message   string    `json:"message"`
		Timestamp time.Time `json:"timestamp"`
	}

	ErrorBody struct {
		Error string `json:"error"`
	}
)

// CartItemUpdate is the body of a cart item update. Absent and null
// fields are left unchanged.
type CartItemUpdate struct {
	Quantity *float64 `json:"quantity"`
	Price    *float64 `json:"price"`
}

func (u CartItemUpdate) toDomain() domain.CartItemPatch {
	var p domain.CartItemPatch
	if u.Quantity != nil {
		// Clamped so huge values still fail validation as out of range.
		q := math.Max(math.Min(math.Trunc(*u.Quantity), math.MaxInt32+1), -1)
		n := int(q)
		p.Quantity = &n
	}
	p.Price = u.Price
	return p
}

func fromProduct(p domain.Product) Product {
	v := Product{
		ID:                   p.ID,
		Title:                p.Title,
		Description:          p.Description,
		Category:             p.Category,
		Price:                p.Price,
		DiscountPercentage:   p.DiscountPercentage,
		Rating:               p.Rating,
		Stock:                p.Stock,
		Tags:                 p.Tags,
		Brand:                p.Brand,
		SKU:                  p.SKU,
		Weight:               p.Weight,
		Dimensions:           p.Dimensions,
		WarrantyInformation:  p.WarrantyInformation,
		ShippingInformation:  p.ShippingInformation,
		AvailabilityStatus:   p.AvailabilityStatus,
		ReturnPolicy:         p.ReturnPolicy,
		MinimumOrderQuantity: p.MinimumOrderQuantity,
		Meta:                 p.Meta,
		Images:               p.Images,
		Thumbnail:            p.Thumbnail,
		IsOnSale:             p.Sale.Active,
		TrendingScore:        p.TrendingScore,
	}
	if p.Sale.Start != nil {
		d := Date(*p.Sale.Start)
		v.SaleStart = &d
	}
	if p.Sale.End != nil {
		d := Date(*p.Sale.End)
		v.SaleEnd = &d
	}
	return v
}

func fromCategory(c domain.Category) Category {
	return Category{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ImageURL:    c.ImageURL,
	}
}

func fromCarouselImage(c domain.CarouselImage) CarouselImage {
	return CarouselImage{ID: c.ID, Title: c.Title, ImageURL: c.ImageURL}
}

func fromReview(r domain.Review) Review {
	return Review{
		ID:            r.ID,
		ProductID:     r.ProductID,
		Rating:        r.Rating,
		Comment:       r.Comment,
		Date:          r.Date,
		ReviewerName:  r.ReviewerName,
		ReviewerEmail: r.ReviewerEmail,
	}
}

func fromProductReview(r domain.ProductReview) ProductReview {
	return ProductReview{
		Review:           fromReview(r.Review),
		ProductTitle:     r.ProductTitle,
		ProductThumbnail: r.ProductThumbnail,
	}
}

func fromCartItem(c domain.CartItem) CartItem {
	return CartItem{
		ID:        c.ID,
		UserUID:   c.UserUID,
		ProductID: c.ProductID,
		ImgURL:    c.ImgURL,
		Quantity:  c.Quantity,
		Price:     c.Price,
		AddedAt:   c.AddedAt,
	}
}

func fromNotification(n domain.Notification) Notification {
	return Notification{
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Timestamp: n.Timestamp,
	}
}

// mapSlice converts a domain list. The result is never nil so empty lists
// render as [].
func mapSlice[T, V any](vs []T, fn func(T) V) []V {
	out := make([]V, 0, len(vs))
	for _, v := range vs {
		out = append(out, fn(v))
	}
	return out
}
