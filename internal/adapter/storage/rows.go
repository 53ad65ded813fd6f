package storage

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/niksmo/storefront/internal/core/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const productColumns = `id, title, description, category, price,
	discountpercentage, rating, stock, tags, brand, sku, weight, dimensions,
	warrantyinformation, shippinginformation, availabilitystatus,
	returnpolicy, minimumorderquantity, meta, images, thumbnail,
	is_on_sale, sale_start, sale_end`

// productRow mirrors productColumns. Every column but id may be NULL.
type productRow struct {
	id           int64
	title        sql.NullString
	description  sql.NullString
	category     sql.NullString
	price        sql.NullFloat64
	discount     sql.NullFloat64
	rating       sql.NullFloat64
	stock        sql.NullInt64
	tags         sql.NullString
	brand        sql.NullString
	sku          sql.NullString
	weight       sql.NullFloat64
	dimensions   sql.NullString
	warranty     sql.NullString
	shipping     sql.NullString
	availability sql.NullString
	returnPolicy sql.NullString
	minOrderQty  sql.NullInt64
	meta         sql.NullString
	images       sql.NullString
	thumbnail    sql.NullString
	onSale       sql.NullBool
	saleStart    sql.NullTime
	saleEnd      sql.NullTime
}

func (r *productRow) dest() []any {
	return []any{
		&r.id, &r.title, &r.description, &r.category, &r.price,
		&r.discount, &r.rating, &r.stock, &r.tags, &r.brand, &r.sku,
		&r.weight, &r.dimensions, &r.warranty, &r.shipping,
		&r.availability, &r.returnPolicy, &r.minOrderQty, &r.meta,
		&r.images, &r.thumbnail, &r.onSale, &r.saleStart, &r.saleEnd,
	}
}

func (r productRow) toDomain() domain.Product {
	p := domain.Product{
		ID:                   r.id,
		Title:                r.title.String,
		Description:          r.description.String,
		Category:             r.category.String,
		Brand:                r.brand.String,
		SKU:                  r.sku.String,
		Thumbnail:            r.thumbnail.String,
		Price:                r.price.Float64,
		DiscountPercentage:   r.discount.Float64,
		Rating:               r.rating.Float64,
		Stock:                int(r.stock.Int64),
		Weight:               r.weight.Float64,
		AvailabilityStatus:   r.availability.String,
		MinimumOrderQuantity: int(r.minOrderQty.Int64),
		WarrantyInformation:  r.warranty.String,
		ShippingInformation:  r.shipping.String,
		ReturnPolicy:         r.returnPolicy.String,
		Sale: domain.ProductSale{
			Active: r.onSale.Bool,
			Start:  nullTime(r.saleStart),
			End:    nullTime(r.saleEnd),
		},
	}

	// Tags are matched as strings by the tag filter, so they decode as
	// []string. Images keep whatever JSON values the column holds.
	p.Tags = decodeStructured[[]string](r.id, "tags", r.tags)
	p.Dimensions = decodeStructured[map[string]any](r.id, "dimensions", r.dimensions)
	p.Meta = decodeStructured[map[string]any](r.id, "meta", r.meta)
	p.Images = decodeStructured[[]any](r.id, "images", r.images)
	return p
}

func scanProduct(s rowScanner) (domain.Product, error) {
	var r productRow
	if err := s.Scan(r.dest()...); err != nil {
		return domain.Product{}, err
	}
	return r.toDomain(), nil
}

// scanScoredProduct reads productColumns followed by a trending score.
func scanScoredProduct(s rowScanner) (domain.Product, error) {
	var (
		r     productRow
		score sql.NullFloat64
	)
	if err := s.Scan(append(r.dest(), &score)...); err != nil {
		return domain.Product{}, err
	}
	p := r.toDomain()
	p.TrendingScore = &score.Float64
	return p, nil
}

// decodeStructured decodes a jsonb column. NULL and undecodable values
// yield the zero value of T.
func decodeStructured[T any](id int64, field string, v sql.NullString) T {
	const op = "storage.decodeStructured"

	var out T
	if !v.Valid {
		return out
	}
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		slog.Warn(
			"failed to decode structured field",
			"op", op, "productID", id, "field", field, "err", err,
		)
		var zero T
		return zero
	}
	return out
}

const reviewColumns = `id, product_id, rating, comment, date,
	reviewername, revieweremail`

type reviewRow struct {
	id            int64
	productID     sql.NullInt64
	rating        sql.NullFloat64
	comment       sql.NullString
	date          sql.NullTime
	reviewerName  sql.NullString
	reviewerEmail sql.NullString
}

func (r *reviewRow) dest() []any {
	return []any{
		&r.id, &r.productID, &r.rating, &r.comment, &r.date,
		&r.reviewerName, &r.reviewerEmail,
	}
}

func (r reviewRow) toDomain() domain.Review {
	return domain.Review{
		ID:            r.id,
		ProductID:     r.productID.Int64,
		Rating:        int(r.rating.Float64),
		Comment:       r.comment.String,
		Date:          r.date.Time,
		ReviewerName:  r.reviewerName.String,
		ReviewerEmail: r.reviewerEmail.String,
	}
}

func scanReview(s rowScanner) (domain.Review, error) {
	var r reviewRow
	if err := s.Scan(r.dest()...); err != nil {
		return domain.Review{}, err
	}
	return r.toDomain(), nil
}

func scanProductReview(s rowScanner) (domain.ProductReview, error) {
	var (
		r         reviewRow
		title     sql.NullString
		thumbnail sql.NullString
	)
	if err := s.Scan(append(r.dest(), &title, &thumbnail)...); err != nil {
		return domain.ProductReview{}, err
	}
	return domain.ProductReview{
		Review:           r.toDomain(),
		ProductTitle:     title.String,
		ProductThumbnail: thumbnail.String,
	}, nil
}

const cartItemColumns = `id, user_uid, product_id, img_url, quantity,
	price, added_at`

type cartItemRow struct {
	id        int64
	userUID   sql.NullString
	productID sql.NullInt64
	imgURL    sql.NullString
	quantity  sql.NullInt64
	price     sql.NullFloat64
	addedAt   sql.NullTime
}

func (r *cartItemRow) dest() []any {
	return []any{
		&r.id, &r.userUID, &r.productID, &r.imgURL, &r.quantity,
		&r.price, &r.addedAt,
	}
}

func (r cartItemRow) toDomain() domain.CartItem {
	v := domain.CartItem{
		ID:        r.id,
		UserUID:   r.userUID.String,
		ProductID: r.productID.Int64,
		ImgURL:    r.imgURL.String,
		Quantity:  int(r.quantity.Int64),
		AddedAt:   r.addedAt.Time,
	}
	if r.price.Valid {
		price := r.price.Float64
		v.Price = &price
	}
	return v
}

func scanCartItem(s rowScanner) (domain.CartItem, error) {
	var r cartItemRow
	if err := s.Scan(r.dest()...); err != nil {
		return domain.CartItem{}, err
	}
	return r.toDomain(), nil
}

const categoryColumns = `id, name, slug, description, image_url`

func scanCategory(s rowScanner) (domain.Category, error) {
	var (
		v                          domain.Category
		name, slug, desc, imageURL sql.NullString
	)
	if err := s.Scan(&v.ID, &name, &slug, &desc, &imageURL); err != nil {
		return domain.Category{}, err
	}
	v.Name = name.String
	v.Slug = slug.String
	v.Description = desc.String
	v.ImageURL = imageURL.String
	return v, nil
}

const carouselColumns = `id, title, image_url`

func scanCarouselImage(s rowScanner) (domain.CarouselImage, error) {
	var (
		v               domain.CarouselImage
		title, imageURL sql.NullString
	)
	if err := s.Scan(&v.ID, &title, &imageURL); err != nil {
		return domain.CarouselImage{}, err
	}
	v.Title = title.String
	v.ImageURL = imageURL.String
	return v, nil
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
