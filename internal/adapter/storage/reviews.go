package storage

import (
	"context"
	"fmt"

	"github.com/niksmo/storefront/internal/adapter/storage/sqlq"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.ReviewsStorage = (*ReviewsRepository)(nil)

type ReviewsRepository struct {
	sqldb sqldb
}

func NewReviewsRepository(sqldb sqldb) ReviewsRepository {
	return ReviewsRepository{sqldb}
}

// ListReviews returns reviews, newest first. A nil productID lists all.
func (r ReviewsRepository) ListReviews(
	ctx context.Context, productID *int64,
) ([]domain.Review, error) {
	const op = "ReviewsRepository.ListReviews"

	var ps []sqlq.Predicate
	if productID != nil {
		ps = append(ps, sqlq.Eq("product_id", *productID))
	}
	stmt := sqlq.Assemble(
		"SELECT "+reviewColumns+" FROM reviews", ps, "date DESC", sqlq.Page{},
	)

	vs, err := queryAll(ctx, r.sqldb, stmt, scanReview)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (r ReviewsRepository) ReadReview(
	ctx context.Context, id int64,
) (domain.Review, error) {
	const op = "ReviewsRepository.ReadReview"

	query := "SELECT " + reviewColumns + " FROM reviews WHERE id = $1"

	v, err := scanReview(r.sqldb.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.Review{}, notFound(op, err)
	}
	return v, nil
}

// ListProductReviews joins the reviews of a product with its title and
// thumbnail.
func (r ReviewsRepository) ListProductReviews(
	ctx context.Context, productID int64,
) ([]domain.ProductReview, error) {
	const op = "ReviewsRepository.ListProductReviews"

	stmt := sqlq.Statement{
		SQL: `
			SELECT
				r.id, r.product_id, r.rating, r.comment, r.date,
				r.reviewername, r.revieweremail,
				p.title, p.thumbnail
			FROM reviews r
			JOIN products p ON r.product_id = p.id
			WHERE r.product_id = $1
			ORDER BY r.date DESC`,
		Args: []any{productID},
	}

	vs, err := queryAll(ctx, r.sqldb, stmt, scanProductReview)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}
