package storage

import (
	"context"
	"fmt"

	"github.com/niksmo/storefront/internal/adapter/storage/sqlq"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.CatalogStorage = (*CatalogRepository)(nil)

// CatalogRepository reads categories and carousel images.
type CatalogRepository struct {
	sqldb sqldb
}

func NewCatalogRepository(sqldb sqldb) CatalogRepository {
	return CatalogRepository{sqldb}
}

func (r CatalogRepository) ListCategories(
	ctx context.Context,
) ([]domain.Category, error) {
	const op = "CatalogRepository.ListCategories"

	stmt := sqlq.Statement{
		SQL: "SELECT " + categoryColumns + " FROM categories ORDER BY id ASC",
	}

	vs, err := queryAll(ctx, r.sqldb, stmt, scanCategory)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (r CatalogRepository) ReadCategory(
	ctx context.Context, id int64,
) (domain.Category, error) {
	const op = "CatalogRepository.ReadCategory"

	query := "SELECT " + categoryColumns + " FROM categories WHERE id = $1"

	v, err := scanCategory(r.sqldb.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.Category{}, notFound(op, err)
	}
	return v, nil
}

func (r CatalogRepository) ListCarousel(
	ctx context.Context,
) ([]domain.CarouselImage, error) {
	const op = "CatalogRepository.ListCarousel"

	stmt := sqlq.Statement{
		SQL: "SELECT " + carouselColumns + " FROM image_carousel ORDER BY id ASC",
	}

	vs, err := queryAll(ctx, r.sqldb, stmt, scanCarouselImage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}
