package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/niksmo/storefront/internal/adapter/storage/sqlq"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.ProductsStorage = (*ProductsRepository)(nil)

const selectProducts = "SELECT " + productColumns + " FROM products"

type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

// ListProducts returns the filtered, sorted and paged product listing in
// a single statement.
func (r ProductsRepository) ListProducts(
	ctx context.Context, q domain.ProductQuery,
) ([]domain.Product, error) {
	const op = "ProductsRepository.ListProducts"

	stmt := sqlq.Assemble(
		selectProducts,
		sqlq.ProductFilterClauses(q.Filter),
		sqlq.ResolveSort(q.SortBy, q.Order).String(),
		sqlq.ResolvePage(q.Limit, q.Offset),
	)

	vs, err := queryAll(ctx, r.sqldb, stmt, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (r ProductsRepository) ReadProduct(
	ctx context.Context, id int64,
) (domain.Product, error) {
	const op = "ProductsRepository.ReadProduct"

	query := selectProducts + " WHERE id = $1"

	v, err := scanProduct(r.sqldb.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.Product{}, notFound(op, err)
	}
	return v, nil
}

// ListTrending ranks every product by [sqlq.TrendingScoreExpr].
func (r ProductsRepository) ListTrending(
	ctx context.Context, limit int,
) ([]domain.Product, error) {
	const op = "ProductsRepository.ListTrending"

	stmt := sqlq.Statement{
		SQL: "SELECT " + productColumns + ", " +
			sqlq.TrendingScoreExpr + " AS trending_score" +
			" FROM products ORDER BY " + sqlq.TrendingOrder + " LIMIT $1",
		Args: []any{limit},
	}

	vs, err := queryAll(ctx, r.sqldb, stmt, scanScoredProduct)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

// ListSimilar returns products of the given category, excluding the
// product with excludeID.
func (r ProductsRepository) ListSimilar(
	ctx context.Context, excludeID int64, category string, limit int,
) ([]domain.Product, error) {
	const op = "ProductsRepository.ListSimilar"

	stmt := sqlq.Statement{
		SQL: selectProducts +
			" WHERE id <> $1 AND category = $2 ORDER BY id ASC LIMIT $3",
		Args: []any{excludeID, category, limit},
	}

	vs, err := queryAll(ctx, r.sqldb, stmt, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

// ListOnSale returns products whose sale window covers the current date,
// biggest discount first.
func (r ProductsRepository) ListOnSale(
	ctx context.Context, limit int,
) ([]domain.Product, error) {
	const op = "ProductsRepository.ListOnSale"

	stmt := sqlq.Statement{
		SQL: selectProducts + `
			WHERE is_on_sale = TRUE
				AND CURRENT_DATE BETWEEN sale_start AND sale_end
			ORDER BY discountpercentage DESC, id ASC
			LIMIT $1`,
		Args: []any{limit},
	}

	vs, err := queryAll(ctx, r.sqldb, stmt, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

// ListLatest returns the most recently added products.
func (r ProductsRepository) ListLatest(
	ctx context.Context, limit int,
) ([]domain.Product, error) {
	const op = "ProductsRepository.ListLatest"

	stmt := sqlq.Statement{
		SQL:  selectProducts + " ORDER BY id DESC LIMIT $1",
		Args: []any{limit},
	}

	vs, err := queryAll(ctx, r.sqldb, stmt, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

// queryAll runs stmt and scans every row. The result is never nil.
func queryAll[T any](
	ctx context.Context,
	db sqldb,
	stmt sqlq.Statement,
	scan func(rowScanner) (T, error),
) ([]T, error) {
	rows, err := db.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return collect(rows, scan)
}

func collect[T any](
	rows *sql.Rows, scan func(rowScanner) (T, error),
) ([]T, error) {
	vs := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vs, nil
}
