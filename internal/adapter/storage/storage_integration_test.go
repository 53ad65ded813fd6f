//go:build integration

package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/testinfra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) storage.SQLDB {
	t.Helper()
	pg := testinfra.StartPostgres(t)

	db, err := storage.NewSQLDB(
		context.Background(), pg.DSN, storage.PoolConfig{PingAttempts: 5},
	)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func exec(t *testing.T, db storage.SQLDB, query string, args ...any) {
	t.Helper()
	_, err := db.ExecContext(context.Background(), query, args...)
	require.NoError(t, err)
}

func TestProductsRepository(t *testing.T) {
	db := newTestDB(t)
	repo := storage.NewProductsRepository(db)
	ctx := context.Background()

	for i, price := range []float64{5, 12, 30, 49, 60} {
		exec(t, db, `INSERT INTO products (title, brand, category, price, stock, tags)
			VALUES ($1, 'Acme', $2, $3, 10, $4::jsonb)`,
			"Item "+string(rune('A'+i)), []string{"a", "b"}[i%2], price,
			`["sale"]`,
		)
	}

	t.Run("FilterSortPage", func(t *testing.T) {
		minPrice, maxPrice := 10.0, 50.0
		ps, err := repo.ListProducts(ctx, domain.ProductQuery{
			Filter: domain.ProductFilter{MinPrice: &minPrice, MaxPrice: &maxPrice},
			SortBy: "price",
			Order:  "desc",
			Limit:  "2",
		})
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Equal(t, 49.0, ps[0].Price)
		assert.Equal(t, 30.0, ps[1].Price)
	})

	t.Run("OffsetSkipsRows", func(t *testing.T) {
		ps, err := repo.ListProducts(ctx, domain.ProductQuery{
			SortBy: "price", Order: "asc", Limit: "2", Offset: "3",
		})
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Equal(t, 49.0, ps[0].Price)
		assert.Equal(t, 60.0, ps[1].Price)
	})

	t.Run("SearchAndTags", func(t *testing.T) {
		ps, err := repo.ListProducts(ctx, domain.ProductQuery{
			Filter: domain.ProductFilter{Search: "item c", Tags: []string{"sale"}},
		})
		require.NoError(t, err)
		require.Len(t, ps, 1)
		assert.Equal(t, "Item C", ps[0].Title)
		assert.Equal(t, []string{"sale"}, ps[0].Tags)
	})

	t.Run("UnknownSortFallsBackToID", func(t *testing.T) {
		ps, err := repo.ListProducts(ctx, domain.ProductQuery{
			SortBy: "price; DROP TABLE products", Order: "sideways",
		})
		require.NoError(t, err)
		require.Len(t, ps, 5)
		assert.Less(t, ps[0].ID, ps[4].ID)
	})

	t.Run("ReadProductNotFound", func(t *testing.T) {
		_, err := repo.ReadProduct(ctx, 9999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Similar", func(t *testing.T) {
		first, err := repo.ReadProduct(ctx, 1)
		require.NoError(t, err)

		ps, err := repo.ListSimilar(ctx, first.ID, first.Category, domain.SimilarLimit)
		require.NoError(t, err)
		for _, p := range ps {
			assert.NotEqual(t, first.ID, p.ID)
			assert.Equal(t, first.Category, p.Category)
		}
		assert.Len(t, ps, 2)
	})
}

func TestTrending(t *testing.T) {
	db := newTestDB(t)
	repo := storage.NewProductsRepository(db)

	exec(t, db, `INSERT INTO products (title, rating, discountpercentage, stock)
		VALUES ('Sold out', 5, 0, 0)`)
	exec(t, db, `INSERT INTO products (title, rating, discountpercentage, stock, meta)
		VALUES ('Fresh', 1, 20, 10, $1::jsonb)`,
		`{"updatedAt":"`+time.Now().UTC().Format(time.RFC3339)+`"}`,
	)

	ps, err := repo.ListTrending(context.Background(), domain.TrendingLimit)
	require.NoError(t, err)
	require.Len(t, ps, 2)

	assert.Equal(t, "Fresh", ps[0].Title)
	assert.Equal(t, "Sold out", ps[1].Title)
	require.NotNil(t, ps[1].TrendingScore)
	assert.InDelta(t, 10.0, *ps[1].TrendingScore, 0.001)
	require.NotNil(t, ps[0].TrendingScore)
	assert.Greater(t, *ps[0].TrendingScore, *ps[1].TrendingScore)
}

func TestRankingLimits(t *testing.T) {
	db := newTestDB(t)
	repo := storage.NewProductsRepository(db)
	ctx := context.Background()

	for i := range 12 {
		exec(t, db, `INSERT INTO products (title, category, rating, discountpercentage, stock)
			VALUES ($1, 'gadgets', $2, $3, $4)`,
			"Gadget "+string(rune('A'+i)), float64(i%5), float64(i), i+1,
		)
	}
	exec(t, db, `INSERT INTO products (title, category, rating, discountpercentage, stock)
		VALUES ('Plain', 'other', 4, 10, 8)`)

	t.Run("TrendingCappedAndOrdered", func(t *testing.T) {
		ps, err := repo.ListTrending(ctx, domain.TrendingLimit)
		require.NoError(t, err)
		require.Len(t, ps, 10)

		for i := 1; i < len(ps); i++ {
			require.NotNil(t, ps[i-1].TrendingScore)
			require.NotNil(t, ps[i].TrendingScore)
			assert.GreaterOrEqual(t, *ps[i-1].TrendingScore, *ps[i].TrendingScore)
		}
	})

	t.Run("TrendingScoreWithoutUpdatedAt", func(t *testing.T) {
		ps, err := repo.ListTrending(ctx, 20)
		require.NoError(t, err)
		require.Len(t, ps, 13)

		var found bool
		for _, p := range ps {
			if p.Title != "Plain" {
				continue
			}
			found = true
			require.NotNil(t, p.TrendingScore)
			// 4*2 + 10*0.5 + 100/8
			assert.Equal(t, 25.5, *p.TrendingScore)
		}
		assert.True(t, found)
	})

	t.Run("SimilarCapped", func(t *testing.T) {
		ps, err := repo.ListSimilar(ctx, 1, "gadgets", domain.SimilarLimit)
		require.NoError(t, err)
		require.Len(t, ps, 10)
		for _, p := range ps {
			assert.NotEqual(t, int64(1), p.ID)
			assert.Equal(t, "gadgets", p.Category)
		}
	})
}

func TestCartItemsRepository(t *testing.T) {
	db := newTestDB(t)
	repo := storage.NewCartItemsRepository(db)
	ctx := context.Background()

	exec(t, db, `INSERT INTO products (title) VALUES ('Mug')`)
	exec(t, db, `INSERT INTO cart_items (user_uid, product_id, img_url, quantity, price)
		VALUES ('u1', 1, 'mug.png', 1, 9.50)`)

	t.Run("ListByUser", func(t *testing.T) {
		vs, err := repo.ListCartItems(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, vs, 1)

		vs, err = repo.ListCartItems(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, vs)
		assert.Empty(t, vs)
	})

	t.Run("PriceOnlyKeepsQuantity", func(t *testing.T) {
		price := 12.0
		v, err := repo.UpdateCartItem(ctx, 1, domain.CartItemPatch{Price: &price})
		require.NoError(t, err)
		assert.Equal(t, 1, v.Quantity)
		require.NotNil(t, v.Price)
		assert.Equal(t, 12.0, *v.Price)
	})

	t.Run("QuantityAndPrice", func(t *testing.T) {
		qty, price := 3, 11.0
		v, err := repo.UpdateCartItem(ctx, 1, domain.CartItemPatch{
			Quantity: &qty, Price: &price,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, v.Quantity)
		assert.Equal(t, 11.0, *v.Price)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		qty := 1
		_, err := repo.UpdateCartItem(ctx, 42, domain.CartItemPatch{Quantity: &qty})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("EmptyPatch", func(t *testing.T) {
		_, err := repo.UpdateCartItem(ctx, 1, domain.CartItemPatch{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("DeleteReturnsPriorRow", func(t *testing.T) {
		v, err := repo.DeleteCartItem(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "mug.png", v.ImgURL)
		assert.Equal(t, 3, v.Quantity)

		_, err = repo.DeleteCartItem(ctx, 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestReviewsRepository(t *testing.T) {
	db := newTestDB(t)
	repo := storage.NewReviewsRepository(db)
	ctx := context.Background()

	exec(t, db, `INSERT INTO products (title, thumbnail) VALUES ('Lamp', 'lamp.png')`)
	exec(t, db, `INSERT INTO reviews (product_id, rating, comment, date, reviewername)
		VALUES (1, 4, 'old', NOW() - INTERVAL '1 day', 'Ann'),
		       (1, 5, 'new', NOW(), 'Bob')`)

	t.Run("ListNewestFirst", func(t *testing.T) {
		productID := int64(1)
		vs, err := repo.ListReviews(ctx, &productID)
		require.NoError(t, err)
		require.Len(t, vs, 2)
		assert.Equal(t, "new", vs[0].Comment)
	})

	t.Run("JoinedProductSummary", func(t *testing.T) {
		vs, err := repo.ListProductReviews(ctx, 1)
		require.NoError(t, err)
		require.Len(t, vs, 2)
		assert.Equal(t, "Lamp", vs[0].ProductTitle)
		assert.Equal(t, "lamp.png", vs[0].ProductThumbnail)
	})

	t.Run("ReadMissing", func(t *testing.T) {
		_, err := repo.ReadReview(ctx, 77)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
