//go:build integration

package httphandler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/internal/testinfra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorefront(t *testing.T) (http.Handler, storage.SQLDB) {
	t.Helper()
	pg := testinfra.StartPostgres(t)

	db, err := storage.NewSQLDB(
		context.Background(), pg.DSN, storage.PoolConfig{PingAttempts: 5},
	)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	s := service.New(
		storage.NewProductsRepository(db),
		storage.NewCatalogRepository(db),
		storage.NewReviewsRepository(db),
		storage.NewCartItemsRepository(db),
		kafka.NopCartEventsProducer{},
	)
	router := httphandler.NewRouter(httphandler.RouterConfig{}, httphandler.Services{
		Products:      s,
		Catalog:       s,
		Reviews:       s,
		CartItems:     s,
		Notifications: s,
	})
	return router, db
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestStorefrontEndToEnd(t *testing.T) {
	h, db := newStorefront(t)
	ctx := context.Background()

	for _, price := range []float64{5, 12, 30, 49, 60} {
		_, err := db.ExecContext(ctx,
			`INSERT INTO products (title, price, rating, stock) VALUES ('p', $1, 0, 0)`,
			price,
		)
		require.NoError(t, err)
	}

	t.Run("ProductListing", func(t *testing.T) {
		rec := do(t, h, http.MethodGet,
			"/products?minPrice=10&maxPrice=50&sortBy=price&order=desc&limit=2", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var ps []httphandler.Product
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ps))
		require.Len(t, ps, 2)
		assert.Equal(t, 49.0, ps[0].Price)
		assert.Equal(t, 30.0, ps[1].Price)
	})

	t.Run("Trending", func(t *testing.T) {
		_, err := db.ExecContext(ctx, `TRUNCATE products RESTART IDENTITY CASCADE`)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `INSERT INTO products (title, rating, discountpercentage, stock)
			VALUES ('Sold out', 5, 0, 0)`)
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `INSERT INTO products (title, rating, discountpercentage, stock, meta)
			VALUES ('Fresh', 1, 20, 10, $1::jsonb)`,
			`{"updatedAt":"`+time.Now().UTC().Format(time.RFC3339)+`"}`,
		)
		require.NoError(t, err)

		rec := do(t, h, http.MethodGet, "/trending", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var ps []httphandler.Product
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ps))
		require.Len(t, ps, 2)
		assert.Equal(t, "Fresh", ps[0].Title)
		assert.Equal(t, "Sold out", ps[1].Title)
	})

	t.Run("CartItemLifecycle", func(t *testing.T) {
		_, err := db.ExecContext(ctx, `INSERT INTO cart_items (user_uid, product_id, quantity, price)
			VALUES ('u1', 1, 2, 10)`)
		require.NoError(t, err)

		rec := do(t, h, http.MethodPut, "/cart_items/1/update", `{"price": 15}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var updated httphandler.CartItemResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, "Cart item updated", updated.Message)
		assert.Equal(t, 2, updated.Item.Quantity)
		assert.Equal(t, 15.0, *updated.Item.Price)

		rec = do(t, h, http.MethodPut, "/cart_items/1/update", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Nothing to update"}`, rec.Body.String())

		rec = do(t, h, http.MethodDelete, "/cart_items/1/delete", "")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = do(t, h, http.MethodDelete, "/cart_items/1/delete", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Cart item not found"}`, rec.Body.String())
	})
}
