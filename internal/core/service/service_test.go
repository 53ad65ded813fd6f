package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProductsStorage struct {
	mock.Mock
}

func (m *MockProductsStorage) ListProducts(
	ctx context.Context, q domain.ProductQuery,
) ([]domain.Product, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductsStorage) ReadProduct(
	ctx context.Context, id int64,
) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductsStorage) ListTrending(
	ctx context.Context, limit int,
) ([]domain.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductsStorage) ListSimilar(
	ctx context.Context, excludeID int64, category string, limit int,
) ([]domain.Product, error) {
	args := m.Called(ctx, excludeID, category, limit)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductsStorage) ListOnSale(
	ctx context.Context, limit int,
) ([]domain.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductsStorage) ListLatest(
	ctx context.Context, limit int,
) ([]domain.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Product), args.Error(1)
}

type MockCartItemsStorage struct {
	mock.Mock
}

func (m *MockCartItemsStorage) ListCartItems(
	ctx context.Context, userUID string,
) ([]domain.CartItem, error) {
	args := m.Called(ctx, userUID)
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockCartItemsStorage) ReadCartItem(
	ctx context.Context, id int64,
) (domain.CartItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.CartItem), args.Error(1)
}

func (m *MockCartItemsStorage) UpdateCartItem(
	ctx context.Context, id int64, patch domain.CartItemPatch,
) (domain.CartItem, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(domain.CartItem), args.Error(1)
}

func (m *MockCartItemsStorage) DeleteCartItem(
	ctx context.Context, id int64,
) (domain.CartItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.CartItem), args.Error(1)
}

type MockCartEventsProducer struct {
	mock.Mock
}

func (m *MockCartEventsProducer) ProduceCartItemEvent(
	ctx context.Context, e domain.CartItemEvent,
) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockCartEventsProducer) Close() {}

func ptr[T any](v T) *T { return &v }

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newService(
	products *MockProductsStorage,
	cartItems *MockCartItemsStorage,
	events *MockCartEventsProducer,
) service.Service {
	return service.New(
		products, nil, nil, cartItems, events,
		service.ClockOpt(func() time.Time { return fixedNow }),
		service.IDOpt(func() string { return "event-1" }),
	)
}

func TestSimilar(t *testing.T) {
	t.Run("ExcludesSelfAndUsesCategory", func(t *testing.T) {
		products := new(MockProductsStorage)
		ctx := t.Context()

		products.On("ReadProduct", ctx, int64(1)).
			Return(domain.Product{ID: 1, Category: "smartphones"}, nil)
		products.On("ListSimilar", ctx, int64(1), "smartphones", domain.SimilarLimit).
			Return([]domain.Product{{ID: 2, Category: "smartphones"}}, nil)

		s := newService(products, nil, nil)
		vs, err := s.Similar(ctx, 1)
		require.NoError(t, err)
		require.Len(t, vs, 1)
		assert.Equal(t, int64(2), vs[0].ID)
		products.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		products := new(MockProductsStorage)
		ctx := t.Context()

		products.On("ReadProduct", ctx, int64(404)).
			Return(domain.Product{}, domain.ErrNotFound)

		s := newService(products, nil, nil)
		_, err := s.Similar(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		products.AssertNotCalled(t, "ListSimilar", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTrending(t *testing.T) {
	products := new(MockProductsStorage)
	ctx := t.Context()

	products.On("ListTrending", ctx, domain.TrendingLimit).
		Return([]domain.Product{{ID: 3}, {ID: 1}}, nil)

	s := newService(products, nil, nil)
	vs, err := s.Trending(ctx)
	require.NoError(t, err)
	assert.Len(t, vs, 2)
	products.AssertExpectations(t)
}

func TestNotifications(t *testing.T) {
	products := new(MockProductsStorage)
	ctx := t.Context()

	products.On("ListLatest", ctx, domain.NotificationsLimit).
		Return([]domain.Product{{
			ID:          30,
			Title:       "Kiwi",
			Description: "Nutrient-rich kiwi",
			Category:    "groceries",
		}}, nil)

	s := newService(products, nil, nil)
	vs, err := s.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, domain.Notification{
		Type:      "product",
		Title:     "New Product: Kiwi",
		Message:   "Nutrient-rich kiwi (groceries)",
		Timestamp: fixedNow,
	}, vs[0])
}

func TestUpdateCartItem(t *testing.T) {
	t.Run("NothingToUpdate", func(t *testing.T) {
		cartItems := new(MockCartItemsStorage)
		events := new(MockCartEventsProducer)

		s := newService(nil, cartItems, events)
		_, err := s.UpdateCartItem(t.Context(), 1, domain.CartItemPatch{})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)

		var verr domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Nothing to update", verr.Msg)

		cartItems.AssertNotCalled(t, "UpdateCartItem", mock.Anything, mock.Anything, mock.Anything)
		events.AssertNotCalled(t, "ProduceCartItemEvent", mock.Anything, mock.Anything)
	})

	t.Run("NegativeQuantity", func(t *testing.T) {
		cartItems := new(MockCartItemsStorage)

		s := newService(nil, cartItems, new(MockCartEventsProducer))
		_, err := s.UpdateCartItem(
			t.Context(), 1, domain.CartItemPatch{Quantity: ptr(-1)},
		)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorContains(t, err, "quantity must be greater than or equal to 0")
		cartItems.AssertNotCalled(t, "UpdateCartItem", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NegativePrice", func(t *testing.T) {
		s := newService(nil, new(MockCartItemsStorage), new(MockCartEventsProducer))
		_, err := s.UpdateCartItem(
			t.Context(), 1, domain.CartItemPatch{Price: ptr(-0.5)},
		)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorContains(t, err, "price")
	})

	t.Run("QuantityOutOfRange", func(t *testing.T) {
		cartItems := new(MockCartItemsStorage)

		s := newService(nil, cartItems, new(MockCartEventsProducer))
		_, err := s.UpdateCartItem(
			t.Context(), 1, domain.CartItemPatch{Quantity: ptr(3_000_000_000)},
		)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorContains(t, err, "quantity must be less than or equal to 2147483647")
		cartItems.AssertNotCalled(t, "UpdateCartItem", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("PriceOutOfRange", func(t *testing.T) {
		s := newService(nil, new(MockCartItemsStorage), new(MockCartEventsProducer))
		_, err := s.UpdateCartItem(
			t.Context(), 1, domain.CartItemPatch{Price: ptr(1e9)},
		)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorContains(t, err, "price must be less than or equal to 99999999.99")
	})

	t.Run("PriceOnlyPublishesEvent", func(t *testing.T) {
		cartItems := new(MockCartItemsStorage)
		events := new(MockCartEventsProducer)
		ctx := t.Context()
		patch := domain.CartItemPatch{Price: ptr(9.99)}
		updated := domain.CartItem{ID: 7, Quantity: 2, Price: ptr(9.99)}

		cartItems.On("UpdateCartItem", ctx, int64(7), patch).Return(updated, nil)
		events.On("ProduceCartItemEvent", ctx, domain.CartItemEvent{
			EventID:    "event-1",
			Type:       domain.CartItemUpdated,
			OccurredAt: fixedNow,
			Item:       updated,
		}).Return(nil)

		s := newService(nil, cartItems, events)
		v, err := s.UpdateCartItem(ctx, 7, patch)
		require.NoError(t, err)
		assert.Equal(t, 2, v.Quantity)
		cartItems.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		cartItems := new(MockCartItemsStorage)
		events := new(MockCartEventsProducer)
		ctx := t.Context()
		patch := domain.CartItemPatch{Quantity: ptr(1)}

		cartItems.On("UpdateCartItem", ctx, int64(99), patch).
			Return(domain.CartItem{}, domain.ErrNotFound)

		s := newService(nil, cartItems, events)
		_, err := s.UpdateCartItem(ctx, 99, patch)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		events.AssertNotCalled(t, "ProduceCartItemEvent", mock.Anything, mock.Anything)
	})

	t.Run("PublishFailureIsIgnored", func(t *testing.T) {
		cartItems := new(MockCartItemsStorage)
		events := new(MockCartEventsProducer)
		ctx := t.Context()
		patch := domain.CartItemPatch{Quantity: ptr(0)}

		cartItems.On("UpdateCartItem", ctx, int64(1), patch).
			Return(domain.CartItem{ID: 1}, nil)
		events.On("ProduceCartItemEvent", ctx, mock.Anything).
			Return(errors.New("broker is down"))

		s := newService(nil, cartItems, events)
		v, err := s.UpdateCartItem(ctx, 1, patch)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v.ID)
	})
}

func TestDeleteCartItem(t *testing.T) {
	t.Run("ReturnsPriorState", func(t *testing.T) {
		cartItems := new(MockCartItemsStorage)
		events := new(MockCartEventsProducer)
		ctx := t.Context()
		prior := domain.CartItem{ID: 5, UserUID: "u1", Quantity: 3}

		cartItems.On("DeleteCartItem", ctx, int64(5)).Return(prior, nil)
		events.On("ProduceCartItemEvent", ctx, mock.MatchedBy(
			func(e domain.CartItemEvent) bool {
				return e.Type == domain.CartItemDeleted && e.Item.ID == 5
			},
		)).Return(nil)

		s := newService(nil, cartItems, events)
		v, err := s.DeleteCartItem(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, prior, v)
		events.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		cartItems := new(MockCartItemsStorage)
		ctx := t.Context()

		cartItems.On("DeleteCartItem", ctx, int64(5)).
			Return(domain.CartItem{}, domain.ErrNotFound)

		s := newService(nil, cartItems, new(MockCartEventsProducer))
		_, err := s.DeleteCartItem(ctx, 5)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
