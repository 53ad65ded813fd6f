package port

import (
	"context"

	"github.com/niksmo/storefront/internal/core/domain"
)

type closer interface {
	Close()
}

// Inbound ports, implemented by the core service.

type ProductsFinder interface {
	ListProducts(context.Context, domain.ProductQuery) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	Trending(context.Context) ([]domain.Product, error)
	Similar(ctx context.Context, id int64) ([]domain.Product, error)
	TodaysSales(context.Context) ([]domain.Product, error)
}

type CatalogReader interface {
	ListCategories(context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (domain.Category, error)
	ListCarousel(context.Context) ([]domain.CarouselImage, error)
}

type ReviewsReader interface {
	ListReviews(ctx context.Context, productID *int64) ([]domain.Review, error)
	GetReview(ctx context.Context, id int64) (domain.Review, error)
	ListProductReviews(ctx context.Context, productID int64) ([]domain.ProductReview, error)
}

type CartItemsManager interface {
	ListCartItems(ctx context.Context, userUID string) ([]domain.CartItem, error)
	GetCartItem(ctx context.Context, id int64) (domain.CartItem, error)
	UpdateCartItem(ctx context.Context, id int64, patch domain.CartItemPatch) (domain.CartItem, error)
	DeleteCartItem(ctx context.Context, id int64) (domain.CartItem, error)
}

type NotificationsLister interface {
	Notifications(context.Context) ([]domain.Notification, error)
}

// CartEventsHandler receives the cart item events read back from the
// broker by the events tail tool.
type CartEventsHandler interface {
	HandleCartItemEvents(context.Context, []domain.CartItemEvent) error
}

// Outbound ports, implemented by adapters.

type ProductsStorage interface {
	ListProducts(context.Context, domain.ProductQuery) ([]domain.Product, error)
	ReadProduct(ctx context.Context, id int64) (domain.Product, error)
	ListTrending(ctx context.Context, limit int) ([]domain.Product, error)
	ListSimilar(ctx context.Context, excludeID int64, category string, limit int) ([]domain.Product, error)
	ListOnSale(ctx context.Context, limit int) ([]domain.Product, error)
	ListLatest(ctx context.Context, limit int) ([]domain.Product, error)
}

type CatalogStorage interface {
	ListCategories(context.Context) ([]domain.Category, error)
	ReadCategory(ctx context.Context, id int64) (domain.Category, error)
	ListCarousel(context.Context) ([]domain.CarouselImage, error)
}

type ReviewsStorage interface {
	ListReviews(ctx context.Context, productID *int64) ([]domain.Review, error)
	ReadReview(ctx context.Context, id int64) (domain.Review, error)
	ListProductReviews(ctx context.Context, productID int64) ([]domain.ProductReview, error)
}

type CartItemsStorage interface {
	ListCartItems(ctx context.Context, userUID string) ([]domain.CartItem, error)
	ReadCartItem(ctx context.Context, id int64) (domain.CartItem, error)
	UpdateCartItem(ctx context.Context, id int64, patch domain.CartItemPatch) (domain.CartItem, error)
	DeleteCartItem(ctx context.Context, id int64) (domain.CartItem, error)
}

type CartEventsProducer interface {
	ProduceCartItemEvent(context.Context, domain.CartItemEvent) error
	closer
}
