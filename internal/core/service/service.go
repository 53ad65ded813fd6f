package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var (
	_ port.ProductsFinder      = (*Service)(nil)
	_ port.CatalogReader       = (*Service)(nil)
	_ port.ReviewsReader       = (*Service)(nil)
	_ port.CartItemsManager    = (*Service)(nil)
	_ port.NotificationsLister = (*Service)(nil)
)

type Service struct {
	productsStorage  port.ProductsStorage
	catalogStorage   port.CatalogStorage
	reviewsStorage   port.ReviewsStorage
	cartItemsStorage port.CartItemsStorage
	cartEvents       port.CartEventsProducer

	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

type Opt func(*Service)

// ClockOpt replaces the time source used for events and notifications.
func ClockOpt(now func() time.Time) Opt {
	return func(s *Service) {
		s.now = now
	}
}

// IDOpt replaces the event id generator.
func IDOpt(newID func() string) Opt {
	return func(s *Service) {
		s.newID = newID
	}
}

func New(
	productsStorage port.ProductsStorage,
	catalogStorage port.CatalogStorage,
	reviewsStorage port.ReviewsStorage,
	cartItemsStorage port.CartItemsStorage,
	cartEvents port.CartEventsProducer,
	opts ...Opt,
) Service {
	s := Service{
		productsStorage:  productsStorage,
		catalogStorage:   catalogStorage,
		reviewsStorage:   reviewsStorage,
		cartItemsStorage: cartItemsStorage,
		cartEvents:       cartEvents,
		validate:         validator.New(validator.WithRequiredStructEnabled()),
		now:              time.Now,
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s Service) ListProducts(
	ctx context.Context, q domain.ProductQuery,
) ([]domain.Product, error) {
	const op = "Service.ListProducts"

	vs, err := s.productsStorage.ListProducts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (s Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	const op = "Service.GetProduct"

	v, err := s.productsStorage.ReadProduct(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

func (s Service) Trending(ctx context.Context) ([]domain.Product, error) {
	const op = "Service.Trending"

	vs, err := s.productsStorage.ListTrending(ctx, domain.TrendingLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

// Similar returns products sharing the category of the product with the
// given id, the product itself excluded.
func (s Service) Similar(ctx context.Context, id int64) ([]domain.Product, error) {
	const op = "Service.Similar"

	p, err := s.productsStorage.ReadProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	vs, err := s.productsStorage.ListSimilar(
		ctx, p.ID, p.Category, domain.SimilarLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (s Service) TodaysSales(ctx context.Context) ([]domain.Product, error) {
	const op = "Service.TodaysSales"

	vs, err := s.productsStorage.ListOnSale(ctx, domain.TodaysSalesLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

// Notifications announces the newest products.
func (s Service) Notifications(ctx context.Context) ([]domain.Notification, error) {
	const op = "Service.Notifications"

	ps, err := s.productsStorage.ListLatest(ctx, domain.NotificationsLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	at := s.now()
	vs := make([]domain.Notification, 0, len(ps))
	for _, p := range ps {
		vs = append(vs, domain.NewProductNotification(p, at))
	}
	return vs, nil
}

func (s Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "Service.ListCategories"

	vs, err := s.catalogStorage.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (s Service) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	const op = "Service.GetCategory"

	v, err := s.catalogStorage.ReadCategory(ctx, id)
	if err != nil {
		return domain.Category{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

func (s Service) ListCarousel(ctx context.Context) ([]domain.CarouselImage, error) {
	const op = "Service.ListCarousel"

	vs, err := s.catalogStorage.ListCarousel(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (s Service) ListReviews(
	ctx context.Context, productID *int64,
) ([]domain.Review, error) {
	const op = "Service.ListReviews"

	vs, err := s.reviewsStorage.ListReviews(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (s Service) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	const op = "Service.GetReview"

	v, err := s.reviewsStorage.ReadReview(ctx, id)
	if err != nil {
		return domain.Review{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

func (s Service) ListProductReviews(
	ctx context.Context, productID int64,
) ([]domain.ProductReview, error) {
	const op = "Service.ListProductReviews"

	vs, err := s.reviewsStorage.ListProductReviews(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (s Service) ListCartItems(
	ctx context.Context, userUID string,
) ([]domain.CartItem, error) {
	const op = "Service.ListCartItems"

	vs, err := s.cartItemsStorage.ListCartItems(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (s Service) GetCartItem(ctx context.Context, id int64) (domain.CartItem, error) {
	const op = "Service.GetCartItem"

	v, err := s.cartItemsStorage.ReadCartItem(ctx, id)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// UpdateCartItem applies the present fields of patch and returns the
// updated item.
func (s Service) UpdateCartItem(
	ctx context.Context, id int64, patch domain.CartItemPatch,
) (domain.CartItem, error) {
	const op = "Service.UpdateCartItem"

	if err := s.validatePatch(patch); err != nil {
		return domain.CartItem{}, fmt.Errorf("%s: %w", op, err)
	}

	v, err := s.cartItemsStorage.UpdateCartItem(ctx, id, patch)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, domain.CartItemUpdated, v)
	return v, nil
}

// DeleteCartItem removes the item and returns its state before removal.
func (s Service) DeleteCartItem(ctx context.Context, id int64) (domain.CartItem, error) {
	const op = "Service.DeleteCartItem"

	v, err := s.cartItemsStorage.DeleteCartItem(ctx, id)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, domain.CartItemDeleted, v)
	return v, nil
}

func (s Service) validatePatch(patch domain.CartItemPatch) error {
	if patch.Empty() {
		return domain.NewValidationError("Nothing to update")
	}

	err := s.validate.Struct(patch)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	bound := "greater than or equal to"
	if fe.Tag() == "lte" {
		bound = "less than or equal to"
	}
	return domain.NewValidationError(fmt.Sprintf(
		"%s must be %s %s", strings.ToLower(fe.Field()), bound, fe.Param(),
	))
}

// publish reports a cart mutation. Failures are logged only.
func (s Service) publish(
	ctx context.Context, t domain.CartItemEventType, item domain.CartItem,
) {
	const op = "Service.publish"

	e := domain.CartItemEvent{
		EventID:    s.newID(),
		Type:       t,
		OccurredAt: s.now(),
		Item:       item,
	}
	if err := s.cartEvents.ProduceCartItemEvent(ctx, e); err != nil {
		slog.Warn(
			"failed to publish cart item event",
			"op", op, "eventID", e.EventID, "cartItemID", item.ID, "err", err,
		)
	}
}
