package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/niksmo/storefront/internal/core/port"
)

// GET /products?search&title&category&minPrice&maxPrice&tags&sortBy&order&limit&offset
// GET /product/{id}
// GET /trending
// GET /similar/{id}
// GET /todays-sales

type ProductsHandler struct {
	finder port.ProductsFinder
}

func RegisterProducts(r chi.Router, finder port.ProductsFinder) {
	h := ProductsHandler{finder}
	r.Get("/products", h.ListProducts)
	r.Get("/product/{id}", h.GetProduct)
	r.Get("/trending", h.Trending)
	r.Get("/similar/{id}", h.Similar)
	r.Get("/todays-sales", h.TodaysSales)
}

func (h ProductsHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := parseProductQuery(r)
	if err != nil {
		writeError(w, r, "Product", err)
		return
	}

	ps, err := h.finder.ListProducts(r.Context(), q)
	if err != nil {
		writeError(w, r, "Product", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(ps, fromProduct))
}

func (h ProductsHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeNotFound(w, r, "Product")
		return
	}

	p, err := h.finder.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, "Product", err)
		return
	}
	writeJSON(w, r, http.StatusOK, fromProduct(p))
}

func (h ProductsHandler) Trending(w http.ResponseWriter, r *http.Request) {
	ps, err := h.finder.Trending(r.Context())
	if err != nil {
		writeError(w, r, "Product", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(ps, fromProduct))
}

func (h ProductsHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeNotFound(w, r, "Product")
		return
	}

	ps, err := h.finder.Similar(r.Context(), id)
	if err != nil {
		writeError(w, r, "Product", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(ps, fromProduct))
}

func (h ProductsHandler) TodaysSales(w http.ResponseWriter, r *http.Request) {
	ps, err := h.finder.TodaysSales(r.Context())
	if err != nil {
		writeError(w, r, "Product", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(ps, fromProduct))
}

// GET /categories
// GET /category/{id}
// GET /imagecarousel

type CatalogHandler struct {
	reader port.CatalogReader
}

func RegisterCatalog(r chi.Router, reader port.CatalogReader) {
	h := CatalogHandler{reader}
	r.Get("/categories", h.ListCategories)
	r.Get("/category/{id}", h.GetCategory)
	r.Get("/imagecarousel", h.ListCarousel)
}

func (h CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	vs, err := h.reader.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, "Category", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(vs, fromCategory))
}

func (h CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeNotFound(w, r, "Category")
		return
	}

	v, err := h.reader.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, "Category", err)
		return
	}
	writeJSON(w, r, http.StatusOK, fromCategory(v))
}

func (h CatalogHandler) ListCarousel(w http.ResponseWriter, r *http.Request) {
	vs, err := h.reader.ListCarousel(r.Context())
	if err != nil {
		writeError(w, r, "Carousel image", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(vs, fromCarouselImage))
}

// GET /reviews?product_id
// GET /reviews/{id}
// GET /reviews/product/{product_id}

type ReviewsHandler struct {
	reader port.ReviewsReader
}

func RegisterReviews(r chi.Router, reader port.ReviewsReader) {
	h := ReviewsHandler{reader}
	r.Get("/reviews", h.ListReviews)
	r.Get("/reviews/{id}", h.GetReview)
	r.Get("/reviews/product/{product_id}", h.ListProductReviews)
}

func (h ReviewsHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := optionalInt(r.URL.Query().Get("product_id"), "product_id")
	if err != nil {
		writeError(w, r, "Review", err)
		return
	}

	vs, err := h.reader.ListReviews(r.Context(), productID)
	if err != nil {
		writeError(w, r, "Review", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(vs, fromReview))
}

func (h ReviewsHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeNotFound(w, r, "Review")
		return
	}

	v, err := h.reader.GetReview(r.Context(), id)
	if err != nil {
		writeError(w, r, "Review", err)
		return
	}
	writeJSON(w, r, http.StatusOK, fromReview(v))
}

func (h ReviewsHandler) ListProductReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(r, "product_id")
	if !ok {
		writeNotFound(w, r, "Product")
		return
	}

	vs, err := h.reader.ListProductReviews(r.Context(), productID)
	if err != nil {
		writeError(w, r, "Review", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(vs, fromProductReview))
}

// GET /notifications

type NotificationsHandler struct {
	lister port.NotificationsLister
}

func RegisterNotifications(r chi.Router, lister port.NotificationsLister) {
	h := NotificationsHandler{lister}
	r.Get("/notifications", h.List)
}

func (h NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	vs, err := h.lister.Notifications(r.Context())
	if err != nil {
		writeError(w, r, "Notification", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(vs, fromNotification))
}

// GET /

func Root(w http.ResponseWriter, r *http.Request) {
	const op = "httphandler.Root"

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte("Storefront API is running")); err != nil {
		slog.Warn("failed to write response body", "op", op, "err", err)
	}
}

// OPTIONS /*

func Preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
