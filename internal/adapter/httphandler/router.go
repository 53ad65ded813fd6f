package httphandler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/niksmo/storefront/internal/core/port"
)

var (
	corsMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	corsHeaders = []string{
		"X-Requested-With", "Content-Type", "Accept", "Origin", "Authorization",
	}
)

type Instruments interface {
	Middleware(http.Handler) http.Handler
	Handler() http.Handler
	RateLimitHit(*http.Request)
}

type RouterConfig struct {
	// RateLimitRPM is the per client IP request limit per minute.
	// Zero disables rate limiting.
	RateLimitRPM int
	Metrics      Instruments
}

type Services struct {
	Products      port.ProductsFinder
	Catalog       port.CatalogReader
	Reviews       port.ReviewsReader
	CartItems     port.CartItemsManager
	Notifications port.NotificationsLister
}

func NewRouter(cfg RouterConfig, s Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(AnyOrigin)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  func(*http.Request, string) bool { return true },
		AllowedMethods:   corsMethods,
		AllowedHeaders:   corsHeaders,
		AllowCredentials: true,
	}))
	if cfg.RateLimitRPM > 0 {
		r.Use(httprate.Limit(
			cfg.RateLimitRPM, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(rateLimited(cfg.Metrics)),
		))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMsg(w, r, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMsg(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", Root)
	r.Options("/*", Preflight)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	RegisterProducts(r, s.Products)
	RegisterCatalog(r, s.Catalog)
	RegisterReviews(r, s.Reviews)
	RegisterCartItems(r, s.CartItems)
	RegisterNotifications(r, s.Notifications)

	return r
}

func rateLimited(m Instruments) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m != nil {
			m.RateLimitHit(r)
		}
		writeErrorMsg(w, r, http.StatusTooManyRequests, "Too many requests")
	}
}
