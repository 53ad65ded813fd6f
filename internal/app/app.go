package app

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter"
	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/adapter/metrics"
	"github.com/niksmo/storefront/internal/adapter/storage"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/internal/core/service"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/sr"
)

type repositories struct {
	products  storage.ProductsRepository
	catalog   storage.CatalogRepository
	reviews   storage.ReviewsRepository
	cartItems storage.CartItemsRepository
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	sqldb      storage.SQLDB
	repos      repositories
	metrics    *metrics.Metrics
	cartEvents port.CartEventsProducer
	service    service.Service
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initStorage()
	app.initMetrics()
	app.initEventsProducer()
	app.initCoreService()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	db, err := storage.NewSQLDB(app.ctx, app.cfg.DSN(), storage.PoolConfig{
		MaxOpenConns:    app.cfg.SQLDB.MaxOpenConns,
		MaxIdleConns:    app.cfg.SQLDB.MaxIdleConns,
		ConnMaxLifetime: app.cfg.SQLDB.ConnMaxLifetime,
		PingAttempts:    app.cfg.SQLDB.PingAttempts,
	})
	if err != nil {
		app.fallDown(op, err)
	}

	app.sqldb = db
	app.repos = repositories{
		products:  storage.NewProductsRepository(db),
		catalog:   storage.NewCatalogRepository(db),
		reviews:   storage.NewReviewsRepository(db),
		cartItems: storage.NewCartItemsRepository(db),
	}
}

func (app *App) initMetrics() {
	app.metrics = metrics.New()
}

func (app *App) initEventsProducer() {
	const op = "App.initEventsProducer"
	log := slog.With("op", op)

	if !app.cfg.EventsEnabled() {
		log.Info("no seed brokers configured, cart item events are disabled")
		app.cartEvents = kafka.NopCartEventsProducer{}
		return
	}

	srClient, err := sr.NewClient(sr.URLs(app.cfg.Broker.SchemaRegistryURLs...))
	if err != nil {
		app.fallDown(op, err)
	}

	topic := app.cfg.Broker.Topics.CartEvents
	serde, err := schema.NewSerdeCartItemEventV1(
		app.ctx,
		schema.SubjectOpt(topic+"-value"),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		app.fallDown(op, err)
	}

	var tlsConfig *tls.Config
	if app.cfg.BrokerTLSEnabled() {
		t := app.cfg.Broker.TLS
		tlsConfig, err = adapter.MakeTLSConfig(t.CA, t.Cert, t.Key)
		if err != nil {
			app.fallDown(op, err)
		}
	}

	producer, err := kafka.NewCartEventsProducer(
		kafka.ProducerClientOpt(
			app.ctx, app.cfg.Broker.SeedBrokers, topic, tlsConfig,
		),
		kafka.ProducerEncoderOpt(serde),
		kafka.ProducerRecorderOpt(app.metrics),
		kafka.ProducerBreakerOpt(kafka.BreakerConfig{}),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.cartEvents = producer
}

func (app *App) initCoreService() {
	app.service = service.New(
		app.repos.products,
		app.repos.catalog,
		app.repos.reviews,
		app.repos.cartItems,
		app.cartEvents,
	)
}

func (app *App) initInboundAdapters() {
	router := httphandler.NewRouter(
		httphandler.RouterConfig{
			RateLimitRPM: app.cfg.HTTPServer.RateLimitRPM,
			Metrics:      app.metrics,
		},
		httphandler.Services{
			Products:      app.service,
			Catalog:       app.service,
			Reviews:       app.service,
			CartItems:     app.service,
			Notifications: app.service,
		},
	)
	app.httpServer = httphandler.NewHTTPServer(
		app.cfg.HTTPServerAddr(), router, app.cfg.HTTPServer.RequestTimeout,
	)
}

func (app *App) Run(stopFn context.CancelFunc) {
	go app.httpServer.Run(stopFn)

	slog.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)
	app.cartEvents.Close()
	app.sqldb.Close()

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
