// Command cartevents tails the cart item events topic and logs every
// decoded event.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/niksmo/storefront/config"
	"github.com/niksmo/storefront/internal/adapter"
	"github.com/niksmo/storefront/internal/adapter/kafka"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/niksmo/storefront/pkg/sigctx"
	"github.com/spf13/pflag"
	"github.com/twmb/franz-go/pkg/sr"
)

const defaultGroup = "storefront-cartevents-tail"

type logHandler struct {
	log *slog.Logger
}

func (h logHandler) HandleCartItemEvents(
	_ context.Context, es []domain.CartItemEvent,
) error {
	for _, e := range es {
		h.log.Info(
			"cart item event",
			"eventID", e.EventID,
			"type", e.Type,
			"occurredAt", e.OccurredAt,
			"cartItemID", e.Item.ID,
			"userUID", e.Item.UserUID,
			"quantity", e.Item.Quantity,
			"price", e.Item.Price,
		)
	}
	return nil
}

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	group := getGroup()
	cfg := config.Load()

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))

	c, err := newConsumer(sigCtx, cfg, group)
	if err != nil {
		fallDown(err)
	}
	defer c.Close()

	c.Run(sigCtx)
}

func getGroup() string {
	cmdLine := pflag.NewFlagSet("cartevents", pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	group := cmdLine.StringP("group", "g", defaultGroup, "consumer group")
	if err := cmdLine.Parse(os.Args[1:]); err != nil {
		fallDown(err)
	}
	return *group
}

func newConsumer(
	ctx context.Context, cfg config.Config, group string,
) (kafka.CartEventsConsumer, error) {
	const op = "main.newConsumer"

	if !cfg.EventsEnabled() {
		return kafka.CartEventsConsumer{}, fmt.Errorf(
			"%s: %w", op, errors.New("no seed brokers configured"),
		)
	}

	srClient, err := sr.NewClient(sr.URLs(cfg.Broker.SchemaRegistryURLs...))
	if err != nil {
		return kafka.CartEventsConsumer{}, fmt.Errorf("%s: %w", op, err)
	}

	topic := cfg.Broker.Topics.CartEvents
	serde, err := schema.NewSerdeCartItemEventV1(
		ctx,
		schema.SubjectOpt(topic+"-value"),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(srClient)),
	)
	if err != nil {
		return kafka.CartEventsConsumer{}, fmt.Errorf("%s: %w", op, err)
	}

	var tlsConfig *tls.Config
	if cfg.BrokerTLSEnabled() {
		t := cfg.Broker.TLS
		tlsConfig, err = adapter.MakeTLSConfig(t.CA, t.Cert, t.Key)
		if err != nil {
			return kafka.CartEventsConsumer{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	return kafka.NewCartEventsConsumer(
		kafka.ConsumerClientOpt(cfg.Broker.SeedBrokers, topic, group, tlsConfig),
		kafka.ConsumerDecoderOpt(serde),
		kafka.ConsumerHandlerOpt(logHandler{slog.With("group", group)}),
	)
}

func fallDown(err error) {
	fmt.Printf("cartevents: %v\n", err)
	os.Exit(2)
}
