package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

const slowDownDelay = time.Second

type ConsumerClient interface {
	PollFetches(context.Context) kgo.Fetches
	CommitUncommittedOffsets(context.Context) error
	SetOffsets(map[string]map[int32]kgo.EpochOffset)
	Close()
}

type Decoder interface {
	Decode(data []byte, v any) error
}

////////////////////////////////////////////////////////
///////////////           OPTS            //////////////
////////////////////////////////////////////////////////

type ConsumerOpt func(*consumerOpts) error

// ConsumerClientOpt joins group and consumes topic from the committed
// offsets, or from the start of the topic for a new group.
func ConsumerClientOpt(
	seedBrokers []string, topic, group string, tlsConfig *tls.Config,
) ConsumerOpt {
	return func(co *consumerOpts) error {
		kopts := []kgo.Opt{
			kgo.SeedBrokers(seedBrokers...),
			kgo.ConsumeTopics(topic),
			kgo.ConsumerGroup(group),
			kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
			kgo.DisableAutoCommit(),
		}
		if tlsConfig != nil {
			kopts = append(kopts, kgo.DialTLSConfig(tlsConfig))
		}

		cl, err := kgo.NewClient(kopts...)
		if err != nil {
			return err
		}
		co.cl = cl
		return nil
	}
}

func ConsumerRawClientOpt(cl ConsumerClient) ConsumerOpt {
	return func(co *consumerOpts) error {
		if cl == nil {
			return errors.New("client is nil")
		}
		co.cl = cl
		return nil
	}
}

func ConsumerDecoderOpt(decoder Decoder) ConsumerOpt {
	return func(co *consumerOpts) error {
		if decoder == nil {
			return errors.New("decoder is nil")
		}
		co.decoder = decoder
		return nil
	}
}

func ConsumerHandlerOpt(h port.CartEventsHandler) ConsumerOpt {
	return func(co *consumerOpts) error {
		if h == nil {
			return errors.New("cart events handler is nil")
		}
		co.handler = h
		return nil
	}
}

type consumerOpts struct {
	cl      ConsumerClient
	decoder Decoder
	handler port.CartEventsHandler
}

func (co *consumerOpts) apply(opts ...ConsumerOpt) error {
	for _, opt := range opts {
		if err := opt(co); err != nil {
			return err
		}
	}
	return nil
}

////////////////////////////////////////////////////////
////////////           CONSUMERS            ////////////
////////////////////////////////////////////////////////

// A consumer is used for composition.
//
// Fetching records from kafka broker and closing underlying [kgo.Client].

type consumerParent interface {
	processFetches(context.Context, kgo.Fetches) error
}

type consumer struct {
	opPrefix string
	parent   consumerParent
	cl       ConsumerClient
	delay    time.Duration
}

func (c consumer) run(ctx context.Context) {
	const op = "run"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			err := c.consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				log.Error("failed to consume", "err", err)
				c.slowDown(ctx)
			}
		}
	}
}

// consume polls one batch, hands it to the parent and commits the
// offsets. When the parent fails the client is rewound to the start of the
// batch, so the next poll delivers it again.
func (c consumer) consume(ctx context.Context) error {
	const op = "consume"

	fetches, err := c.pollFetches(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if fetches.Empty() {
		return nil
	}

	err = c.parent.processFetches(ctx, fetches)
	if err != nil {
		c.rewind(fetches)
		return opErr(err, c.opPrefix, op)
	}

	err = c.commit(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c consumer) pollFetches(ctx context.Context) (kgo.Fetches, error) {
	const op = "pollFetches"

	fetches := c.cl.PollFetches(ctx)
	if err := fetches.Err0(); err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	err := c.handleFetchesErrs(fetches)
	if err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	return fetches, nil
}

func (c consumer) handleFetchesErrs(fetches kgo.Fetches) error {
	var errsMessages []string
	fetches.EachError(func(t string, p int32, err error) {
		if err != nil {
			errMsg := fmt.Sprintf(
				"topic %q partition %d: %q", t, p, err,
			)
			errsMessages = append(errsMessages, errMsg)
		}
	})

	if len(errsMessages) != 0 {
		return errors.New(strings.Join(errsMessages, "; "))
	}
	return nil
}

// rewind moves every fetched partition back to its first record in the
// batch.
func (c consumer) rewind(fetches kgo.Fetches) {
	offsets := make(map[string]map[int32]kgo.EpochOffset)
	fetches.EachPartition(func(p kgo.FetchTopicPartition) {
		if len(p.Records) == 0 {
			return
		}
		first := p.Records[0]
		if offsets[p.Topic] == nil {
			offsets[p.Topic] = make(map[int32]kgo.EpochOffset)
		}
		offsets[p.Topic][p.Partition] = kgo.EpochOffset{
			Epoch:  first.LeaderEpoch,
			Offset: first.Offset,
		}
	})
	if len(offsets) != 0 {
		c.cl.SetOffsets(offsets)
	}
}

func (c consumer) slowDown(ctx context.Context) {
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (c consumer) commit(ctx context.Context) error {
	const op = "commit"

	err := ctx.Err()
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	err = c.cl.CommitUncommittedOffsets(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c consumer) close() {
	const op = "close"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("closing consumer...")
	c.cl.Close()
	log.Info("consumer is closed")
}

// A CartEventsConsumer reads cart item events back from the broker and
// passes each decoded batch to a [port.CartEventsHandler].
type CartEventsConsumer struct {
	opPrefix string
	consumer consumer
	handler  port.CartEventsHandler
	decoder  Decoder
}

func NewCartEventsConsumer(opts ...ConsumerOpt) (CartEventsConsumer, error) {
	const op = "NewCartEventsConsumer"

	var options consumerOpts
	if err := options.apply(opts...); err != nil {
		return CartEventsConsumer{}, opErr(err, op)
	}
	if options.cl == nil || options.decoder == nil || options.handler == nil {
		return CartEventsConsumer{}, opErr(ErrTooFewOpts, op)
	}

	c := CartEventsConsumer{
		opPrefix: "CartEventsConsumer",
		handler:  options.handler,
		decoder:  options.decoder,
	}
	c.consumer = consumer{
		opPrefix: c.opPrefix,
		parent:   c,
		cl:       options.cl,
		delay:    slowDownDelay,
	}
	return c, nil
}

// Run consumes until ctx is done.
func (c CartEventsConsumer) Run(ctx context.Context) {
	c.consumer.run(ctx)
}

func (c CartEventsConsumer) Close() {
	c.consumer.close()
}

func (c CartEventsConsumer) processFetches(
	ctx context.Context, fetches kgo.Fetches,
) error {
	const op = "processFetches"

	values := c.toDomain(fetches)
	if len(values) == 0 {
		return nil
	}

	err := c.handler.HandleCartItemEvents(ctx, values)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

// toDomain decodes every record of the batch. Undecodable records are
// logged and skipped.
func (c CartEventsConsumer) toDomain(
	fetches kgo.Fetches,
) (vs []domain.CartItemEvent) {
	const op = "toDomain"
	log := slog.With("op", makeOp(c.opPrefix, op))

	fetches.EachRecord(func(r *kgo.Record) {
		v, err := c.decodeRecValue(r)
		if err != nil {
			log.Error(
				"failed to decode value",
				"topic", r.Topic,
				"partition", r.Partition,
				"offset", r.Offset,
				"err", opErr(err, c.opPrefix, op),
			)
			return
		}
		vs = append(vs, v)
	})
	return vs
}

func (c CartEventsConsumer) decodeRecValue(
	r *kgo.Record,
) (domain.CartItemEvent, error) {
	var s schema.CartItemEventV1
	err := c.decoder.Decode(r.Value, &s)
	if err != nil {
		return domain.CartItemEvent{}, err
	}
	return fromSchema(s), nil
}

func fromSchema(s schema.CartItemEventV1) domain.CartItemEvent {
	return domain.CartItemEvent{
		EventID:    s.EventID,
		Type:       domain.CartItemEventType(s.Type),
		OccurredAt: s.OccurredAt,
		Item: domain.CartItem{
			ID:        s.Item.ID,
			UserUID:   s.Item.UserUID,
			ProductID: s.Item.ProductID,
			ImgURL:    s.Item.ImgURL,
			Quantity:  s.Item.Quantity,
			Price:     s.Item.Price,
			AddedAt:   s.Item.AddedAt,
		},
	}
}
