package kafka

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	resultSuccess  = "success"
	resultFailure  = "failure"
	resultRejected = "rejected"
)

var _ port.CartEventsProducer = (*CartEventsProducer)(nil)

// A CartEventsProducer used for produce [domain.CartItemEvent].
//
// Records are keyed by cart item id so the events of one item stay
// ordered within a partition.
type CartEventsProducer struct {
	producer producer
	encoder  Encoder
	recorder EventRecorder
	opPrefix string
}

func NewCartEventsProducer(
	opts ...ProducerOpt,
) (CartEventsProducer, error) {
	const op = "NewCartEventsProducer"

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return CartEventsProducer{}, opErr(err, op)
		}
	}
	if options.cl == nil || options.encoder == nil {
		return CartEventsProducer{}, opErr(ErrTooFewOpts, op)
	}
	if options.recorder == nil {
		options.recorder = nopRecorder{}
	}

	opPrefix := "CartEventsProducer"
	return CartEventsProducer{
		producer: newProducer(
			opPrefix, options.cl, options.breaker, options.recorder,
		),
		encoder:  options.encoder,
		recorder: options.recorder,
		opPrefix: opPrefix,
	}, nil
}

func (p CartEventsProducer) Close() {
	p.producer.close()
}

func (p CartEventsProducer) ProduceCartItemEvent(
	ctx context.Context, e domain.CartItemEvent,
) error {
	const op = "ProduceCartItemEvent"
	log := slog.With("op", makeOp(p.opPrefix, op))

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(e)
	if err != nil {
		p.recorder.CartItemEvent(string(e.Type), resultFailure)
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, r); err != nil {
		result := resultFailure
		if rejected(err) {
			result = resultRejected
		}
		p.recorder.CartItemEvent(string(e.Type), result)
		return opErr(err, p.opPrefix, op)
	}

	p.recorder.CartItemEvent(string(e.Type), resultSuccess)
	log.Debug("cart item event produced", "eventID", e.EventID)
	return nil
}

func (p CartEventsProducer) createRecord(
	e domain.CartItemEvent,
) (*kgo.Record, error) {
	const op = "createRecord"

	b, err := p.encoder.Encode(p.toSchema(e))
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{
		Key:   []byte(strconv.FormatInt(e.Item.ID, 10)),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}, nil
}

func (CartEventsProducer) toSchema(e domain.CartItemEvent) schema.CartItemEventV1 {
	return schema.CartItemEventV1{
		EventID:    e.EventID,
		Type:       string(e.Type),
		OccurredAt: e.OccurredAt,
		Item: schema.CartItemV1{
			ID:        e.Item.ID,
			UserUID:   e.Item.UserUID,
			ProductID: e.Item.ProductID,
			ImgURL:    e.Item.ImgURL,
			Quantity:  e.Item.Quantity,
			Price:     e.Item.Price,
			AddedAt:   e.Item.AddedAt,
		},
	}
}

var _ port.CartEventsProducer = NopCartEventsProducer{}

// NopCartEventsProducer drops every event. It is used when no brokers are
// configured.
type NopCartEventsProducer struct{}

func (NopCartEventsProducer) ProduceCartItemEvent(
	context.Context, domain.CartItemEvent,
) error {
	return nil
}

func (NopCartEventsProducer) Close() {}
