package kafka

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sony/gobreaker/v2"
	"github.com/twmb/franz-go/pkg/kgo"
)

// A producer is used for composition.
//
// Producing records to kafka broker through a circuit breaker and closing
// underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
	breaker  *gobreaker.CircuitBreaker[struct{}]
}

func newProducer(
	opPrefix string, cl ProducerClient, c BreakerConfig, rec EventRecorder,
) producer {
	c.normalize()
	log := slog.With("op", makeOp(opPrefix, "breaker"))

	settings := gobreaker.Settings{
		Name:    opPrefix,
		Timeout: c.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(
				"circuit breaker state changed",
				"from", from.String(), "to", to.String(),
			)
			rec.BreakerState(name, int(to))
		},
	}

	return producer{
		opPrefix: opPrefix,
		cl:       cl,
		breaker:  gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"

	_, err := p.breaker.Execute(func() (struct{}, error) {
		res := p.cl.ProduceSync(ctx, rs...)
		return struct{}{}, res.FirstErr()
	})
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// rejected reports whether err comes from an open breaker rather than
// from the broker.
func rejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests)
}
