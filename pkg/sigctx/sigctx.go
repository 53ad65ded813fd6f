package sigctx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// ErrSignal is the cause of a context cancelled by a shutdown signal.
var ErrSignal = errors.New("shutdown signal")

// NotifyContext returns a context that is cancelled on SIGINT, SIGTERM or
// SIGQUIT. context.Cause of the cancelled context wraps [ErrSignal] and
// names the signal. The returned func stops listening and cancels the
// context.
func NotifyContext() (context.Context, context.CancelFunc) {
	return notifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
}

func notifyContext(
	parent context.Context, sigs ...os.Signal,
) (context.Context, context.CancelFunc) {
	const op = "sigctx.NotifyContext"

	ctx, cancel := context.WithCancelCause(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	go func() {
		select {
		case sig := <-ch:
			slog.Info("shutdown signal received", "op", op, "signal", sig.String())
			cancel(fmt.Errorf("%w: %s", ErrSignal, sig))
		case <-ctx.Done():
		}
	}()

	stop := func() {
		signal.Stop(ch)
		cancel(nil)
	}
	return ctx, stop
}
