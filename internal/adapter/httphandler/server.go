package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

type HTTPServer struct {
	httpServer *http.Server
}

const timeoutBody = `{"error":"request timeout"}`

// NewHTTPServer serves handler on addr. Requests running longer than
// requestTimeout are answered with 503.
func NewHTTPServer(
	addr string, handler http.Handler, requestTimeout time.Duration,
) HTTPServer {
	if requestTimeout <= 0 {
		requestTimeout = 5 * time.Second
	}
	handler = jsonTimeout(
		http.TimeoutHandler(handler, requestTimeout, timeoutBody),
	)
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
	return HTTPServer{s}
}

// jsonTimeout labels the timeout body as JSON. Responses of the wrapped
// handler keep their own Content-Type.
func jsonTimeout(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(unavailableWriter{w}, r)
	}
	return http.HandlerFunc(hf)
}

type unavailableWriter struct {
	http.ResponseWriter
}

func (w unavailableWriter) WriteHeader(code int) {
	h := w.Header()
	if code == http.StatusServiceUnavailable && h.Get("Content-Type") == "" {
		h.Set("Content-Type", "application/json")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (s HTTPServer) Run(stopFn context.CancelFunc) {
	const op = "HTTPServer.Run"
	log := slog.With("op", op)

	defer stopFn()
	log.Info("http server is listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return
		}
		log.Error("unexpected server shutdown", "err", err)
	}
}

func (s HTTPServer) Close(ctx context.Context) {
	const op = "HTTPServer.Close"
	log := slog.With("op", op)

	log.Info("closing http server...")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		log.Error("failed to shutdown gracefully", "err", err)
	}
	log.Info("http server is closed")
}
