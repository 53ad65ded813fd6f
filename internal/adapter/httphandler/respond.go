package httphandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/niksmo/storefront/internal/core/domain"
)

const internalErrorMsg = "internal server error"

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	const op = "httphandler.writeJSON"

	data, err := json.Marshal(v)
	if err != nil {
		slog.Error(
			"failed to encode response", "op", op,
			"requestID", middleware.GetReqID(r.Context()), "err", err,
		)
		status = http.StatusInternalServerError
		data = []byte(`{"error":"` + internalErrorMsg + `"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write response body", "op", op, "err", err)
	}
}

func writeErrorMsg(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, ErrorBody{Error: msg})
}

func writeNotFound(w http.ResponseWriter, r *http.Request, noun string) {
	writeErrorMsg(w, r, http.StatusNotFound, noun+" not found")
}

// writeError translates a core error into a response. noun names the
// entity in not found messages.
func writeError(w http.ResponseWriter, r *http.Request, noun string, err error) {
	const op = "httphandler.writeError"

	if errors.Is(err, domain.ErrNotFound) {
		writeNotFound(w, r, noun)
		return
	}

	var verr domain.ValidationError
	if errors.As(err, &verr) {
		writeErrorMsg(w, r, http.StatusBadRequest, verr.Msg)
		return
	}

	slog.Error(
		"request failed", "op", op,
		"requestID", middleware.GetReqID(r.Context()),
		"method", r.Method, "path", r.URL.Path, "err", err,
	)
	writeErrorMsg(w, r, http.StatusInternalServerError, internalErrorMsg)
}
