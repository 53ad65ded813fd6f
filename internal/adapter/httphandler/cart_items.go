package httphandler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/niksmo/storefront/internal/core/port"
)

const maxCartItemBody = 1 << 16

// GET /cart_items?user_uid
// GET /cart_items/{id}
// PUT /cart_items/{id}/update JSON {"quantity"?: number, "price"?: number}
// DELETE /cart_items/{id}/delete

type CartItemsHandler struct {
	manager port.CartItemsManager
}

func RegisterCartItems(r chi.Router, manager port.CartItemsManager) {
	h := CartItemsHandler{manager}
	r.Get("/cart_items", h.List)
	r.Get("/cart_items/{id}", h.Get)
	r.With(AllowJSON).Put("/cart_items/{id}/update", h.Update)
	r.Delete("/cart_items/{id}/delete", h.Delete)
}

func (h CartItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	vs, err := h.manager.ListCartItems(r.Context(), r.URL.Query().Get("user_uid"))
	if err != nil {
		writeError(w, r, "Cart item", err)
		return
	}
	writeJSON(w, r, http.StatusOK, mapSlice(vs, fromCartItem))
}

func (h CartItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeNotFound(w, r, "Cart item")
		return
	}

	v, err := h.manager.GetCartItem(r.Context(), id)
	if err != nil {
		writeError(w, r, "Cart item", err)
		return
	}
	writeJSON(w, r, http.StatusOK, fromCartItem(v))
}

func (h CartItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "CartItemsHandler.Update"
	log := slog.With("op", op, "requestID", middleware.GetReqID(r.Context()))

	id, ok := pathID(r, "id")
	if !ok {
		writeNotFound(w, r, "Cart item")
		return
	}

	var body CartItemUpdate
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCartItemBody))
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("failed to parse JSON", "err", err)
		writeErrorMsg(w, r, http.StatusBadRequest, "invalid JSON data")
		return
	}

	v, err := h.manager.UpdateCartItem(r.Context(), id, body.toDomain())
	if err != nil {
		writeError(w, r, "Cart item", err)
		return
	}

	log.Info("cart item updated", "cartItemID", v.ID)
	writeJSON(w, r, http.StatusOK, CartItemResult{
		Message: "Cart item updated",
		Item:    fromCartItem(v),
	})
}

func (h CartItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "CartItemsHandler.Delete"
	log := slog.With("op", op, "requestID", middleware.GetReqID(r.Context()))

	id, ok := pathID(r, "id")
	if !ok {
		writeNotFound(w, r, "Cart item")
		return
	}

	v, err := h.manager.DeleteCartItem(r.Context(), id)
	if err != nil {
		writeError(w, r, "Cart item", err)
		return
	}

	log.Info("cart item deleted", "cartItemID", v.ID)
	writeJSON(w, r, http.StatusOK, CartItemResult{
		Message: "Cart item deleted",
		Item:    fromCartItem(v),
	})
}
