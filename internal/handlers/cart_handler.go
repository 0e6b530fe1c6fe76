package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/coupon"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
	"github.com/go-chi/chi/v5"
)

// AddItemRequest is the body of POST /api/cart/items
type AddItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// SetQuantityRequest is the body of PUT /api/cart/items/{productId}
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// ApplyCouponRequest is the body of POST /api/cart/coupon
type ApplyCouponRequest struct {
	Code string `json:"code"`
}

// CartHandler handles cart-related HTTP requests for the current session
type CartHandler struct {
	carts *service.CartService
	log   *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *service.CartService, log *slog.Logger) *CartHandler {
	return &CartHandler{
		carts: carts,
		log:   log,
	}
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.log)
	if !ok {
		return
	}

	view, err := h.carts.GetCart(r.Context(), sess.ID)
	h.respond(w, view, err)
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.log)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("failed to decode add item request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	view, err := h.carts.AddItem(r.Context(), sess.ID, req.ProductID, req.Quantity)
	h.respond(w, view, err)
}

// SetQuantity handles PUT /api/cart/items/{productId}
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.log)
	if !ok {
		return
	}
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("failed to decode set quantity request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	view, err := h.carts.UpdateQuantity(r.Context(), sess.ID, productID, req.Quantity)
	h.respond(w, view, err)
}

// Decrement handles POST /api/cart/items/{productId}/decrement
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.log)
	if !ok {
		return
	}
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	view, err := h.carts.Decrement(r.Context(), sess.ID, productID)
	h.respond(w, view, err)
}

// RemoveItem handles DELETE /api/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.log)
	if !ok {
		return
	}
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	view, err := h.carts.RemoveItem(r.Context(), sess.ID, productID)
	h.respond(w, view, err)
}

// ApplyCoupon handles POST /api/cart/coupon
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.log)
	if !ok {
		return
	}

	var req ApplyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("failed to decode coupon request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	view, err := h.carts.ApplyCoupon(r.Context(), sess.ID, req.Code)
	if err == nil {
		h.log.Info("coupon applied", "session_id", sess.ID, "coupon", view.Coupon.Code)
	}
	h.respond(w, view, err)
}

// RemoveCoupon handles DELETE /api/cart/coupon
func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.log)
	if !ok {
		return
	}

	view, err := h.carts.RemoveCoupon(r.Context(), sess.ID)
	h.respond(w, view, err)
}

func (h *CartHandler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := parseID(chi.URLParam(r, "productId"))
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.log)
	}
	return id, ok
}

func (h *CartHandler) respond(w http.ResponseWriter, view service.CartView, err error) {
	if err != nil {
		writeCartError(w, err, h.log)
		return
	}
	WriteJSON(w, http.StatusOK, view, h.log)
}

// writeCartError maps cart, coupon and checkout errors onto status codes.
func writeCartError(w http.ResponseWriter, err error, log *slog.Logger) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		WriteError(w, http.StatusBadRequest, "Quantity must be positive", log)
	case errors.Is(err, service.ErrInvalidProduct):
		WriteError(w, http.StatusBadRequest, "Invalid product", log)
	case errors.Is(err, cart.ErrItemNotFound):
		WriteError(w, http.StatusNotFound, "Item not in cart", log)
	case errors.Is(err, coupon.ErrInvalidCouponCode):
		WriteError(w, http.StatusNotFound, "Coupon code is not valid", log)
	case errors.Is(err, coupon.ErrInactiveCoupon):
		WriteError(w, http.StatusUnprocessableEntity, "Coupon is no longer active", log)
	case errors.Is(err, cart.ErrSessionEnded):
		WriteError(w, http.StatusConflict, "Session has ended", log)
	case errors.Is(err, service.ErrEmptyCart):
		WriteError(w, http.StatusBadRequest, "Cart must contain at least one item", log)
	default:
		log.Error("cart operation failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", log)
	}
}
