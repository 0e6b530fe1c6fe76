package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
)

// CheckoutHandler handles checkout requests
type CheckoutHandler struct {
	checkout *service.CheckoutService
	log      *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout *service.CheckoutService, log *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		log:      log,
	}
}

// Checkout handles POST /api/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.log)
	if !ok {
		return
	}

	order, err := h.checkout.Checkout(r.Context(), sess.ID)
	if err != nil {
		h.log.Warn("checkout failed", "session_id", sess.ID, "error", err)
		writeCartError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
	h.log.Info("order created successfully", "order_id", order.ID, "items_count", len(order.Items), "total", order.Total)
}
