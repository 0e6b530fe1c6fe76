package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/coupon"
	"github.com/go-chi/chi/v5"
)

// couponValidator is the interface for coupon validation
type couponValidator interface {
	Validate(code string) coupon.Result
	GetStats() map[string]interface{}
}

// CouponHandler handles HTTP requests for coupon validation
type CouponHandler struct {
	validator couponValidator
	logger    *slog.Logger
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(validator couponValidator, logger *slog.Logger) *CouponHandler {
	return &CouponHandler{
		validator: validator,
		logger:    logger,
	}
}

// ValidateCoupon handles GET /api/coupon/{couponCode}
// - 200: coupon exists and is active
// - 404: unknown code
// - 422: coupon exists but is inactive
func (h *CouponHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	couponCode := chi.URLParam(r, "couponCode")

	res := h.validator.Validate(couponCode)

	switch res.Status {
	case coupon.StatusValid:
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"valid":  true,
			"coupon": couponCode,
			"type":   res.Coupon.Type,
			"value":  res.Coupon.Value,
		}, h.logger)
	case coupon.StatusInactive:
		WriteJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"valid":   false,
			"coupon":  couponCode,
			"message": "Coupon is no longer active",
		}, h.logger)
	default:
		WriteJSON(w, http.StatusNotFound, map[string]interface{}{
			"valid":   false,
			"coupon":  couponCode,
			"message": "Coupon not found or invalid",
		}, h.logger)
	}
}

// GetStats handles GET /api/coupon/stats (for debugging/monitoring)
func (h *CouponHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.validator.GetStats(), h.logger)
}
