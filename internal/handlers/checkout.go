// internal/handlers/checkout.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

type selectAddressRequest struct {
	AddressID uuid.UUID `json:"address_id" validate:"required"`
}

func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// stateAction is a checkout operation that answers with the new state.
type stateAction func(c *gin.Context, userID uuid.UUID) (*services.CheckoutState, error)

func (h *CheckoutHandler) respondState(c *gin.Context, action stateAction, messageKey string, args ...interface{}) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	state, err := action(c, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	payload := gin.H{"checkout": state}
	if messageKey != "" {
		payload["message"] = i18n.T(utils.GetLangFromContext(c), messageKey, args...)
	}
	utils.SuccessResponse(c, payload)
}

// POST /checkout
func (h *CheckoutHandler) Begin(c *gin.Context) {
	h.respondState(c, func(c *gin.Context, userID uuid.UUID) (*services.CheckoutState, error) {
		return h.checkoutService.Begin(c.Request.Context(), userID)
	}, "")
}

// GET /checkout
func (h *CheckoutHandler) GetState(c *gin.Context) {
	h.respondState(c, func(c *gin.Context, userID uuid.UUID) (*services.CheckoutState, error) {
		return h.checkoutService.State(c.Request.Context(), userID)
	}, "")
}

// PUT /checkout/address
func (h *CheckoutHandler) SelectAddress(c *gin.Context) {
	var req selectAddressRequest
	if !bind(c, &req) {
		return
	}

	h.respondState(c, func(c *gin.Context, userID uuid.UUID) (*services.CheckoutState, error) {
		return h.checkoutService.SelectAddress(c.Request.Context(), userID, req.AddressID)
	}, "")
}

// POST /checkout/next
func (h *CheckoutHandler) Next(c *gin.Context) {
	h.respondState(c, func(c *gin.Context, userID uuid.UUID) (*services.CheckoutState, error) {
		return h.checkoutService.Next(c.Request.Context(), userID)
	}, "")
}

// POST /checkout/back
func (h *CheckoutHandler) Back(c *gin.Context) {
	h.respondState(c, func(c *gin.Context, userID uuid.UUID) (*services.CheckoutState, error) {
		return h.checkoutService.Back(c.Request.Context(), userID)
	}, "")
}

// POST /checkout/coupon
// A rejected code answers 422 and keeps any coupon already applied.
func (h *CheckoutHandler) ApplyCoupon(c *gin.Context) {
	var req services.CouponRequest
	if !bind(c, &req) {
		return
	}

	h.respondState(c, func(c *gin.Context, userID uuid.UUID) (*services.CheckoutState, error) {
		return h.checkoutService.ApplyCoupon(c.Request.Context(), userID, req.Code)
	}, i18n.KeyCouponApplied, req.Code)
}

// DELETE /checkout/coupon
func (h *CheckoutHandler) RemoveCoupon(c *gin.Context) {
	h.respondState(c, func(c *gin.Context, userID uuid.UUID) (*services.CheckoutState, error) {
		return h.checkoutService.RemoveCoupon(c.Request.Context(), userID)
	}, i18n.KeyCouponRemoved)
}

// POST /checkout/payment
// For card payments the state carries the intent's client secret. Cash on
// delivery places the order straight away.
func (h *CheckoutHandler) StartPayment(c *gin.Context) {
	var req services.StartPaymentRequest
	if !bind(c, &req) {
		return
	}

	h.respondState(c, func(c *gin.Context, userID uuid.UUID) (*services.CheckoutState, error) {
		return h.checkoutService.StartPayment(c.Request.Context(), userID, req.Method)
	}, "")
}

// POST /checkout/payment/confirm
func (h *CheckoutHandler) ConfirmPayment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.ConfirmPaymentRequest
	if !bind(c, &req) {
		return
	}

	order, err := h.checkoutService.ConfirmPayment(c.Request.Context(), userID, req.PaymentIntentID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyOrderPlaced),
		"order":   order,
	})
}

// POST /checkout/payment/failure
func (h *CheckoutHandler) ReportPaymentFailure(c *gin.Context) {
	var req services.PaymentFailureRequest
	if !bind(c, &req) {
		return
	}

	h.respondState(c, func(c *gin.Context, userID uuid.UUID) (*services.CheckoutState, error) {
		return h.checkoutService.ReportPaymentFailure(c.Request.Context(), userID, req.Message)
	}, i18n.KeyPaymentRecorded)
}
