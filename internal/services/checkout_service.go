// internal/services/checkout_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/cart"
	"github.com/javajoker/storefront-backend/internal/checkout"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/pricing"
	"github.com/javajoker/storefront-backend/internal/repository"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// CheckoutService drives each signed-in user's checkout from address
// selection to a placed order. Flows live in memory only.
type CheckoutService struct {
	carts     *CartService
	addresses repository.AddressRepository
	orders    repository.OrderRepository
	gateway   PaymentGateway
	notifier  OrderNotifier
	pricing   pricing.Calculator
	currency  string
	now       func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*checkoutSession
}

type checkoutSession struct {
	mu     sync.Mutex
	flow   *checkout.Flow
	coupon pricing.CouponState
	// pending is the latest intent. intents holds every intent opened since
	// the flow entered payment, so an earlier one can still be confirmed.
	pending *pendingPayment
	intents map[string]*pendingPayment
}

// pendingPayment pins what the shopper is paying for when the intent is
// created, so later cart edits cannot change a paid order.
type pendingPayment struct {
	intent *PaymentIntent
	quote  pricing.Quote
	items  []cart.Item
}

// covers reports whether the payment was pinned for exactly this quote and
// these items.
func (p *pendingPayment) covers(quote pricing.Quote, items []cart.Item) bool {
	if !p.quote.Total.Equal(quote.Total) || p.quote.CouponCode != quote.CouponCode ||
		len(p.items) != len(items) {
		return false
	}
	for i := range items {
		if p.items[i].ProductID != items[i].ProductID ||
			p.items[i].Quantity != items[i].Quantity ||
			!p.items[i].Price.Equal(items[i].Price) {
			return false
		}
	}
	return true
}

func (s *checkoutSession) track(p *pendingPayment) {
	if s.intents == nil {
		s.intents = make(map[string]*pendingPayment)
	}
	s.intents[p.intent.ID] = p
	s.pending = p
}

func (s *checkoutSession) dropPayments() {
	s.pending = nil
	s.intents = nil
}

type CheckoutState struct {
	checkout.State
	Cart          cart.Snapshot   `json:"cart"`
	Quote         pricing.Quote   `json:"quote"`
	Address       *models.Address `json:"address,omitempty"`
	PaymentIntent *PaymentIntent  `json:"payment_intent,omitempty"`
}

type StartPaymentRequest struct {
	Method models.PaymentMethod `json:"method" validate:"required,oneof=card cod"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type PaymentFailureRequest struct {
	Message string `json:"message" validate:"required,max=500"`
}

type CouponRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

func NewCheckoutService(
	carts *CartService,
	addresses repository.AddressRepository,
	orders repository.OrderRepository,
	gateway PaymentGateway,
	notifier OrderNotifier,
	calc pricing.Calculator,
	currency string,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		addresses: addresses,
		orders:    orders,
		gateway:   gateway,
		notifier:  notifier,
		pricing:   calc,
		currency:  strings.ToUpper(currency),
		now:       time.Now,
		sessions:  make(map[uuid.UUID]*checkoutSession),
	}
}

// Begin starts a fresh checkout, replacing any flow in progress. The
// user's default address is preselected.
func (s *CheckoutService) Begin(ctx context.Context, userID uuid.UUID) (*CheckoutState, error) {
	c, err := s.carts.LoadCart(ctx, UserOwner(userID))
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	sess := &checkoutSession{flow: checkout.New()}

	addresses, err := s.addresses.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	for _, a := range addresses {
		if a.IsDefault {
			_ = sess.flow.SelectAddress(a.ID)
			break
		}
	}

	s.mu.Lock()
	s.sessions[userID] = sess
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.state(ctx, userID, sess, c)
}

func (s *CheckoutService) State(ctx context.Context, userID uuid.UUID) (*CheckoutState, error) {
	var state *CheckoutState
	err := s.withSession(userID, func(sess *checkoutSession) error {
		var err error
		state, err = s.state(ctx, userID, sess, nil)
		return err
	})
	return state, err
}

func (s *CheckoutService) SelectAddress(ctx context.Context, userID, addressID uuid.UUID) (*CheckoutState, error) {
	var state *CheckoutState
	err := s.withSession(userID, func(sess *checkoutSession) error {
		if _, err := s.addresses.Get(ctx, userID, addressID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAddressNotFound
			}
			return err
		}
		if err := sess.flow.SelectAddress(addressID); err != nil {
			return err
		}

		var err error
		state, err = s.state(ctx, userID, sess, nil)
		return err
	})
	return state, err
}

func (s *CheckoutService) Next(ctx context.Context, userID uuid.UUID) (*CheckoutState, error) {
	var state *CheckoutState
	err := s.withSession(userID, func(sess *checkoutSession) error {
		if err := sess.flow.Next(); err != nil {
			return err
		}

		var err error
		state, err = s.state(ctx, userID, sess, nil)
		return err
	})
	return state, err
}

// Back steps backwards. Leaving payment drops any unpaid intent.
func (s *CheckoutService) Back(ctx context.Context, userID uuid.UUID) (*CheckoutState, error) {
	var state *CheckoutState
	err := s.withSession(userID, func(sess *checkoutSession) error {
		if err := sess.flow.Back(); err != nil {
			return err
		}
		sess.dropPayments()

		var err error
		state, err = s.state(ctx, userID, sess, nil)
		return err
	})
	return state, err
}

// ApplyCoupon validates code against the current cart. A rejected code is
// returned as *pricing.CouponError and leaves the applied coupon in place.
func (s *CheckoutService) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*CheckoutState, error) {
	var state *CheckoutState
	err := s.withSession(userID, func(sess *checkoutSession) error {
		if sess.flow.Complete() {
			return checkout.ErrFlowComplete
		}

		c, err := s.carts.LoadCart(ctx, UserOwner(userID))
		if err != nil {
			return err
		}
		if err := sess.coupon.Apply(code, c.Subtotal()); err != nil {
			return err
		}

		state, err = s.state(ctx, userID, sess, c)
		return err
	})
	return state, err
}

func (s *CheckoutService) RemoveCoupon(ctx context.Context, userID uuid.UUID) (*CheckoutState, error) {
	var state *CheckoutState
	err := s.withSession(userID, func(sess *checkoutSession) error {
		if sess.flow.Complete() {
			return checkout.ErrFlowComplete
		}
		sess.coupon.Remove()

		var err error
		state, err = s.state(ctx, userID, sess, nil)
		return err
	})
	return state, err
}

// StartPayment prices the cart and either opens a card payment intent or,
// for cash on delivery, places the order straight away.
func (s *CheckoutService) StartPayment(ctx context.Context, userID uuid.UUID, method models.PaymentMethod) (*CheckoutState, error) {
	var state *CheckoutState
	err := s.withSession(userID, func(sess *checkoutSession) error {
		if sess.flow.Step() != checkout.StepPayment {
			return checkout.ErrNotInPayment
		}

		c, err := s.carts.LoadCart(ctx, UserOwner(userID))
		if err != nil {
			return err
		}
		if c.IsEmpty() {
			return ErrEmptyCart
		}
		quote := s.quote(sess, c.Subtotal())

		switch method {
		case models.PaymentMethodCOD:
			if _, err := s.placeOrder(ctx, userID, sess, c, c.Items(), quote, method, ""); err != nil {
				return err
			}
		case models.PaymentMethodCard:
			items := c.Items()
			if sess.pending != nil && sess.pending.covers(quote, items) {
				logrus.WithFields(logrus.Fields{
					"user_id": userID,
					"intent":  sess.pending.intent.ID,
				}).Debug("Reusing open payment intent")
				break
			}

			metadata := map[string]string{
				"user_id":  userID.String(),
				"subtotal": quote.Subtotal.StringFixed(2),
			}
			if quote.CouponCode != "" {
				metadata["coupon"] = quote.CouponCode
			}
			if addressID := sess.flow.AddressID(); addressID != nil {
				metadata["address_id"] = addressID.String()
			}

			intent, err := s.gateway.CreateIntent(ctx, quote.Total, s.currency, metadata)
			if err != nil {
				return err
			}
			sess.track(&pendingPayment{
				intent: intent,
				quote:  quote,
				items:  items,
			})
		default:
			return fmt.Errorf("unsupported payment method %q", method)
		}

		state, err = s.state(ctx, userID, sess, nil)
		return err
	})
	return state, err
}

// ConfirmPayment verifies a card payment with the gateway and places the
// order. Confirming an intent that already has an order returns that order
// and leaves the cart alone.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, userID uuid.UUID, intentID string) (*models.Order, error) {
	var order *models.Order
	err := s.withSession(userID, func(sess *checkoutSession) error {
		existing, err := s.existingOrder(ctx, userID, intentID)
		if err != nil {
			return err
		}
		if existing != nil {
			if !sess.flow.Complete() {
				_ = sess.flow.PaymentSucceeded(existing.ID)
			}
			order = existing
			return nil
		}

		if sess.flow.Step() != checkout.StepPayment {
			return checkout.ErrNotInPayment
		}
		pending := sess.intents[intentID]
		if pending == nil {
			return ErrPaymentMismatch
		}

		intent, err := s.gateway.GetIntent(ctx, intentID)
		if err != nil {
			return err
		}

		if intent.Status != IntentSucceeded {
			msg := intent.FailureMessage
			if msg == "" {
				msg = fmt.Sprintf("payment status is %s", intent.Status)
			}
			_ = sess.flow.PaymentFailed(msg)
			return fmt.Errorf("%w: %s", ErrPaymentFailed, msg)
		}

		if intent.Amount != MinorUnits(pending.quote.Total) || !strings.EqualFold(intent.Currency, s.currency) {
			logrus.WithFields(logrus.Fields{
				"intent":   intentID,
				"amount":   intent.Amount,
				"expected": MinorUnits(pending.quote.Total),
			}).Error("Payment amount does not match checkout")
			return ErrPaymentMismatch
		}

		c, err := s.carts.LoadCart(ctx, UserOwner(userID))
		if err != nil {
			return err
		}

		order, err = s.placeOrder(ctx, userID, sess, c, pending.items, pending.quote, models.PaymentMethodCard, intentID)
		return err
	})
	if errors.Is(err, ErrNoCheckout) {
		// The flow is gone, e.g. after a restart, but the order may exist.
		if existing, lookupErr := s.existingOrder(ctx, userID, intentID); lookupErr == nil && existing != nil {
			return existing, nil
		}
	}
	return order, err
}

// existingOrder returns the order already placed for intentID, or nil.
func (s *CheckoutService) existingOrder(ctx context.Context, userID uuid.UUID, intentID string) (*models.Order, error) {
	order, err := s.orders.GetByPaymentReference(ctx, intentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrPaymentMismatch
	}
	return order, nil
}

// ReportPaymentFailure records a failure the client saw, e.g. a declined
// card. The flow stays on payment.
func (s *CheckoutService) ReportPaymentFailure(ctx context.Context, userID uuid.UUID, message string) (*CheckoutState, error) {
	var state *CheckoutState
	err := s.withSession(userID, func(sess *checkoutSession) error {
		if err := sess.flow.PaymentFailed(message); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"reason":  message,
		}).Warn("Payment failed")

		var err error
		state, err = s.state(ctx, userID, sess, nil)
		return err
	})
	return state, err
}

func (s *CheckoutService) placeOrder(
	ctx context.Context,
	userID uuid.UUID,
	sess *checkoutSession,
	c *cart.Cart,
	items []cart.Item,
	quote pricing.Quote,
	method models.PaymentMethod,
	paymentRef string,
) (*models.Order, error) {
	addressID := sess.flow.AddressID()
	if addressID == nil {
		return nil, checkout.ErrAddressRequired
	}
	address, err := s.addresses.Get(ctx, userID, *addressID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}

	now := s.now()
	number, err := utils.GenerateOrderNumber(now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	order := &models.Order{
		OrderNumber:      number,
		UserID:           userID,
		Currency:         s.currency,
		Subtotal:         quote.Subtotal,
		Discount:         quote.Discount,
		DeliveryFee:      quote.DeliveryFee,
		Tax:              quote.Tax,
		Total:            quote.Total,
		CouponCode:       quote.CouponCode,
		Status:           models.OrderStatusPlaced,
		ShippingAddress:  address.Snapshot(),
		PaymentMethod:    method,
		PaymentStatus:    models.PaymentStatusPending,
		PaymentReference: paymentRef,
		StatusUpdatedAt:  &now,
	}
	if method == models.PaymentMethodCard {
		order.PaymentStatus = models.PaymentStatusPaid
		order.PaidAt = &now
	}
	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := c.Clear(ctx); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Error("Order placed but cart not cleared")
	}
	_ = sess.flow.PaymentSucceeded(order.ID)
	sess.dropPayments()

	logrus.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      userID,
		"total":        order.Total.String(),
		"method":       method,
	}).Info("Order placed")

	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, order); err != nil {
			logrus.WithError(err).WithField("order_id", order.ID).Warn("Order confirmation email failed")
		}
	}

	return order, nil
}

// quote prices subtotal with the applied coupon, if the cart still meets
// its minimum.
func (s *CheckoutService) quote(sess *checkoutSession, subtotal decimal.Decimal) pricing.Quote {
	coupon := sess.coupon.Applied()
	if coupon != nil && subtotal.LessThan(coupon.MinSubtotal) {
		coupon = nil
	}
	return s.pricing.Quote(subtotal, coupon)
}

func (s *CheckoutService) state(ctx context.Context, userID uuid.UUID, sess *checkoutSession, c *cart.Cart) (*CheckoutState, error) {
	if c == nil {
		var err error
		if c, err = s.carts.LoadCart(ctx, UserOwner(userID)); err != nil {
			return nil, err
		}
	}

	state := &CheckoutState{
		State: sess.flow.State(),
		Cart:  c.Snapshot(),
		Quote: s.quote(sess, c.Subtotal()),
	}
	if sess.pending != nil {
		state.Quote = sess.pending.quote
		state.PaymentIntent = sess.pending.intent
	}

	if addressID := sess.flow.AddressID(); addressID != nil {
		address, err := s.addresses.Get(ctx, userID, *addressID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		state.Address = address
	}
	return state, nil
}

func (s *CheckoutService) withSession(userID uuid.UUID, fn func(*checkoutSession) error) error {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	s.mu.Unlock()
	if !ok {
		return ErrNoCheckout
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess)
}
