package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/checkout"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/pricing"
)

// toPayment walks a fresh checkout up to the payment step.
func toPayment(t *testing.T, h *harness, userID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	state, err := h.checkout.Begin(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, state.AddressID, "default address is preselected")

	_, err = h.checkout.Next(ctx, userID)
	require.NoError(t, err)
	state, err = h.checkout.Next(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, checkout.StepPayment, state.Step)
}

func TestCheckoutWithWelcomeCoupon(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID, addressID := h.newShopper(t)

	_, err := h.carts.AddItem(ctx, UserOwner(userID), 1, 2)
	require.NoError(t, err)

	state, err := h.checkout.Begin(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepAddress, state.Step)
	assert.Equal(t, addressID, *state.AddressID)

	_, err = h.checkout.Next(ctx, userID)
	require.NoError(t, err)

	state, err = h.checkout.ApplyCoupon(ctx, userID, "welcome10")
	require.NoError(t, err)
	assert.True(t, money("1000").Equal(state.Quote.Subtotal))
	assert.True(t, money("100").Equal(state.Quote.Discount))
	assert.True(t, state.Quote.DeliveryFee.IsZero())
	assert.True(t, money("900").Equal(state.Quote.Total))

	_, err = h.checkout.Next(ctx, userID)
	require.NoError(t, err)

	state, err = h.checkout.StartPayment(ctx, userID, models.PaymentMethodCard)
	require.NoError(t, err)
	require.NotNil(t, state.PaymentIntent)
	assert.Equal(t, int64(90000), state.PaymentIntent.Amount)
	assert.Equal(t, "inr", state.PaymentIntent.Currency)
	assert.Equal(t, userID.String(), h.gateway.intents[state.PaymentIntent.ID].Metadata["user_id"])

	h.gateway.succeed(state.PaymentIntent.ID)

	order, err := h.checkout.ConfirmPayment(ctx, userID, state.PaymentIntent.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPlaced, order.Status)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.True(t, money("900").Equal(order.Total))
	assert.Equal(t, "WELCOME10", order.CouponCode)
	assert.Equal(t, "Pune", order.ShippingAddress.City)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	snap, err := h.carts.GetCart(ctx, UserOwner(userID))
	require.NoError(t, err)
	assert.Empty(t, snap.Items)

	final, err := h.checkout.State(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepConfirmation, final.Step)
	assert.Equal(t, order.ID, *final.OrderID)
	assert.Equal(t, []uuid.UUID{order.ID}, h.notifier.placed)
}

func TestConfirmPaymentTwiceClearsCartOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID, _ := h.newShopper(t)

	_, err := h.carts.AddItem(ctx, UserOwner(userID), 1, 1)
	require.NoError(t, err)
	toPayment(t, h, userID)

	state, err := h.checkout.StartPayment(ctx, userID, models.PaymentMethodCard)
	require.NoError(t, err)
	intentID := state.PaymentIntent.ID
	h.gateway.succeed(intentID)

	first, err := h.checkout.ConfirmPayment(ctx, userID, intentID)
	require.NoError(t, err)

	// The shopper keeps browsing before the duplicate confirmation arrives.
	_, err = h.carts.AddItem(ctx, UserOwner(userID), 3, 1)
	require.NoError(t, err)

	second, err := h.checkout.ConfirmPayment(ctx, userID, intentID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, h.orders.Len())

	snap, err := h.carts.GetCart(ctx, UserOwner(userID))
	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, uint64(3), snap.Items[0].ProductID)
}

func TestRepeatedStartPaymentKeepsEarlierIntents(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID, _ := h.newShopper(t)

	_, err := h.carts.AddItem(ctx, UserOwner(userID), 1, 1)
	require.NoError(t, err)
	toPayment(t, h, userID)

	first, err := h.checkout.StartPayment(ctx, userID, models.PaymentMethodCard)
	require.NoError(t, err)
	again, err := h.checkout.StartPayment(ctx, userID, models.PaymentMethodCard)
	require.NoError(t, err)
	assert.Equal(t, first.PaymentIntent.ID, again.PaymentIntent.ID)
	assert.Equal(t, 1, h.gateway.seq)

	// A cart change needs a fresh intent for the new amount.
	_, err = h.carts.AddItem(ctx, UserOwner(userID), 3, 1)
	require.NoError(t, err)
	changed, err := h.checkout.StartPayment(ctx, userID, models.PaymentMethodCard)
	require.NoError(t, err)
	assert.NotEqual(t, first.PaymentIntent.ID, changed.PaymentIntent.ID)

	// The shopper pays the first intent anyway.
	h.gateway.succeed(first.PaymentIntent.ID)
	order, err := h.checkout.ConfirmPayment(ctx, userID, first.PaymentIntent.ID)
	require.NoError(t, err)
	assert.True(t, first.Quote.Total.Equal(order.Total))
	require.Len(t, order.Items, 1)
	assert.Equal(t, uint64(1), order.Items[0].ProductID)

	_, err = h.checkout.ConfirmPayment(ctx, userID, changed.PaymentIntent.ID)
	assert.Error(t, err)
	assert.Equal(t, 1, h.orders.Len())
}

func TestDeclinedPaymentStaysOnPayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID, _ := h.newShopper(t)

	_, err := h.carts.AddItem(ctx, UserOwner(userID), 1, 1)
	require.NoError(t, err)
	toPayment(t, h, userID)

	state, err := h.checkout.StartPayment(ctx, userID, models.PaymentMethodCard)
	require.NoError(t, err)
	h.gateway.decline(state.PaymentIntent.ID, "Your card was declined.")

	_, err = h.checkout.ConfirmPayment(ctx, userID, state.PaymentIntent.ID)
	require.ErrorIs(t, err, ErrPaymentFailed)
	assert.Contains(t, err.Error(), "Your card was declined.")

	state, err = h.checkout.State(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepPayment, state.Step)
	assert.Equal(t, "Your card was declined.", state.PaymentError)
	assert.Equal(t, 1, state.Cart.ItemCount)
	assert.Zero(t, h.orders.Len())

	// A later success on the same intent still goes through.
	h.gateway.succeed(state.PaymentIntent.ID)
	order, err := h.checkout.ConfirmPayment(ctx, userID, state.PaymentIntent.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
}

func TestReportPaymentFailure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID, _ := h.newShopper(t)

	_, err := h.carts.AddItem(ctx, UserOwner(userID), 1, 1)
	require.NoError(t, err)

	_, err = h.checkout.Begin(ctx, userID)
	require.NoError(t, err)
	_, err = h.checkout.ReportPaymentFailure(ctx, userID, "declined")
	assert.ErrorIs(t, err, checkout.ErrNotInPayment)

	toPayment(t, h, userID)
	state, err := h.checkout.ReportPaymentFailure(ctx, userID, "declined")
	require.NoError(t, err)
	assert.Equal(t, checkout.StepPayment, state.Step)
	assert.Equal(t, "declined", state.PaymentError)
}

func TestConfirmRejectsAmountMismatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID, _ := h.newShopper(t)

	_, err := h.carts.AddItem(ctx, UserOwner(userID), 1, 1)
	require.NoError(t, err)
	toPayment(t, h, userID)

	state, err := h.checkout.StartPayment(ctx, userID, models.PaymentMethodCard)
	require.NoError(t, err)
	h.gateway.set(state.PaymentIntent.ID, func(pi *PaymentIntent) {
		pi.Status = IntentSucceeded
		pi.Amount = 100
	})

	_, err = h.checkout.ConfirmPayment(ctx, userID, state.PaymentIntent.ID)
	assert.ErrorIs(t, err, ErrPaymentMismatch)
	assert.Zero(t, h.orders.Len())

	_, err = h.checkout.ConfirmPayment(ctx, userID, "pi_unknown")
	assert.ErrorIs(t, err, ErrPaymentMismatch)
}

func TestRejectedCouponKeepsPrevious(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID, _ := h.newShopper(t)

	_, err := h.carts.AddItem(ctx, UserOwner(userID), 1, 2)
	require.NoError(t, err)
	_, err = h.checkout.Begin(ctx, userID)
	require.NoError(t, err)

	_, err = h.checkout.ApplyCoupon(ctx, userID, "WELCOME10")
	require.NoError(t, err)

	_, err = h.checkout.ApplyCoupon(ctx, userID, "BOGUS")
	var couponErr *pricing.CouponError
	require.True(t, errors.As(err, &couponErr))
	assert.Equal(t, pricing.ReasonUnknown, couponErr.Reason)

	_, err = h.checkout.ApplyCoupon(ctx, userID, "FESTIVE15")
	require.True(t, errors.As(err, &couponErr))
	assert.Equal(t, pricing.ReasonMinNotReached, couponErr.Reason)

	state, err := h.checkout.State(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", state.Quote.CouponCode)

	state, err = h.checkout.RemoveCoupon(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, state.Quote.CouponCode)
	assert.True(t, money("1000").Equal(state.Quote.Total))
}

func TestCashOnDeliverySkipsGateway(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID, _ := h.newShopper(t)

	_, err := h.carts.AddItem(ctx, UserOwner(userID), 3, 2)
	require.NoError(t, err)
	toPayment(t, h, userID)

	state, err := h.checkout.StartPayment(ctx, userID, models.PaymentMethodCOD)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepConfirmation, state.Step)
	assert.Empty(t, h.gateway.intents)

	order, err := h.orderSvc.GetUserOrder(ctx, userID, *state.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodCOD, order.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	// 200 is under the free delivery threshold.
	assert.True(t, money("240").Equal(order.Total))
}

func TestBackFromPaymentDropsIntent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID, _ := h.newShopper(t)

	_, err := h.carts.AddItem(ctx, UserOwner(userID), 1, 1)
	require.NoError(t, err)
	toPayment(t, h, userID)

	state, err := h.checkout.StartPayment(ctx, userID, models.PaymentMethodCard)
	require.NoError(t, err)
	intentID := state.PaymentIntent.ID

	state, err = h.checkout.Back(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, checkout.StepReview, state.Step)
	assert.Nil(t, state.PaymentIntent)

	h.gateway.succeed(intentID)
	_, err = h.checkout.ConfirmPayment(ctx, userID, intentID)
	assert.ErrorIs(t, err, checkout.ErrNotInPayment)
}

func TestCheckoutPreconditions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID, _ := h.newShopper(t)

	_, err := h.checkout.State(ctx, userID)
	assert.ErrorIs(t, err, ErrNoCheckout)

	_, err = h.checkout.Begin(ctx, userID)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = h.carts.AddItem(ctx, UserOwner(userID), 1, 1)
	require.NoError(t, err)
	_, err = h.checkout.Begin(ctx, userID)
	require.NoError(t, err)

	_, err = h.checkout.StartPayment(ctx, userID, models.PaymentMethodCard)
	assert.ErrorIs(t, err, checkout.ErrNotInPayment)

	_, err = h.checkout.SelectAddress(ctx, userID, uuid.New())
	assert.ErrorIs(t, err, ErrAddressNotFound)
}
