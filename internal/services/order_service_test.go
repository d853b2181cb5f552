package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/repository"
	"github.com/javajoker/storefront-backend/internal/repository/repotest"
	"github.com/javajoker/storefront-backend/internal/utils"
)

func placeOrder(t *testing.T, h *harness, userID uuid.UUID, method models.PaymentMethod, status models.PaymentStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:      "SF-20240101-" + uuid.NewString()[:8],
		UserID:           userID,
		Currency:         "INR",
		Total:            money("540"),
		Status:           models.OrderStatusPlaced,
		PaymentMethod:    method,
		PaymentStatus:    status,
		PaymentReference: "pi_" + uuid.NewString(),
	}
	require.NoError(t, h.orders.Create(context.Background(), order))
	return order
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	order := placeOrder(t, h, uuid.New(), models.PaymentMethodCard, models.PaymentStatusPaid)

	_, err := h.orderSvc.UpdateStatus(ctx, order.ID, models.OrderStatusShipped)
	require.ErrorIs(t, err, ErrIllegalOrderMove)
	var moveErr *IllegalTransitionError
	require.ErrorAs(t, err, &moveErr)
	assert.Equal(t, models.OrderStatusPlaced, moveErr.From)

	_, err = h.orderSvc.UpdateStatus(ctx, order.ID, "teleported")
	assert.ErrorIs(t, err, ErrIllegalOrderMove)

	for _, next := range []models.OrderStatus{
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusOutForDelivery,
		models.OrderStatusDelivered,
	} {
		updated, err := h.orderSvc.UpdateStatus(ctx, order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, updated.Status)
	}

	_, err = h.orderSvc.UpdateStatus(ctx, order.ID, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrIllegalOrderMove)
	assert.Len(t, h.notifier.changed, 4)
}

func TestCancellingPaidCardOrderRefunds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := uuid.New()
	order := placeOrder(t, h, userID, models.PaymentMethodCard, models.PaymentStatusPaid)

	cancelled, err := h.orderSvc.CancelOrder(ctx, userID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentStatusRefunded, cancelled.PaymentStatus)
	assert.Equal(t, []string{order.PaymentReference}, h.gateway.refunds)

	_, err = h.orderSvc.CancelOrder(ctx, uuid.New(), order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// racingOrders applies a competing status change right after the order is
// read for the raceOnRead'th time, so the caller's write sees a stale status.
type racingOrders struct {
	*repotest.Orders
	competing  models.OrderStatus
	raceOnRead int
	reads      int
}

func (r *racingOrders) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := r.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.reads++
	if r.reads == r.raceOnRead {
		if err := r.Orders.UpdateStatus(ctx, id, order.Status, r.competing, time.Now()); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func TestConcurrentStatusChangeIsRejected(t *testing.T) {
	ctx := context.Background()

	t.Run("admin move loses to a cancel", func(t *testing.T) {
		h := newHarness(t)
		order := placeOrder(t, h, uuid.New(), models.PaymentMethodCard, models.PaymentStatusPaid)
		racing := &racingOrders{Orders: h.orders, competing: models.OrderStatusCancelled, raceOnRead: 1}
		svc := NewOrderService(racing, h.gateway, h.notifier)

		_, err := svc.UpdateStatus(ctx, order.ID, models.OrderStatusProcessing)
		require.ErrorIs(t, err, ErrIllegalOrderMove)
		var moveErr *IllegalTransitionError
		require.ErrorAs(t, err, &moveErr)
		assert.Equal(t, models.OrderStatusCancelled, moveErr.From)
		assert.Equal(t, models.OrderStatusProcessing, moveErr.To)

		stored, err := h.orders.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, stored.Status)
		assert.Empty(t, h.notifier.changed)
	})

	t.Run("second cancel does not refund twice", func(t *testing.T) {
		h := newHarness(t)
		userID := uuid.New()
		order := placeOrder(t, h, userID, models.PaymentMethodCard, models.PaymentStatusPaid)
		// CancelOrder reads once for ownership and once for the move.
		racing := &racingOrders{Orders: h.orders, competing: models.OrderStatusCancelled, raceOnRead: 2}
		svc := NewOrderService(racing, h.gateway, h.notifier)

		_, err := svc.CancelOrder(ctx, userID, order.ID)
		require.ErrorIs(t, err, ErrIllegalOrderMove)
		assert.Empty(t, h.gateway.refunds)
	})

	t.Run("stale and missing rows", func(t *testing.T) {
		h := newHarness(t)
		order := placeOrder(t, h, uuid.New(), models.PaymentMethodCOD, models.PaymentStatusPending)

		err := h.orders.UpdateStatus(ctx, order.ID, models.OrderStatusProcessing, models.OrderStatusShipped, time.Now())
		assert.ErrorIs(t, err, repository.ErrStale)
		err = h.orders.UpdateStatus(ctx, uuid.New(), models.OrderStatusPlaced, models.OrderStatusProcessing, time.Now())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestDeliveredCashOrderIsPaid(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	order := placeOrder(t, h, uuid.New(), models.PaymentMethodCOD, models.PaymentStatusPending)

	for _, next := range []models.OrderStatus{
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusOutForDelivery,
		models.OrderStatusDelivered,
	} {
		_, err := h.orderSvc.UpdateStatus(ctx, order.ID, next)
		require.NoError(t, err)
	}

	stored, err := h.orderSvc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	assert.NotNil(t, stored.PaidAt)
	assert.Empty(t, h.gateway.refunds)
}

func TestOrderHistoryIsPerUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	placeOrder(t, h, alice, models.PaymentMethodCard, models.PaymentStatusPaid)
	placeOrder(t, h, alice, models.PaymentMethodCOD, models.PaymentStatusPending)
	bobs := placeOrder(t, h, bob, models.PaymentMethodCard, models.PaymentStatusPaid)

	orders, total, err := h.orderSvc.ListUserOrders(ctx, alice, utils.NewPaginationParams(1, 10, "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, orders, 2)

	_, err = h.orderSvc.GetUserOrder(ctx, alice, bobs.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	all, total, err := h.orderSvc.ListOrders(ctx, repository.OrderFilter{Status: models.OrderStatusPlaced}, utils.NewPaginationParams(1, 2, "", "", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 2)
}
