// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/repository"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type OrderService struct {
	orders   repository.OrderRepository
	gateway  PaymentGateway
	notifier OrderNotifier
	now      func() time.Time
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// IllegalTransitionError names the rejected status change.
type IllegalTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalOrderMove
}

func NewOrderService(orders repository.OrderRepository, gateway PaymentGateway, notifier OrderNotifier) *OrderService {
	return &OrderService{
		orders:   orders,
		gateway:  gateway,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	return s.orders.ListByUser(ctx, userID, params)
}

// GetUserOrder returns one of userID's orders. Other users' orders are
// reported as not found.
func (s *OrderService) GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter, params utils.PaginationParams) ([]models.Order, int64, error) {
	return s.orders.List(ctx, filter, params)
}

// CancelOrder lets a customer cancel an order that has not shipped.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if _, err := s.GetUserOrder(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return s.UpdateStatus(ctx, orderID, models.OrderStatusCancelled)
}

// UpdateStatus moves an order along its lifecycle. Cancelling a paid card
// order refunds it; delivering a cash order marks it paid.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	if !status.Valid() || !previous.CanTransitionTo(status) {
		return nil, &IllegalTransitionError{From: previous, To: status}
	}

	now := s.now()
	if err := s.orders.UpdateStatus(ctx, orderID, previous, status, now); err != nil {
		if errors.Is(err, repository.ErrStale) {
			return nil, s.staleMove(ctx, orderID, previous, status)
		}
		return nil, err
	}
	order.Status = status
	order.StatusUpdatedAt = &now

	switch {
	case status == models.OrderStatusCancelled && order.PaymentStatus == models.PaymentStatusPaid &&
		order.PaymentMethod == models.PaymentMethodCard:
		s.refund(ctx, order, now)
	case status == models.OrderStatusDelivered && order.PaymentMethod == models.PaymentMethodCOD:
		if err := s.orders.UpdatePaymentStatus(ctx, orderID, models.PaymentStatusPaid, now); err != nil {
			logrus.WithError(err).WithField("order_id", orderID).Error("Failed to mark cash order paid")
		} else {
			order.PaymentStatus = models.PaymentStatusPaid
			order.PaidAt = &now
		}
	}

	logrus.WithFields(logrus.Fields{
		"order_id": orderID,
		"from":     previous,
		"to":       status,
	}).Info("Order status updated")

	if s.notifier != nil {
		if err := s.notifier.OrderStatusChanged(ctx, order, previous); err != nil {
			logrus.WithError(err).WithField("order_id", orderID).Warn("Order status email failed")
		}
	}

	return order, nil
}

// staleMove reports a status change that lost a race with another update,
// naming the status the order actually holds now.
func (s *OrderService) staleMove(ctx context.Context, orderID uuid.UUID, read, to models.OrderStatus) error {
	from := read
	if current, err := s.orders.GetByID(ctx, orderID); err == nil {
		from = current.Status
	}
	logrus.WithFields(logrus.Fields{
		"order_id": orderID,
		"read":     read,
		"current":  from,
		"to":       to,
	}).Warn("Order status changed concurrently")
	return &IllegalTransitionError{From: from, To: to}
}

func (s *OrderService) refund(ctx context.Context, order *models.Order, now time.Time) {
	log := logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"intent":   order.PaymentReference,
	})

	if err := s.gateway.Refund(ctx, order.PaymentReference, order.Total); err != nil {
		log.WithError(err).Error("Refund failed for cancelled order")
		return
	}
	if err := s.orders.UpdatePaymentStatus(ctx, order.ID, models.PaymentStatusRefunded, now); err != nil {
		log.WithError(err).Error("Refund issued but payment status not updated")
		return
	}
	order.PaymentStatus = models.PaymentStatusRefunded
	log.Info("Cancelled order refunded")
}
