// internal/services/admin_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/repository"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type AdminService struct {
	users    repository.UserRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	audit    repository.AuditLogRepository
}

type AdminDashboardStats struct {
	TotalUsers     int64                        `json:"total_users"`
	TotalProducts  int64                        `json:"total_products"`
	TotalOrders    int64                        `json:"total_orders"`
	Revenue        decimal.Decimal              `json:"revenue"`
	OrdersByStatus map[models.OrderStatus]int64 `json:"orders_by_status"`
}

type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,oneof=active suspended"`
	Reason string            `json:"reason" validate:"max=500"`
}

var ErrAdminProtected = errors.New("cannot change the status of an admin account")

func NewAdminService(
	users repository.UserRepository,
	products repository.ProductRepository,
	orders repository.OrderRepository,
	audit repository.AuditLogRepository,
) *AdminService {
	return &AdminService{
		users:    users,
		products: products,
		orders:   orders,
		audit:    audit,
	}
}

// GetDashboardStats counts users, products and orders. Revenue only
// includes paid orders.
func (s *AdminService) GetDashboardStats(ctx context.Context) (*AdminDashboardStats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}

	orderStats, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, err
	}

	return &AdminDashboardStats{
		TotalUsers:     users,
		TotalProducts:  products,
		TotalOrders:    orderStats.TotalOrders,
		Revenue:        orderStats.PaidRevenue,
		OrdersByStatus: orderStats.OrdersByStatus,
	}, nil
}

func (s *AdminService) GetUsers(ctx context.Context, filter repository.UserFilter, params utils.PaginationParams) ([]models.User, int64, error) {
	return s.users.List(ctx, filter, params)
}

func (s *AdminService) UpdateUserStatus(ctx context.Context, userID uuid.UUID, req *UpdateUserStatusRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.IsAdmin() {
		return nil, ErrAdminProtected
	}

	oldStatus := user.Status
	user.Status = req.Status
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"from":    oldStatus,
		"to":      req.Status,
		"reason":  req.Reason,
	}).Info("User status updated")

	return user, nil
}

func (s *AdminService) GetAuditLogs(ctx context.Context, params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	return s.audit.List(ctx, params)
}

// RecordAudit stores one admin action. Failures are logged, never returned
// to the caller.
func (s *AdminService) RecordAudit(ctx context.Context, entry *models.AuditLog) {
	if err := s.audit.Create(ctx, entry); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":   entry.Action,
			"resource": entry.ResourceType,
		}).Error("Failed to write audit log")
	}
}
