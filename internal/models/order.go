// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "placed"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusReturned       OrderStatus = "returned"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:         {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing:     {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:        {OrderStatusOutForDelivery},
	OrderStatusOutForDelivery: {OrderStatusDelivered},
	OrderStatusDelivered:      {OrderStatusReturned},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusOutForDelivery, OrderStatusDelivered,
		OrderStatusCancelled, OrderStatusReturned:
		return true
	}
	return false
}

// IsTerminal reports whether no further status change is possible.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	BaseModel
	OrderNumber      string          `json:"order_number" gorm:"size:32;uniqueIndex;not null"`
	UserID           uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	Currency         string          `json:"currency" gorm:"size:3;not null"`
	Subtotal         decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Discount         decimal.Decimal `json:"discount" gorm:"type:decimal(12,2);not null"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee" gorm:"type:decimal(12,2);not null"`
	Tax              decimal.Decimal `json:"tax" gorm:"type:decimal(12,2);not null"`
	Total            decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	CouponCode       string          `json:"coupon_code,omitempty" gorm:"size:32"`
	Status           OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'placed';index"`
	ShippingAddress  AddressSnapshot `json:"shipping_address" gorm:"type:jsonb"`
	PaymentMethod    PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);not null"`
	PaymentStatus    PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentReference string          `json:"payment_reference,omitempty" gorm:"size:255;index"`
	PaidAt           *time.Time      `json:"paid_at"`
	StatusUpdatedAt  *time.Time      `json:"status_updated_at"`

	// Relationships
	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	User  *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uint64          `json:"product_id" gorm:"not null;index"`
	Name      string          `json:"name" gorm:"size:255;not null"`
	Image     string          `json:"image,omitempty" gorm:"type:text"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	LineTotal decimal.Decimal `json:"line_total" gorm:"type:decimal(12,2);not null"`
}
