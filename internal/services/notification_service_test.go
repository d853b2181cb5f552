package services

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/repository/repotest"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func TestOrderEmails(t *testing.T) {
	users := repotest.NewUsers()
	ctx := context.Background()

	user := &models.User{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, users.Create(ctx, user))

	cfg := testConfig()
	cfg.Email.SMTPHost = "smtp.test"
	cfg.Email.SMTPPort = "2525"

	var sent []capturedMail
	svc := NewNotificationService(users, cfg)
	svc.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, capturedMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}

	order := &models.Order{
		OrderNumber: "SF-20240101-ABCDEFGH",
		UserID:      user.ID,
		Currency:    "INR",
		Subtotal:    money("1000"),
		Discount:    money("100"),
		Total:       money("900"),
		Status:      models.OrderStatusPlaced,
		Items: []models.OrderItem{
			{Name: "Cotton Kurta", Quantity: 2, UnitPrice: money("500"), LineTotal: money("1000")},
		},
		ShippingAddress: models.AddressSnapshot{Name: "Asha", City: "Pune"},
	}

	require.NoError(t, svc.OrderPlaced(ctx, order))
	require.Len(t, sent, 1)
	assert.Equal(t, "smtp.test:2525", sent[0].addr)
	assert.Equal(t, "orders@shop.test", sent[0].from)
	assert.Equal(t, []string{"asha@example.com"}, sent[0].to)
	assert.Contains(t, sent[0].msg, "Subject: Order Confirmed - SF-20240101-ABCDEFGH")
	assert.Contains(t, sent[0].msg, "Cotton Kurta x 2")
	assert.Contains(t, sent[0].msg, "INR 900.00")

	order.Status = models.OrderStatusShipped
	require.NoError(t, svc.OrderStatusChanged(ctx, order, models.OrderStatusProcessing))
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1].msg, "moved from processing to <strong>shipped</strong>")
}

func TestEmailSkippedWithoutSMTP(t *testing.T) {
	users := repotest.NewUsers()
	ctx := context.Background()
	user := &models.User{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, users.Create(ctx, user))

	svc := NewNotificationService(users, testConfig())
	svc.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("no mail expected")
		return nil
	}

	assert.NoError(t, svc.OrderPlaced(ctx, &models.Order{UserID: user.ID, OrderNumber: "SF-1"}))
}
