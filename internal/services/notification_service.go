// internal/services/notification_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/repository"
)

// OrderNotifier tells customers about their orders.
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, order *models.Order) error
	OrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type NotificationService struct {
	users    repository.UserRepository
	email    config.EmailConfig
	baseURL  string
	sendMail sendMailFunc
}

func NewNotificationService(users repository.UserRepository, cfg *config.Config) *NotificationService {
	return &NotificationService{
		users:    users,
		email:    cfg.Email,
		baseURL:  cfg.Frontend.BaseURL,
		sendMail: smtp.SendMail,
	}
}

func (s *NotificationService) OrderPlaced(ctx context.Context, order *models.Order) error {
	user, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		return fmt.Errorf("failed to load order owner: %w", err)
	}

	data := map[string]interface{}{
		"Name":        user.Name,
		"OrderNumber": order.OrderNumber,
		"Items":       order.Items,
		"Subtotal":    order.Subtotal.StringFixed(2),
		"Discount":    order.Discount.StringFixed(2),
		"DeliveryFee": order.DeliveryFee.StringFixed(2),
		"Tax":         order.Tax.StringFixed(2),
		"Total":       order.Total.StringFixed(2),
		"Currency":    order.Currency,
		"Payment":     order.PaymentMethod,
		"Address":     order.ShippingAddress,
		"OrderURL":    fmt.Sprintf("%s/profile/orders/%s", s.baseURL, order.ID),
	}

	body, err := renderTemplate(orderPlacedTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, "Order Confirmed - "+order.OrderNumber, body)
}

func (s *NotificationService) OrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error {
	user, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		return fmt.Errorf("failed to load order owner: %w", err)
	}

	data := map[string]interface{}{
		"Name":        user.Name,
		"OrderNumber": order.OrderNumber,
		"OldStatus":   previous,
		"NewStatus":   order.Status,
		"OrderURL":    fmt.Sprintf("%s/profile/orders/%s", s.baseURL, order.ID),
	}

	body, err := renderTemplate(orderStatusTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, "Order Update - "+order.OrderNumber, body)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.email.SMTPHost == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("SMTP not configured, email skipped")
		return nil
	}

	auth := smtp.PlainAuth("", s.email.SMTPUsername, s.email.SMTPPassword, s.email.SMTPHost)

	from := s.email.FromEmail
	if s.email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.email.FromName, s.email.FromEmail)
	}
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		from, to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.email.SMTPHost, s.email.SMTPPort)
	return s.sendMail(addr, auth, s.email.FromEmail, []string{to}, msg)
}

func renderTemplate(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var orderPlacedTemplate = template.Must(template.New("order_placed").Parse(`
<!DOCTYPE html>
<html>
<body>
	<h2>Thank you for your order, {{.Name}}!</h2>
	<p>Your order <strong>{{.OrderNumber}}</strong> has been placed.</p>
	<table>
		{{range .Items}}
		<tr><td>{{.Name}} x {{.Quantity}}</td><td>{{$.Currency}} {{.LineTotal.StringFixed 2}}</td></tr>
		{{end}}
		<tr><td>Subtotal</td><td>{{.Currency}} {{.Subtotal}}</td></tr>
		<tr><td>Discount</td><td>-{{.Currency}} {{.Discount}}</td></tr>
		<tr><td>Delivery</td><td>{{.Currency}} {{.DeliveryFee}}</td></tr>
		<tr><td>Tax</td><td>{{.Currency}} {{.Tax}}</td></tr>
		<tr><td><strong>Total</strong></td><td><strong>{{.Currency}} {{.Total}}</strong></td></tr>
	</table>
	<p>Payment: {{.Payment}}</p>
	<p>Shipping to {{.Address.Name}}, {{.Address.Street}}, {{.Address.City}}, {{.Address.State}} {{.Address.PostalCode}}</p>
	<a href="{{.OrderURL}}">View Order</a>
</body>
</html>`))

var orderStatusTemplate = template.Must(template.New("order_status").Parse(`
<!DOCTYPE html>
<html>
<body>
	<h2>Order Update</h2>
	<p>Hello {{.Name}},</p>
	<p>Your order <strong>{{.OrderNumber}}</strong> moved from {{.OldStatus}} to <strong>{{.NewStatus}}</strong>.</p>
	<a href="{{.OrderURL}}">Track Order</a>
</body>
</html>`))
