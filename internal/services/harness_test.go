package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/catalog"
	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/kvstore"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/pricing"
	"github.com/javajoker/storefront-backend/internal/repository/repotest"
)

type fakeGateway struct {
	mu       sync.Mutex
	intents  map[string]*PaymentIntent
	refunds  []string
	seq      int
	failWith error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: map[string]*PaymentIntent{}}
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (*PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return nil, g.failWith
	}

	g.seq++
	intent := &PaymentIntent{
		ID:           fmt.Sprintf("pi_test_%d", g.seq),
		ClientSecret: fmt.Sprintf("pi_test_%d_secret", g.seq),
		Status:       IntentRequiresPayment,
		Amount:       MinorUnits(amount),
		Currency:     strings.ToLower(currency),
		Metadata:     metadata,
	}
	g.intents[intent.ID] = intent
	copied := *intent
	return &copied, nil
}

func (g *fakeGateway) GetIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[id]
	if !ok {
		return nil, fmt.Errorf("no such payment intent %s", id)
	}
	copied := *intent
	return &copied, nil
}

func (g *fakeGateway) Refund(ctx context.Context, intentID string, amount decimal.Decimal) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunds = append(g.refunds, intentID)
	return nil
}

func (g *fakeGateway) set(id string, fn func(*PaymentIntent)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.intents[id])
}

func (g *fakeGateway) succeed(id string) {
	g.set(id, func(pi *PaymentIntent) { pi.Status = IntentSucceeded })
}

func (g *fakeGateway) decline(id, msg string) {
	g.set(id, func(pi *PaymentIntent) {
		pi.Status = IntentRequiresPayment
		pi.FailureMessage = msg
	})
}

type fakeNotifier struct {
	mu      sync.Mutex
	placed  []uuid.UUID
	changed []models.OrderStatus
}

func (n *fakeNotifier) OrderPlaced(ctx context.Context, order *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, order.ID)
	return nil
}

func (n *fakeNotifier) OrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, order.Status)
	return nil
}

type harness struct {
	mr        *miniredis.Miniredis
	products  *repotest.Products
	users     *repotest.Users
	addresses *repotest.Addresses
	orders    *repotest.Orders
	audit     *repotest.AuditLogs
	gateway   *fakeGateway
	notifier  *fakeNotifier

	productSvc *ProductService
	carts      *CartService
	checkout   *CheckoutService
	orderSvc   *OrderService
}

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func testProducts() []models.Product {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Product{
		{ID: 1, Name: "Cotton Kurta", Price: money("500"), Category: "clothing", Stock: 10, Images: []string{"kurta.jpg"}, CreatedAt: created},
		{ID: 2, Name: "Brass Diya", Price: money("200"), Category: "home", Stock: 0, CreatedAt: created},
		{ID: 3, Name: "Desk Lamp", Price: money("100"), Category: "home", Stock: 5, CreatedAt: created},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	h := &harness{
		mr:        mr,
		products:  repotest.NewProducts(testProducts()...),
		users:     repotest.NewUsers(),
		addresses: repotest.NewAddresses(),
		orders:    repotest.NewOrders(),
		audit:     repotest.NewAuditLogs(),
		gateway:   newFakeGateway(),
		notifier:  &fakeNotifier{},
	}

	calc := pricing.Calculator{
		DeliveryFee:           money("40"),
		FreeDeliveryThreshold: money("499"),
		TaxPercent:            decimal.Zero,
	}

	h.productSvc = NewProductService(h.products, catalog.NewStore(), 12)
	h.carts = NewCartService(kvstore.NewRedisStore(client, ""), h.productSvc, time.Hour)
	h.checkout = NewCheckoutService(h.carts, h.addresses, h.orders, h.gateway, h.notifier, calc, "INR")
	h.orderSvc = NewOrderService(h.orders, h.gateway, h.notifier)
	return h
}

// newShopper registers a user with one default address.
func (h *harness) newShopper(t *testing.T) (uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Name: "Asha", Email: uuid.NewString() + "@example.com", Role: models.UserRoleUser, Status: models.UserStatusActive}
	require.NoError(t, h.users.Create(ctx, user))

	address := &models.Address{
		UserID:     user.ID,
		Name:       "Asha",
		Phone:      "9876543210",
		Street:     "12 MG Road",
		City:       "Pune",
		State:      "Maharashtra",
		PostalCode: "411001",
		IsDefault:  true,
	}
	require.NoError(t, h.addresses.Create(ctx, address))
	return user.ID, address.ID
}

func testConfig() *config.Config {
	return &config.Config{
		JWT:      config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 1, RefreshTokenTTL: 24},
		Frontend: config.FrontendConfig{BaseURL: "http://shop.test"},
		Email:    config.EmailConfig{FromEmail: "orders@shop.test", FromName: "Shop"},
	}
}
