// internal/router/services.go
package router

import (
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/catalog"
	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/kvstore"
	"github.com/javajoker/storefront-backend/internal/repository"
	"github.com/javajoker/storefront-backend/internal/services"
)

type Repositories struct {
	Users     repository.UserRepository
	Addresses repository.AddressRepository
	Products  repository.ProductRepository
	Orders    repository.OrderRepository
	AuditLogs repository.AuditLogRepository
}

func GormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:     repository.NewUserRepository(db),
		Addresses: repository.NewAddressRepository(db),
		Products:  repository.NewProductRepository(db),
		Orders:    repository.NewOrderRepository(db),
		AuditLogs: repository.NewAuditLogRepository(db),
	}
}

// Services is the wired application layer the handlers call into.
type Services struct {
	Auth     *services.AuthService
	User     *services.UserService
	Product  *services.ProductService
	Cart     *services.CartService
	Checkout *services.CheckoutService
	Order    *services.OrderService
	Admin    *services.AdminService
	Storage  *services.StorageService
}

// NewServices wires the services over repos. Carts and wishlists live in
// store and card payments go through gateway.
func NewServices(repos Repositories, store kvstore.Store, gateway services.PaymentGateway, cfg *config.Config) (*Services, error) {
	calc, err := cfg.Checkout.Pricing()
	if err != nil {
		return nil, err
	}

	storage, err := services.NewStorageService(cfg.AWS)
	if err != nil {
		return nil, err
	}

	notifier := services.NewNotificationService(repos.Users, cfg)
	products := services.NewProductService(repos.Products, catalog.NewStore(), cfg.Checkout.PageSize)
	carts := services.NewCartService(store, products, cfg.Checkout.GuestCartTTL())

	return &Services{
		Auth:     services.NewAuthService(repos.Users, cfg),
		User:     services.NewUserService(repos.Users, repos.Addresses),
		Product:  products,
		Cart:     carts,
		Checkout: services.NewCheckoutService(carts, repos.Addresses, repos.Orders, gateway, notifier, calc, cfg.Checkout.Currency),
		Order:    services.NewOrderService(repos.Orders, gateway, notifier),
		Admin:    services.NewAdminService(repos.Users, repos.Products, repos.Orders, repos.AuditLogs),
		Storage:  storage,
	}, nil
}
