// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/repository"
	"github.com/javajoker/storefront-backend/internal/utils"
)

func page[T any](items []T, params utils.PaginationParams) []T {
	if params.Limit < 1 {
		return items
	}
	start := params.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+params.Limit, len(items))
	return items[start:end]
}

// stamp fills the fields the database would.
func stamp(b *models.BaseModel) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now()
	b.CreatedAt, b.UpdatedAt = now, now
}

type Products struct {
	mu       sync.Mutex
	products []models.Product
	nextID   uint64
	// Err, when set, is returned by List.
	Err error
}

func NewProducts(seed ...models.Product) *Products {
	r := &Products{}
	for _, p := range seed {
		r.products = append(r.products, p)
		r.nextID = max(r.nextID, p.ID)
	}
	return r
}

func (r *Products) List(ctx context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return append([]models.Product(nil), r.products...), nil
}

func (r *Products) GetByID(ctx context.Context, id uint64) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Products) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	product.ID = r.nextID
	product.CreatedAt = time.Now()
	r.products = append(r.products, *product)
	return nil
}

func (r *Products) Update(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.products {
		if r.products[i].ID == product.ID {
			r.products[i] = *product
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *Products) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

type Users struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
}

func NewUsers() *Users {
	return &Users{users: map[uuid.UUID]models.User{}}
}

func (r *Users) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	stamp(&user.BaseModel)
	r.users[user.ID] = *user
	return nil
}

func (r *Users) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *Users) List(ctx context.Context, filter repository.UserFilter, params utils.PaginationParams) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.User
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(u.Name+" "+u.Email), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return page(out, params), int64(len(out)), nil
}

func (r *Users) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

type Addresses struct {
	mu        sync.Mutex
	addresses []models.Address
}

func NewAddresses() *Addresses {
	return &Addresses{}
}

func (r *Addresses) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Address{}
	for _, a := range r.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *Addresses) Get(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.addresses {
		if a.ID == id && a.UserID == userID {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Addresses) Create(ctx context.Context, address *models.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if address.IsDefault {
		r.clearDefault(address.UserID)
	}
	stamp(&address.BaseModel)
	r.addresses = append(r.addresses, *address)
	return nil
}

func (r *Addresses) Update(ctx context.Context, address *models.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(address.UserID, address.ID)
	if i < 0 {
		return repository.ErrNotFound
	}
	if address.IsDefault {
		r.clearDefault(address.UserID)
	}
	r.addresses[i] = *address
	return nil
}

func (r *Addresses) Delete(ctx context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(userID, id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.addresses = append(r.addresses[:i], r.addresses[i+1:]...)
	return nil
}

func (r *Addresses) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(userID, id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.clearDefault(userID)
	r.addresses[i].IsDefault = true
	return nil
}

func (r *Addresses) index(userID, id uuid.UUID) int {
	for i, a := range r.addresses {
		if a.ID == id && a.UserID == userID {
			return i
		}
	}
	return -1
}

func (r *Addresses) clearDefault(userID uuid.UUID) {
	for i := range r.addresses {
		if r.addresses[i].UserID == userID {
			r.addresses[i].IsDefault = false
		}
	}
}

type Orders struct {
	mu     sync.Mutex
	orders []models.Order
}

func NewOrders() *Orders {
	return &Orders{}
}

func (r *Orders) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&order.BaseModel)
	for i := range order.Items {
		stamp(&order.Items[i].BaseModel)
		order.Items[i].OrderID = order.ID
	}
	r.orders = append(r.orders, *order)
	return nil
}

func (r *Orders) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Orders) GetByPaymentReference(ctx context.Context, ref string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if ref != "" && o.PaymentReference == ref {
			return &o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Orders) ListByUser(ctx context.Context, userID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	return r.List(ctx, repository.OrderFilter{UserID: &userID}, params)
}

// List returns matching orders newest first.
func (r *Orders) List(ctx context.Context, filter repository.OrderFilter, params utils.PaginationParams) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Order{}
	for i := len(r.orders) - 1; i >= 0; i-- {
		o := r.orders[i]
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		out = append(out, o)
	}
	return page(out, params), int64(len(out)), nil
}

func (r *Orders) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID != id {
			continue
		}
		if r.orders[i].Status != from {
			return repository.ErrStale
		}
		r.orders[i].Status = to
		r.orders[i].StatusUpdatedAt = &at
		return nil
	}
	return repository.ErrNotFound
}

func (r *Orders) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus, at time.Time) error {
	return r.update(id, func(o *models.Order) {
		o.PaymentStatus = status
		if status == models.PaymentStatusPaid {
			o.PaidAt = &at
		}
	})
}

func (r *Orders) Stats(ctx context.Context) (*repository.OrderStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := &repository.OrderStats{
		TotalOrders:    int64(len(r.orders)),
		PaidRevenue:    decimal.Zero,
		OrdersByStatus: map[models.OrderStatus]int64{},
	}
	for _, o := range r.orders {
		if o.PaymentStatus == models.PaymentStatusPaid {
			stats.PaidRevenue = stats.PaidRevenue.Add(o.Total)
		}
		stats.OrdersByStatus[o.Status]++
	}
	return stats, nil
}

// Len reports how many orders were created.
func (r *Orders) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func (r *Orders) update(id uuid.UUID, fn func(*models.Order)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			fn(&r.orders[i])
			return nil
		}
	}
	return repository.ErrNotFound
}

type AuditLogs struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func NewAuditLogs() *AuditLogs {
	return &AuditLogs{}
}

func (r *AuditLogs) Create(ctx context.Context, entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&entry.BaseModel)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *AuditLogs) List(ctx context.Context, params utils.PaginationParams) ([]models.AuditLog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AuditLog, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		out = append(out, r.entries[i])
	}
	return page(out, params), int64(len(out)), nil
}

var (
	_ repository.ProductRepository  = (*Products)(nil)
	_ repository.UserRepository     = (*Users)(nil)
	_ repository.AddressRepository  = (*Addresses)(nil)
	_ repository.OrderRepository    = (*Orders)(nil)
	_ repository.AuditLogRepository = (*AuditLogs)(nil)
)
