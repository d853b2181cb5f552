// Package cart holds a shopper's cart and mirrors it to the key/value store
// after every change.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/kvstore"
	"github.com/javajoker/storefront-backend/internal/models"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Item is a product snapshot taken when it was added, plus a quantity.
type Item struct {
	ProductID uint64           `json:"product_id"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	MRP       *decimal.Decimal `json:"mrp,omitempty"`
	Brand     *string          `json:"brand,omitempty"`
	Image     string           `json:"image,omitempty"`
	Stock     int              `json:"stock"`
	Quantity  int              `json:"quantity"`
}

func NewItem(p models.Product) Item {
	return Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		MRP:       p.MRP,
		Brand:     p.Brand,
		Image:     p.Image(),
		Stock:     p.Stock,
	}
}

func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Snapshot struct {
	Items     []Item          `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Key is the store key holding owner's cart.
func Key(owner string) string {
	return owner + ":cart"
}

type Cart struct {
	store kvstore.Store
	key   string
	ttl   time.Duration
	items []Item

	subs    map[int]func(Snapshot)
	nextSub int
}

// Load reads owner's cart from store. A missing key is an empty cart, and so
// is a payload that no longer decodes; it gets overwritten on the next
// change. A ttl of zero keeps the cart until it is cleared.
func Load(ctx context.Context, store kvstore.Store, owner string, ttl time.Duration) (*Cart, error) {
	c := &Cart{
		store: store,
		key:   Key(owner),
		ttl:   ttl,
		subs:  map[int]func(Snapshot){},
	}

	data, err := store.Get(ctx, c.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if err := json.Unmarshal(data, &c.items); err != nil {
		logrus.WithFields(logrus.Fields{
			"key":   c.key,
			"error": err,
		}).Warn("Discarding unreadable cart")
		c.items = nil
	}
	return c, nil
}

// Add puts quantity units of item in the cart, merging with an existing
// entry for the same product.
func (c *Cart) Add(ctx context.Context, item Item, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	items := slices.Clone(c.items)
	if i := c.index(item.ProductID); i >= 0 {
		items[i].Quantity += quantity
	} else {
		item.Quantity = quantity
		items = append(items, item)
	}
	return c.commit(ctx, items)
}

// Remove drops productID from the cart. Removing an absent product changes
// nothing.
func (c *Cart) Remove(ctx context.Context, productID uint64) error {
	i := c.index(productID)
	if i < 0 {
		return nil
	}
	return c.commit(ctx, slices.Delete(slices.Clone(c.items), i, i+1))
}

// SetQuantity overwrites the quantity of productID. A quantity of zero or
// less removes it.
func (c *Cart) SetQuantity(ctx context.Context, productID uint64, quantity int) error {
	if quantity <= 0 {
		return c.Remove(ctx, productID)
	}

	i := c.index(productID)
	if i < 0 {
		return nil
	}

	items := slices.Clone(c.items)
	items[i].Quantity = quantity
	return c.commit(ctx, items)
}

// Merge adds every entry of other into the cart, summing quantities of
// products present in both.
func (c *Cart) Merge(ctx context.Context, other []Item) error {
	if len(other) == 0 {
		return nil
	}

	items := slices.Clone(c.items)
	for _, item := range other {
		if item.Quantity < 1 {
			continue
		}
		if i := slices.IndexFunc(items, func(it Item) bool { return it.ProductID == item.ProductID }); i >= 0 {
			items[i].Quantity += item.Quantity
		} else {
			items = append(items, item)
		}
	}
	return c.commit(ctx, items)
}

// Clear empties the cart and deletes its stored copy.
func (c *Cart) Clear(ctx context.Context) error {
	if err := c.store.Delete(ctx, c.key); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	c.items = nil
	c.notify()
	return nil
}

func (c *Cart) Items() []Item {
	if c.items == nil {
		return []Item{}
	}
	return slices.Clone(c.items)
}

func (c *Cart) Get(productID uint64) (Item, bool) {
	if i := c.index(productID); i >= 0 {
		return c.items[i], true
	}
	return Item{}, false
}

func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) Snapshot() Snapshot {
	return Snapshot{
		Items:     c.Items(),
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal(),
	}
}

// Subscribe registers fn to run after every change. The returned function
// removes it.
func (c *Cart) Subscribe(fn func(Snapshot)) (cancel func()) {
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() { delete(c.subs, id) }
}

func (c *Cart) index(productID uint64) int {
	return slices.IndexFunc(c.items, func(it Item) bool { return it.ProductID == productID })
}

// commit persists items and only then makes them current, so a failed write
// leaves the cart as it was.
func (c *Cart) commit(ctx context.Context, items []Item) error {
	if items == nil {
		items = []Item{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := c.store.Set(ctx, c.key, data, c.ttl); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	c.items = items
	c.notify()
	return nil
}

func (c *Cart) notify() {
	if len(c.subs) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, fn := range c.subs {
		fn(snap)
	}
}
