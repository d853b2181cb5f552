// Package wishlist holds the set of products a shopper saved for later.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/cart"
	"github.com/javajoker/storefront-backend/internal/kvstore"
	"github.com/javajoker/storefront-backend/internal/models"
)

var ErrNotInWishlist = errors.New("product not in wishlist")

type Entry struct {
	ProductID uint64           `json:"product_id"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	MRP       *decimal.Decimal `json:"mrp,omitempty"`
	Brand     *string          `json:"brand,omitempty"`
	Image     string           `json:"image,omitempty"`
	Stock     int              `json:"stock"`
	AddedAt   time.Time        `json:"added_at"`
}

func NewEntry(p models.Product) Entry {
	return Entry{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		MRP:       p.MRP,
		Brand:     p.Brand,
		Image:     p.Image(),
		Stock:     p.Stock,
		AddedAt:   time.Now().UTC(),
	}
}

func (e Entry) cartItem() cart.Item {
	return cart.Item{
		ProductID: e.ProductID,
		Name:      e.Name,
		Price:     e.Price,
		MRP:       e.MRP,
		Brand:     e.Brand,
		Image:     e.Image,
		Stock:     e.Stock,
	}
}

type Snapshot struct {
	Items []Entry `json:"items"`
	Count int     `json:"count"`
}

func Key(owner string) string {
	return owner + ":wishlist"
}

type Wishlist struct {
	store   kvstore.Store
	key     string
	ttl     time.Duration
	entries []Entry

	subs    map[int]func(Snapshot)
	nextSub int
}

// Load reads owner's wishlist. Missing or unreadable data is an empty list.
func Load(ctx context.Context, store kvstore.Store, owner string, ttl time.Duration) (*Wishlist, error) {
	w := &Wishlist{
		store: store,
		key:   Key(owner),
		ttl:   ttl,
		subs:  map[int]func(Snapshot){},
	}

	data, err := store.Get(ctx, w.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return w, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wishlist: %w", err)
	}

	if err := json.Unmarshal(data, &w.entries); err != nil {
		logrus.WithFields(logrus.Fields{
			"key":   w.key,
			"error": err,
		}).Warn("Discarding unreadable wishlist")
		w.entries = nil
	}
	return w, nil
}

// Add saves entry. Adding a product that is already saved changes nothing.
func (w *Wishlist) Add(ctx context.Context, entry Entry) error {
	if w.Contains(entry.ProductID) {
		return nil
	}
	return w.commit(ctx, append(slices.Clone(w.entries), entry))
}

func (w *Wishlist) Remove(ctx context.Context, productID uint64) error {
	i := w.index(productID)
	if i < 0 {
		return nil
	}
	return w.commit(ctx, slices.Delete(slices.Clone(w.entries), i, i+1))
}

func (w *Wishlist) Contains(productID uint64) bool {
	return w.index(productID) >= 0
}

func (w *Wishlist) Clear(ctx context.Context) error {
	if err := w.store.Delete(ctx, w.key); err != nil {
		return fmt.Errorf("failed to clear wishlist: %w", err)
	}
	w.entries = nil
	w.notify()
	return nil
}

// MoveToCart adds one unit of productID to c and then removes it from the
// wishlist.
func (w *Wishlist) MoveToCart(ctx context.Context, productID uint64, c *cart.Cart) error {
	i := w.index(productID)
	if i < 0 {
		return ErrNotInWishlist
	}

	if err := c.Add(ctx, w.entries[i].cartItem(), 1); err != nil {
		return err
	}
	return w.Remove(ctx, productID)
}

func (w *Wishlist) Items() []Entry {
	if w.entries == nil {
		return []Entry{}
	}
	return slices.Clone(w.entries)
}

func (w *Wishlist) Len() int {
	return len(w.entries)
}

func (w *Wishlist) Snapshot() Snapshot {
	return Snapshot{Items: w.Items(), Count: w.Len()}
}

func (w *Wishlist) Subscribe(fn func(Snapshot)) (cancel func()) {
	id := w.nextSub
	w.nextSub++
	w.subs[id] = fn
	return func() { delete(w.subs, id) }
}

func (w *Wishlist) index(productID uint64) int {
	return slices.IndexFunc(w.entries, func(e Entry) bool { return e.ProductID == productID })
}

func (w *Wishlist) commit(ctx context.Context, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode wishlist: %w", err)
	}

	if err := w.store.Set(ctx, w.key, data, w.ttl); err != nil {
		return fmt.Errorf("failed to save wishlist: %w", err)
	}

	w.entries = entries
	w.notify()
	return nil
}

func (w *Wishlist) notify() {
	if len(w.subs) == 0 {
		return
	}
	snap := w.Snapshot()
	for _, fn := range w.subs {
		fn(snap)
	}
}
