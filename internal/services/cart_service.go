package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/cart"
	"github.com/javajoker/storefront-backend/internal/kvstore"
	"github.com/javajoker/storefront-backend/internal/wishlist"
)

// Owner identifies whose cart and wishlist a request works on: the signed
// in user, or a guest session.
type Owner struct {
	UserID    *uuid.UUID
	SessionID string
}

func UserOwner(id uuid.UUID) Owner {
	return Owner{UserID: &id}
}

func GuestOwner(sessionID string) Owner {
	return Owner{SessionID: strings.TrimSpace(sessionID)}
}

func (o Owner) Valid() bool {
	return o.UserID != nil || o.SessionID != ""
}

// Key is the store prefix for the owner's data. Guest keys are namespaced
// so a session id can never name a user's cart.
func (o Owner) Key() string {
	if o.UserID != nil {
		return o.UserID.String()
	}
	return "guest-" + o.SessionID
}

func (o Owner) IsGuest() bool {
	return o.UserID == nil
}

type CartService struct {
	store    kvstore.Store
	products *ProductService
	guestTTL time.Duration
}

func NewCartService(store kvstore.Store, products *ProductService, guestTTL time.Duration) *CartService {
	return &CartService{
		store:    store,
		products: products,
		guestTTL: guestTTL,
	}
}

func (s *CartService) ttl(owner Owner) time.Duration {
	if owner.IsGuest() {
		return s.guestTTL
	}
	return 0
}

// LoadCart opens owner's cart with change logging attached.
func (s *CartService) LoadCart(ctx context.Context, owner Owner) (*cart.Cart, error) {
	if !owner.Valid() {
		return nil, ErrNoCartOwner
	}

	c, err := cart.Load(ctx, s.store, owner.Key(), s.ttl(owner))
	if err != nil {
		return nil, err
	}

	c.Subscribe(func(snap cart.Snapshot) {
		logrus.WithFields(logrus.Fields{
			"owner":      owner.Key(),
			"item_count": snap.ItemCount,
			"subtotal":   snap.Subtotal.String(),
		}).Debug("Cart changed")
	})
	return c, nil
}

func (s *CartService) LoadWishlist(ctx context.Context, owner Owner) (*wishlist.Wishlist, error) {
	if !owner.Valid() {
		return nil, ErrNoCartOwner
	}

	w, err := wishlist.Load(ctx, s.store, owner.Key(), s.ttl(owner))
	if err != nil {
		return nil, err
	}

	w.Subscribe(func(snap wishlist.Snapshot) {
		logrus.WithFields(logrus.Fields{
			"owner": owner.Key(),
			"count": snap.Count,
		}).Debug("Wishlist changed")
	})
	return w, nil
}

func (s *CartService) GetCart(ctx context.Context, owner Owner) (cart.Snapshot, error) {
	c, err := s.LoadCart(ctx, owner)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// AddItem puts quantity units of a catalog product in the cart.
func (s *CartService) AddItem(ctx context.Context, owner Owner, productID uint64, quantity int) (cart.Snapshot, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return cart.Snapshot{}, err
	}
	if !product.InStock() {
		return cart.Snapshot{}, ErrOutOfStock
	}

	c, err := s.LoadCart(ctx, owner)
	if err != nil {
		return cart.Snapshot{}, err
	}

	if err := c.Add(ctx, cart.NewItem(*product), quantity); err != nil {
		return cart.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

func (s *CartService) UpdateItem(ctx context.Context, owner Owner, productID uint64, quantity int) (cart.Snapshot, error) {
	c, err := s.LoadCart(ctx, owner)
	if err != nil {
		return cart.Snapshot{}, err
	}

	if err := c.SetQuantity(ctx, productID, quantity); err != nil {
		return cart.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

func (s *CartService) RemoveItem(ctx context.Context, owner Owner, productID uint64) (cart.Snapshot, error) {
	c, err := s.LoadCart(ctx, owner)
	if err != nil {
		return cart.Snapshot{}, err
	}

	if err := c.Remove(ctx, productID); err != nil {
		return cart.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

func (s *CartService) ClearCart(ctx context.Context, owner Owner) error {
	c, err := s.LoadCart(ctx, owner)
	if err != nil {
		return err
	}
	return c.Clear(ctx)
}

// MergeGuestCart moves a guest session's cart and wishlist into the user's
// after sign in.
func (s *CartService) MergeGuestCart(ctx context.Context, sessionID string, userID uuid.UUID) error {
	guest := GuestOwner(sessionID)
	if !guest.Valid() {
		return nil
	}
	user := UserOwner(userID)

	guestCart, err := s.LoadCart(ctx, guest)
	if err != nil {
		return err
	}
	if !guestCart.IsEmpty() {
		userCart, err := s.LoadCart(ctx, user)
		if err != nil {
			return err
		}
		if err := userCart.Merge(ctx, guestCart.Items()); err != nil {
			return err
		}
		if err := guestCart.Clear(ctx); err != nil {
			return err
		}
	}

	guestList, err := s.LoadWishlist(ctx, guest)
	if err != nil {
		return err
	}
	if guestList.Len() > 0 {
		userList, err := s.LoadWishlist(ctx, user)
		if err != nil {
			return err
		}
		for _, entry := range guestList.Items() {
			if err := userList.Add(ctx, entry); err != nil {
				return err
			}
		}
		if err := guestList.Clear(ctx); err != nil {
			return err
		}
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"session": sessionID,
	}).Info("Guest cart merged")
	return nil
}

func (s *CartService) GetWishlist(ctx context.Context, owner Owner) (wishlist.Snapshot, error) {
	w, err := s.LoadWishlist(ctx, owner)
	if err != nil {
		return wishlist.Snapshot{}, err
	}
	return w.Snapshot(), nil
}

func (s *CartService) AddToWishlist(ctx context.Context, owner Owner, productID uint64) (wishlist.Snapshot, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return wishlist.Snapshot{}, err
	}

	w, err := s.LoadWishlist(ctx, owner)
	if err != nil {
		return wishlist.Snapshot{}, err
	}

	if err := w.Add(ctx, wishlist.NewEntry(*product)); err != nil {
		return wishlist.Snapshot{}, err
	}
	return w.Snapshot(), nil
}

func (s *CartService) RemoveFromWishlist(ctx context.Context, owner Owner, productID uint64) (wishlist.Snapshot, error) {
	w, err := s.LoadWishlist(ctx, owner)
	if err != nil {
		return wishlist.Snapshot{}, err
	}

	if err := w.Remove(ctx, productID); err != nil {
		return wishlist.Snapshot{}, err
	}
	return w.Snapshot(), nil
}

func (s *CartService) ClearWishlist(ctx context.Context, owner Owner) error {
	w, err := s.LoadWishlist(ctx, owner)
	if err != nil {
		return err
	}
	return w.Clear(ctx)
}

// MoveToCart moves one unit of a saved product into the cart. Products that
// have since sold out stay in the wishlist.
func (s *CartService) MoveToCart(ctx context.Context, owner Owner, productID uint64) (cart.Snapshot, wishlist.Snapshot, error) {
	w, err := s.LoadWishlist(ctx, owner)
	if err != nil {
		return cart.Snapshot{}, wishlist.Snapshot{}, err
	}
	if !w.Contains(productID) {
		return cart.Snapshot{}, wishlist.Snapshot{}, wishlist.ErrNotInWishlist
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil && !errors.Is(err, ErrProductNotFound) {
		return cart.Snapshot{}, wishlist.Snapshot{}, err
	}
	if product == nil || !product.InStock() {
		return cart.Snapshot{}, wishlist.Snapshot{}, ErrOutOfStock
	}

	c, err := s.LoadCart(ctx, owner)
	if err != nil {
		return cart.Snapshot{}, wishlist.Snapshot{}, err
	}

	if err := w.MoveToCart(ctx, productID, c); err != nil {
		return cart.Snapshot{}, wishlist.Snapshot{}, err
	}
	return c.Snapshot(), w.Snapshot(), nil
}
