// internal/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// CartHandler serves the cart and the wishlist. Both work for guests
// identified by X-Session-ID as well as signed in users.
type CartHandler struct {
	cartService *services.CartService
}

type cartItemRequest struct {
	ProductID uint64 `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=99"`
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0,max=99"`
}

type wishlistItemRequest struct {
	ProductID uint64 `json:"product_id" validate:"required"`
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	owner, ok := shopperOwner(c)
	if !ok {
		return
	}

	snapshot, err := h.cartService.GetCart(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"cart": snapshot})
}

// POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	owner, ok := shopperOwner(c)
	if !ok {
		return
	}

	var req cartItemRequest
	if !bind(c, &req) {
		return
	}

	snapshot, err := h.cartService.AddItem(c.Request.Context(), owner, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyCartUpdated),
		"cart":    snapshot,
	})
}

// PUT /cart/items/:product_id
// A quantity of 0 removes the line.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	owner, ok := shopperOwner(c)
	if !ok {
		return
	}

	productID, ok := productIDParam(c, "product_id")
	if !ok {
		return
	}

	var req cartQuantityRequest
	if !bind(c, &req) {
		return
	}

	snapshot, err := h.cartService.UpdateItem(c.Request.Context(), owner, productID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyCartUpdated),
		"cart":    snapshot,
	})
}

// DELETE /cart/items/:product_id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	owner, ok := shopperOwner(c)
	if !ok {
		return
	}

	productID, ok := productIDParam(c, "product_id")
	if !ok {
		return
	}

	snapshot, err := h.cartService.RemoveItem(c.Request.Context(), owner, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyCartUpdated),
		"cart":    snapshot,
	})
}

// DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	owner, ok := shopperOwner(c)
	if !ok {
		return
	}

	if err := h.cartService.ClearCart(c.Request.Context(), owner); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyCartCleared),
	})
}

// GET /wishlist
func (h *CartHandler) GetWishlist(c *gin.Context) {
	owner, ok := shopperOwner(c)
	if !ok {
		return
	}

	snapshot, err := h.cartService.GetWishlist(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"wishlist": snapshot})
}

// POST /wishlist/items
func (h *CartHandler) AddToWishlist(c *gin.Context) {
	owner, ok := shopperOwner(c)
	if !ok {
		return
	}

	var req wishlistItemRequest
	if !bind(c, &req) {
		return
	}

	snapshot, err := h.cartService.AddToWishlist(c.Request.Context(), owner, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyWishlistUpdated),
		"wishlist": snapshot,
	})
}

// DELETE /wishlist/items/:product_id
func (h *CartHandler) RemoveFromWishlist(c *gin.Context) {
	owner, ok := shopperOwner(c)
	if !ok {
		return
	}

	productID, ok := productIDParam(c, "product_id")
	if !ok {
		return
	}

	snapshot, err := h.cartService.RemoveFromWishlist(c.Request.Context(), owner, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyWishlistUpdated),
		"wishlist": snapshot,
	})
}

// POST /wishlist/items/:product_id/move-to-cart
func (h *CartHandler) MoveToCart(c *gin.Context) {
	owner, ok := shopperOwner(c)
	if !ok {
		return
	}

	productID, ok := productIDParam(c, "product_id")
	if !ok {
		return
	}

	cartSnapshot, wishlistSnapshot, err := h.cartService.MoveToCart(c.Request.Context(), owner, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(utils.GetLangFromContext(c), i18n.KeyWishlistMoved),
		"cart":     cartSnapshot,
		"wishlist": wishlistSnapshot,
	})
}
