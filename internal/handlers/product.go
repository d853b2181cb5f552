// internal/handlers/product.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/javajoker/storefront-backend/internal/catalog"
	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

const (
	defaultShelfSize = 8
	maxShelfSize     = 50
)

type ProductHandler struct {
	productService *services.ProductService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storageService: storageService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	result, err := h.productService.Search(c.Request.Context(), parseShopQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// parseShopQuery reads the shop listing parameters. Malformed values are
// ignored rather than rejected, the same as an absent parameter.
func parseShopQuery(c *gin.Context) catalog.Query {
	q := catalog.Query{
		Search:      strings.TrimSpace(c.Query("search")),
		Category:    c.Query("category"),
		Subcategory: c.Query("subcategory"),
		Sort:        catalog.ParseSortKey(c.Query("sort")),
		Page:        1,
	}

	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		q.Page = page
	}

	if minPrice, err := decimal.NewFromString(c.Query("min_price")); err == nil {
		q.MinPrice = &minPrice
	}

	if maxPrice, err := decimal.NewFromString(c.Query("max_price")); err == nil {
		q.MaxPrice = &maxPrice
	}

	q.Brands = splitList(c.Query("brands"))

	for _, r := range splitList(c.Query("ratings")) {
		if rating, err := strconv.ParseFloat(r, 64); err == nil {
			q.Ratings = append(q.Ratings, rating)
		}
	}

	if inStock, err := strconv.ParseBool(c.Query("in_stock")); err == nil {
		q.InStockOnly = inStock
	}

	if discount, err := strconv.Atoi(c.Query("min_discount")); err == nil && discount > 0 {
		q.MinDiscount = discount
	}

	return q
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func shelfLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		return defaultShelfSize
	}
	if limit > maxShelfSize {
		return maxShelfSize
	}
	return limit
}

// GET /products/facets
func (h *ProductHandler) GetFacets(c *gin.Context) {
	facets, err := h.productService.GetFacets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, facets)
}

// GET /products/featured
func (h *ProductHandler) GetFeaturedProducts(c *gin.Context) {
	products, err := h.productService.GetFeaturedProducts(c.Request.Context(), shelfLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"products": products})
}

// GET /products/best-sellers
func (h *ProductHandler) GetBestSellers(c *gin.Context) {
	products, err := h.productService.GetBestSellers(c.Request.Context(), shelfLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"products": products})
}

// GET /products/new-arrivals
func (h *ProductHandler) GetNewArrivals(c *gin.Context) {
	products, err := h.productService.GetNewArrivals(c.Request.Context(), shelfLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"products": products})
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, ok := productIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// POST /admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.ProductRequest
	if !bind(c, &req) {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyProductCreated),
		"product": product,
	})
}

// PUT /admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID, ok := productIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ProductRequest
	if !bind(c, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), productID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyProductUpdated),
		"product": product,
	})
}

// POST /admin/products/:id/images
func (h *ProductHandler) UploadProductImage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	productID, ok := productIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.productService.GetProduct(c.Request.Context(), productID); err != nil {
		respondError(c, err)
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationRequired, "image"), nil)
		return
	}
	defer file.Close()

	upload, err := h.storageService.UploadProductImage(c.Request.Context(), productID, file, header)
	if err != nil {
		respondError(c, err)
		return
	}

	product, err := h.productService.AddImage(c.Request.Context(), productID, upload.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFileUploadSuccess),
		"upload":  upload,
		"product": product,
	})
}
