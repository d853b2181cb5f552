// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/catalog"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/repository"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// ProductService serves the catalog from an in-memory snapshot of the
// products table. Reads never touch the database; a failed reload keeps the
// previous snapshot.
type ProductService struct {
	products repository.ProductRepository
	store    *catalog.Store
	pageSize int
}

type ProductRequest struct {
	Name        string           `json:"name" validate:"required,min=2,max=255"`
	Description string           `json:"description" validate:"max=5000"`
	Price       decimal.Decimal  `json:"price"`
	MRP         *decimal.Decimal `json:"mrp,omitempty"`
	Category    string           `json:"category" validate:"required,max=100"`
	Subcategory string           `json:"subcategory" validate:"max=100"`
	Brand       *string          `json:"brand,omitempty" validate:"omitempty,max=100"`
	Stock       int              `json:"stock" validate:"min=0"`
	Images      []string         `json:"images,omitempty" validate:"omitempty,dive,url"`
	Featured    bool             `json:"featured"`
	BestSeller  bool             `json:"best_seller"`
	NewArrival  bool             `json:"new_arrival"`
}

var ErrInvalidPrice = errors.New("price must be positive and mrp must not be negative")

func NewProductService(products repository.ProductRepository, store *catalog.Store, pageSize int) *ProductService {
	if pageSize < 1 {
		pageSize = catalog.DefaultPageSize
	}
	return &ProductService{
		products: products,
		store:    store,
		pageSize: pageSize,
	}
}

// Refresh reloads the catalog snapshot from the database.
func (s *ProductService) Refresh(ctx context.Context) error {
	products, err := s.products.List(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Catalog reload failed, serving previous snapshot")
		return err
	}

	s.store.Replace(products)
	logrus.WithField("products", len(products)).Debug("Catalog reloaded")
	return nil
}

// RunRefresher reloads the catalog every interval until ctx is done.
func (s *ProductService) RunRefresher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Refresh(ctx)
		}
	}
}

// snapshot returns the loaded catalog, trying one load if none has
// succeeded yet.
func (s *ProductService) snapshot(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.Products()
	if err == nil {
		return products, nil
	}

	if refreshErr := s.Refresh(ctx); refreshErr != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrNotLoaded, refreshErr)
	}
	return s.store.Products()
}

func (s *ProductService) Search(ctx context.Context, q catalog.Query) (catalog.Result, error) {
	products, err := s.snapshot(ctx)
	if err != nil {
		return catalog.Result{}, err
	}

	q.PageSize = s.pageSize
	return catalog.Apply(products, q), nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uint64) (*models.Product, error) {
	if _, err := s.snapshot(ctx); err != nil {
		return nil, err
	}

	product, ok := s.store.Get(id)
	if !ok {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

func (s *ProductService) GetFeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	products, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Featured(products, limit), nil
}

func (s *ProductService) GetBestSellers(ctx context.Context, limit int) ([]models.Product, error) {
	products, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.BestSellers(products, limit), nil
}

func (s *ProductService) GetNewArrivals(ctx context.Context, limit int) ([]models.Product, error) {
	products, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewArrivals(products, limit), nil
}

func (s *ProductService) GetFacets(ctx context.Context) (catalog.Facets, error) {
	products, err := s.snapshot(ctx)
	if err != nil {
		return catalog.Facets{}, err
	}
	return catalog.BuildFacets(products), nil
}

func (s *ProductService) CreateProduct(ctx context.Context, req *ProductRequest) (*models.Product, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{}
	req.apply(product)

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.reloadAfterWrite(ctx)
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id uint64, req *ProductRequest) (*models.Product, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	req.apply(product)
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.reloadAfterWrite(ctx)
	return product, nil
}

// AddImage appends an uploaded image to a product.
func (s *ProductService) AddImage(ctx context.Context, id uint64, url string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	product.Images = append(product.Images, url)
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.reloadAfterWrite(ctx)
	return product, nil
}

func (s *ProductService) reloadAfterWrite(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		logrus.WithError(err).Error("Catalog not reloaded after product change")
	}
}

func (r *ProductRequest) validate() error {
	if err := utils.ValidateStruct(r); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if !r.Price.IsPositive() || (r.MRP != nil && r.MRP.IsNegative()) {
		return ErrInvalidPrice
	}
	return nil
}

func (r *ProductRequest) apply(p *models.Product) {
	p.Name = strings.TrimSpace(r.Name)
	p.Description = r.Description
	p.Price = r.Price
	p.MRP = r.MRP
	p.Category = strings.TrimSpace(r.Category)
	p.Subcategory = strings.TrimSpace(r.Subcategory)
	p.Brand = r.Brand
	p.Stock = r.Stock
	if r.Images != nil {
		p.Images = pq.StringArray(r.Images)
	}
	p.Featured = r.Featured
	p.BestSeller = r.BestSeller
	p.NewArrival = r.NewArrival
}
