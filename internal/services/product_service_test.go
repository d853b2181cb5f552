package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/catalog"
	"github.com/javajoker/storefront-backend/internal/repository/repotest"
)

func TestSearchBeforeAnyLoadIsUnavailable(t *testing.T) {
	products := repotest.NewProducts(testProducts()...)
	products.Err = errors.New("connection refused")
	svc := NewProductService(products, catalog.NewStore(), 12)

	_, err := svc.Search(context.Background(), catalog.Query{Page: 1})
	assert.ErrorIs(t, err, catalog.ErrNotLoaded)

	_, err = svc.GetProduct(context.Background(), 1)
	assert.ErrorIs(t, err, catalog.ErrNotLoaded)
}

func TestFailedReloadServesLastSnapshot(t *testing.T) {
	products := repotest.NewProducts(testProducts()...)
	svc := NewProductService(products, catalog.NewStore(), 2)
	ctx := context.Background()

	require.NoError(t, svc.Refresh(ctx))

	products.Err = errors.New("connection refused")
	assert.Error(t, svc.Refresh(ctx))

	result, err := svc.Search(ctx, catalog.Query{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Len(t, result.Items, 2)

	p, err := svc.GetProduct(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", p.Name)

	_, err = svc.GetProduct(ctx, 42)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductWritesReloadCatalog(t *testing.T) {
	products := repotest.NewProducts(testProducts()...)
	svc := NewProductService(products, catalog.NewStore(), 12)
	ctx := context.Background()
	require.NoError(t, svc.Refresh(ctx))

	created, err := svc.CreateProduct(ctx, &ProductRequest{
		Name:     "Silk Saree",
		Price:    money("2500"),
		Category: "clothing",
		Stock:    3,
	})
	require.NoError(t, err)

	got, err := svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Silk Saree", got.Name)

	_, err = svc.UpdateProduct(ctx, created.ID, &ProductRequest{Name: "Silk Saree", Price: money("0"), Category: "clothing"})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	updated, err := svc.AddImage(ctx, created.ID, "https://cdn.test/products/saree.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/products/saree.png", updated.Image())

	_, err = svc.AddImage(ctx, 999, "https://cdn.test/x.png")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
