package catalog

import (
	"slices"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/javajoker/storefront-backend/internal/models"
)

// Featured returns up to limit featured products in catalog order.
func Featured(products []models.Product, limit int) []models.Product {
	return shelf(products, limit, func(p *models.Product) bool { return p.Featured })
}

// BestSellers returns up to limit best-seller products, most reviewed first.
func BestSellers(products []models.Product, limit int) []models.Product {
	out := slices.DeleteFunc(slices.Clone(products), func(p models.Product) bool { return !p.BestSeller })
	Sort(out, SortPopularity)
	return truncate(out, limit)
}

// NewArrivals returns up to limit new-arrival products, newest first.
func NewArrivals(products []models.Product, limit int) []models.Product {
	out := slices.DeleteFunc(slices.Clone(products), func(p models.Product) bool { return !p.NewArrival })
	Sort(out, SortNewest)
	return truncate(out, limit)
}

func shelf(products []models.Product, limit int, keep func(*models.Product) bool) []models.Product {
	out := make([]models.Product, 0)
	for i := range products {
		if keep(&products[i]) {
			out = append(out, products[i])
		}
	}
	return truncate(out, limit)
}

func truncate(products []models.Product, limit int) []models.Product {
	if limit > 0 && len(products) > limit {
		return products[:limit]
	}
	return products
}

// Facets summarizes the values a shop filter UI can offer.
type Facets struct {
	Categories    []string            `json:"categories"`
	Subcategories map[string][]string `json:"subcategories"`
	Brands        []string            `json:"brands"`
	MinPrice      decimal.Decimal     `json:"min_price"`
	MaxPrice      decimal.Decimal     `json:"max_price"`
}

func BuildFacets(products []models.Product) Facets {
	facets := Facets{
		Categories:    []string{},
		Subcategories: map[string][]string{},
		Brands:        []string{},
	}

	categories := map[string]map[string]struct{}{}
	brands := map[string]struct{}{}

	for i, p := range products {
		if _, ok := categories[p.Category]; !ok {
			categories[p.Category] = map[string]struct{}{}
		}
		if p.Subcategory != "" {
			categories[p.Category][p.Subcategory] = struct{}{}
		}
		if p.Brand != nil {
			brands[*p.Brand] = struct{}{}
		}

		if i == 0 || p.Price.LessThan(facets.MinPrice) {
			facets.MinPrice = p.Price
		}
		if i == 0 || p.Price.GreaterThan(facets.MaxPrice) {
			facets.MaxPrice = p.Price
		}
	}

	for category, subs := range categories {
		facets.Categories = append(facets.Categories, category)
		list := make([]string, 0, len(subs))
		for sub := range subs {
			list = append(list, sub)
		}
		sort.Strings(list)
		facets.Subcategories[category] = list
	}
	sort.Strings(facets.Categories)

	for brand := range brands {
		facets.Brands = append(facets.Brands, brand)
	}
	sort.Strings(facets.Brands)

	return facets
}
