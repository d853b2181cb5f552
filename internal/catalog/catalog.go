// Package catalog implements the storefront listing pipeline: filtering,
// sorting and paginating the product catalog for a shop query.
package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/javajoker/storefront-backend/internal/models"
)

const DefaultPageSize = 12

type SortKey string

const (
	SortPopularity SortKey = "popularity"
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortRating     SortKey = "rating"
	SortDiscount   SortKey = "discount"
	SortNewest     SortKey = "newest"
)

// ParseSortKey maps a query value to a sort key. Unknown values fall back to
// popularity.
func ParseSortKey(s string) SortKey {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(s))); key {
	case SortPriceAsc, SortPriceDesc, SortRating, SortDiscount, SortNewest:
		return key
	default:
		return SortPopularity
	}
}

// Query is the set of recognized shop listing parameters. Zero values mean
// "no restriction".
type Query struct {
	Search      string           `json:"search,omitempty"`
	Category    string           `json:"category,omitempty"`
	Subcategory string           `json:"subcategory,omitempty"`
	MinPrice    *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice    *decimal.Decimal `json:"max_price,omitempty"`
	Brands      []string         `json:"brands,omitempty"`
	Ratings     []float64        `json:"ratings,omitempty"`
	InStockOnly bool             `json:"in_stock_only,omitempty"`
	MinDiscount int              `json:"min_discount,omitempty"`
	Sort        SortKey          `json:"sort,omitempty"`
	Page        int              `json:"page"`
	PageSize    int              `json:"page_size"`
}

// Result is one page of matching products. Items is never nil, so an empty
// match serializes as [] rather than null.
type Result struct {
	Items      []models.Product `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

func (r Result) Empty() bool {
	return r.Total == 0
}

// Apply filters, sorts and paginates products. The input slice is not
// modified.
func Apply(products []models.Product, q Query) Result {
	matched := Filter(products, q)
	Sort(matched, q.Sort)
	return Paginate(matched, q.Page, q.PageSize)
}

// Filter returns the products matching every predicate of q, in catalog
// order.
func Filter(products []models.Product, q Query) []models.Product {
	predicates := q.predicates()
	out := make([]models.Product, 0, len(products))

next:
	for i := range products {
		for _, keep := range predicates {
			if !keep(&products[i]) {
				continue next
			}
		}
		out = append(out, products[i])
	}
	return out
}

type predicate func(*models.Product) bool

func (q Query) predicates() []predicate {
	var preds []predicate

	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		preds = append(preds, func(p *models.Product) bool {
			return strings.Contains(strings.ToLower(p.Name), term) ||
				strings.Contains(strings.ToLower(p.Description), term) ||
				strings.Contains(strings.ToLower(p.BrandName()), term) ||
				strings.Contains(strings.ToLower(p.Category), term)
		})
	}

	if q.Category != "" {
		preds = append(preds, func(p *models.Product) bool {
			return strings.EqualFold(p.Category, q.Category)
		})
	}

	if q.Subcategory != "" {
		preds = append(preds, func(p *models.Product) bool {
			return strings.EqualFold(p.Subcategory, q.Subcategory)
		})
	}

	if q.MinPrice != nil {
		lo := *q.MinPrice
		preds = append(preds, func(p *models.Product) bool {
			return p.Price.GreaterThanOrEqual(lo)
		})
	}

	if q.MaxPrice != nil {
		hi := *q.MaxPrice
		preds = append(preds, func(p *models.Product) bool {
			return p.Price.LessThanOrEqual(hi)
		})
	}

	if len(q.Brands) > 0 {
		allowed := make(map[string]struct{}, len(q.Brands))
		for _, b := range q.Brands {
			allowed[strings.ToLower(b)] = struct{}{}
		}
		preds = append(preds, func(p *models.Product) bool {
			if p.Brand == nil {
				return false
			}
			_, ok := allowed[strings.ToLower(*p.Brand)]
			return ok
		})
	}

	if len(q.Ratings) > 0 {
		// A product qualifies if it meets any selected threshold, which is
		// the same as meeting the lowest one.
		lowest := slices.Min(q.Ratings)
		preds = append(preds, func(p *models.Product) bool {
			return p.Rating >= lowest
		})
	}

	if q.InStockOnly {
		preds = append(preds, (*models.Product).InStock)
	}

	if q.MinDiscount > 0 {
		preds = append(preds, func(p *models.Product) bool {
			return DiscountPercent(p) >= q.MinDiscount
		})
	}

	return preds
}

// Sort orders products in place by key. The sort is stable: ties keep their
// catalog order.
func Sort(products []models.Product, key SortKey) {
	slices.SortStableFunc(products, comparator(key))
}

func comparator(key SortKey) func(a, b models.Product) int {
	switch key {
	case SortPriceAsc:
		return func(a, b models.Product) int { return a.Price.Cmp(b.Price) }
	case SortPriceDesc:
		return func(a, b models.Product) int { return b.Price.Cmp(a.Price) }
	case SortRating:
		return func(a, b models.Product) int { return cmp.Compare(b.Rating, a.Rating) }
	case SortDiscount:
		return func(a, b models.Product) int { return cmp.Compare(DiscountPercent(&b), DiscountPercent(&a)) }
	case SortNewest:
		return func(a, b models.Product) int { return cmp.Compare(b.ID, a.ID) }
	default:
		return func(a, b models.Product) int { return cmp.Compare(b.ReviewCount, a.ReviewCount) }
	}
}

// Paginate slices out one page. Pages below 1 clamp to 1; pages past the
// end are empty.
func Paginate(products []models.Product, page, pageSize int) Result {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(products)
	result := Result{
		Items:      []models.Product{},
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}

	if page > result.TotalPages {
		return result
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	result.Items = append(result.Items, products[start:end]...)
	return result
}

var hundred = decimal.NewFromInt(100)

// DiscountPercent is round(100 * (mrp - price) / mrp). Products without a
// positive list price, or priced above it, have no discount.
func DiscountPercent(p *models.Product) int {
	if p.MRP == nil || !p.MRP.IsPositive() {
		return 0
	}

	pct := p.MRP.Sub(p.Price).Mul(hundred).Div(*p.MRP).Round(0).IntPart()
	if pct < 0 {
		return 0
	}
	return int(pct)
}
