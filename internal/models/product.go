// internal/models/product.go
package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product ids are assigned in insertion order, so a larger id is a newer
// product.
type Product struct {
	ID          uint64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string           `json:"name" gorm:"size:255;not null"`
	Description string           `json:"description" gorm:"type:text"`
	Price       decimal.Decimal  `json:"price" gorm:"type:decimal(10,2);not null"`
	MRP         *decimal.Decimal `json:"mrp,omitempty" gorm:"type:decimal(10,2)"`
	Category    string           `json:"category" gorm:"size:100;index"`
	Subcategory string           `json:"subcategory" gorm:"size:100;index"`
	Brand       *string          `json:"brand,omitempty" gorm:"size:100;index"`
	Rating      float64          `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount int64            `json:"review_count" gorm:"default:0"`
	Stock       int              `json:"stock" gorm:"default:0"`
	Images      pq.StringArray   `json:"images" gorm:"type:text[]"`
	Featured    bool             `json:"featured" gorm:"default:false"`
	BestSeller  bool             `json:"best_seller" gorm:"default:false"`
	NewArrival  bool             `json:"new_arrival" gorm:"default:false"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}

func (p *Product) BrandName() string {
	if p.Brand == nil {
		return ""
	}
	return *p.Brand
}

// Image returns the primary image reference, if any.
func (p *Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
