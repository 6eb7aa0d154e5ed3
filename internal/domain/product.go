package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable item, optionally grouped under one catalog
type Product struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Description   *string         `json:"description" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stockQuantity" db:"stock_quantity"`
	CatalogID     *int64          `json:"catalogId" db:"catalog_id"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// IsAssigned reports whether the product belongs to a catalog
func (p *Product) IsAssigned() bool {
	return p.CatalogID != nil
}

// BelongsTo reports whether the product is assigned to the given catalog
func (p *Product) BelongsTo(catalogID int64) bool {
	return p.CatalogID != nil && *p.CatalogID == catalogID
}

// ProductPatch carries the fields of a partial product update. Nil fields are left untouched.
type ProductPatch struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	StockQuantity *int
	CatalogID     *int64
}

// IsEmpty reports whether the patch changes nothing
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.StockQuantity == nil && p.CatalogID == nil
}
