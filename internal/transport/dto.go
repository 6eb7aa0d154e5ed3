package transport

import (
	"time"

	"shop-inventory/internal/domain"

	"github.com/shopspring/decimal"
)

// CreateCatalogRequest represents the catalog creation payload
type CreateCatalogRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=255"`
	Description *string `json:"description,omitempty"`
}

// UpdateCatalogRequest represents a partial catalog update; absent fields are left untouched
type UpdateCatalogRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description,omitempty"`
}

func (r UpdateCatalogRequest) toPatch() domain.CatalogPatch {
	return domain.CatalogPatch{Name: r.Name, Description: r.Description}
}

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Name          string           `json:"name" validate:"required,notblank,max=255"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price" validate:"required,gte=0,lte=99999999.99"`
	StockQuantity *int             `json:"stockQuantity,omitempty" validate:"omitempty,gte=0,lte=2147483647"`
	CatalogID     *int64           `json:"catalogId,omitempty" validate:"omitempty,gt=0"`
}

// UpdateProductRequest represents a partial product update; absent fields are left untouched
type UpdateProductRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty" validate:"omitempty,gte=0,lte=99999999.99"`
	StockQuantity *int             `json:"stockQuantity,omitempty" validate:"omitempty,gte=0,lte=2147483647"`
	CatalogID     *int64           `json:"catalogId,omitempty" validate:"omitempty,gt=0"`
}

func (r UpdateProductRequest) toPatch() domain.ProductPatch {
	return domain.ProductPatch{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
		CatalogID:     r.CatalogID,
	}
}

// CatalogResponse represents catalog data returned to clients
type CatalogResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Money renders a decimal as a bare JSON number with two decimal places
type Money decimal.Decimal

func (m Money) String() string {
	return decimal.Decimal(m).StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}

// ProductResponse represents product data returned to clients
type ProductResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	Price         Money     `json:"price"`
	StockQuantity int       `json:"stockQuantity"`
	CatalogID     *int64    `json:"catalogId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func newCatalogResponse(c *domain.Catalog) CatalogResponse {
	return CatalogResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func newCatalogResponses(catalogs []*domain.Catalog) []CatalogResponse {
	out := make([]CatalogResponse, 0, len(catalogs))
	for _, c := range catalogs {
		out = append(out, newCatalogResponse(c))
	}
	return out
}

func newProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         Money(p.Price),
		StockQuantity: p.StockQuantity,
		CatalogID:     p.CatalogID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func newProductResponses(products []*domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}
	return out
}
