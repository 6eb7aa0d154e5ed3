package domain

import "time"

// Catalog represents a named grouping of products. Membership is stored on the
// product side only.
type Catalog struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// CatalogPatch carries the fields of a partial catalog update. Nil fields are left untouched.
type CatalogPatch struct {
	Name        *string
	Description *string
}

// IsEmpty reports whether the patch changes nothing
func (p CatalogPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil
}
