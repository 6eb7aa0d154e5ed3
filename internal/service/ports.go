package service

import (
	"context"

	"shop-inventory/internal/domain"
)

// CatalogLookup is the part of catalog storage the product service depends on
type CatalogLookup interface {
	FindByID(ctx context.Context, id int64) (*domain.Catalog, error)
}

// ProductAssigner is the part of product storage the catalog service depends on
type ProductAssigner interface {
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	ListByCatalog(ctx context.Context, catalogID int64) ([]*domain.Product, error)
	AssignToCatalog(ctx context.Context, productID, catalogID int64) (*domain.Product, error)
	RemoveFromCatalog(ctx context.Context, productID int64) (*domain.Product, error)
	ClearCatalog(ctx context.Context, catalogID int64) (int64, error)
}
