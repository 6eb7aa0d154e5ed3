package service

import (
	"context"
	"errors"

	"shop-inventory/internal/apperr"
	"shop-inventory/internal/repository"
)

func catalogNotFound(id int64) *apperr.Error {
	return apperr.NotFound("Catalog with ID %d not found", id)
}

func productNotFound(id int64) *apperr.Error {
	return apperr.NotFound("Product with ID %d not found", id)
}

// findCatalog loads a catalog, turning absence into NotFound
func findCatalog(ctx context.Context, catalogs CatalogLookup, id int64, op string) error {
	if _, err := catalogs.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCatalogNotFound) {
			return catalogNotFound(id).WithOp(op)
		}
		return apperr.Internal("failed to load catalog", err).WithOp(op)
	}
	return nil
}
