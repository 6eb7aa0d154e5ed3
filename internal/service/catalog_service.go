package service

import (
	"context"
	"errors"
	"strings"

	"shop-inventory/internal/apperr"
	"shop-inventory/internal/domain"
	"shop-inventory/internal/repository"

	"go.uber.org/zap"
)

// CatalogService defines the interface for catalog business logic
type CatalogService interface {
	ListCatalogs(ctx context.Context) ([]*domain.Catalog, error)
	GetCatalog(ctx context.Context, id int64) (*domain.Catalog, error)
	CreateCatalog(ctx context.Context, name string, description *string) (*domain.Catalog, error)
	UpdateCatalog(ctx context.Context, id int64, patch domain.CatalogPatch) (*domain.Catalog, error)
	// DeleteCatalog orphans the catalog's products before removing it
	DeleteCatalog(ctx context.Context, id int64) error
	ListProductsInCatalog(ctx context.Context, catalogID int64) ([]*domain.Product, error)
	AssignProductToCatalog(ctx context.Context, catalogID, productID int64) (*domain.Product, error)
	// UnassignProductFromCatalog fails with NotFound unless the product currently belongs to the catalog
	UnassignProductFromCatalog(ctx context.Context, catalogID, productID int64) (*domain.Product, error)
}

type catalogService struct {
	catalogRepo repository.CatalogRepository
	products    ProductAssigner
	logger      *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	catalogRepo repository.CatalogRepository,
	products ProductAssigner,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		catalogRepo: catalogRepo,
		products:    products,
		logger:      logger,
	}
}

// ListCatalogs returns every catalog, newest first
func (s *catalogService) ListCatalogs(ctx context.Context) ([]*domain.Catalog, error) {
	catalogs, err := s.catalogRepo.List(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list catalogs", err).WithOp("ListCatalogs")
	}
	return catalogs, nil
}

// GetCatalog retrieves a catalog by ID
func (s *catalogService) GetCatalog(ctx context.Context, id int64) (*domain.Catalog, error) {
	catalog, err := s.catalogRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCatalogNotFound) {
			return nil, catalogNotFound(id).WithOp("GetCatalog")
		}
		return nil, apperr.Internal("failed to get catalog", err).WithOp("GetCatalog")
	}
	return catalog, nil
}

// CreateCatalog creates a catalog after checking its name is free
func (s *catalogService) CreateCatalog(ctx context.Context, name string, description *string) (*domain.Catalog, error) {
	const op = "CreateCatalog"

	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validation("catalog name is required").WithOp(op)
	}

	if err := s.ensureNameAvailable(ctx, name, 0, op); err != nil {
		return nil, err
	}

	catalog := &domain.Catalog{Name: name, Description: description}
	if err := s.catalogRepo.Create(ctx, catalog); err != nil {
		return nil, s.translateWriteError(err, 0, name, op)
	}

	s.logger.Info("Catalog created",
		zap.Int64("catalog_id", catalog.ID),
		zap.String("name", catalog.Name),
	)
	return catalog, nil
}

// UpdateCatalog applies a partial update
func (s *catalogService) UpdateCatalog(ctx context.Context, id int64, patch domain.CatalogPatch) (*domain.Catalog, error) {
	const op = "UpdateCatalog"

	if _, err := s.GetCatalog(ctx, id); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, apperr.Validation("catalog name must not be empty").WithOp(op)
		}
		if err := s.ensureNameAvailable(ctx, *patch.Name, id, op); err != nil {
			return nil, err
		}
	}

	catalog, err := s.catalogRepo.Update(ctx, id, patch)
	if err != nil {
		name := ""
		if patch.Name != nil {
			name = *patch.Name
		}
		return nil, s.translateWriteError(err, id, name, op)
	}

	s.logger.Info("Catalog updated", zap.Int64("catalog_id", id))
	return catalog, nil
}

// DeleteCatalog nulls every product reference to the catalog, then deletes it
func (s *catalogService) DeleteCatalog(ctx context.Context, id int64) error {
	const op = "DeleteCatalog"

	if _, err := s.GetCatalog(ctx, id); err != nil {
		return err
	}

	orphaned, err := s.products.ClearCatalog(ctx, id)
	if err != nil {
		return apperr.Internal("failed to detach catalog products", err).WithOp(op)
	}

	if err := s.catalogRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCatalogNotFound) {
			return catalogNotFound(id).WithOp(op)
		}
		return apperr.Internal("failed to delete catalog", err).WithOp(op)
	}

	s.logger.Info("Catalog deleted",
		zap.Int64("catalog_id", id),
		zap.Int64("orphaned_products", orphaned),
	)
	return nil
}

// ListProductsInCatalog returns the products that reference the catalog
func (s *catalogService) ListProductsInCatalog(ctx context.Context, catalogID int64) ([]*domain.Product, error) {
	const op = "ListProductsInCatalog"

	if err := findCatalog(ctx, s.catalogRepo, catalogID, op); err != nil {
		return nil, err
	}

	products, err := s.products.ListByCatalog(ctx, catalogID)
	if err != nil {
		return nil, apperr.Internal("failed to list catalog products", err).WithOp(op)
	}
	return products, nil
}

// AssignProductToCatalog moves the product into the catalog
func (s *catalogService) AssignProductToCatalog(ctx context.Context, catalogID, productID int64) (*domain.Product, error) {
	const op = "AssignProductToCatalog"

	if err := findCatalog(ctx, s.catalogRepo, catalogID, op); err != nil {
		return nil, err
	}
	if _, err := s.findProduct(ctx, productID, op); err != nil {
		return nil, err
	}

	product, err := s.products.AssignToCatalog(ctx, productID, catalogID)
	if err != nil {
		return nil, translateAssignError(err, productID, catalogID, op)
	}

	s.logger.Info("Product assigned to catalog",
		zap.Int64("product_id", productID),
		zap.Int64("catalog_id", catalogID),
	)
	return product, nil
}

// UnassignProductFromCatalog clears the product's catalog reference
func (s *catalogService) UnassignProductFromCatalog(ctx context.Context, catalogID, productID int64) (*domain.Product, error) {
	const op = "UnassignProductFromCatalog"

	if err := findCatalog(ctx, s.catalogRepo, catalogID, op); err != nil {
		return nil, err
	}

	product, err := s.findProduct(ctx, productID, op)
	if err != nil {
		return nil, err
	}
	if !product.BelongsTo(catalogID) {
		return nil, apperr.NotFound("Product with ID %d does not belong to catalog %d", productID, catalogID).WithOp(op)
	}

	product, err = s.products.RemoveFromCatalog(ctx, productID)
	if err != nil {
		return nil, translateAssignError(err, productID, catalogID, op)
	}

	s.logger.Info("Product removed from catalog",
		zap.Int64("product_id", productID),
		zap.Int64("catalog_id", catalogID),
	)
	return product, nil
}

func (s *catalogService) findProduct(ctx context.Context, id int64, op string) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, productNotFound(id).WithOp(op)
		}
		return nil, apperr.Internal("failed to load product", err).WithOp(op)
	}
	return product, nil
}

// ensureNameAvailable fails with Conflict when another catalog already uses name.
// excludeID lets a catalog keep its own name on update.
func (s *catalogService) ensureNameAvailable(ctx context.Context, name string, excludeID int64, op string) error {
	existing, err := s.catalogRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrCatalogNotFound) {
			return nil
		}
		return apperr.Internal("failed to check catalog name", err).WithOp(op)
	}
	if existing.ID != excludeID {
		return catalogNameConflict(name).WithOp(op)
	}
	return nil
}

func (s *catalogService) translateWriteError(err error, id int64, name, op string) error {
	switch {
	case errors.Is(err, repository.ErrCatalogAlreadyExists):
		// lost the race against a concurrent writer
		return catalogNameConflict(name).WithOp(op)
	case errors.Is(err, repository.ErrCatalogNotFound):
		return catalogNotFound(id).WithOp(op)
	default:
		return apperr.Internal("failed to save catalog", err).WithOp(op)
	}
}

func catalogNameConflict(name string) *apperr.Error {
	return apperr.Conflict("Catalog with name %q already exists", name)
}

func translateAssignError(err error, productID, catalogID int64, op string) error {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return productNotFound(productID).WithOp(op)
	case errors.Is(err, repository.ErrCatalogNotFound):
		return catalogNotFound(catalogID).WithOp(op)
	default:
		return apperr.Internal("failed to update product catalog", err).WithOp(op)
	}
}
