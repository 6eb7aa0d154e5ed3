package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"shop-inventory/internal/apperr"
	"shop-inventory/internal/domain"
	"shop-inventory/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductInput carries the fields of a new product. Optional fields are nil when absent.
type CreateProductInput struct {
	Name          string
	Description   *string
	Price         decimal.Decimal
	StockQuantity *int
	CatalogID     *int64
}

// ProductService defines the interface for product business logic
type ProductService interface {
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	ListUnassignedProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	AssignToCatalog(ctx context.Context, productID, catalogID int64) (*domain.Product, error)
	// RemoveFromCatalog is idempotent for unassigned products
	RemoveFromCatalog(ctx context.Context, productID int64) (*domain.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	catalogs    CatalogLookup
	logger      *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	catalogs CatalogLookup,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		catalogs:    catalogs,
		logger:      logger,
	}
}

// ListProducts returns every product, newest first
func (s *productService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list products", err).WithOp("ListProducts")
	}
	return products, nil
}

// ListUnassignedProducts returns the products that belong to no catalog
func (s *productService) ListUnassignedProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.productRepo.ListUnassigned(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list unassigned products", err).WithOp("ListUnassignedProducts")
	}
	return products, nil
}

// GetProduct retrieves a product by ID
func (s *productService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, productNotFound(id).WithOp("GetProduct")
		}
		return nil, apperr.Internal("failed to get product", err).WithOp("GetProduct")
	}
	return product, nil
}

// CreateProduct creates a product after checking its name and catalog
func (s *productService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	const op = "CreateProduct"

	if err := validateProductFields(&input.Name, &input.Price, input.StockQuantity); err != nil {
		return nil, err.WithOp(op)
	}

	if err := s.ensureNameAvailable(ctx, input.Name, 0, op); err != nil {
		return nil, err
	}

	if input.CatalogID != nil {
		if err := findCatalog(ctx, s.catalogs, *input.CatalogID, op); err != nil {
			return nil, err
		}
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		CatalogID:   input.CatalogID,
	}
	if input.StockQuantity != nil {
		product.StockQuantity = *input.StockQuantity
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, translateProductWriteError(err, 0, input.Name, input.CatalogID, op)
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name),
	)
	return product, nil
}

// UpdateProduct applies a partial update. The write reports a missing product.
func (s *productService) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	const op = "UpdateProduct"

	if err := validateProductFields(patch.Name, patch.Price, patch.StockQuantity); err != nil {
		return nil, err.WithOp(op)
	}

	if patch.Name != nil {
		if err := s.ensureNameAvailable(ctx, *patch.Name, id, op); err != nil {
			return nil, err
		}
	}

	if patch.CatalogID != nil {
		if err := findCatalog(ctx, s.catalogs, *patch.CatalogID, op); err != nil {
			return nil, err
		}
	}

	product, err := s.productRepo.Update(ctx, id, patch)
	if err != nil {
		name := ""
		if patch.Name != nil {
			name = *patch.Name
		}
		return nil, translateProductWriteError(err, id, name, patch.CatalogID, op)
	}

	s.logger.Info("Product updated", zap.Int64("product_id", id))
	return product, nil
}

// DeleteProduct removes a product
func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return productNotFound(id).WithOp("DeleteProduct")
		}
		return apperr.Internal("failed to delete product", err).WithOp("DeleteProduct")
	}

	s.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

// AssignToCatalog points the product at an existing catalog
func (s *productService) AssignToCatalog(ctx context.Context, productID, catalogID int64) (*domain.Product, error) {
	const op = "AssignToCatalog"

	if err := findCatalog(ctx, s.catalogs, catalogID, op); err != nil {
		return nil, err
	}

	product, err := s.productRepo.AssignToCatalog(ctx, productID, catalogID)
	if err != nil {
		return nil, translateAssignError(err, productID, catalogID, op)
	}
	return product, nil
}

// RemoveFromCatalog clears the product's catalog reference
func (s *productService) RemoveFromCatalog(ctx context.Context, productID int64) (*domain.Product, error) {
	product, err := s.productRepo.RemoveFromCatalog(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, productNotFound(productID).WithOp("RemoveFromCatalog")
		}
		return nil, apperr.Internal("failed to remove product from catalog", err).WithOp("RemoveFromCatalog")
	}
	return product, nil
}

// ensureNameAvailable fails with Conflict when another product already uses name
func (s *productService) ensureNameAvailable(ctx context.Context, name string, excludeID int64, op string) error {
	existing, err := s.productRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil
		}
		return apperr.Internal("failed to check product name", err).WithOp(op)
	}
	if existing.ID != excludeID {
		return productNameConflict(name).WithOp(op)
	}
	return nil
}

// validateProductFields checks the supplied fields; nil means not supplied
func validateProductFields(name *string, price *decimal.Decimal, stock *int) *apperr.Error {
	if name != nil && strings.TrimSpace(*name) == "" {
		return apperr.Validation("product name must not be empty")
	}
	if price != nil && price.IsNegative() {
		return apperr.Validation("price must not be negative")
	}
	if stock != nil && *stock < 0 {
		return apperr.Validation("stock quantity must not be negative")
	}
	if stock != nil && *stock > math.MaxInt32 {
		return apperr.Validation("stock quantity must not exceed %d", math.MaxInt32)
	}
	return nil
}

func productNameConflict(name string) *apperr.Error {
	return apperr.Conflict("Product with name %q already exists", name)
}

func translateProductWriteError(err error, id int64, name string, catalogID *int64, op string) error {
	switch {
	case errors.Is(err, repository.ErrProductAlreadyExists):
		return productNameConflict(name).WithOp(op)
	case errors.Is(err, repository.ErrCatalogNotFound) && catalogID != nil:
		// catalog deleted between the existence check and the write
		return catalogNotFound(*catalogID).WithOp(op)
	case errors.Is(err, repository.ErrProductNotFound):
		return productNotFound(id).WithOp(op)
	default:
		return apperr.Internal("failed to save product", err).WithOp(op)
	}
}
