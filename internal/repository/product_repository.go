package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shop-inventory/internal/domain"

	"github.com/Masterminds/squirrel"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this name already exists")
)

const productReturning = "RETURNING id, name, description, price, stock_quantity, catalog_id, created_at, updated_at"

var productColumns = []string{
	"id", "name", "description", "price", "stock_quantity", "catalog_id", "created_at", "updated_at",
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	// Create inserts the product and fills in its generated ID and timestamps
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	// List returns all products, newest first
	List(ctx context.Context) ([]*domain.Product, error)
	// ListUnassigned returns products without a catalog, newest first
	ListUnassigned(ctx context.Context) ([]*domain.Product, error)
	// ListByCatalog returns the products referencing catalogID, newest first
	ListByCatalog(ctx context.Context, catalogID int64) ([]*domain.Product, error)
	// AssignToCatalog sets the catalog reference. ErrProductNotFound when no row matched.
	AssignToCatalog(ctx context.Context, productID, catalogID int64) (*domain.Product, error)
	// RemoveFromCatalog clears the catalog reference. ErrProductNotFound when no row matched.
	RemoveFromCatalog(ctx context.Context, productID int64) (*domain.Product, error)
	// ClearCatalog nulls every reference to catalogID and returns how many products changed
	ClearCatalog(ctx context.Context, catalogID int64) (int64, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func scanProduct(row squirrel.RowScanner) (*domain.Product, error) {
	var (
		product     domain.Product
		description sql.NullString
		catalogID   sql.NullInt64
	)
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&description,
		&product.Price,
		&product.StockQuantity,
		&catalogID,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	product.Description = nullStringPtr(description)
	product.CatalogID = nullInt64Ptr(catalogID)
	return &product, nil
}

// translateWriteError maps constraint failures of product writes onto sentinel errors
func translateWriteError(err error, action string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrProductNotFound
	case isUniqueViolation(err):
		return ErrProductAlreadyExists
	case isForeignKeyViolation(err):
		// the referenced catalog vanished between the existence check and the write
		return ErrCatalogNotFound
	default:
		return fmt.Errorf("failed to %s: %w", action, err)
	}
}

// Create inserts a new product
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	row := psql.Insert("products").
		SetMap(map[string]interface{}{
			"name":           product.Name,
			"description":    product.Description,
			"price":          product.Price,
			"stock_quantity": product.StockQuantity,
			"catalog_id":     product.CatalogID,
		}).
		Suffix("RETURNING id, created_at, updated_at").
		RunWith(r.db).
		QueryRowContext(ctx)

	if err := row.Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt); err != nil {
		return translateWriteError(err, "create product")
	}

	return nil
}

func productChangeSet(patch domain.ProductPatch) map[string]interface{} {
	changes := make(map[string]interface{})
	if patch.Name != nil {
		changes["name"] = *patch.Name
	}
	if patch.Description != nil {
		changes["description"] = *patch.Description
	}
	if patch.Price != nil {
		changes["price"] = *patch.Price
	}
	if patch.StockQuantity != nil {
		changes["stock_quantity"] = *patch.StockQuantity
	}
	if patch.CatalogID != nil {
		changes["catalog_id"] = *patch.CatalogID
	}
	return changes
}

func (r *productRepository) updateReturning(ctx context.Context, id int64, changes map[string]interface{}, action string) (*domain.Product, error) {
	row := psql.Update("products").
		SetMap(changes).
		Where(squirrel.Eq{"id": id}).
		Suffix(productReturning).
		RunWith(r.db).
		QueryRowContext(ctx)

	product, err := scanProduct(row)
	if err != nil {
		return nil, translateWriteError(err, action)
	}
	return product, nil
}

// Update writes only the fields present in the patch and returns the stored row
func (r *productRepository) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.IsEmpty() {
		return r.FindByID(ctx, id)
	}
	return r.updateReturning(ctx, id, productChangeSet(patch), "update product")
}

// Delete removes a product
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := psql.Delete("products").
		Where(squirrel.Eq{"id": id}).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepository) findOne(ctx context.Context, where squirrel.Eq, action string) (*domain.Product, error) {
	row := psql.Select(productColumns...).
		From("products").
		Where(where).
		RunWith(r.db).
		QueryRowContext(ctx)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to %s: %w", action, err)
	}
	return product, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id}, "find product by ID")
}

// FindByName retrieves a product by its exact, case-sensitive name
func (r *productRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	return r.findOne(ctx, squirrel.Eq{"name": name}, "find product by name")
}

func (r *productRepository) list(ctx context.Context, where squirrel.Sqlizer) ([]*domain.Product, error) {
	query := psql.Select(productColumns...).
		From("products").
		OrderBy("created_at DESC", "id DESC")
	if where != nil {
		query = query.Where(where)
	}

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// List retrieves all products
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	return r.list(ctx, nil)
}

// ListUnassigned retrieves products whose catalog reference is null
func (r *productRepository) ListUnassigned(ctx context.Context) ([]*domain.Product, error) {
	return r.list(ctx, squirrel.Eq{"catalog_id": nil})
}

// ListByCatalog retrieves the products of one catalog
func (r *productRepository) ListByCatalog(ctx context.Context, catalogID int64) ([]*domain.Product, error) {
	return r.list(ctx, squirrel.Eq{"catalog_id": catalogID})
}

// AssignToCatalog points the product at catalogID
func (r *productRepository) AssignToCatalog(ctx context.Context, productID, catalogID int64) (*domain.Product, error) {
	return r.updateReturning(ctx, productID, map[string]interface{}{"catalog_id": catalogID}, "assign product to catalog")
}

// RemoveFromCatalog clears the product's catalog reference
func (r *productRepository) RemoveFromCatalog(ctx context.Context, productID int64) (*domain.Product, error) {
	return r.updateReturning(ctx, productID, map[string]interface{}{"catalog_id": nil}, "remove product from catalog")
}

// ClearCatalog orphans every product of catalogID
func (r *productRepository) ClearCatalog(ctx context.Context, catalogID int64) (int64, error) {
	result, err := psql.Update("products").
		Set("catalog_id", nil).
		Where(squirrel.Eq{"catalog_id": catalogID}).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear catalog references: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
