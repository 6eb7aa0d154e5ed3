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
	ErrCatalogNotFound      = errors.New("catalog not found")
	ErrCatalogAlreadyExists = errors.New("catalog with this name already exists")
)

var catalogColumns = []string{"id", "name", "description", "created_at", "updated_at"}

// CatalogRepository defines the interface for catalog data access
type CatalogRepository interface {
	// Create inserts the catalog and fills in its generated ID and timestamps
	Create(ctx context.Context, catalog *domain.Catalog) error
	Update(ctx context.Context, id int64, patch domain.CatalogPatch) (*domain.Catalog, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Catalog, error)
	FindByName(ctx context.Context, name string) (*domain.Catalog, error)
	// List returns all catalogs, newest first
	List(ctx context.Context) ([]*domain.Catalog, error)
}

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func scanCatalog(row squirrel.RowScanner) (*domain.Catalog, error) {
	var (
		catalog     domain.Catalog
		description sql.NullString
	)
	if err := row.Scan(
		&catalog.ID,
		&catalog.Name,
		&description,
		&catalog.CreatedAt,
		&catalog.UpdatedAt,
	); err != nil {
		return nil, err
	}
	catalog.Description = nullStringPtr(description)
	return &catalog, nil
}

// Create inserts a new catalog. A concurrent insert of the same name surfaces
// as ErrCatalogAlreadyExists through the unique constraint.
func (r *catalogRepository) Create(ctx context.Context, catalog *domain.Catalog) error {
	row := psql.Insert("catalogs").
		SetMap(map[string]interface{}{
			"name":        catalog.Name,
			"description": catalog.Description,
		}).
		Suffix("RETURNING id, created_at, updated_at").
		RunWith(r.db).
		QueryRowContext(ctx)

	if err := row.Scan(&catalog.ID, &catalog.CreatedAt, &catalog.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrCatalogAlreadyExists
		}
		return fmt.Errorf("failed to create catalog: %w", err)
	}

	return nil
}

func catalogChangeSet(patch domain.CatalogPatch) map[string]interface{} {
	changes := make(map[string]interface{})
	if patch.Name != nil {
		changes["name"] = *patch.Name
	}
	if patch.Description != nil {
		changes["description"] = *patch.Description
	}
	return changes
}

// Update writes only the fields present in the patch and returns the stored row
func (r *catalogRepository) Update(ctx context.Context, id int64, patch domain.CatalogPatch) (*domain.Catalog, error) {
	if patch.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	row := psql.Update("catalogs").
		SetMap(catalogChangeSet(patch)).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, name, description, created_at, updated_at").
		RunWith(r.db).
		QueryRowContext(ctx)

	catalog, err := scanCatalog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCatalogNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrCatalogAlreadyExists
		}
		return nil, fmt.Errorf("failed to update catalog: %w", err)
	}

	return catalog, nil
}

// Delete removes a catalog. Products referencing it are orphaned by the foreign key.
func (r *catalogRepository) Delete(ctx context.Context, id int64) error {
	result, err := psql.Delete("catalogs").
		Where(squirrel.Eq{"id": id}).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete catalog: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCatalogNotFound
	}

	return nil
}

func (r *catalogRepository) findOne(ctx context.Context, where squirrel.Eq) (*domain.Catalog, error) {
	row := psql.Select(catalogColumns...).
		From("catalogs").
		Where(where).
		RunWith(r.db).
		QueryRowContext(ctx)

	catalog, err := scanCatalog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCatalogNotFound
		}
		return nil, err
	}
	return catalog, nil
}

// FindByID retrieves a catalog by ID
func (r *catalogRepository) FindByID(ctx context.Context, id int64) (*domain.Catalog, error) {
	catalog, err := r.findOne(ctx, squirrel.Eq{"id": id})
	if err != nil && !errors.Is(err, ErrCatalogNotFound) {
		return nil, fmt.Errorf("failed to find catalog by ID: %w", err)
	}
	return catalog, err
}

// FindByName retrieves a catalog by its exact, case-sensitive name
func (r *catalogRepository) FindByName(ctx context.Context, name string) (*domain.Catalog, error) {
	catalog, err := r.findOne(ctx, squirrel.Eq{"name": name})
	if err != nil && !errors.Is(err, ErrCatalogNotFound) {
		return nil, fmt.Errorf("failed to find catalog by name: %w", err)
	}
	return catalog, err
}

// List retrieves all catalogs, newest first
func (r *catalogRepository) List(ctx context.Context) ([]*domain.Catalog, error) {
	rows, err := psql.Select(catalogColumns...).
		From("catalogs").
		OrderBy("created_at DESC", "id DESC").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalogs: %w", err)
	}
	defer rows.Close()

	catalogs := []*domain.Catalog{}
	for rows.Next() {
		catalog, err := scanCatalog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog: %w", err)
		}
		catalogs = append(catalogs, catalog)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalogs: %w", err)
	}

	return catalogs, nil
}
