package service

import (
	"context"
	"sort"
	"time"

	"shop-inventory/internal/domain"
	"shop-inventory/internal/repository"
)

// Mock repositories for testing. Both share a store so catalog deletion can
// observe product references.
type mockStore struct {
	catalogs      map[int64]*domain.Catalog
	products      map[int64]*domain.Product
	nextCatalogID int64
	nextProductID int64
}

func newMockStore() *mockStore {
	return &mockStore{
		catalogs: make(map[int64]*domain.Catalog),
		products: make(map[int64]*domain.Product),
	}
}

type mockCatalogRepository struct {
	store *mockStore
}

func (m *mockCatalogRepository) Create(ctx context.Context, catalog *domain.Catalog) error {
	for _, existing := range m.store.catalogs {
		if existing.Name == catalog.Name {
			return repository.ErrCatalogAlreadyExists
		}
	}
	m.store.nextCatalogID++
	catalog.ID = m.store.nextCatalogID
	catalog.CreatedAt = time.Now()
	catalog.UpdatedAt = catalog.CreatedAt
	stored := *catalog
	m.store.catalogs[catalog.ID] = &stored
	return nil
}

func (m *mockCatalogRepository) Update(ctx context.Context, id int64, patch domain.CatalogPatch) (*domain.Catalog, error) {
	catalog, exists := m.store.catalogs[id]
	if !exists {
		return nil, repository.ErrCatalogNotFound
	}
	if patch.Name != nil {
		for _, existing := range m.store.catalogs {
			if existing.ID != id && existing.Name == *patch.Name {
				return nil, repository.ErrCatalogAlreadyExists
			}
		}
		catalog.Name = *patch.Name
	}
	if patch.Description != nil {
		catalog.Description = patch.Description
	}
	catalog.UpdatedAt = time.Now()
	updated := *catalog
	return &updated, nil
}

func (m *mockCatalogRepository) Delete(ctx context.Context, id int64) error {
	if _, exists := m.store.catalogs[id]; !exists {
		return repository.ErrCatalogNotFound
	}
	delete(m.store.catalogs, id)
	return nil
}

func (m *mockCatalogRepository) FindByID(ctx context.Context, id int64) (*domain.Catalog, error) {
	catalog, exists := m.store.catalogs[id]
	if !exists {
		return nil, repository.ErrCatalogNotFound
	}
	found := *catalog
	return &found, nil
}

func (m *mockCatalogRepository) FindByName(ctx context.Context, name string) (*domain.Catalog, error) {
	for _, catalog := range m.store.catalogs {
		if catalog.Name == name {
			found := *catalog
			return &found, nil
		}
	}
	return nil, repository.ErrCatalogNotFound
}

func (m *mockCatalogRepository) List(ctx context.Context) ([]*domain.Catalog, error) {
	catalogs := []*domain.Catalog{}
	for _, catalog := range m.store.catalogs {
		c := *catalog
		catalogs = append(catalogs, &c)
	}
	sort.Slice(catalogs, func(i, j int) bool { return catalogs[i].ID > catalogs[j].ID })
	return catalogs, nil
}

type mockProductRepository struct {
	store *mockStore
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	for _, existing := range m.store.products {
		if existing.Name == product.Name {
			return repository.ErrProductAlreadyExists
		}
	}
	if product.CatalogID != nil {
		if _, ok := m.store.catalogs[*product.CatalogID]; !ok {
			return repository.ErrCatalogNotFound
		}
	}
	m.store.nextProductID++
	product.ID = m.store.nextProductID
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	stored := *product
	m.store.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	product, exists := m.store.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	if patch.Name != nil {
		for _, existing := range m.store.products {
			if existing.ID != id && existing.Name == *patch.Name {
				return nil, repository.ErrProductAlreadyExists
			}
		}
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = patch.Description
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.StockQuantity != nil {
		product.StockQuantity = *patch.StockQuantity
	}
	if patch.CatalogID != nil {
		id := *patch.CatalogID
		product.CatalogID = &id
	}
	updated := *product
	return &updated, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	if _, exists := m.store.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.store.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, exists := m.store.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	found := *product
	return &found, nil
}

func (m *mockProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	for _, product := range m.store.products {
		if product.Name == name {
			found := *product
			return &found, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *mockProductRepository) filter(keep func(*domain.Product) bool) []*domain.Product {
	products := []*domain.Product{}
	for _, product := range m.store.products {
		if keep(product) {
			p := *product
			products = append(products, &p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID > products[j].ID })
	return products
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	return m.filter(func(*domain.Product) bool { return true }), nil
}

func (m *mockProductRepository) ListUnassigned(ctx context.Context) ([]*domain.Product, error) {
	return m.filter(func(p *domain.Product) bool { return !p.IsAssigned() }), nil
}

func (m *mockProductRepository) ListByCatalog(ctx context.Context, catalogID int64) ([]*domain.Product, error) {
	return m.filter(func(p *domain.Product) bool { return p.BelongsTo(catalogID) }), nil
}

func (m *mockProductRepository) AssignToCatalog(ctx context.Context, productID, catalogID int64) (*domain.Product, error) {
	product, exists := m.store.products[productID]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	product.CatalogID = &catalogID
	updated := *product
	return &updated, nil
}

func (m *mockProductRepository) RemoveFromCatalog(ctx context.Context, productID int64) (*domain.Product, error) {
	product, exists := m.store.products[productID]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	product.CatalogID = nil
	updated := *product
	return &updated, nil
}

func (m *mockProductRepository) ClearCatalog(ctx context.Context, catalogID int64) (int64, error) {
	var cleared int64
	for _, product := range m.store.products {
		if product.BelongsTo(catalogID) {
			product.CatalogID = nil
			cleared++
		}
	}
	return cleared, nil
}

// newMockRepositories wires both repositories over one store
func newMockRepositories() (*mockCatalogRepository, *mockProductRepository) {
	store := newMockStore()
	return &mockCatalogRepository{store: store}, &mockProductRepository{store: store}
}
