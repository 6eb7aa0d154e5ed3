package transport

import (
	"context"
	"sort"
	"sync"
	"time"

	"shop-inventory/internal/domain"
	"shop-inventory/internal/repository"
)

// memoryStore backs both in-memory repositories used by the handler tests
type memoryStore struct {
	mu            sync.Mutex
	catalogs      map[int64]domain.Catalog
	products      map[int64]domain.Product
	nextCatalogID int64
	nextProductID int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		catalogs: make(map[int64]domain.Catalog),
		products: make(map[int64]domain.Product),
	}
}

type memoryCatalogRepository struct{ s *memoryStore }

type memoryProductRepository struct{ s *memoryStore }

func (m memoryCatalogRepository) Create(ctx context.Context, catalog *domain.Catalog) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.catalogs {
		if c.Name == catalog.Name {
			return repository.ErrCatalogAlreadyExists
		}
	}
	m.s.nextCatalogID++
	catalog.ID = m.s.nextCatalogID
	catalog.CreatedAt = time.Now().UTC()
	catalog.UpdatedAt = catalog.CreatedAt
	m.s.catalogs[catalog.ID] = *catalog
	return nil
}

func (m memoryCatalogRepository) Update(ctx context.Context, id int64, patch domain.CatalogPatch) (*domain.Catalog, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.catalogs[id]
	if !ok {
		return nil, repository.ErrCatalogNotFound
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		c.Description = patch.Description
	}
	m.s.catalogs[id] = c
	return &c, nil
}

func (m memoryCatalogRepository) Delete(ctx context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.catalogs[id]; !ok {
		return repository.ErrCatalogNotFound
	}
	delete(m.s.catalogs, id)
	return nil
}

func (m memoryCatalogRepository) FindByID(ctx context.Context, id int64) (*domain.Catalog, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.catalogs[id]
	if !ok {
		return nil, repository.ErrCatalogNotFound
	}
	return &c, nil
}

func (m memoryCatalogRepository) FindByName(ctx context.Context, name string) (*domain.Catalog, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.catalogs {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, repository.ErrCatalogNotFound
}

func (m memoryCatalogRepository) List(ctx context.Context) ([]*domain.Catalog, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []*domain.Catalog{}
	for _, c := range m.s.catalogs {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m memoryProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, p := range m.s.products {
		if p.Name == product.Name {
			return repository.ErrProductAlreadyExists
		}
	}
	m.s.nextProductID++
	product.ID = m.s.nextProductID
	product.CreatedAt = time.Now().UTC()
	product.UpdatedAt = product.CreatedAt
	m.s.products[product.ID] = *product
	return nil
}

func (m memoryProductRepository) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.StockQuantity != nil {
		p.StockQuantity = *patch.StockQuantity
	}
	if patch.CatalogID != nil {
		catalogID := *patch.CatalogID
		p.CatalogID = &catalogID
	}
	m.s.products[id] = p
	return &p, nil
}

func (m memoryProductRepository) Delete(ctx context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.s.products, id)
	return nil
}

func (m memoryProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (m memoryProductRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, p := range m.s.products {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m memoryProductRepository) where(keep func(domain.Product) bool) []*domain.Product {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range m.s.products {
		if keep(p) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m memoryProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	return m.where(func(domain.Product) bool { return true }), nil
}

func (m memoryProductRepository) ListUnassigned(ctx context.Context) ([]*domain.Product, error) {
	return m.where(func(p domain.Product) bool { return p.CatalogID == nil }), nil
}

func (m memoryProductRepository) ListByCatalog(ctx context.Context, catalogID int64) ([]*domain.Product, error) {
	return m.where(func(p domain.Product) bool { return p.BelongsTo(catalogID) }), nil
}

func (m memoryProductRepository) setCatalog(productID int64, catalogID *int64) (*domain.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[productID]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	p.CatalogID = catalogID
	m.s.products[productID] = p
	return &p, nil
}

func (m memoryProductRepository) AssignToCatalog(ctx context.Context, productID, catalogID int64) (*domain.Product, error) {
	return m.setCatalog(productID, &catalogID)
}

func (m memoryProductRepository) RemoveFromCatalog(ctx context.Context, productID int64) (*domain.Product, error) {
	return m.setCatalog(productID, nil)
}

func (m memoryProductRepository) ClearCatalog(ctx context.Context, catalogID int64) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var cleared int64
	for id, p := range m.s.products {
		if p.BelongsTo(catalogID) {
			p.CatalogID = nil
			m.s.products[id] = p
			cleared++
		}
	}
	return cleared, nil
}
