package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/example/retail-shop/internal/domain/product"
	"github.com/shopspring/decimal"
)

// MockProductCatalog is an in-memory product.Repository.
type MockProductCatalog struct {
	mu       sync.RWMutex
	products map[int64]product.Product

	FindByIDCalls []int64
	Err           error
}

func NewMockProductCatalog(products ...product.Product) *MockProductCatalog {
	m := &MockProductCatalog{products: make(map[int64]product.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

// PricedProduct is a shorthand for a catalog entry with a price.
func PricedProduct(id int64, name, price string) product.Product {
	return product.Product{
		ID:        id,
		Name:      name,
		UnitPrice: decimal.NewNullDecimal(decimal.RequireFromString(price)),
		IsActive:  true,
	}
}

func (m *MockProductCatalog) FindByID(ctx context.Context, id int64) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindByIDCalls = append(m.FindByIDCalls, id)

	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return &p, nil
}

func (m *MockProductCatalog) FindAll(ctx context.Context) ([]product.Product, error) {
	return m.filter(func(product.Product) bool { return true })
}

func (m *MockProductCatalog) Search(ctx context.Context, query string) ([]product.Product, error) {
	q := strings.ToLower(query)
	return m.filter(func(p product.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q) ||
			strings.Contains(strings.ToLower(p.Brand), q)
	})
}

func (m *MockProductCatalog) filter(keep func(product.Product) bool) ([]product.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Err != nil {
		return nil, m.Err
	}
	var out []product.Product
	for _, p := range m.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
