package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/example/retail-shop/internal/domain/order"
)

// MockOrderStore is an in-memory order.Repository.
type MockOrderStore struct {
	mu         sync.RWMutex
	orders     map[int64]order.Order
	nextID     int64
	nextItemID int64

	SaveCalls int
	SaveErr   error
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{orders: make(map[int64]order.Order)}
}

func (m *MockOrderStore) Save(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++

	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.nextID++
	o.ID = m.nextID
	for i := range o.Items {
		m.nextItemID++
		o.Items[i].ID = m.nextItemID
		o.Items[i].OrderID = o.ID
	}

	stored := *o
	stored.Items = append([]order.OrderItem(nil), o.Items...)
	m.orders[o.ID] = stored
	return nil
}

func (m *MockOrderStore) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return &o, nil
}

func (m *MockOrderStore) FindByCustomer(ctx context.Context, customerID int64) ([]order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []order.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Count returns the number of stored orders.
func (m *MockOrderStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

// Put stores o as-is.
func (m *MockOrderStore) Put(o order.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID > m.nextID {
		m.nextID = o.ID
	}
	m.orders[o.ID] = o
}

func (m *MockOrderStore) snapshot() (map[int64]order.Order, int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]order.Order, len(m.orders))
	for k, v := range m.orders {
		out[k] = v
	}
	return out, m.nextID
}

func (m *MockOrderStore) restore(state map[int64]order.Order, nextID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = state
	m.nextID = nextID
}
