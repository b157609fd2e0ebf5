package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/example/retail-shop/internal/domain/customer"
)

// MockCustomerLedger is an in-memory customer.Repository for tests. Records
// are copied in and out so callers cannot mutate stored state by accident.
type MockCustomerLedger struct {
	mu        sync.RWMutex
	customers map[int64]customer.Customer
	nextID    int64

	FindByIDCalls []int64
	SaveCalls     []customer.Customer
	FindErr       error
	SaveErr       error
}

func NewMockCustomerLedger() *MockCustomerLedger {
	return &MockCustomerLedger{customers: make(map[int64]customer.Customer)}
}

func (m *MockCustomerLedger) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindByIDCalls = append(m.FindByIDCalls, id)

	if m.FindErr != nil {
		return nil, m.FindErr
	}
	c, ok := m.customers[id]
	if !ok {
		return nil, customer.ErrCustomerNotFound
	}
	return &c, nil
}

func (m *MockCustomerLedger) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FindErr != nil {
		return nil, m.FindErr
	}
	for _, c := range m.customers {
		if strings.EqualFold(c.Email, email) {
			c := c
			return &c, nil
		}
	}
	return nil, customer.ErrCustomerNotFound
}

// Save enforces email uniqueness the way the unique index does.
func (m *MockCustomerLedger) Save(ctx context.Context, c *customer.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls = append(m.SaveCalls, *c)

	if m.SaveErr != nil {
		return m.SaveErr
	}
	for id, existing := range m.customers {
		if id != c.ID && strings.EqualFold(existing.Email, c.Email) {
			return customer.ErrEmailTaken
		}
	}
	if c.ID == 0 {
		m.nextID++
		c.ID = m.nextID
	}
	m.customers[c.ID] = *c
	return nil
}

// Put stores c as-is, bypassing call recording.
func (m *MockCustomerLedger) Put(c customer.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID > m.nextID {
		m.nextID = c.ID
	}
	m.customers[c.ID] = c
}

// Get returns the stored record without recording a call.
func (m *MockCustomerLedger) Get(id int64) (customer.Customer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customers[id]
	return c, ok
}

func (m *MockCustomerLedger) snapshot() map[int64]customer.Customer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]customer.Customer, len(m.customers))
	for k, v := range m.customers {
		out[k] = v
	}
	return out
}

func (m *MockCustomerLedger) restore(state map[int64]customer.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers = state
}
