package mocks

import (
	"context"
	"sync"

	"github.com/example/retail-shop/internal/domain/order"
)

// MockTransactor gives all-or-nothing semantics over the mock stores by
// snapshotting them before fn runs and restoring them when fn fails.
// Transactions are serialised.
type MockTransactor struct {
	mu        sync.Mutex
	Orders    *MockOrderStore
	Customers *MockCustomerLedger
	Events    *MockEventLog

	Commits   int
	Rollbacks int
}

func NewMockTransactor(orders *MockOrderStore, customers *MockCustomerLedger, events *MockEventLog) *MockTransactor {
	return &MockTransactor{Orders: orders, Customers: customers, Events: events}
}

func (t *MockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx order.Stores) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	orders, orderSeq := t.Orders.snapshot()
	customers := t.Customers.snapshot()
	events, eventSeq := t.Events.snapshot()

	err := fn(ctx, order.Stores{Orders: t.Orders, Customers: t.Customers, Events: t.Events})
	if err != nil {
		t.Orders.restore(orders, orderSeq)
		t.Customers.restore(customers)
		t.Events.restore(events, eventSeq)
		t.Rollbacks++
		return err
	}
	t.Commits++
	return nil
}
