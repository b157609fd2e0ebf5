package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/retail-shop/internal/domain/event"
)

// MockEventLog is an in-memory event.Log that records every Append.
type MockEventLog struct {
	mu     sync.RWMutex
	events []event.CustomerEvent
	nextID int64

	AppendCalls []event.CustomerEvent
	AppendErr   error
	FindErr     error
}

func NewMockEventLog() *MockEventLog {
	return &MockEventLog{}
}

func (m *MockEventLog) Append(ctx context.Context, e *event.CustomerEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppendCalls = append(m.AppendCalls, *e)

	if m.AppendErr != nil {
		return m.AppendErr
	}
	now := time.Now()
	if e.EventTimestamp.IsZero() {
		e.EventTimestamp = now
	}
	m.nextID++
	e.ID = m.nextID
	e.LoadTimestamp = now
	m.events = append(m.events, *e)
	return nil
}

func (m *MockEventLog) FindByCustomer(ctx context.Context, customerID int64) ([]event.CustomerEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FindErr != nil {
		return nil, m.FindErr
	}
	out := []event.CustomerEvent{}
	for _, e := range m.events {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EventTimestamp.Equal(out[j].EventTimestamp) {
			return out[i].EventTimestamp.After(out[j].EventTimestamp)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Events returns every stored event in append order.
func (m *MockEventLog) Events() []event.CustomerEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]event.CustomerEvent(nil), m.events...)
}

func (m *MockEventLog) snapshot() ([]event.CustomerEvent, int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]event.CustomerEvent(nil), m.events...), m.nextID
}

func (m *MockEventLog) restore(events []event.CustomerEvent, nextID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = events
	m.nextID = nextID
}
