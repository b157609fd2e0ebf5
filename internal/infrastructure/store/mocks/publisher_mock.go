package mocks

import (
	"context"
	"sync"
)

// PublishCall records parameters passed to Publish
type PublishCall struct {
	Key     string
	Payload any
}

// MockPublisher records published messages.
type MockPublisher struct {
	mu    sync.Mutex
	Calls []PublishCall
	Err   error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, key string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, PublishCall{Key: key, Payload: payload})
	return m.Err
}
