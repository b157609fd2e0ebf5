package event_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/example/retail-shop/internal/domain/event"
	"github.com/example/retail-shop/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestService_Record(t *testing.T) {
	log := mocks.NewMockEventLog()
	pub := mocks.NewMockPublisher()
	svc := event.NewService(log, pub, nil)

	e, err := svc.Record(context.Background(), 5, map[string]any{"event_type": "page_view", "page": "/home"})

	require.NoError(t, err)
	assert.NotZero(t, e.ID)
	assert.False(t, e.EventTimestamp.IsZero())
	assert.False(t, e.LoadTimestamp.IsZero())
	assert.Equal(t, "page_view", e.Type())
	require.Len(t, pub.Calls, 1)
	assert.Equal(t, "5", pub.Calls[0].Key)
}

func TestService_Record_Rejections(t *testing.T) {
	log := mocks.NewMockEventLog()
	svc := event.NewService(log, nil, nil)
	ctx := context.Background()

	_, err := svc.Record(ctx, 0, map[string]any{"a": 1})
	assert.ErrorIs(t, err, event.ErrInvalidCustomerID)

	_, err = svc.Record(ctx, 1, nil)
	assert.ErrorIs(t, err, event.ErrEmptyPayload)

	assert.Empty(t, log.AppendCalls)
}

func TestService_Record_AppendFailureSkipsPublish(t *testing.T) {
	log := mocks.NewMockEventLog()
	log.AppendErr = errors.New("insert failed")
	pub := mocks.NewMockPublisher()
	svc := event.NewService(log, pub, nil)

	_, err := svc.Record(context.Background(), 1, map[string]any{"a": 1})

	assert.EqualError(t, err, "insert failed")
	assert.Empty(t, pub.Calls)
}

func TestService_Record_PublishFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	pub := mocks.NewMockPublisher()
	pub.Err = errors.New("broker down")
	svc := event.NewService(mocks.NewMockEventLog(), pub, zap.New(core))

	_, err := svc.Record(context.Background(), 1, map[string]any{"a": 1})

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to publish customer event", logs.All()[0].Message)
}

func TestService_ListByCustomer(t *testing.T) {
	log := mocks.NewMockEventLog()
	svc := event.NewService(log, nil, nil)
	ctx := context.Background()

	empty, err := svc.ListByCustomer(ctx, 3)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.ListByCustomer(ctx, 0)
	assert.ErrorIs(t, err, event.ErrInvalidCustomerID)

	_, err = svc.Record(ctx, 3, map[string]any{"n": 1})
	require.NoError(t, err)
	_, err = svc.Record(ctx, 4, map[string]any{"n": 2})
	require.NoError(t, err)

	events, err := svc.ListByCustomer(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestService_ListByCustomer_NewestFirstWithIDTiebreak(t *testing.T) {
	log := mocks.NewMockEventLog()
	svc := event.NewService(log, nil, nil)
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, ts := range []time.Time{at, at, at.Add(-time.Hour), at} {
		require.NoError(t, log.Append(ctx, &event.CustomerEvent{CustomerID: 3, EventTimestamp: ts, Data: map[string]any{"n": 1}}))
	}

	events, err := svc.ListByCustomer(ctx, 3)
	require.NoError(t, err)

	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int64{4, 2, 1, 3}, ids)
}

func TestCustomerEvent_OrderID(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int64
		ok    bool
	}{
		{"int64", int64(42), 42, true},
		{"int", 42, 42, true},
		{"float64", float64(42), 42, true},
		{"fractional float", 42.5, 0, false},
		{"json number", json.Number("42"), 42, true},
		{"string", "42", 42, true},
		{"garbage string", "x", 0, false},
		{"missing", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := event.CustomerEvent{Data: map[string]any{}}
			if tt.value != nil {
				e.Data[event.KeyOrderID] = tt.value
			}
			got, ok := e.OrderID()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
