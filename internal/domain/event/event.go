package event

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// Keys and values used in event payloads.
const (
	KeyEventType = "event_type"
	KeyOrderID   = "order_id"

	TypePurchase = "purchase"
)

var (
	ErrInvalidCustomerID = errors.New("customer id must be positive")
	ErrEmptyPayload      = errors.New("event data is required")
)

// CustomerEvent is one append-only activity record. Data is stored as JSON.
type CustomerEvent struct {
	ID             int64          `json:"event_id"`
	CustomerID     int64          `json:"customer_id"`
	EventTimestamp time.Time      `json:"event_timestamp"`
	Data           map[string]any `json:"event_data"`
	LoadTimestamp  time.Time      `json:"load_timestamp"`
}

// Type returns the event_type marker of the payload, if any.
func (e *CustomerEvent) Type() string {
	t, _ := e.Data[KeyEventType].(string)
	return t
}

// OrderID extracts the order_id of a purchase payload. Payloads that went
// through JSON carry numbers as float64 or json.Number.
func (e *CustomerEvent) OrderID() (int64, bool) {
	switch v := e.Data[KeyOrderID].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), v == float64(int64(v))
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	}
	return 0, false
}

// Log is the append-only event store. Append assigns ID and LoadTimestamp and
// fills EventTimestamp when it is zero. FindByCustomer returns newest first.
type Log interface {
	Append(ctx context.Context, e *CustomerEvent) error
	FindByCustomer(ctx context.Context, customerID int64) ([]CustomerEvent, error)
}

// Publisher hands events to the message broker. Both the Kafka producer and
// the RabbitMQ publisher satisfy it.
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
}
