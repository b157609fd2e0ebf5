package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/retail-shop/internal/domain/event"
)

// PostgresEventLog implements event.Log over the customer_events table.
type PostgresEventLog struct {
	db dbtx
}

func NewPostgresEventLog(db *sql.DB) *PostgresEventLog {
	return &PostgresEventLog{db: db}
}

func (l *PostgresEventLog) Append(ctx context.Context, e *event.CustomerEvent) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	return l.db.QueryRowContext(ctx,
		`INSERT INTO customer_events (customer_id, event_timestamp, event_data)
		 VALUES ($1, COALESCE($2, now()), $3)
		 RETURNING event_id, event_timestamp, load_timestamp`,
		e.CustomerID, nullTime(e.EventTimestamp), data,
	).Scan(&e.ID, &e.EventTimestamp, &e.LoadTimestamp)
}

func (l *PostgresEventLog) FindByCustomer(ctx context.Context, customerID int64) ([]event.CustomerEvent, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT event_id, customer_id, event_timestamp, event_data, load_timestamp
		 FROM customer_events
		 WHERE customer_id = $1
		 ORDER BY event_timestamp DESC, event_id DESC`,
		customerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []event.CustomerEvent{}
	for rows.Next() {
		var e event.CustomerEvent
		var raw []byte
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.EventTimestamp, &raw, &e.LoadTimestamp); err != nil {
			return nil, err
		}
		if e.Data, err = decodeEventData(raw); err != nil {
			return nil, fmt.Errorf("event %d: %w", e.ID, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// decodeEventData keeps numbers as json.Number so ids survive intact.
func decodeEventData(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}
