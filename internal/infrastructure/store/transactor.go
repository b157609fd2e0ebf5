package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/retail-shop/internal/domain/order"
)

// PostgresTransactor binds the checkout stores to one database transaction.
type PostgresTransactor struct {
	db *sql.DB
}

func NewPostgresTransactor(db *sql.DB) *PostgresTransactor {
	return &PostgresTransactor{db: db}
}

func (t *PostgresTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx order.Stores) error) (err error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	stores := order.Stores{
		Orders:    &PostgresOrderStore{db: tx},
		Customers: &PostgresCustomerStore{db: tx, forUpdate: true},
		Events:    &PostgresEventLog{db: tx},
	}
	if err = fn(ctx, stores); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
