package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/retail-shop/internal/domain/order"
)

const orderColumns = `order_id, customer_id, order_status, COALESCE(payment_method, ''),
	COALESCE(shipping_address, ''), total_amount, order_date, created_at`

// PostgresOrderStore implements order.Repository.
type PostgresOrderStore struct {
	db dbtx
}

func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

// Save inserts the header and then each item. Run it inside a transaction
// when a partially written order must not survive a failure.
func (s *PostgresOrderStore) Save(ctx context.Context, o *order.Order) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO orders (customer_id, order_date, order_status, payment_method, shipping_address, total_amount, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING order_id`,
		o.CustomerID, o.OrderDate, string(o.Status), o.PaymentMethod, o.ShippingAddress, o.TotalAmount, o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		err := s.db.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, line_total)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING order_item_id`,
			item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.LineTotal,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert order item %d: %w", item.ProductID, err)
		}
	}
	return nil
}

func (s *PostgresOrderStore) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = s.items(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// FindByCustomer returns the customer's orders newest first, items included.
func (s *PostgresOrderStore) FindByCustomer(ctx context.Context, customerID int64) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY order_date DESC, order_id DESC`,
		customerID,
	)
	if err != nil {
		return nil, err
	}

	orders := []order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].Items, err = s.items(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *PostgresOrderStore) items(ctx context.Context, orderID int64) ([]order.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT order_item_id, order_id, product_id, product_name, quantity, unit_price, line_total
		 FROM order_items WHERE order_id = $1 ORDER BY order_item_id`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []order.OrderItem{}
	for rows.Next() {
		var it order.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanOrder(row scanner) (*order.Order, error) {
	var o order.Order
	var status string
	err := row.Scan(&o.ID, &o.CustomerID, &status, &o.PaymentMethod, &o.ShippingAddress, &o.TotalAmount, &o.OrderDate, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = order.Status(status)
	return &o, nil
}
