package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/retail-shop/internal/domain/product"
)

const productColumns = `product_id, product_name, COALESCE(category, ''), COALESCE(subcategory, ''),
	COALESCE(brand, ''), unit_price, cost_price, stock_quantity, reorder_level, is_active,
	created_date, last_updated`

// PostgresProductStore implements product.Repository.
type PostgresProductStore struct {
	db dbtx
}

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (s *PostgresProductStore) FindByID(ctx context.Context, id int64) (*product.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE product_id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, product.ErrProductNotFound
	}
	return p, err
}

func (s *PostgresProductStore) FindAll(ctx context.Context) ([]product.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY product_id`)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

// Search matches query case-insensitively against name, category and brand.
func (s *PostgresProductStore) Search(ctx context.Context, query string) ([]product.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE product_name ILIKE $1 OR category ILIKE $1 OR brand ILIKE $1
		 ORDER BY product_id`,
		"%"+escapeLike(query)+"%",
	)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (*product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Category, &p.Subcategory, &p.Brand,
		&p.UnitPrice, &p.CostPrice, &p.StockQuantity, &p.ReorderLevel, &p.IsActive,
		&p.CreatedDate, &p.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]product.Product, error) {
	defer rows.Close()

	products := []product.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
