package product

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/retail-shop/internal/domain/money"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidID       = errors.New("product id must be positive")
)

// Product is a catalog entry. UnitPrice is nullable: legacy rows without a
// price can be browsed but not ordered.
type Product struct {
	ID            int64               `json:"product_id"`
	Name          string              `json:"product_name"`
	Category      string              `json:"category"`
	Subcategory   string              `json:"subcategory,omitempty"`
	Brand         string              `json:"brand"`
	UnitPrice     decimal.NullDecimal `json:"unit_price"`
	CostPrice     decimal.NullDecimal `json:"-"`
	StockQuantity int                 `json:"stock_quantity"`
	ReorderLevel  int                 `json:"reorder_level"`
	IsActive      bool                `json:"is_active"`
	CreatedDate   time.Time           `json:"created_date"`
	LastUpdated   time.Time           `json:"last_updated"`
}

// Repository is the read side of the catalog.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Product, error)
	FindAll(ctx context.Context) ([]Product, error)
	Search(ctx context.Context, query string) ([]Product, error)
}

func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		UnitPrice *string `json:"unit_price"`
	}{plain(p), money.FormatNull(p.UnitPrice)})
}
