package order

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/example/retail-shop/internal/domain/customer"
	"github.com/example/retail-shop/internal/domain/event"
	"github.com/example/retail-shop/internal/domain/money"
	"github.com/example/retail-shop/internal/domain/product"
	"github.com/shopspring/decimal"
)

type Status string

// StatusProcessing is the status of every freshly placed order. No other
// transitions are driven by this package.
const StatusProcessing Status = "Processing"

var (
	ErrEmptyOrder       = errors.New("order must have at least one item")
	ErrInvalidQuantity  = errors.New("item quantity must be greater than zero")
	ErrMissingPrice     = errors.New("product price missing")
	ErrAmountOutOfRange = errors.New("amount exceeds the largest storable value")
	ErrOrderNotFound    = errors.New("order not found")
)

// MaxQuantity is the largest quantity an order line can hold.
const MaxQuantity = math.MaxInt32

// MaxAmount bounds every stored money value: line totals, order totals and
// lifetime values all live in NUMERIC(12,2) columns.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// IsValidation reports whether err is a rejection of the request itself.
// Under a transactor nothing is persisted when one is returned.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyOrder) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrMissingPrice) ||
		errors.Is(err, ErrAmountOutOfRange)
}

// ItemRequest is one requested line. Prices are never taken from the client.
type ItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// PlaceOrderRequest is the checkout input.
type PlaceOrderRequest struct {
	CustomerID      int64         `json:"customer_id"`
	Items           []ItemRequest `json:"items"`
	PaymentMethod   string        `json:"payment_method"`
	ShippingAddress string        `json:"shipping_address"`
}

type Order struct {
	ID              int64           `json:"order_id"`
	CustomerID      int64           `json:"customer_id"`
	Status          Status          `json:"order_status"`
	PaymentMethod   string          `json:"payment_method"`
	ShippingAddress string          `json:"shipping_address"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	OrderDate       time.Time       `json:"order_date"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []OrderItem     `json:"items"`
}

// OrderItem snapshots the product name and unit price at order time.
type OrderItem struct {
	ID          int64           `json:"order_item_id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// LineTotal prices a line: unit price times quantity, rounded half away from
// zero to the cent.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// SumLineTotals returns the order total for items.
func SumLineTotals(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	return total
}

// ProductLookup resolves the authoritative price and name of a product.
type ProductLookup interface {
	FindByID(ctx context.Context, id int64) (*product.Product, error)
}

// CustomerLedger reads and writes customer records.
type CustomerLedger interface {
	FindByID(ctx context.Context, id int64) (*customer.Customer, error)
	Save(ctx context.Context, c *customer.Customer) error
}

// EventLog appends customer events.
type EventLog interface {
	Append(ctx context.Context, e *event.CustomerEvent) error
}

// Repository persists orders. Save writes the header and then every item,
// assigning ids to both.
type Repository interface {
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	FindByCustomer(ctx context.Context, customerID int64) ([]Order, error)
}

// Stores groups the collaborators written during checkout.
type Stores struct {
	Orders    Repository
	Customers CustomerLedger
	Events    EventLog
}

// Transactor runs fn with Stores bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error
}

func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		TotalAmount string `json:"total_amount"`
	}{plain(o), money.Format(o.TotalAmount)})
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	type plain OrderItem
	return json.Marshal(struct {
		plain
		UnitPrice string `json:"unit_price"`
		LineTotal string `json:"line_total"`
	}{plain(i), money.Format(i.UnitPrice), money.Format(i.LineTotal)})
}
