package order

import (
	"context"
	"fmt"
	"time"

	"github.com/example/retail-shop/internal/domain/customer"
	"github.com/example/retail-shop/internal/domain/event"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Workflow places orders: it validates and prices the request, then saves
// the order, bumps the customer's lifetime value and logs a purchase event.
type Workflow struct {
	products  ProductLookup
	stores    Stores
	tx        Transactor
	publisher event.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Workflow)

// WithTransactor makes the three checkout writes atomic. Without one they
// run back to back against the plain stores with no rollback.
func WithTransactor(tx Transactor) Option {
	return func(w *Workflow) { w.tx = tx }
}

// WithPublisher forwards committed purchase events to a broker.
func WithPublisher(p event.Publisher) Option {
	return func(w *Workflow) { w.publisher = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

func NewWorkflow(products ProductLookup, stores Stores, opts ...Option) *Workflow {
	w := &Workflow{
		products: products,
		stores:   stores,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// PlaceOrder runs a checkout. Validation failures (ErrEmptyOrder,
// ErrInvalidQuantity, ErrMissingPrice, ErrAmountOutOfRange) and lookups of
// unknown customers or products fail before anything is written.
func (w *Workflow) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	if err := checkQuantities(req.Items); err != nil {
		return nil, err
	}

	buyer, err := w.stores.Customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	items, err := w.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	total := SumLineTotals(items)
	if err := checkAmount("order total", total); err != nil {
		return nil, err
	}
	if err := checkLifetimeValue(buyer, total); err != nil {
		return nil, err
	}

	now := w.now()
	o := &Order{
		CustomerID:      req.CustomerID,
		Status:          StatusProcessing,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		TotalAmount:     total,
		OrderDate:       now,
		CreatedAt:       now,
		Items:           items,
	}

	var purchase *event.CustomerEvent
	err = w.runWrites(ctx, func(ctx context.Context, s Stores) error {
		if err := s.Orders.Save(ctx, o); err != nil {
			return fmt.Errorf("save order: %w", err)
		}

		// Re-read inside the write phase so a transactional ledger can lock the row.
		c, err := s.Customers.FindByID(ctx, o.CustomerID)
		if err != nil {
			return fmt.Errorf("reload customer: %w", err)
		}
		if err := checkLifetimeValue(c, o.TotalAmount); err != nil {
			return err
		}
		c.AddToLifetimeValue(o.TotalAmount)
		if err := s.Customers.Save(ctx, c); err != nil {
			return fmt.Errorf("update lifetime value: %w", err)
		}

		purchase = &event.CustomerEvent{
			CustomerID:     o.CustomerID,
			EventTimestamp: w.now(),
			Data:           PurchaseEventData(o),
		}
		if err := s.Events.Append(ctx, purchase); err != nil {
			return fmt.Errorf("append purchase event: %w", err)
		}
		return nil
	})
	if err != nil {
		w.logger.Error("checkout failed after validation",
			zap.Int64("customer_id", req.CustomerID),
			zap.Bool("transactional", w.tx != nil),
			zap.Error(err),
		)
		return nil, err
	}

	event.Publish(ctx, w.publisher, purchase, w.logger)

	w.logger.Info("order placed",
		zap.Int64("order_id", o.ID),
		zap.Int64("customer_id", o.CustomerID),
		zap.Int("items", len(o.Items)),
		zap.String("total_amount", o.TotalAmount.StringFixed(2)),
	)
	return o, nil
}

// checkQuantities rejects the request if any line has a quantity outside
// 1..MaxQuantity, whatever the state of the other lines.
func checkQuantities(requested []ItemRequest) error {
	for _, r := range requested {
		if r.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if int64(r.Quantity) > MaxQuantity {
			return fmt.Errorf("%w: quantity %d for product ID %d exceeds %d",
				ErrInvalidQuantity, r.Quantity, r.ProductID, MaxQuantity)
		}
	}
	return nil
}

func checkAmount(what string, amount decimal.Decimal) error {
	if amount.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: %s %s", ErrAmountOutOfRange, what, amount.StringFixed(2))
	}
	return nil
}

func checkLifetimeValue(c *customer.Customer, total decimal.Decimal) error {
	current := decimal.Zero
	if c.LifetimeValue.Valid {
		current = c.LifetimeValue.Decimal
	}
	return checkAmount("lifetime value", current.Add(total))
}

// priceItems looks up each line in input order and snapshots its price.
func (w *Workflow) priceItems(ctx context.Context, requested []ItemRequest) ([]OrderItem, error) {
	items := make([]OrderItem, 0, len(requested))
	for _, r := range requested {
		p, err := w.products.FindByID(ctx, r.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", r.ProductID, err)
		}
		if !p.UnitPrice.Valid {
			return nil, fmt.Errorf("%w for product ID: %d", ErrMissingPrice, r.ProductID)
		}

		lineTotal := LineTotal(p.UnitPrice.Decimal, r.Quantity)
		if err := checkAmount(fmt.Sprintf("line total for product ID %d", p.ID), lineTotal); err != nil {
			return nil, err
		}

		items = append(items, OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.UnitPrice.Decimal,
			Quantity:    r.Quantity,
			LineTotal:   lineTotal,
		})
	}
	return items, nil
}

func (w *Workflow) runWrites(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	if w.tx == nil {
		return fn(ctx, w.stores)
	}
	return w.tx.WithinTx(ctx, fn)
}

// ListByCustomer returns a customer's orders, newest first.
func (w *Workflow) ListByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	orders, err := w.stores.Orders.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

// PurchaseEventData is the payload logged for a placed order.
func PurchaseEventData(o *Order) map[string]any {
	return map[string]any{
		event.KeyEventType: event.TypePurchase,
		event.KeyOrderID:   o.ID,
		"total_amount":     o.TotalAmount.StringFixed(2),
	}
}
