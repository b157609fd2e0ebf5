package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/example/retail-shop/internal/domain/customer"
	"github.com/example/retail-shop/internal/domain/event"
	"github.com/example/retail-shop/internal/domain/order"
	"github.com/example/retail-shop/internal/email"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Mailer sends order confirmations. *email.Service satisfies it.
type Mailer interface {
	SendOrderConfirmation(to, customerName string, orderID int64, total decimal.Decimal, items []email.OrderItem) error
}

type OrderReader interface {
	FindByID(ctx context.Context, id int64) (*order.Order, error)
}

type CustomerReader interface {
	FindByID(ctx context.Context, id int64) (*customer.Customer, error)
}

// Handler processes customer events for sending notifications
type Handler struct {
	mailer    Mailer
	orders    OrderReader
	customers CustomerReader
	logger    *zap.Logger
}

// NewHandler creates a new notification handler
func NewHandler(mailer Mailer, orders OrderReader, customers CustomerReader, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		mailer:    mailer,
		orders:    orders,
		customers: customers,
		logger:    logger.Named("notifier"),
	}
}

// HandleEvent processes one message from the event stream. Malformed
// messages and references to missing records are logged and skipped; store
// and mail failures are returned so the consumer can retry.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var e event.CustomerEvent
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	if err := dec.Decode(&e); err != nil {
		h.logger.Warn("failed to unmarshal event", zap.ByteString("key", key), zap.Error(err))
		return nil
	}

	// Only purchases trigger a notification
	if e.Type() != event.TypePurchase {
		return nil
	}

	orderID, ok := e.OrderID()
	if !ok {
		h.logger.Warn("purchase event without order id", zap.Int64("event_id", e.ID))
		return nil
	}
	return h.handlePurchase(ctx, orderID)
}

func (h *Handler) handlePurchase(ctx context.Context, orderID int64) error {
	log := h.logger.With(zap.Int64("order_id", orderID))

	o, err := h.orders.FindByID(ctx, orderID)
	if errors.Is(err, order.ErrOrderNotFound) {
		log.Warn("order not found")
		return nil
	}
	if err != nil {
		return err
	}

	c, err := h.customers.FindByID(ctx, o.CustomerID)
	if errors.Is(err, customer.ErrCustomerNotFound) {
		log.Warn("customer not found", zap.Int64("customer_id", o.CustomerID))
		return nil
	}
	if err != nil {
		return err
	}

	items := make([]email.OrderItem, len(o.Items))
	for i, item := range o.Items {
		items[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
	}

	if err := h.mailer.SendOrderConfirmation(c.Email, c.FirstName, o.ID, o.TotalAmount, items); err != nil {
		log.Error("failed to send order confirmation", zap.String("to", c.Email), zap.Error(err))
		return err
	}

	log.Info("order confirmation sent", zap.String("to", c.Email))
	return nil
}
