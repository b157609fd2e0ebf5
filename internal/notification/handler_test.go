package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/example/retail-shop/internal/domain/customer"
	"github.com/example/retail-shop/internal/domain/event"
	"github.com/example/retail-shop/internal/domain/order"
	"github.com/example/retail-shop/internal/email"
	"github.com/example/retail-shop/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to      string
	name    string
	orderID int64
	total   decimal.Decimal
	items   []email.OrderItem
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendOrderConfirmation(to, customerName string, orderID int64, total decimal.Decimal, items []email.OrderItem) error {
	m.sent = append(m.sent, sentMail{to, customerName, orderID, total, items})
	return m.err
}

func newTestHandler() (*Handler, *fakeMailer, *mocks.MockOrderStore, *mocks.MockCustomerLedger) {
	mailer := &fakeMailer{}
	orders := mocks.NewMockOrderStore()
	customers := mocks.NewMockCustomerLedger()

	customers.Put(customer.Customer{ID: 1, FirstName: "Ada", Email: "ada@example.com"})
	orders.Put(order.Order{
		ID:          7,
		CustomerID:  1,
		TotalAmount: decimal.RequireFromString("50.00"),
		Items: []order.OrderItem{{
			ProductID:   10,
			ProductName: "Trail Shoe",
			Quantity:    2,
			UnitPrice:   decimal.RequireFromString("25.00"),
			LineTotal:   decimal.RequireFromString("50.00"),
		}},
	})

	return NewHandler(mailer, orders, customers, nil), mailer, orders, customers
}

func purchaseMessage(t *testing.T, orderID int64) []byte {
	t.Helper()
	o := &order.Order{ID: orderID, TotalAmount: decimal.RequireFromString("50")}
	raw, err := json.Marshal(event.CustomerEvent{ID: 1, CustomerID: 1, Data: order.PurchaseEventData(o)})
	require.NoError(t, err)
	return raw
}

func TestHandler_PurchaseSendsConfirmation(t *testing.T) {
	h, mailer, _, _ := newTestHandler()

	err := h.HandleEvent(context.Background(), []byte("1"), purchaseMessage(t, 7))

	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	sent := mailer.sent[0]
	assert.Equal(t, "ada@example.com", sent.to)
	assert.Equal(t, "Ada", sent.name)
	assert.Equal(t, int64(7), sent.orderID)
	assert.Equal(t, "50.00", sent.total.StringFixed(2))
	require.Len(t, sent.items, 1)
	assert.Equal(t, "Trail Shoe", sent.items[0].Name)
}

func TestHandler_IgnoresOtherEvents(t *testing.T) {
	h, mailer, _, _ := newTestHandler()
	raw, _ := json.Marshal(event.CustomerEvent{CustomerID: 1, Data: map[string]any{"event_type": "page_view"}})

	require.NoError(t, h.HandleEvent(context.Background(), nil, raw))
	assert.Empty(t, mailer.sent)
}

func TestHandler_SkipsUnprocessableMessages(t *testing.T) {
	h, mailer, _, customers := newTestHandler()
	ctx := context.Background()

	assert.NoError(t, h.HandleEvent(ctx, nil, []byte("not json")))

	noID, _ := json.Marshal(event.CustomerEvent{Data: map[string]any{"event_type": "purchase"}})
	assert.NoError(t, h.HandleEvent(ctx, nil, noID))

	assert.NoError(t, h.HandleEvent(ctx, nil, purchaseMessage(t, 999)))

	customers.FindErr = customer.ErrCustomerNotFound
	assert.NoError(t, h.HandleEvent(ctx, nil, purchaseMessage(t, 7)))

	assert.Empty(t, mailer.sent)
}

func TestHandler_ReturnsRetryableErrors(t *testing.T) {
	h, mailer, _, customers := newTestHandler()
	ctx := context.Background()

	customers.FindErr = errors.New("connection refused")
	assert.EqualError(t, h.HandleEvent(ctx, nil, purchaseMessage(t, 7)), "connection refused")

	customers.FindErr = nil
	mailer.err = errors.New("421 try later")
	assert.EqualError(t, h.HandleEvent(ctx, nil, purchaseMessage(t, 7)), "421 try later")
}
