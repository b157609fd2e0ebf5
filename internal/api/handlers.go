package api

import (
	"context"
	"net/http"

	"github.com/example/retail-shop/internal/api/middleware"
	"github.com/example/retail-shop/internal/domain/customer"
	"github.com/example/retail-shop/internal/domain/event"
	"github.com/example/retail-shop/internal/domain/order"
	"github.com/example/retail-shop/internal/domain/product"
	"github.com/example/retail-shop/internal/metrics"
	"go.uber.org/zap"
)

type ProductService interface {
	List(ctx context.Context) ([]product.Product, error)
	Search(ctx context.Context, query string) ([]product.Product, error)
	GetByID(ctx context.Context, id int64) (*product.Product, error)
}

type CustomerService interface {
	Register(ctx context.Context, req customer.RegisterRequest) (*customer.Customer, error)
	Authenticate(ctx context.Context, email, password string) (*customer.Customer, error)
	GetByID(ctx context.Context, id int64) (*customer.Customer, error)
	SearchByEmail(ctx context.Context, email string) ([]customer.Customer, error)
}

type EventService interface {
	Record(ctx context.Context, customerID int64, data map[string]any) (*event.CustomerEvent, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]event.CustomerEvent, error)
}

type OrderService interface {
	PlaceOrder(ctx context.Context, req order.PlaceOrderRequest) (*order.Order, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]order.Order, error)
}

type Handlers struct {
	products  ProductService
	customers CustomerService
	events    EventService
	orders    OrderService
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewHandlers(products ProductService, customers CustomerService, events EventService, orders OrderService, m *metrics.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		products:  products,
		customers: customers,
		events:    events,
		orders:    orders,
		metrics:   m,
		logger:    logger,
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) SearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Customer Handlers

func (h *Handlers) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customer.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	c, err := h.customers.Register(r.Context(), req)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *Handlers) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondJSONError(w, "email query parameter is required", http.StatusBadRequest)
		return
	}
	customers, err := h.customers.SearchByEmail(r.Context(), email)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

func (h *Handlers) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizedCustomerID(w, r)
	if !ok {
		return
	}
	c, err := h.customers.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// Event Handlers

type recordEventRequest struct {
	CustomerID int64          `json:"customer_id"`
	EventData  map[string]any `json:"event_data"`
}

func (h *Handlers) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var req recordEventRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CustomerID == 0 {
		req.CustomerID = middleware.GetCustomerID(r.Context())
	}
	if !middleware.CanAccessCustomer(r.Context(), req.CustomerID) {
		respondJSONError(w, "forbidden", http.StatusForbidden)
		return
	}
	if _, err := h.customers.GetByID(r.Context(), req.CustomerID); err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}

	e, err := h.events.Record(r.Context(), req.CustomerID, req.EventData)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

func (h *Handlers) GetCustomerEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizedCustomerID(w, r)
	if !ok {
		return
	}
	events, err := h.events.ListByCustomer(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

// Order Handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req order.PlaceOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CustomerID == 0 {
		req.CustomerID = middleware.GetCustomerID(r.Context())
	}
	if !middleware.CanAccessCustomer(r.Context(), req.CustomerID) {
		respondJSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), req)
	if err != nil {
		h.metrics.ObserveCheckout(checkoutOutcome(err), 0)
		respondDomainError(w, r, h.logger, err)
		return
	}

	amount, _ := o.TotalAmount.Float64()
	h.metrics.ObserveCheckout(metrics.OutcomeSuccess, amount)
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) GetCustomerOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizedCustomerID(w, r)
	if !ok {
		return
	}
	orders, err := h.orders.ListByCustomer(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// authorizedCustomerID parses the {id} path value and checks the caller may
// read that customer's data. It writes the error response itself.
func (h *Handlers) authorizedCustomerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		respondDomainError(w, r, h.logger, err)
		return 0, false
	}
	if !middleware.CanAccessCustomer(r.Context(), id) {
		respondJSONError(w, "forbidden", http.StatusForbidden)
		return 0, false
	}
	return id, true
}

func checkoutOutcome(err error) string {
	switch statusFor(err) {
	case http.StatusBadRequest:
		return metrics.OutcomeRejected
	case http.StatusNotFound:
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeError
}
