package api

import (
	"context"
	"net/http"
	"time"

	"github.com/example/retail-shop/internal/api/middleware"
	"github.com/example/retail-shop/internal/auth"
	"github.com/example/retail-shop/internal/metrics"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Handlers     *Handlers
	AuthHandlers *AuthHandlers
	JWTService   *auth.JWTService
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
	// Ping checks the database for /healthz. Nil means always healthy.
	Ping func(ctx context.Context) error
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	h := cfg.Handlers
	a := cfg.AuthHandlers

	authed := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(cfg.JWTService)(fn)
	}
	adminOnly := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(cfg.JWTService)(middleware.RequireRole(auth.RoleAdmin)(fn))
	}

	// Auth
	mux.HandleFunc("POST /api/auth/register", a.Register)
	mux.HandleFunc("POST /api/auth/login", a.Login)
	mux.HandleFunc("POST /api/auth/refresh", a.Refresh)
	mux.HandleFunc("POST /api/auth/logout", a.Logout)
	mux.Handle("GET /api/auth/me", authed(a.Me))

	// Products
	mux.HandleFunc("GET /api/products", h.GetProducts)
	mux.HandleFunc("GET /api/products/search", h.SearchProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)

	// Customers
	mux.HandleFunc("POST /api/customers", h.CreateCustomer)
	mux.Handle("GET /api/customers", adminOnly(h.SearchCustomers))
	mux.Handle("GET /api/customers/{id}", authed(h.GetCustomer))
	mux.Handle("GET /api/customers/{id}/events", authed(h.GetCustomerEvents))

	// Events
	mux.Handle("POST /api/events", authed(h.RecordEvent))
	mux.Handle("GET /api/events/customer/{id}", authed(h.GetCustomerEvents))

	// Orders
	mux.Handle("POST /api/orders/checkout", authed(h.PlaceOrder))
	mux.Handle("GET /api/orders/customer/{id}", authed(h.GetCustomerOrders))

	// Operations
	mux.HandleFunc("GET /healthz", healthHandler(cfg.Ping))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	return middleware.RequestLogger(cfg.Logger, cfg.Metrics)(mux)
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":   "unavailable",
					"database": err.Error(),
				})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
