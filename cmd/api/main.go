package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/retail-shop/internal/api"
	"github.com/example/retail-shop/internal/auth"
	"github.com/example/retail-shop/internal/config"
	"github.com/example/retail-shop/internal/domain/customer"
	"github.com/example/retail-shop/internal/domain/event"
	"github.com/example/retail-shop/internal/domain/order"
	"github.com/example/retail-shop/internal/domain/product"
	"github.com/example/retail-shop/internal/infrastructure/kafka"
	"github.com/example/retail-shop/internal/infrastructure/rabbitmq"
	"github.com/example/retail-shop/internal/infrastructure/store"
	"github.com/example/retail-shop/internal/logger"
	"github.com/example/retail-shop/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("[API] %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	zlog, err := logger.New(logger.Config{
		ServiceName: "retail-api",
		Environment: cfg.Env,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
	})
	if err != nil {
		return err
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.ConnectPostgres(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()
	if err := store.EnsureSchema(ctx, db); err != nil {
		return err
	}
	zlog.Info("connected to postgres")

	m := metrics.New()

	publisher, closePublisher, err := newPublisher(cfg, m)
	if err != nil {
		return err
	}
	defer closePublisher.Close()
	zlog.Info("event broker configured", zap.String("broker", cfg.Broker))

	// Stores
	customers := store.NewPostgresCustomerStore(db)
	products := store.NewPostgresProductStore(db)
	orders := store.NewPostgresOrderStore(db)
	events := store.NewPostgresEventLog(db)

	// Domain services
	productSvc := product.NewService(products)
	customerSvc := customer.NewService(customers)
	eventSvc := event.NewService(events, publisher, zlog.Named("events"))
	workflow := order.NewWorkflow(products,
		order.Stores{Orders: orders, Customers: customers, Events: events},
		order.WithTransactor(store.NewPostgresTransactor(db)),
		order.WithPublisher(publisher),
		order.WithLogger(zlog.Named("checkout")),
	)

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	apiLog := zlog.Named("api")
	router := api.NewRouter(api.RouterConfig{
		Handlers:     api.NewHandlers(productSvc, customerSvc, eventSvc, workflow, m, apiLog),
		AuthHandlers: api.NewAuthHandlers(customerSvc, jwtService, apiLog),
		JWTService:   jwtService,
		Metrics:      m,
		Logger:       apiLog,
		Ping:         db.PingContext,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Info("server started", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newPublisher selects the broker from config. The returned publisher is
// instrumented with metrics; it is nil when EVENT_BROKER=none.
func newPublisher(cfg *config.Config, m *metrics.Metrics) (event.Publisher, io.Closer, error) {
	switch cfg.Broker {
	case config.BrokerKafka:
		p := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		return m.InstrumentPublisher(p), p, nil
	case config.BrokerRabbitMQ:
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			return nil, nil, err
		}
		return m.InstrumentPublisher(p), p, nil
	}
	return nil, nopCloser{}, nil
}
