package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/example/retail-shop/internal/config"
	"github.com/example/retail-shop/internal/email"
	"github.com/example/retail-shop/internal/infrastructure/kafka"
	"github.com/example/retail-shop/internal/infrastructure/rabbitmq"
	"github.com/example/retail-shop/internal/infrastructure/store"
	"github.com/example/retail-shop/internal/logger"
	"github.com/example/retail-shop/internal/notification"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const rabbitPrefetch = 10

func main() {
	if err := run(); err != nil {
		log.Fatalf("[Notifier] %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateNotifier(); err != nil {
		return err
	}

	zlog, err := logger.New(logger.Config{
		ServiceName: "retail-notifier",
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

	// PostgreSQL is read only here: orders and customers for the email body
	db, err := store.ConnectPostgres(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	emailSvc := email.NewService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From)
	handler := notification.NewHandler(emailSvc,
		store.NewPostgresOrderStore(db),
		store.NewPostgresCustomerStore(db),
		zlog,
	)

	zlog.Info("notifier started",
		zap.String("broker", cfg.Broker),
		zap.String("smtp", cfg.SMTP.Host+":"+cfg.SMTP.Port),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		switch cfg.Broker {
		case config.BrokerKafka:
			consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, zlog)
			defer consumer.Close()
			return consumer.Consume(gctx, handler.HandleEvent)
		case config.BrokerRabbitMQ:
			consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, rabbitPrefetch, zlog)
			if err != nil {
				return err
			}
			defer consumer.Close()
			return consumer.Consume(gctx, handler.HandleEvent)
		}
		return fmt.Errorf("unsupported broker %q", cfg.Broker)
	})

	err = g.Wait()
	zlog.Info("shutting down")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
