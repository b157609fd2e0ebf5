package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type MessageHandler func(ctx context.Context, key, value []byte) error

type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
}

func NewConsumer(url, queue string, prefetchCount int, logger *zap.Logger) (*Consumer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.Qos(prefetchCount, 0, false); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	return &Consumer{
		conn:    conn,
		channel: channel,
		queue:   queue,
		logger:  logger.Named("rabbitmq"),
	}, nil
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Consume blocks until ctx is cancelled or the delivery channel closes.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	if err := declareQueue(c.channel, c.queue); err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("started consuming", zap.String("queue", c.queue))
	return c.drain(ctx, msgs, handler)
}

func (c *Consumer) drain(ctx context.Context, msgs <-chan amqp.Delivery, handler MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handleDelivery(ctx, msg, handler)
		}
	}
}

// handleDelivery acks on success. A failed first delivery is requeued once;
// a failed redelivery is dropped.
func (c *Consumer) handleDelivery(ctx context.Context, msg amqp.Delivery, handler MessageHandler) {
	key, _ := msg.Headers[keyHeader].(string)

	if err := handler(ctx, []byte(key), msg.Body); err != nil {
		requeue := !msg.Redelivered
		c.logger.Error("error processing message",
			zap.String("key", key),
			zap.Bool("requeue", requeue),
			zap.Error(err),
		)
		msg.Nack(false, requeue)
		return
	}
	msg.Ack(false)
}
