// Package queue carries notification jobs over RabbitMQ.
package queue

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"eventtix/registrar/internal/config"
)

// channel is the subset of *amqp.Channel the client uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Handler processes one message body. Its error is logged; the message is acked either way.
type Handler func(ctx context.Context, body []byte) error

type Client struct {
	conn        *amqp.Connection
	channel     channel
	exchange    string
	queue       string
	routingKey  string
	consumerTag string
	logger      *zap.Logger
}

// NewRabbit dials the broker and declares a durable direct exchange bound to a durable queue.
func NewRabbit(cfg config.QueueConfig, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if err := declare(ch, cfg); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	logger.Info("rabbitmq initialized",
		zap.String("exchange", cfg.Exchange),
		zap.String("queue", cfg.Queue),
		zap.String("routing_key", cfg.RoutingKey),
	)
	return &Client{
		conn:        conn,
		channel:     ch,
		exchange:    cfg.Exchange,
		queue:       cfg.Queue,
		routingKey:  cfg.RoutingKey,
		consumerTag: cfg.ConsumerTag,
		logger:      logger,
	}, nil
}

func declare(ch *amqp.Channel, cfg config.QueueConfig) error {
	if err := ch.ExchangeDeclare(
		cfg.Exchange,
		amqp.ExchangeDirect,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	if _, err := ch.QueueDeclare(
		cfg.Queue,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", cfg.Queue, err)
	}

	if err := ch.QueueBind(
		cfg.Queue,
		cfg.RoutingKey,
		cfg.Exchange,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("bind queue %s: %w", cfg.Queue, err)
	}

	if cfg.Prefetch > 0 {
		if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
			return fmt.Errorf("set prefetch: %w", err)
		}
	}
	return nil
}

// Publish sends a persistent JSON message to the configured exchange.
func (c *Client) Publish(ctx context.Context, body []byte) error {
	err := c.channel.PublishWithContext(
		ctx,
		c.exchange,
		c.routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", c.exchange, err)
	}
	c.logger.Debug("message published", zap.String("exchange", c.exchange), zap.Int("bytes", len(body)))
	return nil
}

// Consume delivers messages to handler until ctx is done or the channel closes.
// It blocks for the lifetime of the subscription.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	deliveries, err := c.channel.Consume(
		c.queue,
		c.consumerTag,
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	c.logger.Info("consuming", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", c.queue)
			}
			if err := handler(ctx, d.Body); err != nil {
				c.logger.Warn("message handler failed", zap.String("queue", c.queue), zap.Error(err))
			}
			if err := d.Ack(false); err != nil {
				c.logger.Warn("ack failed", zap.Uint64("delivery_tag", d.DeliveryTag), zap.Error(err))
			}
		}
	}
}

func (c *Client) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.logger.Info("rabbitmq connection closed")
}
