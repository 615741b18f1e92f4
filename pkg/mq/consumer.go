package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"habitgrid/pkg/metrics"
	"habitgrid/pkg/trace"
)

type MessageHandler func(ctx context.Context, data json.RawMessage) error

type Consumer struct {
	channel    *amqp091.Channel
	queue      amqp091.Queue
	routingKey string
	handler    MessageHandler
	conn       *amqp091.Connection
	logger     *zap.Logger
	tag        string
	stopOnce   sync.Once
}

// NewConsumer creates a consumer for a specific routing key.
func NewConsumer(url, queueName, routingKey string, logger *zap.Logger) (*Consumer, error) {
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	c := &Consumer{conn: conn, channel: ch, routingKey: routingKey, logger: logger, tag: "worker-" + queueName}
	if err := c.declare(queueName); err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("Consumer initialized",
		zap.String("routing_key", routingKey),
		zap.String("queue", queueName),
		zap.String("exchange", ExchangeName),
	)
	return c, nil
}

func (c *Consumer) declare(queueName string) error {
	if err := DeclareExchange(c.channel); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	if err := DeclareDLQExchange(c.channel); err != nil {
		return fmt.Errorf("failed to declare dlq exchange: %w", err)
	}
	if _, err := DeclareDLQQueue(c.channel, c.routingKey); err != nil {
		return err
	}

	q, err := c.channel.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := c.channel.QueueBind(q.Name, c.routingKey, ExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	c.queue = q
	return nil
}

func (c *Consumer) SetHandler(h MessageHandler) {
	c.handler = h
}

// IsConnected 用于 readiness 检查
func (c *Consumer) IsConnected() bool {
	return c.conn != nil && !c.conn.IsClosed()
}

// Stop cancels the delivery subscription; StartConsuming returns once in-flight work is acked.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() {
		if c.channel != nil {
			_ = c.channel.Cancel(c.tag, false)
		}
	})
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// StartConsuming starts consuming messages. This method blocks and should be called in a goroutine.
func (c *Consumer) StartConsuming() error {
	if c.handler == nil {
		return fmt.Errorf("consumer handler not set")
	}

	deliveries, err := c.channel.Consume(
		c.queue.Name,
		c.tag,
		false, // 手动ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started consuming messages",
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
	)

	// 保证每条消息都会被 ack 或 nack
	for msg := range deliveries {
		c.handle(msg)
	}

	c.logger.Info("Consumer stopped", zap.String("queue", c.queue.Name))
	return nil
}

func (c *Consumer) handle(msg amqp091.Delivery) {
	start := time.Now()
	ctx := context.Background()
	if traceID, ok := msg.Headers[trace.HeaderName()].(string); ok && traceID != "" {
		ctx = trace.WithContext(ctx, traceID)
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Handler panic recovered",
				zap.String("routing_key", c.routingKey),
				zap.String("queue", c.queue.Name),
				zap.Any("panic", r),
			)
			// Panic → 拒绝消息并重新入队
			if err := msg.Nack(false, true); err != nil {
				c.logger.Error("Failed to nack message after panic", zap.Error(err))
			}
		}
	}()

	err := c.handler(ctx, msg.Body)
	metrics.RecordMQConsumeLatency(c.routingKey, c.queue.Name, time.Since(start))

	switch {
	case err == nil:
		if err := msg.Ack(false); err != nil {
			c.logger.Error("Failed to ack message", zap.String("routing_key", c.routingKey), zap.Error(err))
		}
	case errors.Is(err, ErrPoison):
		c.logger.Warn("Dead-lettering poison message",
			zap.String("routing_key", c.routingKey),
			zap.Error(err),
		)
		if dlqErr := publishToDLQ(ctx, c.channel, c.routingKey, msg.Body, err.Error(), c.queue.Name); dlqErr != nil {
			c.logger.Error("Failed to publish to DLQ", zap.Error(dlqErr))
			_ = msg.Nack(false, true)
			return
		}
		_ = msg.Ack(false)
	default:
		c.logger.Error("Handler error",
			zap.String("routing_key", c.routingKey),
			zap.String("queue", c.queue.Name),
			zap.Error(err),
		)
		// 业务失败 → 拒绝消息并重新入队，让 MQ 重试
		if err := msg.Nack(false, true); err != nil {
			c.logger.Error("Failed to nack message", zap.String("routing_key", c.routingKey), zap.Error(err))
		}
	}
}
