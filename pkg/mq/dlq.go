package mq

import (
	"context"
	"errors"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

const (
	DLQExchangeName = "habit.events.dlq"
)

// ErrPoison 标记无法处理的消息（例如 JSON 格式错误），重试没有意义，直接进入死信队列
var ErrPoison = errors.New("poison message")

// Poison wraps err so the consumer dead-letters the message instead of requeueing it.
func Poison(err error) error {
	return fmt.Errorf("%w: %w", ErrPoison, err)
}

// DeclareDLQExchange declares the dead letter exchange.
func DeclareDLQExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(
		DLQExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
}

// DeclareDLQQueue declares a dead letter queue for a specific routing key.
func DeclareDLQQueue(ch *amqp091.Channel, routingKey string) (amqp091.Queue, error) {
	queueName := fmt.Sprintf("%s.dlq", routingKey)

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	err = ch.QueueBind(
		q.Name,
		routingKey,
		DLQExchangeName,
		false,
		nil,
	)
	if err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to bind DLQ queue: %w", err)
	}

	return q, nil
}

// publishToDLQ publishes a raw message to the dead letter exchange.
func publishToDLQ(ctx context.Context, ch *amqp091.Channel, routingKey string, payload []byte, originalError, failedAt string) error {
	headers := amqp091.Table{
		"x-original-error": originalError,
		"x-failed-at":      failedAt,
	}

	return ch.PublishWithContext(
		ctx,
		DLQExchangeName,
		routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp091.Persistent,
			Headers:      headers,
		},
	)
}
