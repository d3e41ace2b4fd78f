package queue

import (
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// AMQPQueue is a RabbitMQ-backed Queue. The connection is dialed once and
// shared; queues are declared durable so jobs survive broker restarts.
type AMQPQueue struct {
	conn   *amqp.Connection
	logger *zap.Logger
}

var _ Queue = (*AMQPQueue)(nil)

const maxDeliveries = 3

func NewAMQPQueue(url string, logger *zap.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return &AMQPQueue{conn: conn, logger: logger}, nil
}

func (q *AMQPQueue) Close() error {
	return q.conn.Close()
}

func (q *AMQPQueue) Publish(topic string, payload []byte) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open queue channel: %w", err)
	}
	defer ch.Close()

	queue, err := ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	return ch.Publish(
		"",
		queue.Name,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         payload,
		},
	)
}

// Subscribe consumes the topic with manual acks. Failed deliveries are
// requeued up to maxDeliveries times via the x-retry-count header, then
// acked away.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload []byte) error) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open queue channel: %w", err)
	}

	queue, err := ch.QueueDeclare(topic, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	msgs, err := ch.Consume(
		queue.Name,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for d := range msgs {
			q.handleDelivery(ch, topic, d, handler)
		}
	}()

	return nil
}

// publisher is the slice of *amqp.Channel that redelivery needs.
type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// handleDelivery runs the handler and acks the delivery. A failed job is
// republished with an incremented x-retry-count header (a plain Nack
// would requeue the original headers and retry forever); after
// maxDeliveries attempts it is dropped.
func (q *AMQPQueue) handleDelivery(ch publisher, topic string, d amqp.Delivery, handler func(payload []byte) error) {
	err := handler(d.Body)
	if err == nil {
		d.Ack(false)
		return
	}

	retryCount := retryCountFrom(d.Headers)
	if retryCount >= maxDeliveries {
		q.logger.Error("job permanently failed",
			zap.String("topic", topic),
			zap.Int32("retry_count", retryCount),
			zap.Error(err),
		)
		d.Ack(false)
		return
	}

	q.logger.Warn("job failed, redelivering",
		zap.String("topic", topic),
		zap.Int32("retry_count", retryCount),
		zap.Error(err),
	)

	pubErr := ch.Publish("", topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{"x-retry-count": retryCount + 1},
		Body:         d.Body,
	})
	if pubErr != nil {
		// Could not hand the copy back to the broker; requeue the
		// original rather than lose the job.
		q.logger.Error("failed to republish job", zap.String("topic", topic), zap.Error(pubErr))
		d.Nack(false, true)
		return
	}
	d.Ack(false)
}

func retryCountFrom(headers amqp.Table) int32 {
	switch v := headers["x-retry-count"].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	default:
		return 0
	}
}
