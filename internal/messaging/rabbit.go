// internal/messaging/rabbit.go
package messaging

import (
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"velocity/internal/metrics"
)

type RabbitClient struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	URL      string

	mu  sync.Mutex
	log *zap.Logger
}

func NewRabbitClient(url, exchange string, log *zap.Logger) (*RabbitClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &RabbitClient{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		URL:      url,
		log:      log,
	}, nil
}

func (r *RabbitClient) GetChannel() *amqp.Channel {
	return r.channel
}

func (r *RabbitClient) GetConnection() *amqp.Connection {
	return r.conn
}

func (r *RabbitClient) Exchange() string {
	return r.exchange
}

// IsConnected reports whether the broker connection is still open.
func (r *RabbitClient) IsConnected() bool {
	return r.conn != nil && !r.conn.IsClosed()
}

// DLQName is the dead-letter queue paired with queue.
func DLQName(queue string) string {
	return queue + "_dlq"
}

// DeclareQueue creates a durable queue with its DLQ and binds it to the
// events exchange with each routing pattern.
func (r *RabbitClient) DeclareQueue(queue string, patterns ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dlqName := DLQName(queue)

	// 1. DLQ
	_, err := r.channel.QueueDeclare(
		dlqName,
		true, false, false, false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}

	// 2. Main Queue with DLQ binding
	args := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": dlqName,
	}
	_, err = r.channel.QueueDeclare(
		queue,
		true, false, false, false,
		args,
	)
	if err != nil {
		return fmt.Errorf("declare main queue: %w", err)
	}

	for _, p := range patterns {
		if err := r.channel.QueueBind(queue, p, r.exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s to %s: %w", queue, p, err)
		}
	}

	r.log.Info("Queues declared", zap.String("queue", queue), zap.Strings("patterns", patterns))
	return nil
}

// DeleteQueue removes a queue and its DLQ.
func (r *RabbitClient) DeleteQueue(queue string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.channel.QueueDelete(queue, false, false, false); err != nil {
		return fmt.Errorf("delete queue %s: %w", queue, err)
	}
	if _, err := r.channel.QueueDelete(DLQName(queue), false, false, false); err != nil {
		return fmt.Errorf("delete queue %s: %w", DLQName(queue), err)
	}
	return nil
}

// Publish sends a persistent JSON message to the events exchange
func (r *RabbitClient) Publish(routingKey string, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.channel.Publish(
		r.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

// Close cleans up connection and channel
func (r *RabbitClient) Close() error {
	if err := r.channel.Close(); err != nil {
		return err
	}
	if err := r.conn.Close(); err != nil {
		return err
	}
	return nil
}

func (r *RabbitClient) UpdateQueueDepth(queue string) {
	r.mu.Lock()
	q, err := r.channel.QueueInspect(queue)
	r.mu.Unlock()
	if err != nil {
		r.log.Warn("Failed to inspect queue", zap.String("queue", queue), zap.Error(err))
		return
	}

	metrics.QueueDepth.WithLabelValues(queue).Set(float64(q.Messages))
}
