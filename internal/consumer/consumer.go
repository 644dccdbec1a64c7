// internal/consumer/consumer.go
package consumer

import (
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"velocity/internal/worker"
)

// Consumer holds the channel and worker pool of one running queue consumer
type Consumer struct {
	QueueName   string
	Channel     *amqp.Channel
	ConsumerTag string
	Pool        *worker.WorkerPool

	log *zap.Logger
}

// StartConsumer opens a channel on conn and feeds queue deliveries to a
// worker pool running handler.
func StartConsumer(conn *amqp.Connection, queue string, handler worker.HandlerFunc, workers int, log *zap.Logger) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("queue %s: failed to open channel: %w", queue, err)
	}

	// Never hold more unacked deliveries than there are workers to run them.
	if err := ch.Qos(workers, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("queue %s: failed to set qos: %w", queue, err)
	}

	consumerTag := fmt.Sprintf("consumer-%s", queue)

	msgs, err := ch.Consume(
		queue,
		consumerTag,
		false, // autoAck: false to handle manually
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("queue %s: failed to start consuming: %w", queue, err)
	}

	c := &Consumer{
		QueueName:   queue,
		Channel:     ch,
		ConsumerTag: consumerTag,
		Pool:        worker.NewWorkerPool(queue, handler, workers, log),
		log:         log,
	}
	c.Pool.Start(msgs)

	log.Info("Started consumer", zap.String("queue", queue), zap.Int("workers", workers))
	return c, nil
}

// Stop cancels the broker subscription, lets in-flight messages finish and
// closes the channel.
func (c *Consumer) Stop() {
	_ = c.Channel.Cancel(c.ConsumerTag, false)
	c.Pool.Stop()
	_ = c.Channel.Close()
	c.log.Info("Stopped consumer", zap.String("queue", c.QueueName))
}

func (c *Consumer) SetWorkerCount(n int) error {
	if err := c.Channel.Qos(n, 0, false); err != nil {
		return fmt.Errorf("queue %s: failed to set qos: %w", c.QueueName, err)
	}
	c.Pool.SetWorkerCount(n)
	return nil
}
