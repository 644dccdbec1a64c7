// internal/manager/event_manager.go
package manager

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"velocity/internal/consumer"
	"velocity/internal/messaging"
	"velocity/internal/worker"
)

// Subscription binds a queue to the events exchange and names the handler
// that processes its deliveries.
type Subscription struct {
	Queue    string
	Patterns []string
	Handler  worker.HandlerFunc
	Workers  int
}

// EventManager owns the lifecycle of every queue consumer.
type EventManager struct {
	rabbit *messaging.RabbitClient
	log    *zap.Logger

	mu        sync.RWMutex
	consumers map[string]*consumer.Consumer
}

func NewEventManager(rabbit *messaging.RabbitClient, log *zap.Logger) *EventManager {
	return &EventManager{
		rabbit:    rabbit,
		log:       log,
		consumers: make(map[string]*consumer.Consumer),
	}
}

// Subscribe declares the queue (with its DLQ) and spawns the consumer
func (em *EventManager) Subscribe(sub Subscription) error {
	em.mu.Lock()
	defer em.mu.Unlock()

	if _, exists := em.consumers[sub.Queue]; exists {
		return nil // already exists
	}

	if err := em.rabbit.DeclareQueue(sub.Queue, sub.Patterns...); err != nil {
		return err
	}

	c, err := consumer.StartConsumer(em.rabbit.GetConnection(), sub.Queue, sub.Handler, sub.Workers, em.log)
	if err != nil {
		return err
	}
	em.consumers[sub.Queue] = c

	em.log.Info("Subscription added", zap.String("queue", sub.Queue))
	return nil
}

// Unsubscribe stops the consumer and, when purge is set, deletes the queue
func (em *EventManager) Unsubscribe(queue string, purge bool) error {
	em.mu.Lock()
	defer em.mu.Unlock()

	c, exists := em.consumers[queue]
	if !exists {
		return nil // nothing to remove
	}

	c.Stop()
	delete(em.consumers, queue)

	if purge {
		if err := em.rabbit.DeleteQueue(queue); err != nil {
			em.log.Warn("Failed to delete queue", zap.String("queue", queue), zap.Error(err))
		}
	}

	em.log.Info("Subscription removed", zap.String("queue", queue))
	return nil
}

// ShutdownAll stops every consumer
func (em *EventManager) ShutdownAll() {
	em.mu.Lock()
	defer em.mu.Unlock()

	for queue, c := range em.consumers {
		c.Stop()
		em.log.Info("Stopped consumer", zap.String("queue", queue))
	}
	em.consumers = make(map[string]*consumer.Consumer)
}

// ListQueues returns the queues currently consumed, sorted
func (em *EventManager) ListQueues() []string {
	em.mu.RLock()
	defer em.mu.RUnlock()

	queues := make([]string, 0, len(em.consumers))
	for q := range em.consumers {
		queues = append(queues, q)
	}
	sort.Strings(queues)
	return queues
}

// WorkerCounts reports the pool size of every consumer.
func (em *EventManager) WorkerCounts() map[string]int {
	em.mu.RLock()
	defer em.mu.RUnlock()

	out := make(map[string]int, len(em.consumers))
	for q, c := range em.consumers {
		out[q] = c.Pool.Workers()
	}
	return out
}

func (em *EventManager) SetWorkerCount(queue string, n int) error {
	em.mu.Lock()
	defer em.mu.Unlock()

	c, ok := em.consumers[queue]
	if !ok {
		return fmt.Errorf("queue not found: %s", queue)
	}
	return c.SetWorkerCount(n)
}

// Connected reports broker connectivity.
func (em *EventManager) Connected() bool {
	return em.rabbit.IsConnected()
}

// MonitorQueueDepth refreshes queue depth gauges until ctx is done.
func (em *EventManager) MonitorQueueDepth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, q := range em.ListQueues() {
				em.rabbit.UpdateQueueDepth(q)
			}
		}
	}
}
