package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"velocity/internal/metrics"
)

// ErrMalformed marks a message that can never be processed. It is rejected
// without requeue so the broker moves it to the dead-letter queue.
var ErrMalformed = errors.New("malformed message")

// HandlerFunc processes one delivery. The pool acks on nil.
type HandlerFunc func(ctx context.Context, msg amqp.Delivery) error

// HandlerTimeout bounds a single handler call.
var HandlerTimeout = 30 * time.Second

type WorkerPool struct {
	queue   string
	handler HandlerFunc
	log     *zap.Logger

	mu      sync.Mutex
	workers int
	msgs    <-chan amqp.Delivery
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
}

func NewWorkerPool(queue string, handler HandlerFunc, workerCount int, log *zap.Logger) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &WorkerPool{
		queue:   queue,
		handler: handler,
		workers: workerCount,
		log:     log.With(zap.String("queue", queue)),
	}
}

// Start runs the workers over msgs until Stop is called or msgs is closed.
func (wp *WorkerPool) Start(msgs <-chan amqp.Delivery) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.running {
		return
	}
	wp.msgs = msgs
	wp.startLocked()
}

func (wp *WorkerPool) startLocked() {
	wp.stopCh = make(chan struct{})
	wp.running = true
	wp.log.Info("Starting worker pool", zap.Int("workers", wp.workers))
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.run(wp.msgs, wp.stopCh)
	}
}

func (wp *WorkerPool) run(msgs <-chan amqp.Delivery, stop <-chan struct{}) {
	defer wp.wg.Done()
	metrics.WorkerActive.WithLabelValues(wp.queue).Inc()
	defer metrics.WorkerActive.WithLabelValues(wp.queue).Dec()

	for {
		select {
		case <-stop:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			wp.process(msg)
		}
	}
}

func (wp *WorkerPool) process(msg amqp.Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), HandlerTimeout)
	defer cancel()

	err := wp.handler(ctx, msg)
	switch {
	case err == nil:
		_ = msg.Ack(false)
		metrics.WorkerProcessed.WithLabelValues(wp.queue, "ok").Inc()
	case errors.Is(err, ErrMalformed):
		wp.log.Warn("Rejecting malformed message", zap.Error(err))
		_ = msg.Reject(false) // send to DLQ
		metrics.WorkerProcessed.WithLabelValues(wp.queue, "rejected").Inc()
	default:
		wp.log.Error("Failed to process message", zap.Error(err))
		_ = msg.Nack(false, false)
		metrics.WorkerProcessed.WithLabelValues(wp.queue, "failed").Inc()
	}
}

// Stop signals the workers and waits for in-flight messages to finish.
func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	wp.stopLocked()
}

func (wp *WorkerPool) stopLocked() {
	if !wp.running {
		return
	}
	close(wp.stopCh)
	wp.wg.Wait()
	wp.running = false
	wp.log.Info("Stopped worker pool")
}

// Wait blocks until every worker has exited, e.g. after the delivery
// channel closed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) Workers() int {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return wp.workers
}

// SetWorkerCount updates the worker pool to use a new concurrency level
func (wp *WorkerPool) SetWorkerCount(n int) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if n <= 0 || n == wp.workers {
		return
	}

	wp.log.Info("Rescaling worker pool", zap.Int("from", wp.workers), zap.Int("to", n))
	wasRunning := wp.running
	wp.stopLocked()
	wp.workers = n
	if wasRunning {
		wp.startLocked()
	}
}
