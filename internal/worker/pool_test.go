package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type ackRecorder struct {
	mu       sync.Mutex
	acked    []uint64
	nacked   []uint64
	rejected []uint64
}

func (a *ackRecorder) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *ackRecorder) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rejected = append(a.rejected, tag)
	return nil
}

func (a *ackRecorder) counts() (int, int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.acked), len(a.nacked), len(a.rejected)
}

func TestWorkerPool_AckNackReject(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &ackRecorder{}
	handler := func(_ context.Context, msg amqp.Delivery) error {
		switch string(msg.Body) {
		case "bad":
			return fmt.Errorf("decode: %w", ErrMalformed)
		case "fail":
			return errors.New("db down")
		}
		return nil
	}

	msgs := make(chan amqp.Delivery)
	pool := NewWorkerPool("test_queue", handler, 3, zap.NewNop())
	pool.Start(msgs)

	bodies := []string{"ok", "bad", "ok", "fail", "ok"}
	for i, b := range bodies {
		msgs <- amqp.Delivery{Acknowledger: rec, DeliveryTag: uint64(i + 1), Body: []byte(b)}
	}
	close(msgs)
	pool.Wait()

	acked, nacked, rejected := rec.counts()
	assert.Equal(t, 3, acked)
	assert.Equal(t, 1, nacked)
	assert.Equal(t, 1, rejected)
}

func TestWorkerPool_RunsConcurrently(t *testing.T) {
	defer goleak.VerifyNone(t)

	var inFlight, peak atomic.Int32
	release := make(chan struct{})
	handler := func(context.Context, amqp.Delivery) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		inFlight.Add(-1)
		return nil
	}

	msgs := make(chan amqp.Delivery, 4)
	rec := &ackRecorder{}
	for i := 0; i < 4; i++ {
		msgs <- amqp.Delivery{Acknowledger: rec, DeliveryTag: uint64(i + 1)}
	}

	pool := NewWorkerPool("test_queue", handler, 4, zap.NewNop())
	pool.Start(msgs)

	require.Eventually(t, func() bool { return peak.Load() == 4 }, time.Second, 5*time.Millisecond)
	close(release)
	close(msgs)
	pool.Wait()
}

func TestWorkerPool_StopAndRescale(t *testing.T) {
	defer goleak.VerifyNone(t)

	msgs := make(chan amqp.Delivery)
	var handled atomic.Int32
	pool := NewWorkerPool("test_queue", func(context.Context, amqp.Delivery) error {
		handled.Add(1)
		return nil
	}, 2, zap.NewNop())

	pool.Start(msgs)
	pool.SetWorkerCount(5)
	assert.Equal(t, 5, pool.Workers())

	msgs <- amqp.Delivery{Acknowledger: &ackRecorder{}}
	require.Eventually(t, func() bool { return handled.Load() == 1 }, time.Second, 5*time.Millisecond)

	pool.Stop()
	pool.Stop()
}

func TestNewWorkerPool_MinimumOneWorker(t *testing.T) {
	assert.Equal(t, 1, NewWorkerPool("q", nil, 0, zap.NewNop()).Workers())
}
