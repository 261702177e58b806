package bus

import (
	"context"
	"sync"

	"lunofeed/pkg/exception"
)

// Queue is a bounded, non-blocking mailbox drained by a single consumer.
type Queue[T any] struct {
	mu     sync.RWMutex
	ch     chan T
	closed bool
}

// NewQueue allocates a queue with the given capacity.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue[T]{ch: make(chan T, capacity)}
}

// TryPublish enqueues an event without blocking.
func (q *Queue[T]) TryPublish(e T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return exception.ErrFeedQueueClosed
	}
	select {
	case q.ch <- e:
		return nil
	default:
		return exception.ErrFeedQueueFull
	}
}

// Len is the number of queued events.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Close stops the queue from accepting new events. Queued events are still
// delivered to Run.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Run consumes events until the context is done or the queue is closed and
// drained.
func (q *Queue[T]) Run(ctx context.Context, handler func(T)) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-q.ch:
			if !ok {
				return
			}
			handler(e)
		}
	}
}
