package feed

import (
	"context"
	"sync"

	"lunofeed/internal/bus"
	"lunofeed/internal/obs"
	"lunofeed/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const defaultQueueSize = 1024

type envelope struct {
	sub *Subscription
	msg *Message
}

// Router serializes the messages of each symbol on its own goroutine and
// hands them to the Dispatcher. Symbols are handled in parallel.
type Router struct {
	dispatcher *Dispatcher
	metrics    *obs.Metrics
	size       int

	mu      sync.Mutex
	ctx     context.Context
	queues  map[string]*bus.Queue[envelope]
	wg      sync.WaitGroup
	started bool
	stopped bool
}

// NewRouter creates a router with queueSize pending messages per symbol.
func NewRouter(d *Dispatcher, queueSize int, m *obs.Metrics) *Router {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Router{
		dispatcher: d,
		metrics:    m,
		size:       queueSize,
		queues:     make(map[string]*bus.Queue[envelope]),
	}
}

// Start enables Publish. Workers stop when ctx is done or Stop is called.
func (r *Router) Start(ctx context.Context) error {
	if r.dispatcher == nil {
		return exception.ErrFeedNilDispatcher
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return exception.ErrFeedRouterStopped
	}
	r.ctx = ctx
	r.started = true
	return nil
}

// Publish enqueues a message without blocking. A full queue drops the message.
func (r *Router) Publish(sub *Subscription, msg *Message) error {
	if !sub.valid() {
		r.metrics.Inc(obs.CounterDroppedMessage)
		return exception.ErrFeedNilSubscription
	}

	q, err := r.queue(sub.Symbol)
	if err != nil {
		return err
	}

	if err := q.TryPublish(envelope{sub: sub, msg: msg}); err != nil {
		switch {
		case errors.Is(err, exception.ErrFeedQueueFull):
			r.metrics.Inc(obs.CounterQueueDrop)
		case errors.Is(err, exception.ErrFeedQueueClosed):
			r.metrics.Inc(obs.CounterQueueClosed)
		}
		return errors.Wrapf(err, "publish %s", sub.Symbol)
	}
	return nil
}

func (r *Router) queue(symbol string) (*bus.Queue[envelope], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started || r.stopped || r.ctx.Err() != nil {
		return nil, exception.ErrFeedRouterStopped
	}

	if q, ok := r.queues[symbol]; ok {
		return q, nil
	}

	q := bus.NewQueue[envelope](r.size)
	r.queues[symbol] = q
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		q.Run(r.ctx, r.handle)
	}()
	return q, nil
}

func (r *Router) handle(e envelope) {
	if err := r.dispatcher.Handle(r.ctx, e.sub, e.msg); err != nil {
		logs.Errorf("handle message %s, err: %+v", e.sub.Symbol, err)
	}
}

// Stop closes every queue and waits for queued messages to be handled.
func (r *Router) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	for _, q := range r.queues {
		q.Close()
	}
	r.mu.Unlock()

	r.wg.Wait()
}

// Run starts the router and blocks until ctx is done.
func (r *Router) Run(ctx context.Context) error {
	if err := r.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	r.Stop()
	return nil
}
