package feed

import (
	"context"
	"sync"
)

// Notifier hands the latest state of a channel key to every consumer waiting
// on it. A waiter sees only resolutions made after it registered.
type Notifier[T any] struct {
	mu      sync.Mutex
	next    uint64
	waiters map[string]map[uint64]chan T
	clone   func(T) T
}

// NewNotifier creates a notifier. clone, when set, gives every waiter its own
// copy of a resolved value.
func NewNotifier[T any](clone func(T) T) *Notifier[T] {
	return &Notifier[T]{
		waiters: make(map[string]map[uint64]chan T),
		clone:   clone,
	}
}

// Waiter is a one-shot registration on a channel key.
type Waiter[T any] struct {
	n   *Notifier[T]
	key string
	id  uint64
	ch  chan T
}

// Register adds a waiter for the next resolution of key. Callers must Cancel
// it when they stop waiting.
func (n *Notifier[T]) Register(key string) *Waiter[T] {
	w := &Waiter[T]{n: n, key: key, ch: make(chan T, 1)}

	n.mu.Lock()
	n.next++
	w.id = n.next
	set := n.waiters[key]
	if set == nil {
		set = make(map[uint64]chan T)
		n.waiters[key] = set
	}
	set[w.id] = w.ch
	n.mu.Unlock()

	return w
}

// Wait blocks until the next resolution of key or until ctx is done.
func (n *Notifier[T]) Wait(ctx context.Context, key string) (T, error) {
	w := n.Register(key)
	defer w.Cancel()
	return w.Wait(ctx)
}

// Resolve delivers v to every waiter registered on key and returns how many
// were woken.
func (n *Notifier[T]) Resolve(key string, v T) int {
	n.mu.Lock()
	set := n.waiters[key]
	delete(n.waiters, key)
	n.mu.Unlock()

	for _, ch := range set {
		if n.clone != nil {
			ch <- n.clone(v)
		} else {
			ch <- v
		}
	}
	return len(set)
}

// Pending is the number of waiters registered on key.
func (n *Notifier[T]) Pending(key string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.waiters[key])
}

func (n *Notifier[T]) remove(key string, id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	set := n.waiters[key]
	delete(set, id)
	if len(set) == 0 {
		delete(n.waiters, key)
	}
}

// C receives the resolved value once.
func (w *Waiter[T]) C() <-chan T {
	return w.ch
}

// Wait blocks until the waiter is resolved or ctx is done.
func (w *Waiter[T]) Wait(ctx context.Context) (T, error) {
	select {
	case v := <-w.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Cancel deregisters the waiter. It is safe to call after resolution and more
// than once.
func (w *Waiter[T]) Cancel() {
	w.n.remove(w.key, w.id)
}
