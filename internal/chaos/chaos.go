// Package chaos injects stream faults in front of the feed router so the
// reconciliation can be soak-tested against a misbehaving venue.
package chaos

import (
	"math/rand"
	"sync"
	"time"

	"lunofeed/internal/feed"
	"lunofeed/pkg/exception"

	"github.com/yanun0323/errors"
)

// Config controls chaos injection behavior. The zero value injects nothing.
type Config struct {
	Seed          int64
	DropRate      float64
	DuplicateRate float64
	ReorderWindow int
}

// Validate ensures the config is within supported ranges.
func (c Config) Validate() error {
	if c.DropRate < 0 || c.DropRate > 1 {
		return errors.Wrap(exception.ErrConfigInvalidValue, "chaos drop_rate must be between 0 and 1")
	}
	if c.DuplicateRate < 0 || c.DuplicateRate > 1 {
		return errors.Wrap(exception.ErrConfigInvalidValue, "chaos duplicate_rate must be between 0 and 1")
	}
	if c.ReorderWindow < 0 {
		return errors.Wrap(exception.ErrConfigInvalidValue, "chaos reorder_window must be >= 0")
	}
	return nil
}

// Engine applies chaos rules to a sequence of events. It is not safe for
// concurrent use.
type Engine[T any] struct {
	cfg     Config
	rng     *rand.Rand
	pending []T
}

func NewEngine[T any](cfg Config) (*Engine[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ReorderWindow == 0 {
		cfg.ReorderWindow = 1
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UTC().UnixNano()
	}
	return &Engine[T]{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Process applies chaos to a single event and returns the events to forward.
func (e *Engine[T]) Process(ev T) []T {
	if e == nil {
		return []T{ev}
	}
	if e.shouldDrop() {
		return nil
	}
	if e.cfg.ReorderWindow <= 1 {
		return e.applyDuplicate(ev)
	}
	e.pending = append(e.pending, ev)
	if len(e.pending) < e.cfg.ReorderWindow {
		return nil
	}
	return e.applyDuplicate(e.take())
}

// Flush returns any buffered events in random order.
func (e *Engine[T]) Flush() []T {
	if e == nil || len(e.pending) == 0 {
		return nil
	}
	out := make([]T, 0, len(e.pending))
	for len(e.pending) > 0 {
		out = append(out, e.applyDuplicate(e.take())...)
	}
	return out
}

func (e *Engine[T]) take() T {
	idx := e.rng.Intn(len(e.pending))
	ev := e.pending[idx]
	e.pending = append(e.pending[:idx], e.pending[idx+1:]...)
	return ev
}

func (e *Engine[T]) shouldDrop() bool {
	return e.cfg.DropRate > 0 && e.rng.Float64() < e.cfg.DropRate
}

func (e *Engine[T]) applyDuplicate(ev T) []T {
	out := []T{ev}
	if e.cfg.DuplicateRate > 0 && e.rng.Float64() < e.cfg.DuplicateRate {
		out = append(out, ev)
	}
	return out
}

type event struct {
	sub *feed.Subscription
	msg *feed.Message
}

// Handler wraps next so every message passes through one chaos engine. The
// returned handler is safe for concurrent use.
func Handler(cfg Config, next func(sub *feed.Subscription, msg *feed.Message) error) (func(sub *feed.Subscription, msg *feed.Message) error, error) {
	engine, err := NewEngine[event](cfg)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	return func(sub *feed.Subscription, msg *feed.Message) error {
		mu.Lock()
		out := engine.Process(event{sub: sub, msg: msg})
		mu.Unlock()

		var errs error
		for _, ev := range out {
			if err := next(ev.sub, ev.msg); err != nil && errs == nil {
				errs = err
			}
		}
		return errs
	}, nil
}
