package feed

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"lunofeed/internal/obs"
	"lunofeed/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/errors"
)

func TestRouterBeforeStart(t *testing.T) {
	r := NewRouter(NewDispatcher(Option{}), 4, nil)
	assert.True(t, errors.Is(r.Publish(xbt, &Message{}), exception.ErrFeedRouterStopped))
}

func TestRouterNilDispatcher(t *testing.T) {
	r := NewRouter(nil, 4, nil)
	assert.True(t, errors.Is(r.Start(context.Background()), exception.ErrFeedNilDispatcher))
}

func TestRouterCancelledContext(t *testing.T) {
	d := NewDispatcher(Option{})
	r := NewRouter(d, 4, nil)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))
	cancel()

	for i := 0; i < 3; i++ {
		assert.True(t, errors.Is(r.Publish(xbt, decode(t, snapshotMsg)), exception.ErrFeedRouterStopped))
	}
	r.Stop()
	assert.Empty(t, d.Symbols())
}

func TestRouterMissingSubscription(t *testing.T) {
	m := obs.NewMetrics()
	r := NewRouter(NewDispatcher(Option{}), 4, m)
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	assert.True(t, errors.Is(r.Publish(nil, &Message{}), exception.ErrFeedNilSubscription))
	assert.Equal(t, uint64(1), m.Count(obs.CounterDroppedMessage))
}

func TestRouterSerializesPerSymbol(t *testing.T) {
	const (
		symbols  = 4
		messages = 200
	)

	m := obs.NewMetrics()
	d := NewDispatcher(Option{Metrics: m})
	r := NewRouter(d, messages+1, m)
	require.NoError(t, r.Start(context.Background()))

	subs := make([]*Subscription, symbols)
	for i := range subs {
		subs[i] = &Subscription{Symbol: fmt.Sprintf("S%d", i)}
		require.NoError(t, r.Publish(subs[i], decode(t, snapshotMsg)))
	}

	for seq := 2; seq <= messages; seq++ {
		for _, sub := range subs {
			raw := `{"sequence":"` + strconv.Itoa(seq) + `","create_update":{"order_id":"o` +
				strconv.Itoa(seq) + `","type":"ASK","price":"` + strconv.Itoa(1000+seq) + `","volume":"1"}}`
			require.NoError(t, r.Publish(sub, decode(t, raw)))
		}
	}

	r.Stop()

	for _, sub := range subs {
		v := currentBook(t, d, sub.Symbol)
		assert.Equal(t, int64(messages), v.Sequence)
		assert.Len(t, v.Asks, messages)
	}
	assert.Equal(t, uint64(0), m.Count(obs.CounterSequenceGap))
	assert.Equal(t, uint64(0), m.Count(obs.CounterQueueDrop))
	assert.True(t, errors.Is(r.Publish(subs[0], &Message{}), exception.ErrFeedRouterStopped))
}

func TestRouterRunStopsWithContext(t *testing.T) {
	r := NewRouter(NewDispatcher(Option{}), 4, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
	r.Stop()
}
