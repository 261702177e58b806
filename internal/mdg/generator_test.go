package mdg

import (
	"context"
	"testing"
	"time"

	"lunofeed/internal/feed"
	"lunofeed/internal/obs"
	"lunofeed/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/errors"
)

var sub = &feed.Subscription{Symbol: "SIM/ZAR", MarketID: "SIMZAR"}

func TestNewGeneratorValidation(t *testing.T) {
	_, err := NewGenerator(1, 0, 1, 5)
	assert.True(t, errors.Is(err, exception.ErrInvalidArgument))
	_, err = NewGenerator(1, 100, 1, 0)
	assert.True(t, errors.Is(err, exception.ErrInvalidArgument))
}

func TestGeneratorSnapshot(t *testing.T) {
	g, err := NewGenerator(1, 1000, 5, 3)
	require.NoError(t, err)

	msg := g.Snapshot(time.UnixMilli(1660598775360))
	require.True(t, msg.IsSnapshot())
	assert.Len(t, msg.Bids, 3)
	assert.Len(t, msg.Asks, 3)
	assert.Equal(t, 6, g.Len())

	snap, malformed := msg.Snapshot()
	assert.Zero(t, malformed)
	assert.Equal(t, int64(1), snap.Sequence)
	assert.Equal(t, int64(1660598775360), snap.Timestamp)
	assert.Equal(t, "995", snap.Bids[0].Price.Decimal.String())
	assert.Equal(t, "1005", snap.Asks[0].Price.Decimal.String())
}

func TestGeneratorStreamReconcilesCleanly(t *testing.T) {
	g, err := NewGenerator(7, 1000, 1, 10)
	require.NoError(t, err)

	m := obs.NewMetrics()
	d := feed.NewDispatcher(feed.Option{Metrics: m})
	ctx := context.Background()
	now := time.UnixMilli(1660598775360)

	require.NoError(t, d.Handle(ctx, sub, g.Snapshot(now)))
	for i := 0; i < 500; i++ {
		require.NoError(t, d.Handle(ctx, sub, g.Next(now)))
	}

	v, err := d.OrderBook(ctx, sub.Symbol, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(501), v.Sequence)
	assert.Equal(t, g.Len(), len(v.Bids)+len(v.Asks))

	assert.Zero(t, m.Count(obs.CounterSequenceGap))
	assert.Zero(t, m.Count(obs.CounterUnknownDelete))
	assert.Zero(t, m.Count(obs.CounterUnknownSide))
	assert.Equal(t, uint64(500), m.Count(obs.CounterDelta))
}

func TestRunStopsWithContext(t *testing.T) {
	g, err := NewGenerator(1, 1000, 1, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var got []*feed.Message
	err = Run(ctx, g, sub, time.Millisecond, func(_ *feed.Subscription, msg *feed.Message) error {
		got = append(got, msg)
		if len(got) == 5 {
			cancel()
		}
		return nil
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), 5)
	assert.True(t, got[0].IsSnapshot())
}
