package kafka

import (
	"context"
	"testing"

	"lunofeed/internal/book"
	"lunofeed/internal/codec"
	"lunofeed/internal/model"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestSinkKeysByChannel(t *testing.T) {
	w := &fakeWriter{}
	s := NewSink(w, "books", "trades")
	ctx := context.Background()

	require.NoError(t, s.PublishOrderBook(ctx, book.View{Symbol: "XBT/ZAR", Sequence: 9}))
	require.NoError(t, s.PublishTrades(ctx, "XBT/ZAR", []model.Trade{{Symbol: "XBT/ZAR"}}))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "books", w.msgs[0].Topic)
	assert.Equal(t, "orderbook:XBT/ZAR", string(w.msgs[0].Key))
	v, err := codec.DecodeOrderBook(w.msgs[0].Value)
	require.NoError(t, err)
	assert.Equal(t, int64(9), v.Sequence)

	assert.Equal(t, "trades", w.msgs[1].Topic)
	assert.Equal(t, "trades:XBT/ZAR", string(w.msgs[1].Key))

	require.NoError(t, s.Close())
	assert.True(t, w.closed)
}

func TestSinkSkipsUnsetTopics(t *testing.T) {
	w := &fakeWriter{}
	s := NewSink(w, "", "trades")

	require.NoError(t, s.PublishOrderBook(context.Background(), book.View{Symbol: "XBT/ZAR"}))
	require.NoError(t, s.PublishTrades(context.Background(), "XBT/ZAR", nil))
	assert.Empty(t, w.msgs)
}

func TestSinkWriteError(t *testing.T) {
	w := &fakeWriter{err: assert.AnError}
	s := NewSink(w, "books", "")

	err := s.PublishOrderBook(context.Background(), book.View{Symbol: "XBT/ZAR"})
	assert.ErrorIs(t, err, assert.AnError)
}
