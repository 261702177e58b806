package redis

import (
	"context"

	"lunofeed/internal/book"
	"lunofeed/internal/codec"
	"lunofeed/internal/model"
	"lunofeed/internal/model/enum"

	"github.com/redis/go-redis/v9"
	"github.com/yanun0323/errors"
)

// Publisher is the part of *redis.Client the sink needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Sink publishes every book view on `<prefix>orderbook:<symbol>` and every
// batch of new trades on `<prefix>trades:<symbol>`.
type Sink struct {
	rdb    Publisher
	prefix string
}

func NewSink(rdb Publisher, prefix string) *Sink {
	return &Sink{rdb: rdb, prefix: prefix}
}

func (s *Sink) channel(c enum.Channel, symbol string) string {
	return s.prefix + c.Key(symbol)
}

func (s *Sink) PublishOrderBook(ctx context.Context, v book.View) error {
	payload, err := codec.EncodeOrderBook(v)
	if err != nil {
		return err
	}

	ch := s.channel(enum.ChannelOrderBook, v.Symbol)
	if err := s.rdb.Publish(ctx, ch, payload).Err(); err != nil {
		return errors.Wrapf(err, "redis publish %s", ch)
	}
	return nil
}

func (s *Sink) PublishTrades(ctx context.Context, symbol string, trades []model.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	payload, err := codec.EncodeTrades(trades)
	if err != nil {
		return err
	}

	ch := s.channel(enum.ChannelTrades, symbol)
	if err := s.rdb.Publish(ctx, ch, payload).Err(); err != nil {
		return errors.Wrapf(err, "redis publish %s", ch)
	}
	return nil
}
