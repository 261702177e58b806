// Package kafka publishes reconciled books and trades to Kafka topics.
package kafka

import (
	"context"
	"time"

	"lunofeed/internal/book"
	"lunofeed/internal/codec"
	"lunofeed/internal/model"
	"lunofeed/internal/model/enum"

	"github.com/segmentio/kafka-go"
	"github.com/yanun0323/errors"
)

// Writer is the part of *kafka.Writer the sink needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter builds a synchronous writer. Messages carry their own topic so
// one writer serves both the book and trades topics.
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// Sink writes every book view and every batch of new trades keyed by the
// channel key, so one symbol always lands on one partition.
type Sink struct {
	w           Writer
	bookTopic   string
	tradesTopic string
}

func NewSink(w Writer, bookTopic, tradesTopic string) *Sink {
	return &Sink{w: w, bookTopic: bookTopic, tradesTopic: tradesTopic}
}

func (s *Sink) PublishOrderBook(ctx context.Context, v book.View) error {
	if len(s.bookTopic) == 0 {
		return nil
	}

	payload, err := codec.EncodeOrderBook(v)
	if err != nil {
		return err
	}

	return s.write(ctx, s.bookTopic, enum.ChannelOrderBook.Key(v.Symbol), payload)
}

func (s *Sink) PublishTrades(ctx context.Context, symbol string, trades []model.Trade) error {
	if len(s.tradesTopic) == 0 || len(trades) == 0 {
		return nil
	}

	payload, err := codec.EncodeTrades(trades)
	if err != nil {
		return err
	}

	return s.write(ctx, s.tradesTopic, enum.ChannelTrades.Key(symbol), payload)
}

func (s *Sink) write(ctx context.Context, topic, key string, payload []byte) error {
	err := s.w.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		return errors.Wrapf(err, "kafka write %s %s", topic, key)
	}
	return nil
}

func (s *Sink) Close() error {
	return s.w.Close()
}
