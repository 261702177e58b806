package feed

import (
	"context"

	"lunofeed/internal/book"
	"lunofeed/internal/model"
)

// Sink receives every reconciled change, after the symbol state is updated.
// Sinks run on the symbol's writer path, so they should not block for long.
type Sink interface {
	PublishOrderBook(ctx context.Context, v book.View) error
	PublishTrades(ctx context.Context, symbol string, trades []model.Trade) error
}
