package book

import (
	"slices"

	"lunofeed/internal/model"

	"github.com/shopspring/decimal"
)

// OrderBook is the live book of one symbol. It is owned by a single writer;
// readers take a View.
type OrderBook struct {
	Symbol    string
	Bids      *Side
	Asks      *Side
	Timestamp int64
	Datetime  string
	Sequence  int64
	Status    string
}

func New(symbol string) *OrderBook {
	return &OrderBook{
		Symbol: symbol,
		Bids:   NewBids(),
		Asks:   NewAsks(),
	}
}

// SetTimestamp sets the millisecond timestamp and its datetime. Zero clears
// both.
func (b *OrderBook) SetTimestamp(ms int64) {
	b.Timestamp = ms
	b.Datetime = model.ISO8601(ms)
}

// View copies the book, keeping at most depth levels per side. depth <= 0
// keeps every level.
func (b *OrderBook) View(depth int) View {
	return View{
		Symbol:    b.Symbol,
		Bids:      b.Bids.Levels(depth),
		Asks:      b.Asks.Levels(depth),
		Timestamp: b.Timestamp,
		Datetime:  b.Datetime,
		Sequence:  b.Sequence,
		Status:    b.Status,
	}
}

// View is a detached copy of an OrderBook.
type View struct {
	Symbol    string
	Bids      []model.Level
	Asks      []model.Level
	Timestamp int64
	Datetime  string
	Sequence  int64
	Status    string
}

func (v View) BestBid() (model.Level, bool) {
	if len(v.Bids) == 0 {
		return model.Level{}, false
	}
	return v.Bids[0], true
}

func (v View) BestAsk() (model.Level, bool) {
	if len(v.Asks) == 0 {
		return model.Level{}, false
	}
	return v.Asks[0], true
}

// Spread is best ask minus best bid when both prices are known.
func (v View) Spread() (decimal.Decimal, bool) {
	bid, okBid := v.BestBid()
	ask, okAsk := v.BestAsk()
	if !okBid || !okAsk || !bid.Price.Valid || !ask.Price.Valid {
		return decimal.Zero, false
	}

	return ask.Price.Decimal.Sub(bid.Price.Decimal), true
}

// Clone deep-copies the level slices.
func (v View) Clone() View {
	v.Bids = slices.Clone(v.Bids)
	v.Asks = slices.Clone(v.Asks)
	return v
}

// Limit keeps at most depth levels per side. depth <= 0 keeps every level.
func (v View) Limit(depth int) View {
	if depth <= 0 {
		return v
	}
	if len(v.Bids) > depth {
		v.Bids = v.Bids[:depth]
	}
	if len(v.Asks) > depth {
		v.Asks = v.Asks[:depth]
	}
	return v
}
