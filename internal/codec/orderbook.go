package codec

import (
	"lunofeed/internal/book"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
)

// OrderBook is the wire form of a book.View.
type OrderBook struct {
	Symbol    string  `json:"symbol"`
	Bids      []Level `json:"bids"`
	Asks      []Level `json:"asks"`
	Timestamp *int64  `json:"timestamp"`
	Datetime  *string `json:"datetime"`
	Nonce     *int64  `json:"nonce"`
	Status    string  `json:"status,omitempty"`
}

func optional[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

func value[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func NewOrderBook(v book.View) OrderBook {
	return OrderBook{
		Symbol:    v.Symbol,
		Bids:      newLevels(v.Bids),
		Asks:      newLevels(v.Asks),
		Timestamp: optional(v.Timestamp),
		Datetime:  optional(v.Datetime),
		Nonce:     optional(v.Sequence),
		Status:    v.Status,
	}
}

func (o OrderBook) View() book.View {
	return book.View{
		Symbol:    o.Symbol,
		Bids:      modelLevels(o.Bids),
		Asks:      modelLevels(o.Asks),
		Timestamp: value(o.Timestamp),
		Datetime:  value(o.Datetime),
		Sequence:  value(o.Nonce),
		Status:    o.Status,
	}
}

// EncodeOrderBook serializes a book view to JSON.
func EncodeOrderBook(v book.View) ([]byte, error) {
	b, err := sonic.ConfigFastest.Marshal(NewOrderBook(v))
	if err != nil {
		return nil, errors.Wrapf(err, "encode order book %s", v.Symbol)
	}
	return b, nil
}

// DecodeOrderBook parses a payload produced by EncodeOrderBook.
func DecodeOrderBook(src []byte) (book.View, error) {
	var o OrderBook
	if err := sonic.Unmarshal(src, &o); err != nil {
		return book.View{}, errors.Wrap(err, "decode order book")
	}
	return o.View(), nil
}
