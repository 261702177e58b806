package codec

import (
	"lunofeed/internal/model"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
)

// Trade is the wire form of a model.Trade.
type Trade struct {
	Symbol       string  `json:"symbol"`
	ID           string  `json:"id,omitempty"`
	Order        string  `json:"order,omitempty"`
	MakerOrderID string  `json:"maker_order_id,omitempty"`
	TakerOrderID string  `json:"taker_order_id,omitempty"`
	Price        *string `json:"price"`
	Amount       *string `json:"amount"`
	Cost         *string `json:"cost"`
	Timestamp    *int64  `json:"timestamp"`
	Datetime     *string `json:"datetime"`
}

func NewTrade(t model.Trade) Trade {
	return Trade{
		Symbol:       t.Symbol,
		ID:           t.ID,
		Order:        t.Order,
		MakerOrderID: t.MakerOrderID,
		TakerOrderID: t.TakerOrderID,
		Price:        number(t.Price),
		Amount:       number(t.Amount),
		Cost:         number(t.Cost),
		Timestamp:    optional(t.Timestamp),
		Datetime:     optional(t.Datetime),
	}
}

func (t Trade) Model() model.Trade {
	return model.Trade{
		Symbol:       t.Symbol,
		ID:           t.ID,
		Order:        t.Order,
		MakerOrderID: t.MakerOrderID,
		TakerOrderID: t.TakerOrderID,
		Price:        parseNumber(t.Price),
		Amount:       parseNumber(t.Amount),
		Cost:         parseNumber(t.Cost),
		Timestamp:    value(t.Timestamp),
		Datetime:     value(t.Datetime),
	}
}

func NewTrades(trades []model.Trade) []Trade {
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		out = append(out, NewTrade(t))
	}
	return out
}

// EncodeTrades serializes trades to a JSON array.
func EncodeTrades(trades []model.Trade) ([]byte, error) {
	b, err := sonic.ConfigFastest.Marshal(NewTrades(trades))
	if err != nil {
		return nil, errors.Wrap(err, "encode trades")
	}
	return b, nil
}

// DecodeTrades parses a payload produced by EncodeTrades.
func DecodeTrades(src []byte) ([]model.Trade, error) {
	var raw []Trade
	if err := sonic.Unmarshal(src, &raw); err != nil {
		return nil, errors.Wrap(err, "decode trades")
	}

	out := make([]model.Trade, 0, len(raw))
	for _, t := range raw {
		out = append(out, t.Model())
	}
	return out, nil
}
