package trade

import "lunofeed/internal/model"

// Fill is one trade_updates entry of the stream.
type Fill struct {
	Base         model.RawNumber `json:"base"`
	Counter      model.RawNumber `json:"counter"`
	MakerOrderID string          `json:"maker_order_id"`
	TakerOrderID string          `json:"taker_order_id"`
	OrderID      string          `json:"order_id"`
}

// ParseFill turns a fill into a Trade. The stream discloses neither the
// execution price nor the aggressor side, so both stay empty; base volume
// becomes the amount and counter volume the cost.
func ParseFill(symbol string, f Fill) model.Trade {
	return model.Trade{
		Symbol:       symbol,
		Order:        f.OrderID,
		MakerOrderID: f.MakerOrderID,
		TakerOrderID: f.TakerOrderID,
		Amount:       f.Base.Decimal(),
		Cost:         f.Counter.Decimal(),
	}
}
