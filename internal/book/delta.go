package book

import (
	"lunofeed/internal/model"
	"lunofeed/internal/model/enum"
	"lunofeed/pkg/exception"

	"github.com/shopspring/decimal"
)

// Create places a new resting order.
type Create struct {
	OrderID string
	Side    enum.Side
	Price   decimal.NullDecimal
	Volume  decimal.NullDecimal
}

// Delete removes a resting order from whichever side holds it.
type Delete struct {
	OrderID string
}

// Delta is one incremental event. Create and Delete are optional and applied
// in that order.
type Delta struct {
	Create    *Create
	Delete    *Delete
	Status    string
	Timestamp int64
	Sequence  int64
}

// DeltaResult reports what ApplyDelta did, for observability only.
type DeltaResult struct {
	Created       bool
	UnknownSide   bool
	Deleted       bool
	UnknownDelete bool
	SequenceGap   bool
}

// ApplyDelta reconciles d onto b. The sequence is taken from d even when it
// does not follow the current one; SequenceGap only reports it.
func ApplyDelta(b *OrderBook, d Delta) (DeltaResult, error) {
	var res DeltaResult
	if b == nil {
		return res, exception.ErrBookNil
	}

	if c := d.Create; c != nil {
		level := model.Level{Price: c.Price, Quantity: c.Volume, ID: c.OrderID}
		switch c.Side {
		case enum.SideAsk:
			b.Asks.Store(level)
			res.Created = true
		case enum.SideBid:
			b.Bids.Store(level)
			res.Created = true
		default:
			res.UnknownSide = true
		}
	}

	if del := d.Delete; del != nil {
		// the id alone does not say which side holds it
		removedAsk := b.Asks.Remove(del.OrderID)
		removedBid := b.Bids.Remove(del.OrderID)
		res.Deleted = removedAsk || removedBid
		res.UnknownDelete = !res.Deleted
	}

	if len(d.Status) != 0 {
		b.Status = d.Status
	}

	res.SequenceGap = b.Sequence != 0 && d.Sequence != 0 && d.Sequence != b.Sequence+1
	b.SetTimestamp(d.Timestamp)
	b.Sequence = d.Sequence
	return res, nil
}
