package book

import (
	"lunofeed/internal/model"
	"lunofeed/pkg/exception"
)

// Snapshot is a full book as delivered by the venue. Levels may arrive in any
// order and may carry null fields.
type Snapshot struct {
	Bids      []model.Level
	Asks      []model.Level
	Timestamp int64
	Sequence  int64
	Status    string
}

// Build sorts the snapshot levels into a fresh bid and ask side.
func Build(snap Snapshot) (bids, asks *Side) {
	bids, asks = NewBids(), NewAsks()
	bids.Reset(snap.Bids)
	asks.Reset(snap.Asks)
	return bids, asks
}

// Reset replaces the book wholesale with the snapshot.
func (b *OrderBook) Reset(snap Snapshot) error {
	if b == nil {
		return exception.ErrBookNil
	}

	b.Bids, b.Asks = Build(snap)
	b.SetTimestamp(snap.Timestamp)
	b.Sequence = snap.Sequence
	b.Status = snap.Status
	return nil
}
