package feed

import (
	"lunofeed/internal/book"
	"lunofeed/internal/model"
	"lunofeed/internal/model/enum"
	"lunofeed/internal/trade"
)

// Subscription ties one stream to one symbol so messages can be routed
// without reading the symbol back from the payload.
type Subscription struct {
	Symbol   string
	MarketID string
}

// Key is the channel key of the given update kind for this subscription.
func (s *Subscription) Key(c enum.Channel) string {
	return c.Key(s.Symbol)
}

func (s *Subscription) valid() bool {
	return s != nil && len(s.Symbol) != 0
}

// RawLevel is one order of a full-book message.
type RawLevel struct {
	ID     string          `json:"id"`
	Price  model.RawNumber `json:"price"`
	Volume model.RawNumber `json:"volume"`
}

// Level parses the tuple. Malformed numbers become null fields.
func (l RawLevel) Level() model.Level {
	return model.Level{
		Price:    l.Price.Decimal(),
		Quantity: l.Volume.Decimal(),
		ID:       l.ID,
	}
}

type CreateUpdate struct {
	OrderID string          `json:"order_id"`
	Type    string          `json:"type"`
	Price   model.RawNumber `json:"price"`
	Volume  model.RawNumber `json:"volume"`
}

type DeleteUpdate struct {
	OrderID string `json:"order_id"`
}

type StatusUpdate struct {
	Status string `json:"status"`
}

// Message is a decoded stream message. A full book carries Bids and Asks;
// an event carries any of the update fields.
type Message struct {
	Sequence     model.RawNumber `json:"sequence"`
	Timestamp    model.RawNumber `json:"timestamp"`
	Status       string          `json:"status"`
	Bids         []RawLevel      `json:"bids"`
	Asks         []RawLevel      `json:"asks"`
	TradeUpdates []trade.Fill    `json:"trade_updates"`
	CreateUpdate *CreateUpdate   `json:"create_update"`
	DeleteUpdate *DeleteUpdate   `json:"delete_update"`
	StatusUpdate *StatusUpdate   `json:"status_update"`
}

// IsEmpty reports a message without payload.
func (m *Message) IsEmpty() bool {
	return m == nil || (len(m.Sequence) == 0 &&
		len(m.Timestamp) == 0 &&
		len(m.Status) == 0 &&
		m.Bids == nil &&
		m.Asks == nil &&
		len(m.TradeUpdates) == 0 &&
		m.CreateUpdate == nil &&
		m.DeleteUpdate == nil &&
		m.StatusUpdate == nil)
}

// IsSnapshot reports a full-book message. The asks array is the
// discriminator, even when it is empty.
func (m *Message) IsSnapshot() bool {
	return m != nil && m.Asks != nil
}

func (m *Message) sequence() int64 {
	seq, _ := m.Sequence.Int()
	return seq
}

func (m *Message) timestamp() int64 {
	ts, _ := m.Timestamp.Int()
	return ts
}

// Snapshot builds the full book and counts levels with null fields.
func (m *Message) Snapshot() (snap book.Snapshot, malformed int) {
	convert := func(raw []RawLevel) []model.Level {
		levels := make([]model.Level, 0, len(raw))
		for _, r := range raw {
			l := r.Level()
			if !l.Price.Valid || !l.Quantity.Valid {
				malformed++
			}
			levels = append(levels, l)
		}
		return levels
	}

	return book.Snapshot{
		Bids:      convert(m.Bids),
		Asks:      convert(m.Asks),
		Timestamp: m.timestamp(),
		Sequence:  m.sequence(),
		Status:    m.Status,
	}, malformed
}

// Delta builds the incremental event. Trade updates are not part of it.
func (m *Message) Delta() book.Delta {
	d := book.Delta{
		Timestamp: m.timestamp(),
		Sequence:  m.sequence(),
	}

	if c := m.CreateUpdate; c != nil {
		d.Create = &book.Create{
			OrderID: c.OrderID,
			Side:    enum.ParseSide(c.Type),
			Price:   c.Price.Decimal(),
			Volume:  c.Volume.Decimal(),
		}
	}

	if del := m.DeleteUpdate; del != nil {
		d.Delete = &book.Delete{OrderID: del.OrderID}
	}

	if s := m.StatusUpdate; s != nil {
		d.Status = s.Status
	}

	return d
}

// Trades parses the fills in arrival order, stamped with the message time.
func (m *Message) Trades(symbol string) []model.Trade {
	if len(m.TradeUpdates) == 0 {
		return nil
	}

	ts := m.timestamp()
	trades := make([]model.Trade, 0, len(m.TradeUpdates))
	for _, f := range m.TradeUpdates {
		t := trade.ParseFill(symbol, f)
		t.Timestamp = ts
		t.Datetime = model.ISO8601(ts)
		trades = append(trades, t)
	}
	return trades
}
