package trade

import "lunofeed/internal/model"

// DefaultCapacity is the number of trades kept per symbol unless configured.
const DefaultCapacity = 1000

// Cache keeps the most recent trades of one symbol in arrival order. Once full
// every append evicts the oldest trade.
//
// Cache is not safe for concurrent use.
type Cache struct {
	buf  []model.Trade
	head int
	size int
}

// NewCache allocates a cache. capacity <= 0 falls back to DefaultCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Cache{buf: make([]model.Trade, capacity)}
}

func (c *Cache) Len() int {
	return c.size
}

func (c *Cache) Cap() int {
	return len(c.buf)
}

// Append stores t and reports whether the oldest trade was evicted to make room.
func (c *Cache) Append(t model.Trade) (evicted bool) {
	tail := (c.head + c.size) % len(c.buf)
	c.buf[tail] = t
	if c.size < len(c.buf) {
		c.size++
		return false
	}

	c.head = (c.head + 1) % len(c.buf)
	return true
}

// Trades copies every cached trade, oldest first.
func (c *Cache) Trades() []model.Trade {
	return c.Tail(0)
}

// Tail copies the newest limit trades, oldest first. limit <= 0 copies all.
func (c *Cache) Tail(limit int) []model.Trade {
	n := c.size
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]model.Trade, 0, n)
	for i := c.size - n; i < c.size; i++ {
		out = append(out, c.at(i))
	}
	return out
}

// Since copies trades whose timestamp is at or after since, keeping the newest
// limit of them. Trades without a timestamp are kept only when since <= 0.
func (c *Cache) Since(since int64, limit int) []model.Trade {
	out := make([]model.Trade, 0, c.size)
	for i := 0; i < c.size; i++ {
		t := c.at(i)
		if since > 0 && t.Timestamp < since {
			continue
		}
		out = append(out, t)
	}

	if limit > 0 && limit < len(out) {
		out = out[len(out)-limit:]
	}
	return out
}

func (c *Cache) at(i int) model.Trade {
	return c.buf[(c.head+i)%len(c.buf)]
}
