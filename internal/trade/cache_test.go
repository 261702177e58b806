package trade

import (
	"strconv"
	"testing"

	"lunofeed/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(n int) model.Trade {
	return model.Trade{ID: strconv.Itoa(n), Timestamp: int64(n)}
}

func ids(trades []model.Trade) []string {
	out := make([]string, 0, len(trades))
	for _, t := range trades {
		out = append(out, t.ID)
	}
	return out
}

func TestCacheDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, NewCache(0).Cap())
	assert.Equal(t, DefaultCapacity, NewCache(-3).Cap())
	assert.Equal(t, 5, NewCache(5).Cap())
}

func TestCacheEviction(t *testing.T) {
	const capacity, extra = 4, 3
	c := NewCache(capacity)

	evictions := 0
	for i := 1; i <= capacity+extra; i++ {
		if c.Append(numbered(i)) {
			evictions++
		}
		require.LessOrEqual(t, c.Len(), capacity)
	}

	assert.Equal(t, extra, evictions)
	assert.Equal(t, capacity, c.Len())
	assert.Equal(t, []string{"4", "5", "6", "7"}, ids(c.Trades()))
}

func TestCacheTail(t *testing.T) {
	c := NewCache(3)
	assert.Empty(t, c.Tail(2))

	for i := 1; i <= 5; i++ {
		c.Append(numbered(i))
	}

	assert.Equal(t, []string{"4", "5"}, ids(c.Tail(2)))
	assert.Equal(t, []string{"3", "4", "5"}, ids(c.Tail(10)))
}

func TestCacheSince(t *testing.T) {
	c := NewCache(10)
	for i := 1; i <= 6; i++ {
		c.Append(numbered(i))
	}

	assert.Equal(t, []string{"4", "5", "6"}, ids(c.Since(4, 0)))
	assert.Equal(t, []string{"5", "6"}, ids(c.Since(4, 2)))
	assert.Len(t, c.Since(0, 0), 6)
}

func TestCacheCopiesAreDetached(t *testing.T) {
	c := NewCache(2)
	c.Append(numbered(1))

	trades := c.Trades()
	trades[0].ID = "changed"
	assert.Equal(t, []string{"1"}, ids(c.Trades()))
}

func TestParseFill(t *testing.T) {
	tr := ParseFill("BTC/ZAR", Fill{
		Base:         "0.1",
		Counter:      "5232.00",
		MakerOrderID: "BXMC2CJ7HNB88U4",
		TakerOrderID: "BXMC2CJ7HNB88U5",
	})

	assert.Equal(t, "BTC/ZAR", tr.Symbol)
	assert.Equal(t, "0.1", tr.Amount.Decimal.String())
	assert.Equal(t, "5232", tr.Cost.Decimal.String())
	assert.False(t, tr.Price.Valid)
	assert.Zero(t, tr.Timestamp)
	assert.Equal(t, "BXMC2CJ7HNB88U4", tr.MakerOrderID)
	assert.Equal(t, "BXMC2CJ7HNB88U5", tr.TakerOrderID)

	bad := ParseFill("BTC/ZAR", Fill{Base: "?", Counter: "1"})
	assert.False(t, bad.Amount.Valid)
	assert.True(t, bad.Cost.Valid)
}
