// Package mdg generates a synthetic Luno market stream.
package mdg

import (
	"math/rand"
	"strconv"
	"time"

	"lunofeed/internal/feed"
	"lunofeed/internal/model"
	"lunofeed/internal/trade"
	"lunofeed/pkg/exception"

	"github.com/yanun0323/errors"
)

// Generator emits a full book followed by an endless run of updates whose
// sequence numbers follow on without gaps. Every delete and fill refers to
// an order the generator created.
type Generator struct {
	rng       *rand.Rand
	basePrice int64
	spread    int64
	depth     int

	seq    int64
	nextID int
	bids   []string
	asks   []string
}

// NewGenerator creates a generator around basePrice with depth resting
// orders per side, spread ticks apart.
func NewGenerator(seed, basePrice, spread int64, depth int) (*Generator, error) {
	if basePrice <= 0 || depth <= 0 {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "base price and depth must be > 0")
	}
	if spread <= 0 {
		spread = 1
	}
	return &Generator{
		rng:       rand.New(rand.NewSource(seed)),
		basePrice: basePrice,
		spread:    spread,
		depth:     depth,
	}, nil
}

func (g *Generator) stamp(msg *feed.Message, now time.Time) {
	g.seq++
	msg.Sequence = model.RawNumber(strconv.FormatInt(g.seq, 10))
	msg.Timestamp = model.RawNumber(strconv.FormatInt(now.UnixMilli(), 10))
}

func (g *Generator) id() string {
	g.nextID++
	return "SIM" + strconv.Itoa(g.nextID)
}

func number(n int64) model.RawNumber {
	return model.RawNumber(strconv.FormatInt(n, 10))
}

// Snapshot returns the full book that opens the stream.
func (g *Generator) Snapshot(now time.Time) *feed.Message {
	msg := &feed.Message{
		Status: "ACTIVE",
		Bids:   make([]feed.RawLevel, 0, g.depth),
		Asks:   make([]feed.RawLevel, 0, g.depth),
	}
	g.bids = g.bids[:0]
	g.asks = g.asks[:0]

	for i := 1; i <= g.depth; i++ {
		bid := feed.RawLevel{ID: g.id(), Price: number(g.basePrice - int64(i)*g.spread), Volume: number(g.volume())}
		ask := feed.RawLevel{ID: g.id(), Price: number(g.basePrice + int64(i)*g.spread), Volume: number(g.volume())}
		msg.Bids = append(msg.Bids, bid)
		msg.Asks = append(msg.Asks, ask)
		g.bids = append(g.bids, bid.ID)
		g.asks = append(g.asks, ask.ID)
	}

	g.stamp(msg, now)
	return msg
}

// Next returns the next update: a create, a delete or a fill, chosen at
// random.
func (g *Generator) Next(now time.Time) *feed.Message {
	msg := &feed.Message{}

	switch n := g.rng.Intn(3); {
	case n == 1 && len(g.bids)+len(g.asks) > 0:
		msg.DeleteUpdate = &feed.DeleteUpdate{OrderID: g.pop()}
	case n == 2 && len(g.bids)+len(g.asks) > 0:
		amount := g.volume()
		msg.TradeUpdates = []trade.Fill{{
			Base:         number(amount),
			Counter:      number(amount * g.basePrice),
			MakerOrderID: g.pick(),
			TakerOrderID: g.id(),
		}}
	default:
		msg.CreateUpdate = g.create()
	}

	g.stamp(msg, now)
	return msg
}

func (g *Generator) volume() int64 {
	return 1 + g.rng.Int63n(10)
}

func (g *Generator) create() *feed.CreateUpdate {
	offset := (1 + g.rng.Int63n(int64(g.depth))) * g.spread
	c := &feed.CreateUpdate{OrderID: g.id(), Volume: number(g.volume())}
	if g.rng.Intn(2) == 0 {
		c.Type = "BID"
		c.Price = number(g.basePrice - offset)
		g.bids = append(g.bids, c.OrderID)
	} else {
		c.Type = "ASK"
		c.Price = number(g.basePrice + offset)
		g.asks = append(g.asks, c.OrderID)
	}
	return c
}

func (g *Generator) pick() string {
	all := len(g.bids) + len(g.asks)
	i := g.rng.Intn(all)
	if i < len(g.bids) {
		return g.bids[i]
	}
	return g.asks[i-len(g.bids)]
}

func (g *Generator) pop() string {
	i := g.rng.Intn(len(g.bids) + len(g.asks))
	if i < len(g.bids) {
		id := g.bids[i]
		g.bids = append(g.bids[:i], g.bids[i+1:]...)
		return id
	}
	i -= len(g.bids)
	id := g.asks[i]
	g.asks = append(g.asks[:i], g.asks[i+1:]...)
	return id
}

// Len is the number of resting orders the generator knows of.
func (g *Generator) Len() int {
	return len(g.bids) + len(g.asks)
}
