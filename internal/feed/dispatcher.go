package feed

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"lunofeed/internal/book"
	"lunofeed/internal/model"
	"lunofeed/internal/model/enum"
	"lunofeed/internal/obs"
	"lunofeed/internal/trade"
	"lunofeed/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Option configures a Dispatcher.
type Option struct {
	// TradesLimit is the trade cache capacity per symbol.
	TradesLimit int
	// Depth truncates the views handed to waiters and sinks. 0 keeps all levels.
	Depth   int
	Metrics *obs.Metrics
	Sinks   []Sink
	Now     func() time.Time
}

// Dispatcher routes decoded messages to the order book and trade cache of
// their symbol and wakes the consumers waiting on them.
//
// Messages of one symbol must be handled serially (see Router); different
// symbols may be handled concurrently.
type Dispatcher struct {
	mu      sync.RWMutex
	symbols map[string]*symbolState

	books  *Notifier[book.View]
	trades *Notifier[[]model.Trade]

	tradesLimit int
	depth       int
	metrics     *obs.Metrics
	sinks       []Sink
	now         func() time.Time
}

type symbolState struct {
	mu     sync.RWMutex
	book   *book.OrderBook
	trades *trade.Cache
}

func NewDispatcher(opt Option) *Dispatcher {
	if opt.TradesLimit <= 0 {
		opt.TradesLimit = trade.DefaultCapacity
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}

	return &Dispatcher{
		symbols:     make(map[string]*symbolState),
		books:       NewNotifier(book.View.Clone),
		trades:      NewNotifier(slices.Clone[[]model.Trade]),
		tradesLimit: opt.TradesLimit,
		depth:       opt.Depth,
		metrics:     opt.Metrics,
		sinks:       opt.Sinks,
		now:         opt.Now,
	}
}

// Handle reconciles one message. Empty messages are ignored and messages
// without a subscription are dropped and logged; neither is an error. The
// returned error is reserved for broken invariants.
func (d *Dispatcher) Handle(ctx context.Context, sub *Subscription, msg *Message) error {
	if d == nil {
		return exception.ErrFeedNilDispatcher
	}

	if msg.IsEmpty() {
		d.metrics.Inc(obs.CounterEmptyMessage)
		return nil
	}

	if !sub.valid() {
		d.metrics.Inc(obs.CounterDroppedMessage)
		logs.Errorf("drop message, sequence: %s, err: %+v", msg.Sequence, exception.ErrFeedNilSubscription)
		return nil
	}

	start := d.now()
	st := d.state(sub.Symbol)

	st.mu.Lock()
	view, err := d.reconcile(st, sub, msg)
	if err != nil {
		st.mu.Unlock()
		return errors.Wrapf(err, "reconcile %s", sub.Symbol)
	}
	fresh := msg.Trades(sub.Symbol)
	if len(fresh) != 0 {
		d.appendTrades(st, fresh)
	}
	st.mu.Unlock()

	d.books.Resolve(sub.Key(enum.ChannelOrderBook), view)
	if len(fresh) != 0 {
		d.trades.Resolve(sub.Key(enum.ChannelTrades), fresh)
	}

	d.publish(ctx, view, sub.Symbol, fresh)

	d.metrics.ObserveHandle(d.now().Sub(start))
	d.metrics.ObserveLag(view.Timestamp, d.now())
	return nil
}

// reconcile mutates the book of st and returns the view to hand out. st.mu
// must be held.
func (d *Dispatcher) reconcile(st *symbolState, sub *Subscription, msg *Message) (book.View, error) {
	if st.book == nil {
		st.book = book.New(sub.Symbol)
	}

	if msg.IsSnapshot() {
		snap, malformed := msg.Snapshot()
		if err := st.book.Reset(snap); err != nil {
			return book.View{}, err
		}
		d.metrics.Inc(obs.CounterSnapshot)
		d.metrics.Add(obs.CounterMalformedLevel, uint64(malformed))
		return st.book.View(d.depth), nil
	}

	res, err := book.ApplyDelta(st.book, msg.Delta())
	if err != nil {
		return book.View{}, err
	}

	d.metrics.Inc(obs.CounterDelta)
	if res.UnknownDelete {
		d.metrics.Inc(obs.CounterUnknownDelete)
	}
	if res.UnknownSide {
		d.metrics.Inc(obs.CounterUnknownSide)
	}
	if res.SequenceGap {
		d.metrics.Inc(obs.CounterSequenceGap)
	}
	return st.book.View(d.depth), nil
}

// appendTrades stores fresh trades. st.mu must be held.
func (d *Dispatcher) appendTrades(st *symbolState, fresh []model.Trade) {
	if st.trades == nil {
		st.trades = trade.NewCache(d.tradesLimit)
	}

	for _, t := range fresh {
		if st.trades.Append(t) {
			d.metrics.Inc(obs.CounterEvictedTrade)
		}
	}
	d.metrics.Add(obs.CounterTrade, uint64(len(fresh)))
}

func (d *Dispatcher) publish(ctx context.Context, view book.View, symbol string, fresh []model.Trade) {
	for _, s := range d.sinks {
		if err := s.PublishOrderBook(ctx, view); err != nil {
			d.metrics.Inc(obs.CounterSinkError)
			logs.Errorf("publish order book %s, err: %+v", symbol, err)
		}

		if len(fresh) == 0 {
			continue
		}

		if err := s.PublishTrades(ctx, symbol, fresh); err != nil {
			d.metrics.Inc(obs.CounterSinkError)
			logs.Errorf("publish trades %s, err: %+v", symbol, err)
		}
	}
}

func (d *Dispatcher) state(symbol string) *symbolState {
	d.mu.RLock()
	st := d.symbols[symbol]
	d.mu.RUnlock()
	if st != nil {
		return st
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if st = d.symbols[symbol]; st == nil {
		st = &symbolState{}
		d.symbols[symbol] = st
	}
	return st
}

func (d *Dispatcher) lookup(symbol string) *symbolState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.symbols[symbol]
}

// Symbols lists the symbols that have received at least one message.
func (d *Dispatcher) Symbols() []string {
	d.mu.RLock()
	out := make([]string, 0, len(d.symbols))
	for s := range d.symbols {
		out = append(out, s)
	}
	d.mu.RUnlock()

	sort.Strings(out)
	return out
}

// WatchOrderBook waits for the next update of the symbol's book.
func (d *Dispatcher) WatchOrderBook(ctx context.Context, symbol string, depth int) (book.View, error) {
	v, err := d.books.Wait(ctx, enum.ChannelOrderBook.Key(symbol))
	if err != nil {
		return book.View{}, err
	}
	return v.Limit(depth), nil
}

// OrderBook returns a copy of the current book, waiting for the first update
// when the symbol has no book yet.
func (d *Dispatcher) OrderBook(ctx context.Context, symbol string, depth int) (book.View, error) {
	w := d.books.Register(enum.ChannelOrderBook.Key(symbol))
	defer w.Cancel()

	if st := d.lookup(symbol); st != nil {
		st.mu.RLock()
		b := st.book
		var v book.View
		if b != nil {
			v = b.View(depth)
		}
		st.mu.RUnlock()
		if b != nil {
			return v, nil
		}
	}

	v, err := w.Wait(ctx)
	if err != nil {
		return book.View{}, err
	}
	return v.Limit(depth), nil
}

// WatchTrades waits for the next fills of the symbol and returns at most the
// newest limit of them. Trades cached before the call are not included.
func (d *Dispatcher) WatchTrades(ctx context.Context, symbol string, limit int) ([]model.Trade, error) {
	trades, err := d.trades.Wait(ctx, enum.ChannelTrades.Key(symbol))
	if err != nil {
		return nil, err
	}
	return tail(trades, limit), nil
}

// Trades returns cached trades at or after since (ms), waiting for the first
// fills when the symbol has none yet. The first fills are the whole cache.
func (d *Dispatcher) Trades(ctx context.Context, symbol string, since int64, limit int) ([]model.Trade, error) {
	w := d.trades.Register(enum.ChannelTrades.Key(symbol))
	defer w.Cancel()

	if st := d.lookup(symbol); st != nil {
		st.mu.RLock()
		c := st.trades
		var out []model.Trade
		if c != nil {
			out = c.Since(since, limit)
		}
		st.mu.RUnlock()
		if c != nil {
			return out, nil
		}
	}

	trades, err := w.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return sinceLimit(trades, since, limit), nil
}

func tail(trades []model.Trade, limit int) []model.Trade {
	if limit > 0 && limit < len(trades) {
		return trades[len(trades)-limit:]
	}
	return trades
}

func sinceLimit(trades []model.Trade, since int64, limit int) []model.Trade {
	if since > 0 {
		trades = slices.DeleteFunc(trades, func(t model.Trade) bool {
			return t.Timestamp < since
		})
	}
	return tail(trades, limit)
}
