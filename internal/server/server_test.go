package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lunofeed/internal/codec"
	"lunofeed/internal/feed"
	"lunofeed/internal/obs"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var xbt = &feed.Subscription{Symbol: "XBTZAR", MarketID: "XBTZAR"}

func newServer(t *testing.T) (*feed.Dispatcher, *httptest.Server) {
	t.Helper()

	m := obs.NewMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(obs.NewCollector("lunofeed", m)))

	d := feed.NewDispatcher(feed.Option{Metrics: m})
	srv := httptest.NewServer(New(d, reg, 20*time.Millisecond))
	t.Cleanup(srv.Close)
	return d, srv
}

func handle(t *testing.T, d *feed.Dispatcher, raw string) {
	t.Helper()
	var msg feed.Message
	require.NoError(t, sonic.Unmarshal([]byte(raw), &msg))
	require.NoError(t, d.Handle(context.Background(), xbt, &msg))
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestOrderBook(t *testing.T) {
	d, srv := newServer(t)
	handle(t, d, `{"sequence":"1","bids":[{"id":"A","price":"100","volume":"2"},{"id":"B","price":"99","volume":"1"}],"asks":[]}`)

	status, body := get(t, srv.URL+"/orderbook?symbol=XBTZAR&depth=1")
	require.Equal(t, http.StatusOK, status)

	v, err := codec.DecodeOrderBook(body)
	require.NoError(t, err)
	assert.Equal(t, "XBTZAR", v.Symbol)
	assert.Equal(t, int64(1), v.Sequence)
	require.Len(t, v.Bids, 1)
	assert.Equal(t, "A", v.Bids[0].ID)
	assert.Empty(t, v.Asks)
}

func TestOrderBookNoDataYet(t *testing.T) {
	_, srv := newServer(t)

	status, _ := get(t, srv.URL+"/orderbook?symbol=ETHZAR")
	assert.Equal(t, http.StatusGatewayTimeout, status)
}

func TestBadQuery(t *testing.T) {
	_, srv := newServer(t)

	for _, path := range []string{
		"/orderbook",
		"/orderbook?symbol=XBTZAR&depth=x",
		"/orderbook?symbol=XBTZAR&depth=-1",
		"/trades",
		"/trades?symbol=XBTZAR&since=abc",
		"/trades?symbol=XBTZAR&limit=1.5",
	} {
		status, _ := get(t, srv.URL+path)
		assert.Equal(t, http.StatusBadRequest, status, path)
	}
}

func TestTrades(t *testing.T) {
	d, srv := newServer(t)
	handle(t, d, `{"timestamp":1000,"trade_updates":[{"base":"0.1","counter":"5.0"}]}`)
	handle(t, d, `{"timestamp":2000,"trade_updates":[{"base":"0.2","counter":"9"},{"base":"0.3","counter":"12"}]}`)

	status, body := get(t, srv.URL+"/trades?symbol=XBTZAR&since=2000&limit=1")
	require.Equal(t, http.StatusOK, status)

	trades, err := codec.DecodeTrades(body)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "0.3", trades[0].Amount.Decimal.String())
	assert.Equal(t, int64(2000), trades[0].Timestamp)

	status, body = get(t, srv.URL+"/trades?symbol=XBTZAR")
	require.Equal(t, http.StatusOK, status)
	all, err := codec.DecodeTrades(body)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSymbolsAndMetrics(t *testing.T) {
	d, srv := newServer(t)
	handle(t, d, `{"sequence":"1","asks":[]}`)

	status, body := get(t, srv.URL+"/symbols")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["XBTZAR"]`, string(body))

	status, body = get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "lunofeed_snapshots_total 1")

	status, _ = get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, status)
}
