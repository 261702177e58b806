// Package server exposes the reconciled books and trades over HTTP.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"lunofeed/internal/book"
	"lunofeed/internal/codec"
	"lunofeed/internal/model"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Reader is the read side of the feed dispatcher.
type Reader interface {
	OrderBook(ctx context.Context, symbol string, depth int) (book.View, error)
	Trades(ctx context.Context, symbol string, since int64, limit int) ([]model.Trade, error)
	Symbols() []string
}

type handler struct {
	reader  Reader
	timeout time.Duration
}

// New builds the router. Reads wait at most timeout for a symbol's first
// update before answering 504.
func New(reader Reader, gatherer prometheus.Gatherer, timeout time.Duration) http.Handler {
	h := &handler{reader: reader, timeout: timeout}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/symbols", h.symbols)
	r.Get("/orderbook", h.orderBook)
	r.Get("/trades", h.trades)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

func (h *handler) symbols(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reader.Symbols())
}

func (h *handler) orderBook(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := q.Get("symbol")
	if len(symbol) == 0 {
		http.Error(w, "symbol parameter is required", http.StatusBadRequest)
		return
	}

	depth, ok := intParam(q.Get("depth"))
	if !ok {
		http.Error(w, "invalid depth", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	v, err := h.reader.OrderBook(ctx, symbol, int(depth))
	if err != nil {
		writeError(w, symbol, err)
		return
	}

	writeJSON(w, http.StatusOK, codec.NewOrderBook(v))
}

func (h *handler) trades(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := q.Get("symbol")
	if len(symbol) == 0 {
		http.Error(w, "symbol parameter is required", http.StatusBadRequest)
		return
	}

	since, ok := intParam(q.Get("since"))
	if !ok {
		http.Error(w, "invalid since", http.StatusBadRequest)
		return
	}

	limit, ok := intParam(q.Get("limit"))
	if !ok {
		http.Error(w, "invalid limit", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	trades, err := h.reader.Trades(ctx, symbol, since, int(limit))
	if err != nil {
		writeError(w, symbol, err)
		return
	}

	writeJSON(w, http.StatusOK, codec.NewTrades(trades))
}

// intParam parses an optional non-negative integer.
func intParam(s string) (int64, bool) {
	if len(s) == 0 {
		return 0, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func writeError(w http.ResponseWriter, symbol string, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		http.Error(w, "no data for "+symbol+" yet", http.StatusGatewayTimeout)
	case errors.Is(err, context.Canceled):
		// client went away
	default:
		logs.Errorf("read %s, err: %+v", symbol, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := sonic.ConfigFastest.Marshal(v)
	if err != nil {
		logs.Errorf("encode response, err: %+v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logs.Infof("http server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen and serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown http server")
	}
	return nil
}
