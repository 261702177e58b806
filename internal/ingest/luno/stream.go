package luno

import (
	"context"
	"encoding/json"
	"strings"

	"lunofeed/internal/feed"
	"lunofeed/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"github.com/yanun0323/pkg/ws"
)

const DefaultURL = "wss://ws.luno.com/api/1/stream"

type Credential struct {
	KeyID     string `json:"api_key_id"`
	KeySecret string `json:"api_key_secret"`
}

// Stream is the market stream of one Luno pair. Every frame after the
// credentials is a full book or an update of that pair.
type Stream struct {
	wss  *ws.WebSocket
	sub  *feed.Subscription
	cred Credential
}

func NewStream(ctx context.Context, baseURL string, sub feed.Subscription, cred Credential) (*Stream, error) {
	if len(sub.MarketID) == 0 {
		return nil, exception.ErrStreamEmptyMarket
	}
	if len(cred.KeyID) == 0 || len(cred.KeySecret) == 0 {
		return nil, errors.Wrapf(exception.ErrStreamNoCredential, "market %s", sub.MarketID)
	}
	if len(baseURL) == 0 {
		baseURL = DefaultURL
	}
	if len(sub.Symbol) == 0 {
		sub.Symbol = sub.MarketID
	}

	return &Stream{
		wss:  ws.New(ctx, strings.TrimSuffix(baseURL, "/")+"/"+sub.MarketID),
		sub:  &sub,
		cred: cred,
	}, nil
}

func (s *Stream) Subscription() *feed.Subscription {
	return s.sub
}

func (s *Stream) Close() {
	s.wss.Close()
}

// Start connects, sends the credentials and waits for the first frame.
func (s *Stream) Start(ctx context.Context) error {
	if err := s.wss.Start(ctx, ws.Sidecar{
		Sender: func(ctx context.Context, client *ws.WebSocket) error {
			if err := client.WriteJSON(s.cred); err != nil {
				return errors.Wrap(err, "write credential").With("market", s.sub.MarketID)
			}
			return nil
		},
		Waiter: func(ctx context.Context, m ws.Message) (bool, error) {
			return true, nil
		},
	}); err != nil {
		return errors.Wrap(err, "start wss").With("market", s.sub.MarketID)
	}

	logs.Infof("luno stream started, market: %s", s.sub.MarketID)
	return nil
}

// Observe decodes every frame and hands it to handler until ctx is done or
// the process shuts down.
func (s *Stream) Observe(ctx context.Context, handler func(sub *feed.Subscription, msg *feed.Message) error) (unsubscribe func()) {
	ch, cancel := s.wss.Subscribe()

	go func() {
		defer cancel()
		for {
			select {
			case <-sys.Shutdown():
				return
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}

				var raw json.RawMessage
				if err := m.Unmarshal(&raw); err != nil {
					continue
				}

				msg, err := Decode(raw)
				if err != nil {
					logs.Errorf("decode luno frame %s, err: %+v", s.sub.MarketID, err)
					continue
				}

				if msg == nil {
					continue
				}

				if err := handler(s.sub, msg); err != nil {
					logs.Errorf("handle luno frame %s, err: %+v", s.sub.MarketID, err)
				}
			}
		}
	}()

	return cancel
}

// Run starts the stream and blocks until ctx is done.
func (s *Stream) Run(ctx context.Context, handler func(sub *feed.Subscription, msg *feed.Message) error) error {
	unsubscribe := s.Observe(ctx, handler)
	defer unsubscribe()

	if err := s.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	s.Close()
	return nil
}
