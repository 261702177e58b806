package exception

import "github.com/yanun0323/errors"

var (
	ErrFeedNilSubscription = errors.New("feed: nil subscription")
	ErrFeedNilDispatcher   = errors.New("feed: nil dispatcher")
	ErrFeedQueueFull       = errors.New("feed: queue full")
	ErrFeedQueueClosed     = errors.New("feed: queue closed")
	ErrFeedRouterStopped   = errors.New("feed: router stopped")
)
