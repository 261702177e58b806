package mdg

import (
	"context"
	"time"

	"lunofeed/internal/feed"
)

// Run publishes a snapshot for sub and then one update per interval until
// ctx is done.
func Run(ctx context.Context, g *Generator, sub *feed.Subscription, interval time.Duration, publish func(sub *feed.Subscription, msg *feed.Message) error) error {
	if err := publish(sub, g.Snapshot(time.Now())); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			// a full router queue drops the update, the book notices the gap
			_ = publish(sub, g.Next(now))
		}
	}
}
