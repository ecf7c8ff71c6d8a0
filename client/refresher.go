package client

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrInvalidInterval = errors.New("refresh interval must be positive")

// Refresher keeps the session alive by calling RefreshToken on a ticker.
type Refresher struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// StartRefresher runs until ctx is cancelled or Stop is called.
func StartRefresher(ctx context.Context, c *Client, interval time.Duration) (*Refresher, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	r := &Refresher{cancel: cancel}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.RefreshToken(ctx); err != nil {
					c.Logger.Warnf("Event ID: TOKEN_REFRESH_FAILED, Description: %v", err)
				}
			}
		}
	}()
	return r, nil
}

// Stop cancels the refresher and waits for it to exit.
func (r *Refresher) Stop() {
	r.cancel()
	r.wg.Wait()
}
