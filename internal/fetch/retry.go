package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultRetryDelays returns the backoff delays used by NewRetryFetcher: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// RetryFetcher retries transport errors and 5xx responses of the wrapped
// Fetcher. The scraper itself never retries; wrap its Fetcher with this to
// add resilience.
type RetryFetcher struct {
	next   Fetcher
	delays []time.Duration
	logger *zap.Logger
}

// NewRetryFetcher wraps next. One retry is attempted per entry in delays.
func NewRetryFetcher(next Fetcher, delays []time.Duration, logger *zap.Logger) *RetryFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryFetcher{next: next, delays: delays, logger: logger}
}

func (f *RetryFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	var (
		resp *Response
		err  error
	)
	for attempt := 0; ; attempt++ {
		resp, err = f.next.Fetch(ctx, url)
		if !retryable(resp, err) || attempt >= len(f.delays) {
			return resp, err
		}

		f.logger.Info("retrying fetch",
			zap.String("url", url),
			zap.Int("attempt", attempt+2),
			zap.Error(err),
		)

		timer := time.NewTimer(f.delays[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func retryable(resp *Response, err error) bool {
	if err != nil {
		return true
	}
	return resp != nil && resp.StatusCode >= 500
}
