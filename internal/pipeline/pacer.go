package pipeline

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces the starts of consecutive model calls by a fixed delay. The
// first call goes out immediately.
type Pacer struct {
	delay   time.Duration
	limiter *rate.Limiter
}

func NewPacer(delay time.Duration) *Pacer {
	if delay <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{delay: delay, limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the next call may start or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

func (p *Pacer) Delay() time.Duration {
	return p.delay
}
