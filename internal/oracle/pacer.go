package oracle

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer spaces out attempts against the oracle so retries never burst
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer. A non-positive rate disables pacing.
func NewPacer(requestsPerSecond float64, burst int) *Pacer {
	if burst <= 0 {
		burst = 1
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Pacer{
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Wait blocks until the next attempt may start or ctx is done
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

