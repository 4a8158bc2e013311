// Package scheduler runs batches of independent upstream calls under a
// shared rate limit. Providers like OpenSea throttle aggressively, so
// every enrichment pass goes through one Batcher instead of firing a
// request per asset.
package scheduler

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Result pairs one item's output with the error it produced. A failed
// item never fails the batch; callers decide what a partial result means.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Batcher throttles work items against a token bucket and caps how many
// run at once. The limiter is shared across all Run calls on the same
// Batcher, so several endpoints can safely share one provider rate limit.
type Batcher struct {
	limiter     *rate.Limiter
	concurrency int
}

// New builds a Batcher allowing rps requests per second with the given
// burst, running at most concurrency items in flight. Non-positive
// arguments are lifted to their minimum useful value.
func New(rps float64, burst, concurrency int) *Batcher {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Batcher{
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		concurrency: concurrency,
	}
}

// Run executes fn for the first maxItems items (all of them when
// maxItems <= 0), each call gated by the rate limiter. Results come back
// indexed in input order. Context cancellation stops waiting items and
// records ctx.Err() for them.
func Run[In, Out any](ctx context.Context, b *Batcher, items []In, maxItems int, fn func(context.Context, In) (Out, error)) []Result[Out] {
	if maxItems > 0 && len(items) > maxItems {
		items = items[:maxItems]
	}
	results := make([]Result[Out], len(items))
	if len(items) == 0 {
		return results
	}

	sem := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item In) {
			defer wg.Done()
			results[i].Index = i

			if err := b.limiter.Wait(ctx); err != nil {
				results[i].Err = err
				return
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[i].Err = ctx.Err()
				return
			}
			defer func() { <-sem }()

			results[i].Value, results[i].Err = fn(ctx, item)
			if results[i].Err != nil {
				zap.L().Debug("batch item failed",
					zap.Int("index", i), zap.Error(results[i].Err))
			}
		}(i, item)
	}
	wg.Wait()
	return results
}
