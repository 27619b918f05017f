package quote

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cached wraps a Source with a per-symbol TTL cache. Portfolio valuation
// fans out one lookup per holding; the cache keeps repeated views from
// hammering the provider. Only found quotes are cached, so a symbol that
// starts trading is picked up immediately.
type Cached struct {
	src Source
	c   *ristretto.Cache
	ttl time.Duration
}

func NewCached(src Source, maxCost int64, ttl time.Duration) (*Cached, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cached{src: src, c: c, ttl: ttl}, nil
}

func (c *Cached) Quote(ctx context.Context, symbol string) (Quote, error) {
	if v, ok := c.c.Get(symbol); ok {
		if q, ok := v.(Quote); ok {
			return q, nil
		}
	}
	q, err := c.src.Quote(ctx, symbol)
	if err != nil {
		return Quote{}, err
	}
	if q.Found {
		c.c.SetWithTTL(symbol, q, 1, c.ttl)
	}
	return q, nil
}
