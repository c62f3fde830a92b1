package gateway

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Predictor is anything that scores a record.
type Predictor interface {
	Predict(record Record) Result
}

// CachedPredictor memoises results by resolved record. Predict is pure for a
// fixed set of tables, so a cached result is identical to a fresh one. The
// cache's own locking stays out of Gateway.
type CachedPredictor struct {
	gateway *Gateway
	cache   *lru.Cache[Resolved, Result]
}

func NewCachedPredictor(g *Gateway, size int) (*CachedPredictor, error) {
	cache, err := lru.New[Resolved, Result](size)
	if err != nil {
		return nil, err
	}
	return &CachedPredictor{gateway: g, cache: cache}, nil
}

func (c *CachedPredictor) Predict(record Record) Result {
	resolved, err := c.gateway.Resolve(record)
	if err != nil {
		return c.gateway.fail(err)
	}
	if result, ok := c.cache.Get(resolved); ok {
		return result
	}
	result := c.gateway.PredictResolved(resolved)
	c.cache.Add(resolved, result)
	return result
}

func (c *CachedPredictor) Len() int { return c.cache.Len() }
