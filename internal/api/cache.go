package api

import (
	"sync"

	"gocredible/domain/core"
	"gocredible/domain/posterior"
)

const defaultCacheSize = 256

// runCache keeps the most recent results in memory, evicting the oldest
type runCache struct {
	mu    sync.RWMutex
	size  int
	order []core.RunID
	byID  map[core.RunID]*posterior.Result
}

func newRunCache(size int) *runCache {
	return &runCache{
		size: size,
		byID: make(map[core.RunID]*posterior.Result, size),
	}
}

func (c *runCache) put(r *posterior.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[r.RunID]; ok {
		c.byID[r.RunID] = r
		return
	}
	if len(c.order) >= c.size {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.byID, oldest)
	}
	c.order = append(c.order, r.RunID)
	c.byID[r.RunID] = r
}

func (c *runCache) get(id core.RunID) (*posterior.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.byID[id]
	return r, ok
}
