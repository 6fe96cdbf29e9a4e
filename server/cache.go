package server

import (
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/chaos-io/pixel3d/pipeline"
)

type entry struct {
	result  *pipeline.Result
	expires time.Time
}

// cache 按 ksuid 保存结果，过期的条目读不到，由 purge 定期删除
type cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[ksuid.KSUID]entry
}

func newCache(ttl time.Duration, now func() time.Time) *cache {
	if now == nil {
		now = time.Now
	}
	return &cache{ttl: ttl, now: now, entries: make(map[ksuid.KSUID]entry)}
}

func (c *cache) put(id ksuid.KSUID, r *pipeline.Result) time.Time {
	expires := c.now().Add(c.ttl)
	c.mu.Lock()
	c.entries[id] = entry{result: r, expires: expires}
	c.mu.Unlock()
	return expires
}

func (c *cache) get(id ksuid.KSUID) (entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expires) {
		return entry{}, false
	}
	return e, true
}

// purge 删除过期条目，返回删除数
func (c *cache) purge() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for id, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, id)
			n++
		}
	}
	return n
}

func (c *cache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
