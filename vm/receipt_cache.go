package vm

import (
	lru "github.com/hashicorp/golang-lru"
)

// ReceiptCache 最近调用回执的内存缓存，未命中时由 Executor 回落到 DB
type ReceiptCache struct {
	cache *lru.Cache
}

// NewReceiptCache size<=0 时取 1024
func NewReceiptCache(size int) (*ReceiptCache, error) {
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &ReceiptCache{cache: c}, nil
}

func (c *ReceiptCache) Put(r *Receipt) {
	if c == nil || r == nil || r.TxID == "" {
		return
	}
	c.cache.Add(r.TxID, r)
}

func (c *ReceiptCache) Get(id string) (*Receipt, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.cache.Get(id)
	if !ok {
		return nil, false
	}
	r, ok := v.(*Receipt)
	return r, ok
}

func (c *ReceiptCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}
