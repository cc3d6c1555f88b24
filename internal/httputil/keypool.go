// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import "sync"

// KeyPool hands out API keys round-robin so concurrent resolutions spread
// rate-limit load across a pool of credentials. Safe for concurrent use.
// The zero value (or an empty pool) always returns "".
type KeyPool struct {
	mu   sync.Mutex
	keys []string
	next int
}

// NewKeyPool builds a pool from the given keys, dropping empty entries.
func NewKeyPool(keys []string) *KeyPool {
	p := &KeyPool{}
	for _, k := range keys {
		if k != "" {
			p.keys = append(p.keys, k)
		}
	}
	return p
}

// Next returns the next key in rotation, or "" when the pool is empty.
func (p *KeyPool) Next() string {
	if p == nil {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.keys) == 0 {
		return ""
	}
	key := p.keys[p.next]
	p.next = (p.next + 1) % len(p.keys)
	return key
}

// Size returns the number of keys in the pool.
func (p *KeyPool) Size() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}
