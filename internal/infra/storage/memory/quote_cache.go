package memory

import (
	"context"
	"sync"
	"time"

	"staydesk/internal/app/policies"
)

type cachedQuote struct {
	payload   []byte
	expiresAt time.Time
}

// QuoteCache is a process-local quote cache used when redis is not configured.
type QuoteCache struct {
	mu      sync.Mutex
	entries map[string]cachedQuote
	Clock   func() time.Time
}

func NewQuoteCache() *QuoteCache {
	return &QuoteCache{entries: make(map[string]cachedQuote)}
}

func (c *QuoteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

// Set stores payload for ttl; a non-positive ttl keeps the entry until overwritten.
func (c *QuoteCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]cachedQuote)
	}
	entry := cachedQuote{payload: append([]byte(nil), payload...)}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = entry
	return nil
}

func (c *QuoteCache) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

var _ policies.QuoteCache = (*QuoteCache)(nil)
