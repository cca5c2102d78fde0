package policies

import (
	"context"
	"time"
)

// QuoteCache stores encoded quotes. A miss is reported with found == false and
// a nil error.
type QuoteCache interface {
	Get(ctx context.Context, key string) (payload []byte, found bool, err error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}
