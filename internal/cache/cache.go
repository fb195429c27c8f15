package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// TTL is how long an acquired response stays fresh.
const TTL = 60 * time.Second

// DefaultCapacity bounds the in-memory cache when no capacity is configured.
const DefaultCapacity = 1024

// Cache stores acquired data keyed by [Key]. Implementations must be safe
// for concurrent use. Get reports a miss for entries older than [TTL].
type Cache interface {
	Get(ctx context.Context, key string) (any, bool)
	Put(ctx context.Context, key string, value any)
}

// Key derives the cache key for a request: the endpoint followed by ":" and
// the canonical JSON encoding of params. encoding/json sorts map keys, so
// logically equal param sets produce equal keys. nil params encode as "{}".
func Key(endpoint string, params map[string]any) string {
	if params == nil {
		return endpoint + ":{}"
	}
	b, err := json.Marshal(params)
	if err != nil {
		return endpoint + ":" + fmt.Sprint(params)
	}
	return endpoint + ":" + string(b)
}
