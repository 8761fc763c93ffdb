// Package answercache is the shared response cache tier in Valkey/Redis.
package answercache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/sommelier/internal/db"
	"github.com/kailas-cloud/sommelier/internal/domain"
	"github.com/kailas-cloud/sommelier/internal/usecase/answer"
)

// DefaultTTL matches the local cache lifetime.
const DefaultTTL = 10 * time.Minute

var keyPrefix = domain.KeyPrefix + "answer:"

// store is the consumer interface for the answer cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache stores answers as JSON under a hash of the cache key.
type Cache struct {
	store store
	ttl   time.Duration
}

// New creates the remote tier. A non-positive ttl selects DefaultTTL.
func New(s store, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: s, ttl: ttl}
}

// Get returns the cached response for key. A missing key is (zero, false, nil).
func (c *Cache) Get(ctx context.Context, key string) (answer.Response, bool, error) {
	data, err := c.store.Get(ctx, storageKey(key))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return answer.Response{}, false, nil
		}
		return answer.Response{}, false, fmt.Errorf("answer cache get: %w", err)
	}

	var resp answer.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return answer.Response{}, false, fmt.Errorf("answer cache decode: %w", err)
	}
	return resp, true, nil
}

// Set stores resp under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, resp answer.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("answer cache encode: %w", err)
	}
	if err := c.store.SetWithTTL(ctx, storageKey(key), data, c.ttl); err != nil {
		return fmt.Errorf("answer cache set: %w", err)
	}
	return nil
}

// Cache keys embed two full questions; hashing keeps storage keys bounded.
func storageKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return keyPrefix + hex.EncodeToString(h[:])
}
