package cache

import "time"

// CacheService abstracts the cache backend so usecases never depend on a
// concrete store.
type CacheService interface {
	// Get retrieves a value; the bool reports whether the key was present.
	Get(key string) (interface{}, bool)

	// Set stores a value with a TTL.
	Set(key string, value interface{}, duration time.Duration)

	// Delete removes a single key.
	Delete(key string)

	// Flush removes all items.
	Flush()
}
