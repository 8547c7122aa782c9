package cache

// Cache is the byte level in-process cache behind CompositionCache.
// *freecache.Cache implements it.
type Cache interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte, expireSeconds int) error
	Clear()
}

const megabyte = 1024 * 1024
