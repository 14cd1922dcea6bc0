// Package cache provides a small thread-safe LRU cache.
//
//	c := cache.New[string, []float32](16)
//	v := c.GetOrCreate(key, func() []float32 { return bake() })
//
// The cache holds expensive derived data, such as pipelines sampled into a
// 3D table, keyed by the cache identifier of what produced it. Values are
// shared between callers and must be treated as read-only.
package cache
