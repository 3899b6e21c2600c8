// Package cache provides the bounded containers used by the blur engine.
//
// # Cache[K, V]
//
// A thread-safe LRU map used to memoize derived data such as Gaussian
// weight tables and box-average lookup tables, keyed by radius.
//
//	luts := cache.New[int, []uint8](32)
//	lut := luts.GetOrCreate(radius, func() []uint8 { return buildLUT(radius) })
//
// # Pool[K, R]
//
// A bounded pool of reusable resources (GPU textures, render targets).
// Resources are created, matched and destroyed through [Hooks]. Put keeps
// at most MaxSize idle resources and destroys the oldest ones beyond that.
//
//	pool := cache.NewPool[Size, *Texture](8, textureHooks{device})
//	tex, err := pool.Get(Size{Width: 640, Height: 480})
//	defer pool.Put(tex)
//
// # Thread Safety
//
// Both Cache and Pool are safe for concurrent use.
// Neither should be copied after creation (they contain mutexes).
package cache
