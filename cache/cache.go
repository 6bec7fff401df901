package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/hupe1980/classanno/artifact"
	"github.com/hupe1980/classanno/index"
)

// ComputeFunc builds the index of one artifact.
type ComputeFunc func() (*index.Index, error)

// IndexCache stores at most one index per artifact handle.
//
// GetOrCompute returns the cached index for h, or runs compute and stores
// its result. computed reports whether this call ran compute. Errors are
// returned to the caller and never cached.
type IndexCache interface {
	Get(h artifact.Handle) (*index.Index, bool)
	GetOrCompute(h artifact.Handle, compute ComputeFunc) (ix *index.Index, computed bool, err error)
	Len() int
	Purge()
}

// Map is an unsynchronized IndexCache. It must not be used from more than
// one goroutine; concurrent misses on the same handle would compute twice.
type Map struct {
	m map[artifact.Handle]*index.Index
}

var _ IndexCache = (*Map)(nil)

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{m: make(map[artifact.Handle]*index.Index)}
}

// Get implements IndexCache.
func (c *Map) Get(h artifact.Handle) (*index.Index, bool) {
	ix, ok := c.m[h]
	return ix, ok
}

// GetOrCompute implements IndexCache.
func (c *Map) GetOrCompute(h artifact.Handle, compute ComputeFunc) (*index.Index, bool, error) {
	if ix, ok := c.m[h]; ok {
		return ix, false, nil
	}
	ix, err := compute()
	if err != nil {
		return nil, true, err
	}
	c.m[h] = ix
	return ix, true, nil
}

// Len implements IndexCache.
func (c *Map) Len() int { return len(c.m) }

// Purge implements IndexCache.
func (c *Map) Purge() { clear(c.m) }

// Concurrent is an IndexCache safe for concurrent use. Concurrent misses on
// the same handle share one compute.
type Concurrent struct {
	mu    sync.RWMutex
	m     map[artifact.Handle]*index.Index
	group singleflight.Group
}

var _ IndexCache = (*Concurrent)(nil)

// NewConcurrent creates an empty Concurrent cache.
func NewConcurrent() *Concurrent {
	return &Concurrent{m: make(map[artifact.Handle]*index.Index)}
}

// Get implements IndexCache.
func (c *Concurrent) Get(h artifact.Handle) (*index.Index, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ix, ok := c.m[h]
	return ix, ok
}

// GetOrCompute implements IndexCache.
func (c *Concurrent) GetOrCompute(h artifact.Handle, compute ComputeFunc) (*index.Index, bool, error) {
	if ix, ok := c.Get(h); ok {
		return ix, false, nil
	}

	var ran bool
	v, err, _ := c.group.Do(key(h), func() (any, error) {
		// A flight that finished between Get and Do already stored it.
		if ix, ok := c.Get(h); ok {
			return ix, nil
		}
		ran = true
		ix, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.m[h] = ix
		c.mu.Unlock()
		return ix, nil
	})
	if err != nil {
		return nil, ran, err
	}
	return v.(*index.Index), ran, nil
}

// Len implements IndexCache.
func (c *Concurrent) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Purge implements IndexCache.
func (c *Concurrent) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.m)
}

func key(h artifact.Handle) string {
	return h.Location + "\x00" + h.ClassName
}

// PassThrough never stores anything; every lookup computes.
type PassThrough struct{}

var _ IndexCache = PassThrough{}

// Get implements IndexCache.
func (PassThrough) Get(artifact.Handle) (*index.Index, bool) { return nil, false }

// GetOrCompute implements IndexCache.
func (PassThrough) GetOrCompute(_ artifact.Handle, compute ComputeFunc) (*index.Index, bool, error) {
	ix, err := compute()
	return ix, true, err
}

// Len implements IndexCache.
func (PassThrough) Len() int { return 0 }

// Purge implements IndexCache.
func (PassThrough) Purge() {}
