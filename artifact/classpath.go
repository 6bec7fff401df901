package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of resolutions a Classpath remembers.
const DefaultCacheSize = 4096

type resolution struct {
	handle Handle
	load   Loader
	found  bool
}

// Classpath resolves containers against ordered roots. The first root that
// holds the class wins.
//
// Resolutions, including misses, are kept in an LRU cache. Every Resolve
// returns a fresh *Artifact, so each caller claims its own bytes.
type Classpath struct {
	roots []Root
	cache *lru.Cache[string, resolution]
}

var _ Resolver = (*Classpath)(nil)

// NewClasspath creates a classpath over roots. size bounds the resolution
// cache; if <= 0, DefaultCacheSize is used.
func NewClasspath(size int, roots ...Root) (*Classpath, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, resolution](size)
	if err != nil {
		return nil, err
	}
	return &Classpath{roots: roots, cache: cache}, nil
}

// Roots returns the roots in lookup order.
func (c *Classpath) Roots() []Root { return c.roots }

// Resolve implements Resolver.
func (c *Classpath) Resolve(ctx context.Context, container string) (*Artifact, error) {
	if container == "" || strings.Contains(container, "..") || strings.HasPrefix(container, "/") {
		return nil, fmt.Errorf("%w: invalid class name %q", ErrNotFound, container)
	}

	res, ok := c.cache.Get(container)
	if !ok {
		var err error
		if res, err = c.find(ctx, container); err != nil {
			return nil, err
		}
		c.cache.Add(container, res)
	}

	if !res.found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, container)
	}
	return NewLazy(res.handle, res.load), nil
}

func (c *Classpath) find(ctx context.Context, container string) (resolution, error) {
	for _, root := range c.roots {
		load, err := root.Find(ctx, container)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return resolution{}, err
		}
		return resolution{
			handle: Handle{Location: root.Location(), ClassName: container},
			load:   load,
			found:  true,
		}, nil
	}
	return resolution{}, nil
}

// Purge drops all cached resolutions.
func (c *Classpath) Purge() { c.cache.Purge() }

// Close closes every root that holds resources.
func (c *Classpath) Close() error {
	var errs []error
	for _, root := range c.roots {
		if cl, ok := root.(interface{ Close() error }); ok {
			errs = append(errs, cl.Close())
		}
	}
	return errors.Join(errs...)
}
