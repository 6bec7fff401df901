package artifact

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/classanno/resource"
)

var (
	// ErrConsumed is returned when the raw bytes of an artifact are claimed
	// a second time.
	ErrConsumed = errors.New("artifact: raw bytes already consumed")

	// ErrNotFound is returned by resolvers when no binary backs a container.
	ErrNotFound = errors.New("artifact: class not found")
)

// Handle identifies a compiled binary. Two handles are equal when location
// and class name are equal.
type Handle struct {
	// Location names the classpath root that holds the binary.
	Location string `json:"location"`
	// ClassName is the internal name, e.g. "com/example/Outer$Inner".
	ClassName string `json:"className"`
}

func (h Handle) String() string {
	if h.Location == "" {
		return h.ClassName
	}
	return h.Location + "!" + h.ClassName
}

// Loader fetches the raw bytes of a binary.
type Loader func(ctx context.Context) ([]byte, error)

// Artifact is a handle plus its raw class file bytes.
//
// The bytes are consumed at most once. Claim lends them to one caller at a
// time; Commit marks them consumed and drops them, Release returns the
// memory reservation and, without a Commit, makes them claimable again.
type Artifact struct {
	handle Handle

	mu       sync.Mutex
	data     []byte
	load     Loader
	held     bool
	consumed bool
	rc       *resource.Controller
	reserved int64
}

// New returns an artifact whose bytes are already in memory.
func New(h Handle, data []byte) *Artifact {
	return &Artifact{handle: h, data: data}
}

// NewLazy returns an artifact whose bytes are fetched by load on Claim.
func NewLazy(h Handle, load Loader) *Artifact {
	return &Artifact{handle: h, load: load}
}

// Handle returns the identity of the artifact.
func (a *Artifact) Handle() Handle { return a.handle }

// Consumed reports whether the bytes were committed.
func (a *Artifact) Consumed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.consumed
}

// Claim hands out the raw bytes and reserves their size with rc.
//
// It returns ErrConsumed after a Commit or while another claim holds the
// bytes. A failed load or reservation leaves the artifact claimable; a
// lazy artifact loads again on the next Claim.
func (a *Artifact) Claim(ctx context.Context, rc *resource.Controller) ([]byte, error) {
	a.mu.Lock()
	if a.consumed || a.held {
		a.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrConsumed, a.handle)
	}
	a.held = true
	data, load := a.data, a.load
	a.mu.Unlock()

	if data == nil && load != nil {
		var err error
		if data, err = load(ctx); err != nil {
			a.unhold()
			return nil, fmt.Errorf("artifact: load %s: %w", a.handle, err)
		}
	}

	size := int64(len(data))
	if err := rc.ReserveMemory(size); err != nil {
		a.unhold()
		return nil, fmt.Errorf("artifact: claim %s: %w", a.handle, err)
	}

	a.mu.Lock()
	a.rc, a.reserved = rc, size
	a.mu.Unlock()
	return data, nil
}

func (a *Artifact) unhold() {
	a.mu.Lock()
	a.held = false
	a.mu.Unlock()
}

// Commit marks the bytes consumed and drops them. Later claims return
// ErrConsumed.
func (a *Artifact) Commit() {
	a.mu.Lock()
	a.consumed = true
	a.data, a.load = nil, nil
	a.mu.Unlock()
}

// Release returns the memory reservation taken by Claim and ends the claim.
// It is safe to call more than once.
func (a *Artifact) Release() {
	a.mu.Lock()
	rc, n := a.rc, a.reserved
	a.rc, a.reserved = nil, 0
	a.held = false
	a.mu.Unlock()
	rc.ReleaseMemory(n)
}

// Resolver finds the binary that backs a container class.
//
// Any error, including ErrNotFound, means the container has no annotations.
type Resolver interface {
	Resolve(ctx context.Context, container string) (*Artifact, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, container string) (*Artifact, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, container string) (*Artifact, error) {
	return f(ctx, container)
}

// Static resolves containers from a fixed set of artifacts. The same
// *Artifact is returned on every call, so its bytes can be claimed once.
type Static map[string]*Artifact

// Resolve implements Resolver.
func (s Static) Resolve(_ context.Context, container string) (*Artifact, error) {
	if a, ok := s[container]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, container)
}
