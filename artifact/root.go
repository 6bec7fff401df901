package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/klauspost/compress/zip"

	"github.com/hupe1980/classanno/blobstore"
	"github.com/hupe1980/classanno/resource"
)

// Root is one entry of a classpath.
type Root interface {
	// Location names the root in handles.
	Location() string
	// Find returns a loader for className, or ErrNotFound.
	Find(ctx context.Context, className string) (Loader, error)
}

// StoreRoot finds class files in a blobstore directory tree. A class
// "com/example/Foo" is stored as "com/example/Foo.class", optionally
// compressed as ".class.zst" or ".class.lz4".
type StoreRoot struct {
	location string
	store    blobstore.Store
	rc       *resource.Controller
}

var _ Root = (*StoreRoot)(nil)

// NewStoreRoot creates a root over store. Reads are charged to rc.
func NewStoreRoot(location string, store blobstore.Store, rc *resource.Controller) *StoreRoot {
	return &StoreRoot{location: location, store: store, rc: rc}
}

// Location implements Root.
func (r *StoreRoot) Location() string { return r.location }

// Find implements Root.
func (r *StoreRoot) Find(ctx context.Context, className string) (Loader, error) {
	for _, c := range compressions {
		name := className + c.Suffix()
		blob, err := r.store.Open(ctx, name)
		if errors.Is(err, blobstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		size := blob.Size()
		_ = blob.Close()

		return func(ctx context.Context) ([]byte, error) {
			if err := r.rc.WaitIO(ctx, int(size)); err != nil {
				return nil, err
			}
			data, err := blobstore.ReadAll(ctx, r.store, name)
			if err != nil {
				return nil, err
			}
			return Decompress(c, data)
		}, nil
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, className, r.location)
}

// JarRoot finds class files in a zip archive.
type JarRoot struct {
	location string
	blob     blobstore.Blob
	entries  map[string]*zip.File
	rc       *resource.Controller

	closeOnce sync.Once
	closeErr  error
}

var _ Root = (*JarRoot)(nil)

// OpenJar opens the archive name in store. The archive stays open until
// Close.
func OpenJar(ctx context.Context, store blobstore.Store, name string, rc *resource.Controller) (*JarRoot, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(blob, blob.Size())
	if err != nil {
		_ = blob.Close()
		return nil, fmt.Errorf("artifact: open jar %s: %w", name, err)
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries[path.Clean(f.Name)] = f
	}
	return &JarRoot{location: name, blob: blob, entries: entries, rc: rc}, nil
}

// Location implements Root.
func (r *JarRoot) Location() string { return r.location }

// Len returns the number of file entries in the archive.
func (r *JarRoot) Len() int { return len(r.entries) }

// Find implements Root.
func (r *JarRoot) Find(_ context.Context, className string) (Loader, error) {
	for _, c := range compressions {
		f, ok := r.entries[className+c.Suffix()]
		if !ok {
			continue
		}
		return func(ctx context.Context) ([]byte, error) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()

			data, err := io.ReadAll(resource.NewRateLimitedReader(ctx, rc, r.rc))
			if err != nil {
				return nil, fmt.Errorf("artifact: read %s!%s: %w", r.location, f.Name, err)
			}
			return Decompress(c, data)
		}, nil
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, className, r.location)
}

// Close releases the archive.
func (r *JarRoot) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.blob.Close()
	})
	return r.closeErr
}
