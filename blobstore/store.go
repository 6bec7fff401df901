package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error that satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// Store provides read access to immutable blobs such as class files and
// jar archives. Names use '/' as separator.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// List returns the sorted names of all blobs starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to one blob.
type Blob interface {
	io.ReaderAt
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is implemented by blobs whose contents are already in memory.
type Mappable interface {
	// Bytes returns the contents. The slice is valid until the Blob is
	// closed.
	Bytes() ([]byte, error)
}

// Getter is implemented by stores that fetch a whole blob more efficiently
// than through ranged reads.
type Getter interface {
	Get(ctx context.Context, name string) ([]byte, error)
}

// ReadAll returns a private copy of the contents of name.
func ReadAll(ctx context.Context, s Store, name string) ([]byte, error) {
	if g, ok := s.(Getter); ok {
		return g.Get(ctx, name)
	}

	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		return slices.Clone(data), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := make([]byte, b.Size())
	n, err := b.ReadAt(data, 0)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == b.Size()) {
		return nil, fmt.Errorf("blobstore: read %s: %w", name, err)
	}
	return data[:n], nil
}
