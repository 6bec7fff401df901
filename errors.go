package classanno

import (
	"fmt"

	"github.com/hupe1980/classanno/artifact"
)

// ErrIndexNotPublished indicates that an artifact's raw bytes were consumed
// but no index is stored for its handle. This happens when the cache does
// not retain indexes (cache.PassThrough) or dropped one after a successful
// scan.
//
// The original underlying error can be accessed via errors.Unwrap; it is
// always artifact.ErrConsumed.
type ErrIndexNotPublished struct {
	Handle artifact.Handle
	cause  error
}

func (e *ErrIndexNotPublished) Error() string {
	return fmt.Sprintf("index of %s was not published: raw bytes already consumed", e.Handle)
}

func (e *ErrIndexNotPublished) Unwrap() error { return e.cause }
