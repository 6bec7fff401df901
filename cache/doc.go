// Package cache holds per-artifact annotation indexes.
//
// Three implementations are provided:
//
//   - Map: a plain map, for single-goroutine use
//   - Concurrent: RWMutex-guarded, with single-flight computation so each
//     handle is scanned at most once
//   - PassThrough: stores nothing
//
// Keys are artifact.Handle values, so two resolutions of the same binary
// share one entry.
package cache
