package mmap

import "errors"

// AccessPattern hints how mapped data will be read.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	// AccessSequential suits single front-to-back passes such as class scans.
	AccessSequential
	// AccessRandom suits archives read through their central directory.
	AccessRandom
	AccessWillNeed
	AccessDontNeed
)

var (
	// ErrClosed is returned when a closed mapping is accessed.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for files whose size cannot be mapped.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrInvalidOffset is returned for negative read offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
