// Package resource bounds what artifact loading may consume: the raw class
// bytes held at once, the number of concurrent preload workers and the
// artifact read throughput.
package resource
