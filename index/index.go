package index

import (
	"iter"
	"reflect"
	"slices"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/classanno/annotation"
	"github.com/hupe1980/classanno/signature"
)

// Index maps member signatures to the annotations recorded for them.
//
// An Index is immutable once built and safe for concurrent reads. It is
// sparse: signatures without annotations have no entry.
type Index struct {
	entries map[signature.Signature][]annotation.Call
	// params holds, per method, the parameter indices with annotations.
	params  map[signature.Signature]*roaring.Bitmap
	members int
	digest  uint64
}

var empty = &Index{}

// Empty returns the index of a class without annotations.
func Empty() *Index { return empty }

// Lookup returns the calls recorded for sig in declaration order, or nil.
func (ix *Index) Lookup(sig signature.Signature) []annotation.Call {
	calls, ok := ix.entries[sig]
	if !ok {
		return nil
	}
	return slices.Clone(calls)
}

// Contains reports whether sig has an entry.
func (ix *Index) Contains(sig signature.Signature) bool {
	_, ok := ix.entries[sig]
	return ok
}

// Len returns the number of signatures with annotations.
func (ix *Index) Len() int { return len(ix.entries) }

// Members returns the number of fields and methods that were scanned.
func (ix *Index) Members() int { return ix.members }

// Digest returns the xxh3 hash of the scanned class file.
func (ix *Index) Digest() uint64 { return ix.digest }

// Signatures returns all indexed signatures in stable order.
func (ix *Index) Signatures() []signature.Signature {
	out := make([]signature.Signature, 0, len(ix.entries))
	for sig := range ix.entries {
		out = append(out, sig)
	}
	sortSignatures(out)
	return out
}

// All iterates over the entries in the order of Signatures.
func (ix *Index) All() iter.Seq2[signature.Signature, []annotation.Call] {
	return func(yield func(signature.Signature, []annotation.Call) bool) {
		for _, sig := range ix.Signatures() {
			if !yield(sig, slices.Clone(ix.entries[sig])) {
				return
			}
		}
	}
}

// AnnotatedParameters returns the ascending indices of the parameters of
// method that carry annotations.
func (ix *Index) AnnotatedParameters(method signature.Signature) []int {
	bm, ok := ix.params[method]
	if !ok {
		return nil
	}
	out := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Entry is one index entry.
type Entry struct {
	Signature signature.Signature `json:"signature"`
	Calls     []annotation.Call   `json:"calls"`
}

// Entries returns the entries in the order of Signatures.
func (ix *Index) Entries() []Entry {
	out := make([]Entry, 0, len(ix.entries))
	for sig, calls := range ix.All() {
		out = append(out, Entry{Signature: sig, Calls: calls})
	}
	return out
}

// Equal reports whether ix and other hold the same signatures with the same
// ordered calls.
func (ix *Index) Equal(other *Index) bool {
	if ix == other {
		return true
	}
	if other == nil || len(ix.entries) != len(other.entries) {
		return false
	}
	for sig, calls := range ix.entries {
		oc, ok := other.entries[sig]
		if !ok || !equalCalls(calls, oc) {
			return false
		}
	}
	return true
}

func equalCalls(a, b []annotation.Call) bool {
	return reflect.DeepEqual(a, b)
}

func sortSignatures(sigs []signature.Signature) {
	sort.Slice(sigs, func(i, j int) bool {
		a, b := sigs[i], sigs[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Desc != b.Desc {
			return a.Desc < b.Desc
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Param < b.Param
	})
}
