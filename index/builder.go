package index

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/zeebo/xxh3"

	"github.com/hupe1980/classanno/annotation"
	"github.com/hupe1980/classanno/signature"
)

// Builder accumulates entries for one Index.
type Builder struct {
	entries  map[signature.Signature][]annotation.Call
	params   map[signature.Signature]*roaring.Bitmap
	members  int
	digest   uint64
	finished bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		entries: make(map[signature.Signature][]annotation.Call),
		params:  make(map[signature.Signature]*roaring.Bitmap),
	}
}

// Add appends call to the list of sig.
func (b *Builder) Add(sig signature.Signature, call annotation.Call) {
	b.mustBeOpen()
	b.entries[sig] = append(b.entries[sig], call)
	b.markParameter(sig)
}

// Publish appends calls to the list of sig. An empty calls is ignored, so
// no entry is created for it.
func (b *Builder) Publish(sig signature.Signature, calls []annotation.Call) {
	b.mustBeOpen()
	if len(calls) == 0 {
		return
	}
	b.entries[sig] = append(b.entries[sig], calls...)
	b.markParameter(sig)
}

func (b *Builder) markParameter(sig signature.Signature) {
	parent, ok := sig.Parent()
	if !ok {
		return
	}
	bm, ok := b.params[parent]
	if !ok {
		bm = roaring.New()
		b.params[parent] = bm
	}
	bm.Add(uint32(sig.Param))
}

// CountMember records that one field or method was scanned.
func (b *Builder) CountMember() {
	b.members++
}

// SetContent records the digest of the scanned bytes.
func (b *Builder) SetContent(data []byte) {
	b.digest = xxh3.Hash(data)
}

// Finish returns the built Index.
func (b *Builder) Finish() *Index {
	b.mustBeOpen()
	b.finished = true
	for _, bm := range b.params {
		bm.RunOptimize()
	}
	ix := &Index{
		entries: b.entries,
		params:  b.params,
		members: b.members,
		digest:  b.digest,
	}
	b.entries = nil
	b.params = nil
	return ix
}

func (b *Builder) mustBeOpen() {
	if b.finished {
		panic("index: builder used after Finish")
	}
}
