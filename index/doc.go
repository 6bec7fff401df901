// Package index provides the immutable per-class annotation index and the
// builder that produces it during a scan.
//
// # Keys
//
// Entries are keyed by signature.Signature. Method and field signatures
// address members; parameter signatures address one parameter of a method
// and never collide with the method itself.
//
// # Building
//
// A Builder is scoped to one scan and not safe for concurrent use:
//
//	b := index.NewBuilder()
//	b.Add(signature.Method("bar", "()V"), call)
//	ix := b.Finish()
//
// Finish hands the accumulated entries to the returned Index; the Builder
// must not be used afterwards.
package index
