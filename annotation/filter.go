package annotation

import "github.com/hupe1980/classanno/classfile"

// Target accumulates the calls kept for one member.
type Target interface {
	Add(call Call)
}

// Calls is a slice-backed Target.
type Calls []Call

// Add implements Target.
func (c *Calls) Add(call Call) {
	*c = append(*c, call)
}

// Filter decides whether an annotation is kept.
//
// LoadIfNotSpecial returns nil when class is special and must be excluded.
// Otherwise it returns a visitor that consumes the annotation's arguments
// and adds the finished call to target when they end.
type Filter interface {
	LoadIfNotSpecial(class ClassID, target Target) classfile.ArgumentVisitor
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(class ClassID, target Target) classfile.ArgumentVisitor

// LoadIfNotSpecial implements Filter.
func (f FilterFunc) LoadIfNotSpecial(class ClassID, target Target) classfile.ArgumentVisitor {
	return f(class, target)
}

// Keep returns a visitor that adds the call to target once its arguments
// were read.
func Keep(class ClassID, target Target) classfile.ArgumentVisitor {
	return NewArgumentVisitor(class, target.Add)
}

// KeepAll is a Filter without special annotations.
var KeepAll Filter = FilterFunc(Keep)

// SpecialFilter excludes a fixed set of annotation classes.
type SpecialFilter struct {
	special  map[ClassID]struct{}
	observer func(Call)
}

var _ Filter = (*SpecialFilter)(nil)

// NewSpecialFilter returns a filter that excludes classes.
func NewSpecialFilter(classes ...ClassID) *SpecialFilter {
	f := &SpecialFilter{special: make(map[ClassID]struct{}, len(classes))}
	for _, c := range classes {
		f.special[c] = struct{}{}
	}
	return f
}

// DefaultFilter excludes annotations the compiler handles on its own:
// the metadata carrier, nullability markers and annotation meta-annotations.
func DefaultFilter() *SpecialFilter {
	return NewSpecialFilter(
		"kotlin/Metadata",
		"org/jetbrains/annotations/NotNull",
		"org/jetbrains/annotations/Nullable",
		"java/lang/annotation/Target",
		"java/lang/annotation/Retention",
		"java/lang/annotation/Documented",
	)
}

// WithObserver returns a copy of f whose special annotations are still
// read and handed to fn instead of being skipped. They are never added to
// a target.
func (f *SpecialFilter) WithObserver(fn func(Call)) *SpecialFilter {
	return &SpecialFilter{special: f.special, observer: fn}
}

// IsSpecial reports whether class is excluded.
func (f *SpecialFilter) IsSpecial(class ClassID) bool {
	_, ok := f.special[class]
	return ok
}

// Classes returns the excluded classes in no particular order.
func (f *SpecialFilter) Classes() []ClassID {
	out := make([]ClassID, 0, len(f.special))
	for c := range f.special {
		out = append(out, c)
	}
	return out
}

// LoadIfNotSpecial implements Filter.
func (f *SpecialFilter) LoadIfNotSpecial(class ClassID, target Target) classfile.ArgumentVisitor {
	if f.IsSpecial(class) {
		if f.observer != nil {
			return NewArgumentVisitor(class, f.observer)
		}
		return nil
	}
	return Keep(class, target)
}
