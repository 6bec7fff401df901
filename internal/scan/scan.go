// Package scan builds the annotation index of one class file in a single
// pass.
package scan

import (
	"sort"

	"github.com/hupe1980/classanno/annotation"
	"github.com/hupe1980/classanno/classfile"
	"github.com/hupe1980/classanno/index"
	"github.com/hupe1980/classanno/signature"
)

// Scan visits data once and returns the index of the annotations that
// filter keeps. Errors of the class reader are returned unmodified.
func Scan(data []byte, filter annotation.Filter) (*index.Index, error) {
	b := index.NewBuilder()
	b.SetContent(data)

	s := &scanner{builder: b, filter: filter}
	if err := classfile.Visit(data, s); err != nil {
		return nil, err
	}
	return b.Finish(), nil
}

type scanner struct {
	builder *index.Builder
	filter  annotation.Filter
}

var _ classfile.MemberVisitor = (*scanner)(nil)

func (s *scanner) VisitMethod(name, desc string) classfile.MethodVisitor {
	s.builder.CountMember()
	return &member{scanner: s, sig: signature.Method(name, desc)}
}

// VisitField ignores the constant initializer; only annotations are
// indexed.
func (s *scanner) VisitField(name, desc string, _ *classfile.Constant) classfile.AnnotationVisitor {
	s.builder.CountMember()
	return &member{scanner: s, sig: signature.Field(name, desc)}
}

// member accumulates the calls of one field or method and of its
// parameters until VisitEnd.
type member struct {
	*scanner
	sig    signature.Signature
	calls  annotation.Calls
	params map[int]*annotation.Calls
}

func (m *member) VisitAnnotation(class string) classfile.ArgumentVisitor {
	return m.filter.LoadIfNotSpecial(annotation.ClassIDFromInternal(class), &m.calls)
}

func (m *member) VisitParameterAnnotation(index int, class string) classfile.ArgumentVisitor {
	if m.params == nil {
		m.params = make(map[int]*annotation.Calls)
	}
	target, ok := m.params[index]
	if !ok {
		target = &annotation.Calls{}
		m.params[index] = target
	}
	return m.filter.LoadIfNotSpecial(annotation.ClassIDFromInternal(class), target)
}

func (m *member) VisitEnd() {
	m.builder.Publish(m.sig, m.calls)

	indices := make([]int, 0, len(m.params))
	for i := range m.params {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for _, i := range indices {
		m.builder.Publish(signature.Parameter(m.sig, i), *m.params[i])
	}
}
