package metadata

import "strings"

// NameResolver maps table indices used by the serialized records to names.
type NameResolver interface {
	// String returns the string at index, or "" if index is out of range.
	String(index int32) string
	// QualifiedClassName returns a class name of the form
	// "pkg/sub/Outer.Inner", or "" if index is out of range.
	QualifiedClassName(index int32) string
	// IsLocalClassName reports whether the class at index is local.
	IsLocalClassName(index int32) bool
}

// QualifiedNameKind is the kind of a qualified name table entry.
type QualifiedNameKind uint8

const (
	QualifiedClass QualifiedNameKind = iota
	QualifiedPackage
	QualifiedLocal
)

// QualifiedName is one entry of the qualified name table.
type QualifiedName struct {
	// Parent is the index of the enclosing entry, or -1.
	Parent    int32
	ShortName int32
	Kind      QualifiedNameKind
}

// Names is the standard NameResolver over a string table and a
// qualified name table.
type Names struct {
	strings   []string
	qualified []QualifiedName
}

var _ NameResolver = (*Names)(nil)

// NewNames creates a NameResolver.
func NewNames(strings []string, qualified []QualifiedName) *Names {
	return &Names{strings: strings, qualified: qualified}
}

// String implements NameResolver.
func (n *Names) String(index int32) string {
	if index < 0 || int(index) >= len(n.strings) {
		return ""
	}
	return n.strings[index]
}

// QualifiedClassName implements NameResolver.
func (n *Names) QualifiedClassName(index int32) string {
	pkg, cls, _, ok := n.split(index)
	if !ok {
		return ""
	}
	className := strings.Join(cls, ".")
	if len(pkg) == 0 {
		return className
	}
	return strings.Join(pkg, "/") + "/" + className
}

// IsLocalClassName implements NameResolver.
func (n *Names) IsLocalClassName(index int32) bool {
	_, _, local, _ := n.split(index)
	return local
}

func (n *Names) split(index int32) (pkg, cls []string, local, ok bool) {
	if index < 0 || int(index) >= len(n.qualified) {
		return nil, nil, false, false
	}
	// Parent chains are short; a bound guards against cyclic tables.
	for i, steps := index, 0; i != -1 && steps <= len(n.qualified); steps++ {
		if i < 0 || int(i) >= len(n.qualified) {
			return nil, nil, false, false
		}
		q := n.qualified[i]
		short := n.String(q.ShortName)
		switch q.Kind {
		case QualifiedClass:
			cls = append([]string{short}, cls...)
		case QualifiedPackage:
			pkg = append([]string{short}, pkg...)
		case QualifiedLocal:
			cls = append([]string{short}, cls...)
			local = true
		}
		i = q.Parent
	}
	return pkg, cls, local, true
}

// TypeTable holds types referenced by id from other records.
type TypeTable struct {
	Types []*Type
	// FirstNullable is the index from which types are read as nullable,
	// or -1.
	FirstNullable int32
}

// NewTypeTable creates a TypeTable without nullable entries.
func NewTypeTable(types ...*Type) *TypeTable {
	return &TypeTable{Types: types, FirstNullable: -1}
}

// Type returns the type at index, or nil if index is out of range.
func (t *TypeTable) Type(index int32) *Type {
	if t == nil || index < 0 || int(index) >= len(t.Types) {
		return nil
	}
	typ := t.Types[index]
	if t.FirstNullable >= 0 && index >= t.FirstNullable && !typ.Nullable {
		c := *typ
		c.Nullable = true
		return &c
	}
	return typ
}

// ReturnTypeIn resolves the return type against tt.
func (f *Function) ReturnTypeIn(tt *TypeTable) *Type {
	switch {
	case f.ReturnType != nil:
		return f.ReturnType
	case f.HasReturnTypeID:
		return tt.Type(f.ReturnTypeID)
	}
	return nil
}

// ReceiverTypeIn resolves the extension receiver type against tt.
// It returns nil for non-extension functions.
func (f *Function) ReceiverTypeIn(tt *TypeTable) *Type {
	switch {
	case f.ReceiverType != nil:
		return f.ReceiverType
	case f.HasReceiverTypeID:
		return tt.Type(f.ReceiverTypeID)
	}
	return nil
}

// IsExtension reports whether the function has an extension receiver.
func (f *Function) IsExtension() bool {
	return f.ReceiverType != nil || f.HasReceiverTypeID
}

// ReturnTypeIn resolves the property type against tt.
func (p *Property) ReturnTypeIn(tt *TypeTable) *Type {
	switch {
	case p.ReturnType != nil:
		return p.ReturnType
	case p.HasReturnTypeID:
		return tt.Type(p.ReturnTypeID)
	}
	return nil
}

// TypeIn resolves the parameter type against tt.
func (p *ValueParameter) TypeIn(tt *TypeTable) *Type {
	switch {
	case p.Type != nil:
		return p.Type
	case p.HasTypeID:
		return tt.Type(p.TypeID)
	}
	return nil
}
