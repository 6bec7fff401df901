package signature

import (
	"strings"

	"github.com/hupe1980/classanno/metadata"
)

// Accessor selects a property accessor.
type Accessor uint8

const (
	Getter Accessor = iota
	Setter
)

func (a Accessor) String() string {
	if a == Setter {
		return "setter"
	}
	return "getter"
}

// FromFunction returns the signature of the compiled method backing fn.
//
// An explicit name or descriptor in the JVM signature block wins; otherwise
// the descriptor is derived from the receiver, parameter and return types.
// The function-local type table, if any, takes precedence over types.
// ok is false if the descriptor cannot be derived.
func FromFunction(fn *metadata.Function, names metadata.NameResolver, types *metadata.TypeTable) (Signature, bool) {
	if fn == nil {
		return Signature{}, false
	}
	if fn.TypeTable != nil {
		types = fn.TypeTable
	}

	name := names.String(fn.Name)
	sig := fn.Signature
	if sig != nil && sig.HasName {
		name = names.String(sig.Name)
	}
	if sig != nil && sig.HasDesc {
		return Method(name, names.String(sig.Desc)), true
	}

	var params []*metadata.Type
	if recv := fn.ReceiverTypeIn(types); recv != nil {
		params = append(params, recv)
	}
	for _, p := range fn.ValueParameters {
		params = append(params, p.TypeIn(types))
	}

	desc, ok := methodDesc(params, fn.ReturnTypeIn(types), names)
	if !ok {
		return Signature{}, false
	}
	return Method(name, desc), true
}

// FromConstructor returns the signature of the compiled constructor backing
// ctor. Constructors are named "<init>" unless the signature extension
// names them, and return void.
func FromConstructor(ctor *metadata.Constructor, names metadata.NameResolver, types *metadata.TypeTable) (Signature, bool) {
	if ctor == nil {
		return Signature{}, false
	}
	name := "<init>"
	sig := ctor.Signature
	if sig != nil && sig.HasName {
		name = names.String(sig.Name)
	}
	if sig != nil && sig.HasDesc {
		return Method(name, names.String(sig.Desc)), true
	}

	params := make([]*metadata.Type, 0, len(ctor.ValueParameters))
	for _, p := range ctor.ValueParameters {
		params = append(params, p.TypeIn(types))
	}

	var b strings.Builder
	b.WriteByte('(')
	for _, p := range params {
		d, ok := mapType(p, names)
		if !ok {
			return Signature{}, false
		}
		b.WriteString(d)
	}
	b.WriteString(")V")
	return Method(name, b.String()), true
}

// FromPropertyAccessor returns the signature of a property getter or setter.
// It relies solely on the JVM property signature block: ok is false if the
// block is absent or the requested accessor was not emitted.
func FromPropertyAccessor(prop *metadata.Property, names metadata.NameResolver, kind Accessor) (Signature, bool) {
	if prop == nil || prop.Signature == nil {
		return Signature{}, false
	}
	var m *metadata.JvmMethodSignature
	switch kind {
	case Getter:
		m = prop.Signature.Getter
	case Setter:
		m = prop.Signature.Setter
	}
	if m == nil {
		return Signature{}, false
	}
	return Method(names.String(m.Name), names.String(m.Desc)), true
}

// FromPropertyField returns the signature of a property's backing field.
// The field name defaults to the property name and the descriptor to the
// mapped property type.
func FromPropertyField(prop *metadata.Property, names metadata.NameResolver, types *metadata.TypeTable) (Signature, bool) {
	if prop == nil || prop.Signature == nil || prop.Signature.Field == nil {
		return Signature{}, false
	}
	f := prop.Signature.Field

	name := names.String(prop.Name)
	if f.HasName {
		name = names.String(f.Name)
	}
	if f.HasDesc {
		return Field(name, names.String(f.Desc)), true
	}
	desc, ok := mapType(prop.ReturnTypeIn(types), names)
	if !ok {
		return Signature{}, false
	}
	return Field(name, desc), true
}

func methodDesc(params []*metadata.Type, ret *metadata.Type, names metadata.NameResolver) (string, bool) {
	var b strings.Builder
	b.WriteByte('(')
	for _, p := range params {
		d, ok := mapType(p, names)
		if !ok {
			return "", false
		}
		b.WriteString(d)
	}
	b.WriteByte(')')
	d, ok := mapType(ret, names)
	if !ok {
		return "", false
	}
	b.WriteString(d)
	return b.String(), true
}

// mapType maps a class type use to its default JVM descriptor. Type
// parameters and aliases have no default mapping.
func mapType(t *metadata.Type, names metadata.NameResolver) (string, bool) {
	if t == nil || !t.HasClassName {
		return "", false
	}
	qn := names.QualifiedClassName(t.ClassName)
	if qn == "" {
		return "", false
	}
	return MapClass(qn), true
}
