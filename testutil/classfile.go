package testutil

import (
	"encoding/binary"
	"math"
)

// Class describes a class file to assemble.
type Class struct {
	// Name is the internal class name, e.g. "com/example/Foo".
	Name    string
	Fields  []Field
	Methods []Method
}

// Field describes a field declaration.
type Field struct {
	Name string
	Desc string
	// Constant is emitted as a ConstantValue attribute when non-nil.
	// Supported types: int32, int64, float32, float64, string.
	Constant  any
	Visible   []Annotation
	Invisible []Annotation
}

// Method describes a method declaration.
type Method struct {
	Name      string
	Desc      string
	Visible   []Annotation
	Invisible []Annotation
	// ParamVisible holds runtime-visible annotations per parameter index.
	ParamVisible [][]Annotation
	// ParamInvisible holds runtime-invisible annotations per parameter index.
	ParamInvisible [][]Annotation
}

// Annotation is an annotation application.
type Annotation struct {
	// Desc is the annotation type descriptor, e.g. "Lcom/example/A;".
	Desc string
	Args []Arg
}

// Arg is a named annotation argument.
type Arg struct {
	Name  string
	Value Element
}

// Element is one element_value.
type Element struct {
	Tag        byte
	Int        int64
	Float      float64
	Str        string
	EnumDesc   string
	Annotation *Annotation
	Array      []Element
}

// Int returns an int element.
func Int(v int32) Element { return Element{Tag: 'I', Int: int64(v)} }

// Long returns a long element.
func Long(v int64) Element { return Element{Tag: 'J', Int: v} }

// Char returns a char element.
func Char(v rune) Element { return Element{Tag: 'C', Int: int64(v)} }

// Bool returns a boolean element.
func Bool(v bool) Element {
	if v {
		return Element{Tag: 'Z', Int: 1}
	}
	return Element{Tag: 'Z'}
}

// Double returns a double element.
func Double(v float64) Element { return Element{Tag: 'D', Float: v} }

// Float returns a float element.
func Float(v float32) Element { return Element{Tag: 'F', Float: float64(v)} }

// String returns a string element.
func String(v string) Element { return Element{Tag: 's', Str: v} }

// Enum returns an enum element; desc is the enum type descriptor.
func Enum(desc, entry string) Element { return Element{Tag: 'e', EnumDesc: desc, Str: entry} }

// ClassOf returns a class literal element for the descriptor desc.
func ClassOf(desc string) Element { return Element{Tag: 'c', Str: desc} }

// Nested returns a nested annotation element.
func Nested(a Annotation) Element { return Element{Tag: '@', Annotation: &a} }

// Array returns an array element.
func Array(elems ...Element) Element { return Element{Tag: '[', Array: elems} }

// Bytes assembles the class file.
func (c Class) Bytes() []byte {
	cp := &pool{index: map[string]uint16{}}
	thisClass := cp.class(c.Name)
	superClass := cp.class("java/lang/Object")

	var body []byte
	body = u2(body, 0x0021) // public super
	body = u2(body, thisClass)
	body = u2(body, superClass)
	body = u2(body, 0) // interfaces

	body = u2(body, uint16(len(c.Fields)))
	for _, f := range c.Fields {
		body = u2(body, 0x0001)
		body = u2(body, cp.utf8(f.Name))
		body = u2(body, cp.utf8(f.Desc))

		var attrs [][]byte
		if f.Constant != nil {
			attrs = append(attrs, attr(cp, "ConstantValue", u2(nil, cp.constant(f.Constant))))
		}
		attrs = appendAnnotationAttrs(attrs, cp, f.Visible, f.Invisible)
		body = u2(body, uint16(len(attrs)))
		for _, a := range attrs {
			body = append(body, a...)
		}
	}

	body = u2(body, uint16(len(c.Methods)))
	for _, m := range c.Methods {
		body = u2(body, 0x0001)
		body = u2(body, cp.utf8(m.Name))
		body = u2(body, cp.utf8(m.Desc))

		var attrs [][]byte
		attrs = appendAnnotationAttrs(attrs, cp, m.Visible, m.Invisible)
		if len(m.ParamVisible) > 0 {
			attrs = append(attrs, attr(cp, "RuntimeVisibleParameterAnnotations", parameterAnnotations(cp, m.ParamVisible)))
		}
		if len(m.ParamInvisible) > 0 {
			attrs = append(attrs, attr(cp, "RuntimeInvisibleParameterAnnotations", parameterAnnotations(cp, m.ParamInvisible)))
		}
		body = u2(body, uint16(len(attrs)))
		for _, a := range attrs {
			body = append(body, a...)
		}
	}

	body = u2(body, 0) // class attributes

	out := binary.BigEndian.AppendUint32(nil, 0xCAFEBABE)
	out = u2(out, 0)
	out = u2(out, 52)
	out = u2(out, uint16(len(cp.entries)+1))
	for _, e := range cp.entries {
		out = append(out, e...)
	}
	return append(out, body...)
}

func appendAnnotationAttrs(attrs [][]byte, cp *pool, visible, invisible []Annotation) [][]byte {
	if len(visible) > 0 {
		attrs = append(attrs, attr(cp, "RuntimeVisibleAnnotations", annotationTable(cp, visible)))
	}
	if len(invisible) > 0 {
		attrs = append(attrs, attr(cp, "RuntimeInvisibleAnnotations", annotationTable(cp, invisible)))
	}
	return attrs
}

func attr(cp *pool, name string, payload []byte) []byte {
	b := u2(nil, cp.utf8(name))
	b = binary.BigEndian.AppendUint32(b, uint32(len(payload)))
	return append(b, payload...)
}

func annotationTable(cp *pool, anns []Annotation) []byte {
	b := u2(nil, uint16(len(anns)))
	for _, a := range anns {
		b = appendAnnotation(b, cp, a)
	}
	return b
}

func parameterAnnotations(cp *pool, params [][]Annotation) []byte {
	b := []byte{byte(len(params))}
	for _, anns := range params {
		b = append(b, annotationTable(cp, anns)...)
	}
	return b
}

func appendAnnotation(b []byte, cp *pool, a Annotation) []byte {
	b = u2(b, cp.utf8(a.Desc))
	b = u2(b, uint16(len(a.Args)))
	for _, arg := range a.Args {
		b = u2(b, cp.utf8(arg.Name))
		b = appendElement(b, cp, arg.Value)
	}
	return b
}

func appendElement(b []byte, cp *pool, e Element) []byte {
	b = append(b, e.Tag)
	switch e.Tag {
	case 'B', 'C', 'I', 'S', 'Z':
		b = u2(b, cp.constant(int32(e.Int)))
	case 'J':
		b = u2(b, cp.constant(e.Int))
	case 'F':
		b = u2(b, cp.constant(float32(e.Float)))
	case 'D':
		b = u2(b, cp.constant(e.Float))
	case 's':
		b = u2(b, cp.utf8(e.Str))
	case 'e':
		b = u2(b, cp.utf8(e.EnumDesc))
		b = u2(b, cp.utf8(e.Str))
	case 'c':
		b = u2(b, cp.utf8(e.Str))
	case '@':
		b = appendAnnotation(b, cp, *e.Annotation)
	case '[':
		b = u2(b, uint16(len(e.Array)))
		for _, el := range e.Array {
			b = appendElement(b, cp, el)
		}
	}
	return b
}

// pool is a deduplicating constant pool builder.
type pool struct {
	entries [][]byte
	index   map[string]uint16
	// next is the next free slot; long and double take two.
	next uint16
}

func (p *pool) add(key string, entry []byte, slots uint16) uint16 {
	if i, ok := p.index[key]; ok {
		return i
	}
	if p.next == 0 {
		p.next = 1
	}
	i := p.next
	p.next += slots
	p.entries = append(p.entries, entry)
	if slots == 2 {
		// The phantom slot is accounted for by the constant_pool_count only.
		p.entries = append(p.entries, nil)
	}
	p.index[key] = i
	return i
}

func (p *pool) utf8(s string) uint16 {
	b := []byte{1}
	b = u2(b, uint16(len(s)))
	b = append(b, s...)
	return p.add("u:"+s, b, 1)
}

func (p *pool) class(name string) uint16 {
	ref := p.utf8(name)
	return p.add("c:"+name, u2([]byte{7}, ref), 1)
}

func (p *pool) constant(v any) uint16 {
	switch x := v.(type) {
	case int32:
		b := binary.BigEndian.AppendUint32([]byte{3}, uint32(x))
		return p.add("i:"+string(b), b, 1)
	case float32:
		b := binary.BigEndian.AppendUint32([]byte{4}, math.Float32bits(x))
		return p.add("f:"+string(b), b, 1)
	case int64:
		b := binary.BigEndian.AppendUint64([]byte{5}, uint64(x))
		return p.add("l:"+string(b), b, 2)
	case float64:
		b := binary.BigEndian.AppendUint64([]byte{6}, math.Float64bits(x))
		return p.add("d:"+string(b), b, 2)
	case string:
		ref := p.utf8(x)
		return p.add("s:"+x, u2([]byte{8}, ref), 1)
	}
	panic("testutil: unsupported constant type")
}

func u2(b []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(b, v)
}
