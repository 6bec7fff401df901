package classfile

import "strings"

const magic = 0xCAFEBABE

// Attribute names read by Visit.
const (
	attrConstantValue                        = "ConstantValue"
	attrRuntimeVisibleAnnotations            = "RuntimeVisibleAnnotations"
	attrRuntimeInvisibleAnnotations          = "RuntimeInvisibleAnnotations"
	attrRuntimeVisibleParameterAnnotations   = "RuntimeVisibleParameterAnnotations"
	attrRuntimeInvisibleParameterAnnotations = "RuntimeInvisibleParameterAnnotations"
)

// ReadClassName returns the internal name of the class declared by data,
// e.g. "com/example/Foo".
func ReadClassName(data []byte) (string, error) {
	r := &reader{b: data}
	cp := readHeader(r)
	r.u2() // access_flags
	name := cp.className(r, r.u2())
	if r.err != nil {
		return "", r.err
	}
	return name, nil
}

// Visit walks the fields and methods of the class file in data once, in
// declaration order, and reports their annotations to v.
//
// Runtime-visible annotations are reported before runtime-invisible ones.
// A structural problem is returned as a *FormatError; v may already have
// received part of the class in that case.
func Visit(data []byte, v MemberVisitor) error {
	r := &reader{b: data}
	cp := readHeader(r)

	r.u2() // access_flags
	r.u2() // this_class
	r.u2() // super_class
	interfaces := int(r.u2())
	r.bytes(2 * interfaces)

	fields := int(r.u2())
	for i := 0; i < fields && r.err == nil; i++ {
		visitField(r, cp, v)
	}

	methods := int(r.u2())
	for i := 0; i < methods && r.err == nil; i++ {
		visitMethod(r, cp, v)
	}

	// Class-level attributes are not needed.
	return r.err
}

func readHeader(r *reader) constantPool {
	if r.u4() != magic {
		r.err = nil
		r.off = 0
		r.fail("bad magic number")
		return nil
	}
	r.u2() // minor_version
	r.u2() // major_version
	return readConstantPool(r)
}

type attribute struct {
	name string
	body *reader
}

// memberHeader reads access flags, name, descriptor and all attributes of a
// field or method.
func memberHeader(r *reader, cp constantPool) (name, desc string, attrs []attribute) {
	r.u2() // access_flags
	name = cp.utf8(r, r.u2())
	desc = cp.utf8(r, r.u2())
	count := int(r.u2())
	for i := 0; i < count && r.err == nil; i++ {
		attrName := cp.utf8(r, r.u2())
		length := int(r.u4())
		body := r.sub(length)
		attrs = append(attrs, attribute{name: attrName, body: body})
	}
	return name, desc, attrs
}

func find(attrs []attribute, name string) *reader {
	for _, a := range attrs {
		if a.name == name {
			return a.body
		}
	}
	return nil
}

func visitField(r *reader, cp constantPool, v MemberVisitor) {
	name, desc, attrs := memberHeader(r, cp)
	if r.err != nil {
		return
	}

	var constant *Constant
	if body := find(attrs, attrConstantValue); body != nil {
		if kind, ok := constKindOf(desc); ok {
			c := cp.constant(body, body.u2(), kind)
			if body.err != nil {
				r.err = body.err
				return
			}
			constant = &c
		}
	}

	av := v.VisitField(name, desc, constant)
	if av == nil {
		return
	}
	for _, attr := range []string{attrRuntimeVisibleAnnotations, attrRuntimeInvisibleAnnotations} {
		if body := find(attrs, attr); body != nil {
			if !annotations(r, body, cp, av.VisitAnnotation) {
				return
			}
		}
	}
	av.VisitEnd()
}

func visitMethod(r *reader, cp constantPool, v MemberVisitor) {
	name, desc, attrs := memberHeader(r, cp)
	if r.err != nil {
		return
	}

	mv := v.VisitMethod(name, desc)
	if mv == nil {
		return
	}
	for _, attr := range []string{attrRuntimeVisibleAnnotations, attrRuntimeInvisibleAnnotations} {
		if body := find(attrs, attr); body != nil {
			if !annotations(r, body, cp, mv.VisitAnnotation) {
				return
			}
		}
	}
	for _, attr := range []string{attrRuntimeVisibleParameterAnnotations, attrRuntimeInvisibleParameterAnnotations} {
		body := find(attrs, attr)
		if body == nil {
			continue
		}
		params := int(body.u1())
		// javac omits synthetic leading parameters such as the outer
		// instance of an inner class constructor.
		shift := 0
		if n := parameterCount(desc); n > params {
			shift = n - params
		}
		for i := 0; i < params && body.err == nil; i++ {
			index := i + shift
			visit := func(class string) ArgumentVisitor {
				return mv.VisitParameterAnnotation(index, class)
			}
			if !annotations(r, body, cp, visit) {
				return
			}
		}
		if body.err != nil {
			r.err = body.err
			return
		}
	}
	mv.VisitEnd()
}

// parameterCount returns the number of parameters in a method descriptor,
// or -1 if desc is malformed.
func parameterCount(desc string) int {
	if len(desc) == 0 || desc[0] != '(' {
		return -1
	}
	n := 0
	for i := 1; i < len(desc); {
		switch desc[i] {
		case ')':
			return n
		case '[':
			i++
			continue
		case 'L':
			end := strings.IndexByte(desc[i:], ';')
			if end < 0 {
				return -1
			}
			i += end + 1
		default:
			i++
		}
		n++
	}
	return -1
}

// annotations reads one annotations table from body. It copies a failure
// into r and reports whether reading succeeded.
func annotations(r, body *reader, cp constantPool, visit func(class string) ArgumentVisitor) bool {
	count := int(body.u2())
	for i := 0; i < count && body.err == nil; i++ {
		class := internalName(cp.utf8(body, body.u2()))
		if body.err != nil {
			break
		}
		annotationBody(body, cp, visit(class))
	}
	if body.err != nil {
		r.err = body.err
		return false
	}
	return true
}

// annotationBody reads element_value_pairs. av may be nil, in which case the
// values are parsed and dropped.
func annotationBody(r *reader, cp constantPool, av ArgumentVisitor) {
	pairs := int(r.u2())
	for i := 0; i < pairs && r.err == nil; i++ {
		name := cp.utf8(r, r.u2())
		elementValue(r, cp, namedSink{av: av, name: name})
	}
	if av != nil && r.err == nil {
		av.VisitEnd()
	}
}

// sink abstracts over named arguments and array elements.
type sink interface {
	constant(Constant)
	classLiteral(ClassLiteral)
	enum(class, entry string)
	annotation(class string) ArgumentVisitor
	array() ArrayVisitor
}

type namedSink struct {
	av   ArgumentVisitor
	name string
}

func (s namedSink) constant(c Constant) {
	if s.av != nil {
		s.av.VisitConstant(s.name, c)
	}
}

func (s namedSink) classLiteral(c ClassLiteral) {
	if s.av != nil {
		s.av.VisitClassLiteral(s.name, c)
	}
}

func (s namedSink) enum(class, entry string) {
	if s.av != nil {
		s.av.VisitEnum(s.name, class, entry)
	}
}

func (s namedSink) annotation(class string) ArgumentVisitor {
	if s.av == nil {
		return nil
	}
	return s.av.VisitAnnotation(s.name, class)
}

func (s namedSink) array() ArrayVisitor {
	if s.av == nil {
		return nil
	}
	return s.av.VisitArray(s.name)
}

type elementSink struct {
	av ArrayVisitor
}

func (s elementSink) constant(c Constant) {
	if s.av != nil {
		s.av.VisitConstant(c)
	}
}

func (s elementSink) classLiteral(c ClassLiteral) {
	if s.av != nil {
		s.av.VisitClassLiteral(c)
	}
}

func (s elementSink) enum(class, entry string) {
	if s.av != nil {
		s.av.VisitEnum(class, entry)
	}
}

func (s elementSink) annotation(class string) ArgumentVisitor {
	if s.av == nil {
		return nil
	}
	return s.av.VisitAnnotation(class)
}

// array returns nil: annotation arrays are one-dimensional, nested arrays
// are parsed and dropped.
func (s elementSink) array() ArrayVisitor {
	return nil
}

func elementValue(r *reader, cp constantPool, s sink) {
	tag := r.u1()
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		kind, _ := constKindOf(string(tag))
		if tag == 's' {
			kind = ConstString
		}
		c := cp.constant(r, r.u2(), kind)
		if r.err == nil {
			s.constant(c)
		}
	case 'e':
		class := internalName(cp.utf8(r, r.u2()))
		entry := cp.utf8(r, r.u2())
		if r.err == nil {
			s.enum(class, entry)
		}
	case 'c':
		desc := cp.utf8(r, r.u2())
		if r.err == nil {
			s.classLiteral(ClassLiteral{Desc: desc})
		}
	case '@':
		class := internalName(cp.utf8(r, r.u2()))
		if r.err != nil {
			return
		}
		annotationBody(r, cp, s.annotation(class))
	case '[':
		n := int(r.u2())
		av := s.array()
		for i := 0; i < n && r.err == nil; i++ {
			elementValue(r, cp, elementSink{av: av})
		}
		if av != nil && r.err == nil {
			av.VisitEnd()
		}
	default:
		if r.err == nil {
			r.off--
			r.fail("unknown element_value tag " + string(rune(tag)))
		}
	}
}

func constKindOf(desc string) (ConstKind, bool) {
	switch desc {
	case "B":
		return ConstByte, true
	case "C":
		return ConstChar, true
	case "S":
		return ConstShort, true
	case "I":
		return ConstInt, true
	case "J":
		return ConstLong, true
	case "F":
		return ConstFloat, true
	case "D":
		return ConstDouble, true
	case "Z":
		return ConstBoolean, true
	case "Ljava/lang/String;":
		return ConstString, true
	}
	return 0, false
}

// internalName strips the object descriptor wrapper: "Lcom/A;" -> "com/A".
func internalName(desc string) string {
	if len(desc) >= 2 && desc[0] == 'L' && desc[len(desc)-1] == ';' {
		return desc[1 : len(desc)-1]
	}
	return desc
}
