package annotation

import (
	"strings"

	"github.com/hupe1980/classanno/classfile"
)

// NewArgumentVisitor returns a visitor that collects the arguments of one
// annotation of class and passes the finished call to done.
func NewArgumentVisitor(class ClassID, done func(Call)) classfile.ArgumentVisitor {
	return &argumentBuilder{call: Call{Class: class}, done: done}
}

type argumentBuilder struct {
	call Call
	done func(Call)
}

func (b *argumentBuilder) add(name string, v Value) {
	b.call.Arguments = append(b.call.Arguments, Argument{Name: name, Value: v})
}

func (b *argumentBuilder) VisitConstant(name string, value classfile.Constant) {
	b.add(name, FromConstant(value))
}

func (b *argumentBuilder) VisitClassLiteral(name string, value classfile.ClassLiteral) {
	b.add(name, FromClassLiteral(value))
}

func (b *argumentBuilder) VisitEnum(name, enumClass, entry string) {
	b.add(name, EnumValue(ClassIDFromInternal(enumClass), entry))
}

func (b *argumentBuilder) VisitAnnotation(name, class string) classfile.ArgumentVisitor {
	return NewArgumentVisitor(ClassIDFromInternal(class), func(c Call) {
		b.add(name, AnnotationValue(c))
	})
}

func (b *argumentBuilder) VisitArray(name string) classfile.ArrayVisitor {
	return &arrayBuilder{done: func(elements []Value) {
		b.add(name, ArrayValue(elements))
	}}
}

func (b *argumentBuilder) VisitEnd() {
	if b.done != nil {
		b.done(b.call)
	}
}

type arrayBuilder struct {
	elements []Value
	done     func([]Value)
}

func (a *arrayBuilder) VisitConstant(value classfile.Constant) {
	a.elements = append(a.elements, FromConstant(value))
}

func (a *arrayBuilder) VisitClassLiteral(value classfile.ClassLiteral) {
	a.elements = append(a.elements, FromClassLiteral(value))
}

func (a *arrayBuilder) VisitEnum(enumClass, entry string) {
	a.elements = append(a.elements, EnumValue(ClassIDFromInternal(enumClass), entry))
}

func (a *arrayBuilder) VisitAnnotation(class string) classfile.ArgumentVisitor {
	return NewArgumentVisitor(ClassIDFromInternal(class), func(c Call) {
		a.elements = append(a.elements, AnnotationValue(c))
	})
}

func (a *arrayBuilder) VisitEnd() {
	if a.elements == nil {
		a.elements = []Value{}
	}
	a.done(a.elements)
}

// FromConstant converts a class file constant.
func FromConstant(c classfile.Constant) Value {
	switch c.Kind {
	case classfile.ConstByte:
		return IntValue(KindByte, c.Int)
	case classfile.ConstChar:
		return IntValue(KindChar, c.Int)
	case classfile.ConstShort:
		return IntValue(KindShort, c.Int)
	case classfile.ConstInt:
		return IntValue(KindInt, c.Int)
	case classfile.ConstLong:
		return IntValue(KindLong, c.Int)
	case classfile.ConstFloat:
		return FloatValue(KindFloat, c.Float)
	case classfile.ConstDouble:
		return FloatValue(KindDouble, c.Float)
	case classfile.ConstBoolean:
		return BoolValue(c.Bool())
	default:
		return StringValue(c.String)
	}
}

var primitiveClasses = map[byte]ClassID{
	'Z': "kotlin/Boolean",
	'C': "kotlin/Char",
	'B': "kotlin/Byte",
	'S': "kotlin/Short",
	'I': "kotlin/Int",
	'F': "kotlin/Float",
	'J': "kotlin/Long",
	'D': "kotlin/Double",
}

// javaToKotlin maps platform classes that have a builtin counterpart.
var javaToKotlin = map[string]ClassID{
	"java/lang/Object":       "kotlin/Any",
	"java/lang/String":       "kotlin/String",
	"java/lang/CharSequence": "kotlin/CharSequence",
	"java/lang/Throwable":    "kotlin/Throwable",
	"java/lang/Number":       "kotlin/Number",
	"java/lang/Comparable":   "kotlin/Comparable",
	"java/lang/Enum":         "kotlin/Enum",
	"java/lang/Cloneable":    "kotlin/Cloneable",
	"java/lang/Iterable":     "kotlin/collections/Iterable",
	"java/util/Iterator":     "kotlin/collections/Iterator",
	"java/util/Collection":   "kotlin/collections/Collection",
	"java/util/List":         "kotlin/collections/List",
	"java/util/Set":          "kotlin/collections/Set",
	"java/util/Map":          "kotlin/collections/Map",
	"java/util/Map$Entry":    "kotlin/collections/Map.Entry",

	"java/lang/annotation/Annotation": "kotlin/Annotation",
}

// FromClassLiteral converts a class literal descriptor to the class and
// array dimension count it denotes. Primitive arrays keep their specialized
// type: "[[I" is Array<kotlin/IntArray>::class.
func FromClassLiteral(lit classfile.ClassLiteral) Value {
	desc := lit.Desc
	dims := 0
	for strings.HasPrefix(desc, "[") {
		dims++
		desc = desc[1:]
	}
	if len(desc) == 1 {
		if class, ok := primitiveClasses[desc[0]]; ok {
			if dims > 0 {
				return ClassValue(class+"Array", dims-1)
			}
			return ClassValue(class, 0)
		}
		if desc[0] == 'V' {
			return ClassValue("java/lang/Void", dims)
		}
	}
	if len(desc) >= 2 && desc[0] == 'L' && desc[len(desc)-1] == ';' {
		desc = desc[1 : len(desc)-1]
	}
	if class, ok := javaToKotlin[desc]; ok {
		return ClassValue(class, dims)
	}
	return ClassValue(ClassIDFromInternal(desc), dims)
}
