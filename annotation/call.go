package annotation

import (
	"fmt"
	"strconv"
	"strings"
)

// ClassID is a qualified class name. Packages are separated by '/', nested
// classes by '.', e.g. "com/example/Outer.Inner".
type ClassID string

// ClassIDFromInternal converts a JVM internal name ("com/example/Outer$Inner")
// to a ClassID.
func ClassIDFromInternal(internal string) ClassID {
	return ClassID(strings.ReplaceAll(internal, "$", "."))
}

// PackageName returns the package part, e.g. "com/example".
func (c ClassID) PackageName() string {
	if i := strings.LastIndexByte(string(c), '/'); i >= 0 {
		return string(c[:i])
	}
	return ""
}

// ShortName returns the innermost class name.
func (c ClassID) ShortName() string {
	s := string(c)
	if i := strings.LastIndexAny(s, "/."); i >= 0 {
		return s[i+1:]
	}
	return s
}

func (c ClassID) String() string { return string(c) }

// Call is a deserialized annotation application.
type Call struct {
	Class     ClassID    `json:"class"`
	Arguments []Argument `json:"arguments,omitempty"`
}

// Argument is a named annotation argument.
type Argument struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// Argument returns the value of the argument name.
func (c Call) Argument(name string) (Value, bool) {
	for _, a := range c.Arguments {
		if a.Name == name {
			return a.Value, true
		}
	}
	return Value{}, false
}

// String renders the call in source-like form, e.g. `@com/A(x=1, y="s")`.
func (c Call) String() string {
	var sb strings.Builder
	c.write(&sb)
	return sb.String()
}

func (c Call) write(sb *strings.Builder) {
	sb.WriteByte('@')
	sb.WriteString(string(c.Class))
	if len(c.Arguments) == 0 {
		return
	}
	sb.WriteByte('(')
	for i, a := range c.Arguments {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Name)
		sb.WriteByte('=')
		a.Value.write(sb)
	}
	sb.WriteByte(')')
}

// Kind identifies the payload of a Value.
type Kind uint8

const (
	KindByte Kind = iota
	KindChar
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBoolean
	KindString
	KindClass
	KindEnum
	KindAnnotation
	KindArray
)

var kindNames = [...]string{
	"byte", "char", "short", "int", "long", "float", "double", "boolean",
	"string", "class", "enum", "annotation", "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText renders the kind name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("annotation: unknown kind %q", text)
}

// Value is an annotation argument value.
type Value struct {
	Kind Kind `json:"kind"`
	// Int holds byte, char, short, int, long and boolean values.
	Int int64 `json:"int,omitempty"`
	// Float holds float and double values.
	Float float64 `json:"float,omitempty"`
	// String holds string values and enum entry names.
	String string `json:"string,omitempty"`
	// Class is the class of a class literal or of an enum entry.
	Class ClassID `json:"class,omitempty"`
	// Dimensions is the array dimension count of a class literal.
	Dimensions int     `json:"dimensions,omitempty"`
	Annotation *Call   `json:"annotation,omitempty"`
	Elements   []Value `json:"elements,omitempty"`
	Unsigned   bool    `json:"unsigned,omitempty"`
}

// IntValue returns an integral value of kind.
func IntValue(kind Kind, v int64) Value { return Value{Kind: kind, Int: v} }

// FloatValue returns a float or double value.
func FloatValue(kind Kind, v float64) Value { return Value{Kind: kind, Float: v} }

// BoolValue returns a boolean value.
func BoolValue(v bool) Value {
	if v {
		return Value{Kind: KindBoolean, Int: 1}
	}
	return Value{Kind: KindBoolean}
}

// StringValue returns a string value.
func StringValue(v string) Value { return Value{Kind: KindString, String: v} }

// ClassValue returns a class literal value such as Array<Array<Foo>>::class
// (class "Foo", dimensions 2).
func ClassValue(class ClassID, dimensions int) Value {
	return Value{Kind: KindClass, Class: class, Dimensions: dimensions}
}

// EnumValue returns an enum entry value.
func EnumValue(class ClassID, entry string) Value {
	return Value{Kind: KindEnum, Class: class, String: entry}
}

// AnnotationValue returns a nested annotation value.
func AnnotationValue(call Call) Value { return Value{Kind: KindAnnotation, Annotation: &call} }

// ArrayValue returns an array value.
func ArrayValue(elements []Value) Value { return Value{Kind: KindArray, Elements: elements} }

// Bool returns the value of a boolean.
func (v Value) Bool() bool { return v.Int != 0 }

// Text renders the value in source-like form.
func (v Value) Text() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.Kind {
	case KindByte, KindShort, KindInt, KindLong:
		if v.Unsigned {
			sb.WriteString(strconv.FormatUint(uint64(v.Int), 10))
			sb.WriteByte('u')
		} else {
			sb.WriteString(strconv.FormatInt(v.Int, 10))
		}
	case KindChar:
		sb.WriteString(strconv.QuoteRune(rune(v.Int)))
	case KindFloat:
		sb.WriteString(strconv.FormatFloat(v.Float, 'g', -1, 32))
		sb.WriteByte('f')
	case KindDouble:
		sb.WriteString(strconv.FormatFloat(v.Float, 'g', -1, 64))
	case KindBoolean:
		sb.WriteString(strconv.FormatBool(v.Bool()))
	case KindString:
		sb.WriteString(strconv.Quote(v.String))
	case KindClass:
		for i := 0; i < v.Dimensions; i++ {
			sb.WriteString("Array<")
		}
		sb.WriteString(string(v.Class))
		for i := 0; i < v.Dimensions; i++ {
			sb.WriteByte('>')
		}
		sb.WriteString("::class")
	case KindEnum:
		sb.WriteString(string(v.Class))
		sb.WriteByte('.')
		sb.WriteString(v.String)
	case KindAnnotation:
		if v.Annotation != nil {
			v.Annotation.write(sb)
		}
	case KindArray:
		sb.WriteByte('[')
		for i, e := range v.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.write(sb)
		}
		sb.WriteByte(']')
	}
}
