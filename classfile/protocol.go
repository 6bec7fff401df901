package classfile

// MemberVisitor receives the fields and methods declared by one class file.
// Returning nil from either method skips the member's annotations.
type MemberVisitor interface {
	VisitMethod(name, desc string) MethodVisitor
	// VisitField reports a field. constant is the ConstantValue attribute,
	// or nil if the field has none.
	VisitField(name, desc string, constant *Constant) AnnotationVisitor
}

// AnnotationVisitor receives the annotations attached to one member.
type AnnotationVisitor interface {
	// VisitAnnotation reports an annotation by internal class name.
	// Returning nil skips its arguments.
	VisitAnnotation(class string) ArgumentVisitor
	// VisitEnd is called once all annotations of the member were reported.
	VisitEnd()
}

// MethodVisitor additionally receives per-parameter annotations.
type MethodVisitor interface {
	AnnotationVisitor
	VisitParameterAnnotation(index int, class string) ArgumentVisitor
}

// ArgumentVisitor receives the named arguments of one annotation.
type ArgumentVisitor interface {
	VisitConstant(name string, value Constant)
	VisitClassLiteral(name string, value ClassLiteral)
	VisitEnum(name, enumClass, entry string)
	// VisitAnnotation reports a nested annotation argument.
	VisitAnnotation(name, class string) ArgumentVisitor
	VisitArray(name string) ArrayVisitor
	VisitEnd()
}

// ArrayVisitor receives the elements of one array argument.
type ArrayVisitor interface {
	VisitConstant(value Constant)
	VisitClassLiteral(value ClassLiteral)
	VisitEnum(enumClass, entry string)
	VisitAnnotation(class string) ArgumentVisitor
	VisitEnd()
}

// ConstKind identifies the type of a Constant.
type ConstKind uint8

const (
	ConstByte ConstKind = iota
	ConstChar
	ConstShort
	ConstInt
	ConstLong
	ConstFloat
	ConstDouble
	ConstBoolean
	ConstString
)

var constKindNames = [...]string{"byte", "char", "short", "int", "long", "float", "double", "boolean", "string"}

func (k ConstKind) String() string {
	if int(k) < len(constKindNames) {
		return constKindNames[k]
	}
	return "unknown"
}

// Constant is a primitive or string constant read from the constant pool.
type Constant struct {
	Kind ConstKind
	// Int holds byte, char, short, int, long and boolean values.
	Int int64
	// Float holds float and double values.
	Float  float64
	String string
}

// Bool returns the value of a boolean constant.
func (c Constant) Bool() bool {
	return c.Int != 0
}

// ClassLiteral is a class literal argument such as String.class or int[].class.
type ClassLiteral struct {
	// Desc is the JVM type descriptor, e.g. "Ljava/lang/String;" or "[I".
	Desc string
}
