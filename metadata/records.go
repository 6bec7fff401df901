package metadata

// Function is a serialized function declaration.
type Function struct {
	Flags int32
	// Name is an index into the string table.
	Name int32

	ReturnType      *Type
	ReturnTypeID    int32
	HasReturnTypeID bool

	ReceiverType      *Type
	ReceiverTypeID    int32
	HasReceiverTypeID bool

	ValueParameters []*ValueParameter

	// TypeTable is the function-local type table, if the producer emitted one.
	TypeTable *TypeTable

	// Signature is the JVM method signature extension block.
	Signature *JvmMethodSignature
}

// Constructor is a serialized constructor declaration.
type Constructor struct {
	Flags           int32
	ValueParameters []*ValueParameter

	// Signature is the JVM constructor signature extension block.
	Signature *JvmMethodSignature
}

// Property is a serialized property declaration.
type Property struct {
	Flags int32
	Name  int32

	ReturnType      *Type
	ReturnTypeID    int32
	HasReturnTypeID bool

	ReceiverType      *Type
	ReceiverTypeID    int32
	HasReceiverTypeID bool

	SetterValueParameter *ValueParameter
	GetterFlags          int32
	SetterFlags          int32

	// Signature is the JVM property signature extension block.
	Signature *JvmPropertySignature
}

// ValueParameter is a serialized function or constructor parameter.
type ValueParameter struct {
	Flags int32
	Name  int32

	Type      *Type
	TypeID    int32
	HasTypeID bool

	VarargElementType      *Type
	VarargElementTypeID    int32
	HasVarargElementTypeID bool
}

// Projection is the variance of a type argument.
type Projection uint8

const (
	ProjectionIn Projection = iota
	ProjectionOut
	ProjectionInv
	ProjectionStar
)

// TypeArgument is one argument of a generic type use.
type TypeArgument struct {
	Projection Projection
	Type       *Type
	TypeID     int32
	HasTypeID  bool
}

// Type is a serialized type use.
//
// Exactly one of ClassName, TypeParameter, TypeParameterName and
// TypeAliasName is normally set.
type Type struct {
	Flags     int32
	Arguments []*TypeArgument
	Nullable  bool

	ClassName    int32
	HasClassName bool

	TypeParameter    int32
	HasTypeParameter bool

	TypeParameterName    int32
	HasTypeParameterName bool

	TypeAliasName    int32
	HasTypeAliasName bool

	// Annotations holds type-use annotations stored inline by the JVM
	// extension block.
	Annotations []*Annotation
	// Raw reports a raw Java type (JVM extension).
	Raw bool
}

// JvmMethodSignature is an optional name and descriptor override.
// Both fields are string table indices.
type JvmMethodSignature struct {
	Name    int32
	HasName bool
	Desc    int32
	HasDesc bool
}

// JvmFieldSignature is an optional name and descriptor override for a field.
type JvmFieldSignature struct {
	Name    int32
	HasName bool
	Desc    int32
	HasDesc bool
}

// JvmPropertySignature lists the compiled members backing a property.
// A nil entry means the member was not emitted.
type JvmPropertySignature struct {
	Field           *JvmFieldSignature
	SyntheticMethod *JvmMethodSignature
	Getter          *JvmMethodSignature
	Setter          *JvmMethodSignature
	DelegateMethod  *JvmMethodSignature
}

// Annotation is a serialized annotation application.
type Annotation struct {
	// ID is a qualified name table index of the annotation class.
	ID        int32
	Arguments []*AnnotationArgument
}

// AnnotationArgument is a named annotation argument.
type AnnotationArgument struct {
	NameID int32
	Value  *AnnotationValue
}

// ValueType identifies the payload of an AnnotationValue.
type ValueType uint8

const (
	ValueByte ValueType = iota
	ValueChar
	ValueShort
	ValueInt
	ValueLong
	ValueFloat
	ValueDouble
	ValueBoolean
	ValueString
	ValueClass
	ValueEnum
	ValueAnnotation
	ValueArray
)

// FlagUnsigned marks an integer annotation value of an unsigned type.
const FlagUnsigned = 1

// AnnotationValue is the payload of an annotation argument.
type AnnotationValue struct {
	Type        ValueType
	IntValue    int64
	FloatValue  float32
	DoubleValue float64
	// StringValue is a string table index.
	StringValue int32
	// ClassID is a qualified name table index (class literals and enums).
	ClassID int32
	// EnumValueID is a string table index of the enum entry name.
	EnumValueID         int32
	Annotation          *Annotation
	ArrayElements       []*AnnotationValue
	ArrayDimensionCount int32
	Flags               int32
}
