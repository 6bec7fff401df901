package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/classanno/classfile"
	"github.com/hupe1980/classanno/metadata"
)

func TestClassID(t *testing.T) {
	id := ClassIDFromInternal("com/example/Outer$Inner")
	assert.Equal(t, ClassID("com/example/Outer.Inner"), id)
	assert.Equal(t, "com/example", id.PackageName())
	assert.Equal(t, "Inner", id.ShortName())

	assert.Equal(t, "", ClassID("Top").PackageName())
	assert.Equal(t, "Top", ClassID("Top").ShortName())
}

func TestArgumentVisitor(t *testing.T) {
	var got []Call
	v := NewArgumentVisitor("com/example/A", func(c Call) { got = append(got, c) })

	v.VisitConstant("i", classfile.Constant{Kind: classfile.ConstInt, Int: 7})
	v.VisitConstant("s", classfile.Constant{Kind: classfile.ConstString, String: "x"})
	v.VisitConstant("z", classfile.Constant{Kind: classfile.ConstBoolean, Int: 1})
	v.VisitClassLiteral("k", classfile.ClassLiteral{Desc: "Lcom/example/K$N;"})
	v.VisitEnum("e", "com/example/E", "ONE")

	nested := v.VisitAnnotation("n", "com/example/N")
	nested.VisitConstant("d", classfile.Constant{Kind: classfile.ConstDouble, Float: 2.5})
	nested.VisitEnd()

	arr := v.VisitArray("arr")
	arr.VisitConstant(classfile.Constant{Kind: classfile.ConstLong, Int: 1})
	arr.VisitEnum("com/example/E", "TWO")
	inner := arr.VisitAnnotation("com/example/M")
	inner.VisitEnd()
	arr.VisitEnd()

	empty := v.VisitArray("none")
	empty.VisitEnd()

	assert.Empty(t, got, "call must not be published before VisitEnd")
	v.VisitEnd()
	require.Len(t, got, 1)

	call := got[0]
	assert.Equal(t, ClassID("com/example/A"), call.Class)
	assert.Equal(t, []Argument{
		{Name: "i", Value: IntValue(KindInt, 7)},
		{Name: "s", Value: StringValue("x")},
		{Name: "z", Value: BoolValue(true)},
		{Name: "k", Value: ClassValue("com/example/K.N", 0)},
		{Name: "e", Value: EnumValue("com/example/E", "ONE")},
		{Name: "n", Value: AnnotationValue(Call{
			Class:     "com/example/N",
			Arguments: []Argument{{Name: "d", Value: FloatValue(KindDouble, 2.5)}},
		})},
		{Name: "arr", Value: ArrayValue([]Value{
			IntValue(KindLong, 1),
			EnumValue("com/example/E", "TWO"),
			AnnotationValue(Call{Class: "com/example/M"}),
		})},
		{Name: "none", Value: ArrayValue([]Value{})},
	}, call.Arguments)

	val, ok := call.Argument("s")
	require.True(t, ok)
	assert.Equal(t, "x", val.String)
	_, ok = call.Argument("missing")
	assert.False(t, ok)
}

func TestFromClassLiteral(t *testing.T) {
	tests := []struct {
		desc  string
		class ClassID
		dims  int
	}{
		{"I", "kotlin/Int", 0},
		{"[I", "kotlin/IntArray", 0},
		{"[[Z", "kotlin/BooleanArray", 1},
		{"Ljava/lang/String;", "kotlin/String", 0},
		{"[Ljava/lang/Object;", "kotlin/Any", 1},
		{"Lcom/example/Outer$Inner;", "com/example/Outer.Inner", 0},
		{"[[Lcom/example/Foo;", "com/example/Foo", 2},
		{"V", "java/lang/Void", 0},
	}
	for _, tt := range tests {
		v := FromClassLiteral(classfile.ClassLiteral{Desc: tt.desc})
		assert.Equal(t, KindClass, v.Kind, tt.desc)
		assert.Equal(t, tt.class, v.Class, tt.desc)
		assert.Equal(t, tt.dims, v.Dimensions, tt.desc)
	}
}

func TestSpecialFilter(t *testing.T) {
	f := NewSpecialFilter("com/example/Special")

	var target Calls
	assert.Nil(t, f.LoadIfNotSpecial("com/example/Special", &target))

	v := f.LoadIfNotSpecial("com/example/Kept", &target)
	require.NotNil(t, v)
	v.VisitConstant("x", classfile.Constant{Kind: classfile.ConstInt, Int: 1})
	v.VisitEnd()

	require.Len(t, target, 1)
	assert.Equal(t, ClassID("com/example/Kept"), target[0].Class)
	assert.True(t, f.IsSpecial("com/example/Special"))
	assert.ElementsMatch(t, []ClassID{"com/example/Special"}, f.Classes())
}

func TestSpecialFilter_Observer(t *testing.T) {
	var observed []Call
	f := NewSpecialFilter("com/example/Special").WithObserver(func(c Call) {
		observed = append(observed, c)
	})

	var target Calls
	v := f.LoadIfNotSpecial("com/example/Special", &target)
	require.NotNil(t, v, "observed special annotations are still traversed")
	v.VisitConstant("x", classfile.Constant{Kind: classfile.ConstInt, Int: 1})
	v.VisitEnd()

	assert.Empty(t, target)
	require.Len(t, observed, 1)
	assert.Equal(t, ClassID("com/example/Special"), observed[0].Class)
}

func TestDefaultFilter(t *testing.T) {
	f := DefaultFilter()
	assert.True(t, f.IsSpecial("kotlin/Metadata"))
	assert.True(t, f.IsSpecial("org/jetbrains/annotations/NotNull"))
	assert.False(t, f.IsSpecial("kotlin/Deprecated"))

	var target Calls
	v := KeepAll.LoadIfNotSpecial("kotlin/Metadata", &target)
	require.NotNil(t, v)
	v.VisitEnd()
	assert.Len(t, target, 1)
}

// Strings: 0 value, 1 com, 2 A, 3 E, 4 ONE, 5 hello, 6 kotlin, 7 Int
func protoNames() *metadata.Names {
	return metadata.NewNames(
		[]string{"value", "com", "A", "E", "ONE", "hello", "kotlin", "Int"},
		[]metadata.QualifiedName{
			{Parent: -1, ShortName: 1, Kind: metadata.QualifiedPackage}, // 0 com
			{Parent: 0, ShortName: 2, Kind: metadata.QualifiedClass},    // 1 com/A
			{Parent: 1, ShortName: 3, Kind: metadata.QualifiedClass},    // 2 com/A.E
			{Parent: -1, ShortName: 6, Kind: metadata.QualifiedPackage}, // 3 kotlin
			{Parent: 3, ShortName: 7, Kind: metadata.QualifiedClass},    // 4 kotlin/Int
		},
	)
}

func TestFromProto(t *testing.T) {
	names := protoNames()
	rec := &metadata.Annotation{
		ID: 1,
		Arguments: []*metadata.AnnotationArgument{
			{NameID: 0, Value: &metadata.AnnotationValue{
				Type: metadata.ValueArray,
				ArrayElements: []*metadata.AnnotationValue{
					{Type: metadata.ValueInt, IntValue: 3, Flags: metadata.FlagUnsigned},
					{Type: metadata.ValueString, StringValue: 5},
					{Type: metadata.ValueEnum, ClassID: 2, EnumValueID: 4},
					{Type: metadata.ValueClass, ClassID: 4, ArrayDimensionCount: 1},
					{Type: metadata.ValueBoolean, IntValue: 1},
					{Type: metadata.ValueFloat, FloatValue: 0.5},
					{Type: metadata.ValueAnnotation, Annotation: &metadata.Annotation{ID: 1}},
				},
			}},
		},
	}

	call, ok := FromProto(rec, names)
	require.True(t, ok)
	assert.Equal(t, ClassID("com/A"), call.Class)
	require.Len(t, call.Arguments, 1)
	assert.Equal(t, "value", call.Arguments[0].Name)
	assert.Equal(t, []Value{
		{Kind: KindInt, Int: 3, Unsigned: true},
		StringValue("hello"),
		EnumValue("com/A.E", "ONE"),
		ClassValue("kotlin/Int", 1),
		BoolValue(true),
		FloatValue(KindFloat, 0.5),
		AnnotationValue(Call{Class: "com/A"}),
	}, call.Arguments[0].Value.Elements)

	_, ok = FromProto(&metadata.Annotation{ID: 99}, names)
	assert.False(t, ok)

	calls := FromProtoList([]*metadata.Annotation{rec, {ID: 99}, nil}, names)
	assert.Len(t, calls, 1)
}

func TestCallString(t *testing.T) {
	call := Call{
		Class: "com/A",
		Arguments: []Argument{
			{Name: "x", Value: IntValue(KindInt, 1)},
			{Name: "u", Value: Value{Kind: KindLong, Int: -1, Unsigned: true}},
			{Name: "s", Value: StringValue("q")},
			{Name: "k", Value: ClassValue("com/B", 1)},
			{Name: "a", Value: ArrayValue([]Value{BoolValue(false), EnumValue("com/E", "X")})},
			{Name: "c", Value: IntValue(KindChar, 'z')},
		},
	}
	assert.Equal(t, `@com/A(x=1, u=18446744073709551615u, s="q", k=Array<com/B>::class, a=[false, com/E.X], c='z')`, call.String())
	assert.Equal(t, "@com/B", Call{Class: "com/B"}.String())
}

func TestKindText(t *testing.T) {
	for k := KindByte; k <= KindArray; k++ {
		text, err := k.MarshalText()
		require.NoError(t, err)
		var got Kind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, k, got)
	}
	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("pointer")))
	assert.Equal(t, "kind(42)", Kind(42).String())
}
