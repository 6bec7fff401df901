package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/classanno/annotation"
	"github.com/hupe1980/classanno/classfile"
	"github.com/hupe1980/classanno/signature"
	"github.com/hupe1980/classanno/testutil"
)

func ann(desc string, args ...testutil.Arg) testutil.Annotation {
	return testutil.Annotation{Desc: desc, Args: args}
}

func classes(calls []annotation.Call) []annotation.ClassID {
	var out []annotation.ClassID
	for _, c := range calls {
		out = append(out, c.Class)
	}
	return out
}

func TestScan_MethodAndParameterAreSeparate(t *testing.T) {
	data := testutil.Class{
		Name: "com/example/Foo",
		Methods: []testutil.Method{{
			Name:         "bar",
			Desc:         "(I)V",
			Visible:      []testutil.Annotation{ann("Lcom/example/A;")},
			ParamVisible: [][]testutil.Annotation{{ann("Lcom/example/B;")}},
		}},
	}.Bytes()

	ix, err := Scan(data, annotation.DefaultFilter())
	require.NoError(t, err)

	bar := signature.Method("bar", "(I)V")
	assert.Equal(t, []annotation.ClassID{"com/example/A"}, classes(ix.Lookup(bar)))
	assert.Equal(t, []annotation.ClassID{"com/example/B"}, classes(ix.Lookup(signature.Parameter(bar, 0))))
	assert.Equal(t, []int{0}, ix.AnnotatedParameters(bar))
	assert.Equal(t, 1, ix.Members())
}

func TestScan_FieldConstantIsDropped(t *testing.T) {
	data := testutil.Class{
		Name: "com/example/Foo",
		Fields: []testutil.Field{
			{Name: "y", Desc: "I", Constant: int32(7), Visible: []testutil.Annotation{ann("Lcom/example/D;")}},
			{Name: "z", Desc: "J", Constant: int64(9)},
		},
	}.Bytes()

	ix, err := Scan(data, annotation.DefaultFilter())
	require.NoError(t, err)

	got := ix.Lookup(signature.Field("y", "I"))
	require.Len(t, got, 1)
	assert.Equal(t, annotation.Call{Class: "com/example/D"}, got[0])
	assert.Nil(t, ix.Lookup(signature.Field("z", "J")))
	assert.Equal(t, 1, ix.Len())
	assert.Equal(t, 2, ix.Members())
}

func TestScan_SpecialAnnotationsAreExcluded(t *testing.T) {
	data := testutil.Class{
		Name: "com/example/Foo",
		Fields: []testutil.Field{
			{Name: "f", Desc: "Ljava/lang/String;", Invisible: []testutil.Annotation{ann("Lorg/jetbrains/annotations/NotNull;")}},
		},
		Methods: []testutil.Method{{
			Name:    "m",
			Desc:    "(Ljava/lang/String;)V",
			Visible: []testutil.Annotation{ann("Lcom/example/Special;", testutil.Arg{Name: "v", Value: testutil.Int(1)}), ann("Lcom/example/Kept;")},
			ParamInvisible: [][]testutil.Annotation{
				{ann("Lorg/jetbrains/annotations/Nullable;")},
			},
		}},
	}.Bytes()

	var observed []annotation.Call
	filter := annotation.NewSpecialFilter(
		"com/example/Special",
		"org/jetbrains/annotations/NotNull",
		"org/jetbrains/annotations/Nullable",
	).WithObserver(func(c annotation.Call) { observed = append(observed, c) })

	ix, err := Scan(data, filter)
	require.NoError(t, err)

	m := signature.Method("m", "(Ljava/lang/String;)V")
	assert.Equal(t, []annotation.ClassID{"com/example/Kept"}, classes(ix.Lookup(m)))
	assert.Nil(t, ix.Lookup(signature.Field("f", "Ljava/lang/String;")))
	assert.Nil(t, ix.Lookup(signature.Parameter(m, 0)))
	assert.Equal(t, 1, ix.Len())

	// Special annotations were still traversed.
	assert.Equal(t, []annotation.ClassID{
		"org/jetbrains/annotations/NotNull",
		"com/example/Special",
		"org/jetbrains/annotations/Nullable",
	}, classes(observed))
}

func TestScan_OrderAndArguments(t *testing.T) {
	data := testutil.Class{
		Name: "com/example/Foo",
		Methods: []testutil.Method{{
			Name: "m",
			Desc: "()V",
			Visible: []testutil.Annotation{
				ann("Lcom/example/Outer$Nested;", testutil.Arg{Name: "value", Value: testutil.String("v")}),
			},
			Invisible: []testutil.Annotation{
				ann("Lcom/example/Second;", testutil.Arg{Name: "k", Value: testutil.ClassOf("[Ljava/lang/String;")}),
			},
		}},
	}.Bytes()

	ix, err := Scan(data, annotation.KeepAll)
	require.NoError(t, err)

	got := ix.Lookup(signature.Method("m", "()V"))
	assert.Equal(t, []annotation.Call{
		{Class: "com/example/Outer.Nested", Arguments: []annotation.Argument{{Name: "value", Value: annotation.StringValue("v")}}},
		{Class: "com/example/Second", Arguments: []annotation.Argument{{Name: "k", Value: annotation.ClassValue("kotlin/String", 1)}}},
	}, got)
}

func TestScan_Deterministic(t *testing.T) {
	data := testutil.Class{
		Name: "com/example/Foo",
		Methods: []testutil.Method{
			{Name: "a", Desc: "()V", Visible: []testutil.Annotation{ann("Lcom/example/A;")}},
			{Name: "b", Desc: "(II)V", ParamVisible: [][]testutil.Annotation{nil, {ann("Lcom/example/B;")}}},
		},
	}.Bytes()

	first, err := Scan(data, annotation.DefaultFilter())
	require.NoError(t, err)
	second, err := Scan(data, annotation.DefaultFilter())
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first.Digest(), second.Digest())
	assert.Equal(t, first.Signatures(), second.Signatures())
}

func TestScan_MalformedIsReturnedUnmodified(t *testing.T) {
	data := testutil.Class{
		Name:    "com/example/Foo",
		Methods: []testutil.Method{{Name: "m", Desc: "()V", Visible: []testutil.Annotation{ann("Lcom/example/A;")}}},
	}.Bytes()

	_, err := Scan(data[:len(data)-4], annotation.DefaultFilter())
	require.Error(t, err)

	fe, ok := err.(*classfile.FormatError)
	require.True(t, ok, "got %T", err)
	assert.NotEmpty(t, fe.Msg)
}
