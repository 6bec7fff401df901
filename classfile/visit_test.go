package classfile

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/classanno/testutil"
)

type recorder struct {
	events      []string
	skipMethods bool
	skipArgs    bool
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) VisitMethod(name, desc string) MethodVisitor {
	r.add("method %s%s", name, desc)
	if r.skipMethods {
		return nil
	}
	return memberRecorder{r}
}

func (r *recorder) VisitField(name, desc string, constant *Constant) AnnotationVisitor {
	if constant != nil {
		r.add("field %s %s = %s", name, desc, formatConstant(*constant))
	} else {
		r.add("field %s %s", name, desc)
	}
	return memberRecorder{r}
}

type memberRecorder struct{ r *recorder }

func (m memberRecorder) VisitAnnotation(class string) ArgumentVisitor {
	m.r.add("@%s", class)
	if m.r.skipArgs {
		return nil
	}
	return argRecorder(m)
}

func (m memberRecorder) VisitParameterAnnotation(index int, class string) ArgumentVisitor {
	m.r.add("param %d @%s", index, class)
	return argRecorder(m)
}

func (m memberRecorder) VisitEnd() { m.r.add("end") }

type argRecorder struct{ r *recorder }

func (a argRecorder) VisitConstant(name string, value Constant) {
	a.r.add("%s=%s", name, formatConstant(value))
}

func (a argRecorder) VisitClassLiteral(name string, value ClassLiteral) {
	a.r.add("%s=class %s", name, value.Desc)
}

func (a argRecorder) VisitEnum(name, enumClass, entry string) {
	a.r.add("%s=enum %s.%s", name, enumClass, entry)
}

func (a argRecorder) VisitAnnotation(name, class string) ArgumentVisitor {
	a.r.add("%s=@%s", name, class)
	return a
}

func (a argRecorder) VisitArray(name string) ArrayVisitor {
	a.r.add("%s=[", name)
	return arrayRecorder(a)
}

func (a argRecorder) VisitEnd() { a.r.add(")") }

type arrayRecorder struct{ r *recorder }

func (a arrayRecorder) VisitConstant(value Constant) {
	a.r.add("elem %s", formatConstant(value))
}

func (a arrayRecorder) VisitClassLiteral(value ClassLiteral) {
	a.r.add("elem class %s", value.Desc)
}

func (a arrayRecorder) VisitEnum(enumClass, entry string) {
	a.r.add("elem enum %s.%s", enumClass, entry)
}

func (a arrayRecorder) VisitAnnotation(class string) ArgumentVisitor {
	a.r.add("elem @%s", class)
	return argRecorder(a)
}

func (a arrayRecorder) VisitEnd() { a.r.add("]") }

func formatConstant(c Constant) string {
	switch c.Kind {
	case ConstFloat, ConstDouble:
		return fmt.Sprintf("%s %g", c.Kind, c.Float)
	case ConstString:
		return fmt.Sprintf("%s %q", c.Kind, c.String)
	default:
		return fmt.Sprintf("%s %d", c.Kind, c.Int)
	}
}

func fixture() testutil.Class {
	return testutil.Class{
		Name: "com/example/Foo",
		Fields: []testutil.Field{
			{Name: "x", Desc: "I", Constant: int32(42), Visible: []testutil.Annotation{{Desc: "Lcom/example/A;"}}},
			{Name: "plain", Desc: "Ljava/lang/String;", Constant: "hi"},
		},
		Methods: []testutil.Method{
			{
				Name:      "bar",
				Desc:      "(ILjava/lang/String;)V",
				Visible:   []testutil.Annotation{{Desc: "Lcom/example/A;", Args: []testutil.Arg{{Name: "value", Value: testutil.Int(1)}}}},
				Invisible: []testutil.Annotation{{Desc: "Lcom/example/B;", Args: []testutil.Arg{{Name: "name", Value: testutil.String("n")}}}},
				ParamVisible: [][]testutil.Annotation{
					{{Desc: "Lcom/example/P;"}},
					nil,
				},
			},
			{
				Name: "baz",
				Desc: "()V",
				Visible: []testutil.Annotation{{
					Desc: "Lcom/example/C;",
					Args: []testutil.Arg{
						{Name: "e", Value: testutil.Enum("Lcom/example/E;", "ONE")},
						{Name: "k", Value: testutil.ClassOf("[I")},
						{Name: "n", Value: testutil.Nested(testutil.Annotation{
							Desc: "Lcom/example/N;",
							Args: []testutil.Arg{{Name: "b", Value: testutil.Bool(true)}},
						})},
						{Name: "arr", Value: testutil.Array(testutil.Int(1), testutil.Int(2))},
						{Name: "nested", Value: testutil.Array(testutil.Array(testutil.Int(3)))},
						{Name: "d", Value: testutil.Double(1.5)},
						{Name: "j", Value: testutil.Long(1 << 40)},
						{Name: "c", Value: testutil.Char('x')},
					},
				}},
			},
		},
	}
}

func TestReadClassName(t *testing.T) {
	name, err := ReadClassName(fixture().Bytes())
	require.NoError(t, err)
	assert.Equal(t, "com/example/Foo", name)
}

func TestVisit(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, Visit(fixture().Bytes(), rec))

	assert.Equal(t, []string{
		"field x I = int 42",
		"@com/example/A",
		")",
		"end",
		`field plain Ljava/lang/String; = string "hi"`,
		"end",
		"method bar(ILjava/lang/String;)V",
		"@com/example/A",
		"value=int 1",
		")",
		"@com/example/B",
		`name=string "n"`,
		")",
		"param 0 @com/example/P",
		")",
		"end",
		"method baz()V",
		"@com/example/C",
		"e=enum com/example/E.ONE",
		"k=class [I",
		"n=@com/example/N",
		"b=boolean 1",
		")",
		"arr=[",
		"elem int 1",
		"elem int 2",
		"]",
		"nested=[",
		"]",
		"d=double 1.5",
		"j=long 1099511627776",
		"c=char 120",
		")",
		"end",
	}, rec.events)
}

func TestVisit_SkippedMembers(t *testing.T) {
	rec := &recorder{skipMethods: true, skipArgs: true}
	require.NoError(t, Visit(fixture().Bytes(), rec))

	assert.Equal(t, []string{
		"field x I = int 42",
		"@com/example/A",
		"end",
		`field plain Ljava/lang/String; = string "hi"`,
		"end",
		"method bar(ILjava/lang/String;)V",
		"method baz()V",
	}, rec.events)
}

func TestVisit_SyntheticParametersShiftIndex(t *testing.T) {
	class := testutil.Class{
		Name: "com/example/Outer$Inner",
		Methods: []testutil.Method{{
			Name: "<init>",
			Desc: "(Lcom/example/Outer;[IJ)V",
			ParamVisible: [][]testutil.Annotation{
				nil,
				{{Desc: "Lcom/example/B;"}},
			},
		}},
	}
	rec := &recorder{}
	require.NoError(t, Visit(class.Bytes(), rec))

	assert.Equal(t, []string{
		"method <init>(Lcom/example/Outer;[IJ)V",
		"param 2 @com/example/B",
		")",
		"end",
	}, rec.events)
}

func TestParameterCount(t *testing.T) {
	tests := []struct {
		desc string
		want int
	}{
		{"()V", 0},
		{"(I)V", 1},
		{"(ILjava/lang/String;J)V", 3},
		{"([[I[Ljava/lang/Object;)V", 2},
		{"(Ljava/lang/String", -1},
		{"I", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parameterCount(tt.desc), tt.desc)
	}
}

func TestVisit_Malformed(t *testing.T) {
	data := fixture().Bytes()

	t.Run("truncated", func(t *testing.T) {
		err := Visit(data[:len(data)-3], &recorder{})
		require.Error(t, err)

		var fe *FormatError
		require.True(t, errors.As(err, &fe))
		assert.True(t, errors.Is(err, ErrMalformed))
	})

	t.Run("bad magic", func(t *testing.T) {
		err := Visit([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0}, &recorder{})

		var fe *FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, 0, fe.Offset)
		assert.Contains(t, fe.Error(), "bad magic number")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ReadClassName(nil)
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestDecodeModifiedUTF8(t *testing.T) {
	assert.Equal(t, "plain", decodeModifiedUTF8([]byte("plain")))
	assert.Equal(t, "a\x00b", decodeModifiedUTF8([]byte{'a', 0xC0, 0x80, 'b'}))
	assert.Equal(t, "é", decodeModifiedUTF8([]byte{0xC3, 0xA9}))
	assert.Equal(t, "\U0001F600", decodeModifiedUTF8([]byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}))
}
