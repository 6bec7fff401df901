package classanno

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/classanno/annotation"
	"github.com/hupe1980/classanno/artifact"
	"github.com/hupe1980/classanno/blobstore"
	"github.com/hupe1980/classanno/cache"
	"github.com/hupe1980/classanno/classfile"
	"github.com/hupe1980/classanno/metadata"
	"github.com/hupe1980/classanno/resource"
	"github.com/hupe1980/classanno/testutil"
)

const container = "com/example/Foo"

// String table indices.
const (
	sKotlin int32 = iota
	sInt
	sUnit
	sBar
	sCom
	sExample
	sC
	sString
	sExt
	sX
	sSetX
	sSetXDesc
	sY
	sGetZ
	sGetZDesc
	sZ
)

// Qualified name table indices.
const (
	qKotlin int32 = iota
	qInt
	qUnit
	qCom
	qExample
	qC
	qString
)

var names = metadata.NewNames(
	[]string{"kotlin", "Int", "Unit", "bar", "com", "example", "C", "String", "ext", "x", "setX", "(I)V", "y", "getZ", "()I", "z"},
	[]metadata.QualifiedName{
		{Parent: -1, ShortName: sKotlin, Kind: metadata.QualifiedPackage},
		{Parent: qKotlin, ShortName: sInt, Kind: metadata.QualifiedClass},
		{Parent: qKotlin, ShortName: sUnit, Kind: metadata.QualifiedClass},
		{Parent: -1, ShortName: sCom, Kind: metadata.QualifiedPackage},
		{Parent: qCom, ShortName: sExample, Kind: metadata.QualifiedPackage},
		{Parent: qExample, ShortName: sC, Kind: metadata.QualifiedClass},
		{Parent: qKotlin, ShortName: sString, Kind: metadata.QualifiedClass},
	},
)

func classType(id int32) *metadata.Type {
	return &metadata.Type{ClassName: id, HasClassName: true}
}

func param(id int32) *metadata.ValueParameter {
	return &metadata.ValueParameter{Type: classType(id)}
}

// bar(Int): Unit compiles to bar(I)V.
var barFn = &metadata.Function{
	Name:            sBar,
	ValueParameters: []*metadata.ValueParameter{param(qInt)},
	ReturnType:      classType(qUnit),
}

// String.ext(Int): Unit compiles to ext(Ljava/lang/String;I)V.
var extFn = &metadata.Function{
	Name:            sExt,
	ReceiverType:    classType(qString),
	ValueParameters: []*metadata.ValueParameter{param(qInt)},
	ReturnType:      classType(qUnit),
}

// x has a setter block but no getter block.
var xProp = &metadata.Property{
	Name:       sX,
	ReturnType: classType(qInt),
	Signature: &metadata.JvmPropertySignature{
		Setter: &metadata.JvmMethodSignature{Name: sSetX, HasName: true, Desc: sSetXDesc, HasDesc: true},
	},
}

// y is stored in a field with a constant initializer.
var yProp = &metadata.Property{
	Name:       sY,
	ReturnType: classType(qInt),
	Signature: &metadata.JvmPropertySignature{
		Field: &metadata.JvmFieldSignature{},
	},
}

var zProp = &metadata.Property{
	Name:       sZ,
	ReturnType: classType(qInt),
	Signature: &metadata.JvmPropertySignature{
		Getter: &metadata.JvmMethodSignature{Name: sGetZ, HasName: true, Desc: sGetZDesc, HasDesc: true},
	},
}

var ctor = &metadata.Constructor{}

func ann(name string) testutil.Annotation {
	return testutil.Annotation{Desc: "Lcom/example/" + name + ";"}
}

func fooClass() []byte {
	return testutil.Class{
		Name: container,
		Fields: []testutil.Field{
			{Name: "y", Desc: "I", Constant: int32(7), Visible: []testutil.Annotation{ann("D")}},
		},
		Methods: []testutil.Method{
			{Name: "<init>", Desc: "()V", Visible: []testutil.Annotation{ann("Ctor")}},
			{
				Name:         "bar",
				Desc:         "(I)V",
				Visible:      []testutil.Annotation{ann("A")},
				Invisible:    []testutil.Annotation{{Desc: "Lorg/jetbrains/annotations/NotNull;"}},
				ParamVisible: [][]testutil.Annotation{{ann("B")}},
			},
			{Name: "getX", Desc: "()I", Visible: []testutil.Annotation{ann("G")}},
			{Name: "setX", Desc: "(I)V", Visible: []testutil.Annotation{ann("S")}},
			{Name: "getZ", Desc: "()I"},
			{
				Name:         "ext",
				Desc:         "(Ljava/lang/String;I)V",
				ParamVisible: [][]testutil.Annotation{{ann("R")}, {ann("P")}},
			},
		},
	}.Bytes()
}

func classIDs(calls []annotation.Call) []annotation.ClassID {
	var out []annotation.ClassID
	for _, c := range calls {
		out = append(out, c.Class)
	}
	return out
}

// countingResolver serves fooClass and counts resolutions.
type countingResolver struct {
	n atomic.Int32
}

func (r *countingResolver) Resolve(_ context.Context, name string) (*artifact.Artifact, error) {
	r.n.Add(1)
	if name != container {
		return nil, artifact.ErrNotFound
	}
	return artifact.New(artifact.Handle{Location: "test", ClassName: name}, fooClass()), nil
}

func newTestDeserializer(opts ...Option) (*Deserializer, *countingResolver, *BasicMetricsCollector) {
	r := &countingResolver{}
	m := &BasicMetricsCollector{}
	opts = append([]Option{WithResolver(r), WithMetricsCollector(m)}, opts...)
	return New(opts...), r, m
}

func TestLoadFunctionAnnotations(t *testing.T) {
	ctx := context.Background()
	d, _, m := newTestDeserializer()

	calls, err := d.LoadFunctionAnnotations(ctx, barFn, names, nil, container)
	require.NoError(t, err)
	assert.Equal(t, []annotation.ClassID{"com/example/A"}, classIDs(calls))

	params, err := d.LoadValueParameterAnnotations(ctx, barFn, names, nil, 0, container)
	require.NoError(t, err)
	assert.Equal(t, []annotation.ClassID{"com/example/B"}, classIDs(params))

	again, err := d.LoadFunctionAnnotations(ctx, barFn, names, nil, container)
	require.NoError(t, err)
	assert.Equal(t, calls, again)

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats.ScanCount)
	assert.Equal(t, int64(2), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
}

func TestLoadConstructorAnnotations(t *testing.T) {
	d, _, _ := newTestDeserializer()
	calls, err := d.LoadConstructorAnnotations(context.Background(), ctor, names, nil, container)
	require.NoError(t, err)
	assert.Equal(t, []annotation.ClassID{"com/example/Ctor"}, classIDs(calls))
}

func TestLoadPropertyAccessors_MissingGetterBlock(t *testing.T) {
	ctx := context.Background()
	d, r, m := newTestDeserializer()

	getter, err := d.LoadPropertyGetterAnnotations(ctx, xProp, names, container)
	require.NoError(t, err)
	assert.Empty(t, getter)
	assert.Equal(t, int32(0), r.n.Load(), "no resolution without a signature")
	assert.Equal(t, int64(0), m.GetStats().ScanCount)

	setter, err := d.LoadPropertySetterAnnotations(ctx, xProp, names, container)
	require.NoError(t, err)
	assert.Equal(t, []annotation.ClassID{"com/example/S"}, classIDs(setter))
	assert.Equal(t, int64(1), m.GetStats().ScanCount)

	getter, err = d.LoadPropertyGetterAnnotations(ctx, zProp, names, container)
	require.NoError(t, err)
	assert.Empty(t, getter)
}

func TestLoadPropertyBackingFieldAnnotations_ConstantDropped(t *testing.T) {
	d, _, _ := newTestDeserializer()
	calls, err := d.LoadPropertyBackingFieldAnnotations(context.Background(), yProp, names, nil, container)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, annotation.Call{Class: "com/example/D"}, calls[0])
}

func TestLoadTypeAnnotations(t *testing.T) {
	d, r, m := newTestDeserializer()
	typ := &metadata.Type{
		ClassName:    qString,
		HasClassName: true,
		Annotations:  []*metadata.Annotation{{ID: qC}},
	}

	calls := d.LoadTypeAnnotations(typ, names)
	assert.Equal(t, []annotation.Call{{Class: "com/example/C"}}, calls)
	assert.Nil(t, d.LoadTypeAnnotations(nil, names))
	assert.Equal(t, int32(0), r.n.Load())
	assert.Equal(t, int64(0), m.GetStats().ScanCount)
}

func TestExtensionFunction(t *testing.T) {
	ctx := context.Background()
	d, _, _ := newTestDeserializer()

	recv, err := d.LoadExtensionReceiverAnnotations(ctx, extFn, names, nil, container)
	require.NoError(t, err)
	assert.Equal(t, []annotation.ClassID{"com/example/R"}, classIDs(recv))

	p0, err := d.LoadValueParameterAnnotations(ctx, extFn, names, nil, 0, container)
	require.NoError(t, err)
	assert.Equal(t, []annotation.ClassID{"com/example/P"}, classIDs(p0))

	none, err := d.LoadExtensionReceiverAnnotations(ctx, barFn, names, nil, container)
	require.NoError(t, err)
	assert.Nil(t, none)

	outOfRange, err := d.LoadValueParameterAnnotations(ctx, extFn, names, nil, 1, container)
	require.NoError(t, err)
	assert.Nil(t, outOfRange)
}

func TestEmptyResults(t *testing.T) {
	ctx := context.Background()

	t.Run("UnresolvableContainer", func(t *testing.T) {
		d, _, m := newTestDeserializer()
		calls, err := d.LoadFunctionAnnotations(ctx, barFn, names, nil, "com/example/Missing")
		require.NoError(t, err)
		assert.Nil(t, calls)
		assert.Equal(t, int64(0), m.GetStats().ScanCount)
		assert.Equal(t, 0, d.Stats().CachedIndexes)
	})

	t.Run("NoResolver", func(t *testing.T) {
		d := New()
		calls, err := d.LoadFunctionAnnotations(ctx, barFn, names, nil, container)
		require.NoError(t, err)
		assert.Nil(t, calls)

		ix, err := d.Index(ctx, container)
		require.NoError(t, err)
		assert.Equal(t, 0, ix.Len())
	})

	t.Run("UnmappableSignature", func(t *testing.T) {
		d, r, _ := newTestDeserializer()
		generic := &metadata.Function{
			Name:            sBar,
			ValueParameters: []*metadata.ValueParameter{{Type: &metadata.Type{TypeParameter: 0, HasTypeParameter: true}}},
			ReturnType:      classType(qUnit),
		}
		calls, err := d.LoadFunctionAnnotations(ctx, generic, names, nil, container)
		require.NoError(t, err)
		assert.Nil(t, calls)
		assert.Equal(t, int32(0), r.n.Load())
	})

	t.Run("MemberWithoutAnnotations", func(t *testing.T) {
		d, _, _ := newTestDeserializer()
		noAnn := &metadata.Function{
			Name:       sGetZ,
			ReturnType: classType(qInt),
		}
		calls, err := d.LoadFunctionAnnotations(ctx, noAnn, names, nil, container)
		require.NoError(t, err)
		assert.Nil(t, calls)
	})
}

func TestSpecialAnnotationsExcluded(t *testing.T) {
	ctx := context.Background()

	d, _, _ := newTestDeserializer()
	calls, err := d.LoadFunctionAnnotations(ctx, barFn, names, nil, container)
	require.NoError(t, err)
	assert.NotContains(t, classIDs(calls), annotation.ClassID("org/jetbrains/annotations/NotNull"))

	d, _, _ = newTestDeserializer(WithFilter(annotation.KeepAll))
	calls, err = d.LoadFunctionAnnotations(ctx, barFn, names, nil, container)
	require.NoError(t, err)
	assert.Equal(t, []annotation.ClassID{"com/example/A", "org/jetbrains/annotations/NotNull"}, classIDs(calls))

	d, _, _ = newTestDeserializer(WithFilter(annotation.NewSpecialFilter("com/example/A")))
	calls, err = d.LoadFunctionAnnotations(ctx, barFn, names, nil, container)
	require.NoError(t, err)
	assert.Equal(t, []annotation.ClassID{"org/jetbrains/annotations/NotNull"}, classIDs(calls))
}

func TestCorruptArtifact(t *testing.T) {
	ctx := context.Background()
	h := artifact.Handle{ClassName: "com/example/Broken"}
	art := artifact.New(h, []byte{0xCA, 0xFE})
	m := &BasicMetricsCollector{}
	d := New(WithArtifacts(art), WithMetricsCollector(m))

	// Nothing is published and the bytes are kept, so every query reports
	// the format error.
	for i := range 2 {
		_, err := d.LoadFunctionAnnotations(ctx, barFn, names, nil, h.ClassName)
		var fe *classfile.FormatError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, int64(i+1), m.GetStats().ScanErrors)
	}
	assert.False(t, art.Consumed())
}

func TestTransientLoadErrorIsRetried(t *testing.T) {
	ctx := context.Background()
	loads := 0
	art := artifact.NewLazy(artifact.Handle{ClassName: container}, func(context.Context) ([]byte, error) {
		loads++
		if loads == 1 {
			return nil, errors.New("transient io")
		}
		return fooClass(), nil
	})
	m := &BasicMetricsCollector{}
	d := New(WithArtifacts(art), WithMetricsCollector(m))

	_, err := d.LoadFunctionAnnotations(ctx, barFn, names, nil, container)
	require.Error(t, err)
	var np *ErrIndexNotPublished
	assert.False(t, errors.As(err, &np))

	calls, err := d.LoadFunctionAnnotations(ctx, barFn, names, nil, container)
	require.NoError(t, err)
	assert.Equal(t, []annotation.ClassID{"com/example/A"}, classIDs(calls))
	assert.Equal(t, 2, loads)
	assert.True(t, art.Consumed())
	assert.Equal(t, int64(1), m.GetStats().ScanCount)
}

func TestMemoryLimitIsRetried(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 16})
	art := artifact.New(artifact.Handle{ClassName: container}, fooClass())
	d := New(WithArtifacts(art), WithResourceController(rc))

	_, err := d.LoadFunctionAnnotations(ctx, barFn, names, nil, container)
	require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)

	d = New(WithArtifacts(art))
	calls, err := d.LoadFunctionAnnotations(ctx, barFn, names, nil, container)
	require.NoError(t, err)
	assert.Len(t, calls, 1)
}

func TestPassThroughCache_ConsumedBytes(t *testing.T) {
	ctx := context.Background()
	art := artifact.New(artifact.Handle{ClassName: container}, fooClass())
	d := New(WithArtifacts(art), WithCache(cache.PassThrough{}))

	calls, err := d.LoadFunctionAnnotations(ctx, barFn, names, nil, container)
	require.NoError(t, err)
	assert.Len(t, calls, 1)

	_, err = d.LoadFunctionAnnotations(ctx, barFn, names, nil, container)
	assert.ErrorIs(t, err, artifact.ErrConsumed)
}

func TestMapCache(t *testing.T) {
	ctx := context.Background()
	art := artifact.New(artifact.Handle{ClassName: container}, fooClass())
	m := &BasicMetricsCollector{}
	d := New(WithArtifacts(art), WithCache(cache.NewMap()), WithMetricsCollector(m))

	for range 3 {
		calls, err := d.LoadFunctionAnnotations(ctx, barFn, names, nil, container)
		require.NoError(t, err)
		assert.Len(t, calls, 1)
	}
	assert.Equal(t, int64(1), m.GetStats().ScanCount)
	assert.True(t, art.Consumed())
}

func TestMemoryLimit(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 16})
	d, _, _ := newTestDeserializer(WithResourceController(rc))

	_, err := d.LoadFunctionAnnotations(context.Background(), barFn, names, nil, container)
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestIndex(t *testing.T) {
	d, _, _ := newTestDeserializer()
	ix, err := d.Index(context.Background(), container)
	require.NoError(t, err)
	// bar, bar@0, <init>, getX, setX, ext@0, ext@1, y
	assert.Equal(t, 8, ix.Len())
	assert.Equal(t, 7, ix.Members())
}

func TestConcurrentLookups_ScanOnce(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, container+".class", fooClass()))
	cp, err := artifact.NewClasspath(0, artifact.NewStoreRoot("mem", store, nil))
	require.NoError(t, err)

	m := &BasicMetricsCollector{}
	d := New(WithResolver(cp), WithMetricsCollector(m))

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			calls, err := d.LoadFunctionAnnotations(ctx, barFn, names, nil, container)
			assert.NoError(t, err)
			assert.Equal(t, []annotation.ClassID{"com/example/A"}, classIDs(calls))
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), m.GetStats().ScanCount)
}

func TestPreload(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	classNames := []string{"com/example/A", "com/example/B", "com/example/C", "com/example/D"}
	for _, name := range classNames {
		data := testutil.Class{
			Name:    name,
			Methods: []testutil.Method{{Name: "m", Desc: "()V", Visible: []testutil.Annotation{ann("A")}}},
		}.Bytes()
		require.NoError(t, store.Put(ctx, name+".class", data))
	}
	cp, err := artifact.NewClasspath(0, artifact.NewStoreRoot("mem", store, nil))
	require.NoError(t, err)

	rc := resource.NewController(resource.Config{MaxWorkers: 2})
	m := &BasicMetricsCollector{}
	d := New(WithResolver(cp), WithMetricsCollector(m), WithResourceController(rc))

	require.NoError(t, d.Preload(ctx, append(classNames, "com/example/Missing")...))
	assert.Equal(t, int64(4), m.GetStats().ScanCount)

	stats := d.Stats()
	assert.Equal(t, 4, stats.CachedIndexes)
	assert.Equal(t, int64(0), stats.MemoryInUse)
	assert.Positive(t, stats.PeakMemory)

	ix, err := d.Index(ctx, "com/example/B")
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len())
	assert.Equal(t, int64(4), m.GetStats().ScanCount)
}

func TestPreload_Error(t *testing.T) {
	ctx := context.Background()
	d := New(WithArtifacts(artifact.New(artifact.Handle{ClassName: "Bad"}, []byte("junk"))))
	err := d.Preload(ctx, "Bad")
	var fe *classfile.FormatError
	assert.True(t, errors.As(err, &fe))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d, _, _ := newTestDeserializer(WithLogger(logger))

	_, err := d.LoadFunctionAnnotations(context.Background(), barFn, names, nil, container)
	require.NoError(t, err)
	_, err = d.LoadFunctionAnnotations(context.Background(), barFn, names, nil, "com/example/Missing")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "scan completed")
	assert.Contains(t, out, "class=com/example/Foo")
	assert.Contains(t, out, "container not resolved")
}
