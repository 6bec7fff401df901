package classanno

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/classanno/annotation"
	"github.com/hupe1980/classanno/artifact"
	"github.com/hupe1980/classanno/cache"
	"github.com/hupe1980/classanno/index"
	"github.com/hupe1980/classanno/internal/scan"
	"github.com/hupe1980/classanno/metadata"
	"github.com/hupe1980/classanno/resource"
	"github.com/hupe1980/classanno/signature"
)

// Deserializer loads the annotations of compiled declarations.
//
// A Deserializer is safe for concurrent use when its cache is (the default
// cache is). Each artifact is scanned successfully at most once per
// cache lifetime.
type Deserializer struct {
	filter    annotation.Filter
	cache     cache.IndexCache
	resolver  artifact.Resolver
	logger    *Logger
	metrics   MetricsCollector
	resources *resource.Controller
}

// New creates a Deserializer.
func New(opts ...Option) *Deserializer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Deserializer{
		filter:    o.filter,
		cache:     o.cache,
		resolver:  o.resolver,
		logger:    o.logger,
		metrics:   o.metricsCollector,
		resources: o.resources,
	}
}

// LoadTypeAnnotations returns the annotations stored inline in a type
// record. It never resolves or scans an artifact.
func (d *Deserializer) LoadTypeAnnotations(typ *metadata.Type, names metadata.NameResolver) []annotation.Call {
	if typ == nil {
		return nil
	}
	return annotation.FromProtoList(typ.Annotations, names)
}

// LoadFunctionAnnotations returns the annotations of the method backing fn.
func (d *Deserializer) LoadFunctionAnnotations(ctx context.Context, fn *metadata.Function, names metadata.NameResolver, types *metadata.TypeTable, container string) ([]annotation.Call, error) {
	sig, ok := signature.FromFunction(fn, names, types)
	return d.loadBySignature(ctx, sig, ok, container)
}

// LoadConstructorAnnotations returns the annotations of the constructor
// backing ctor.
func (d *Deserializer) LoadConstructorAnnotations(ctx context.Context, ctor *metadata.Constructor, names metadata.NameResolver, types *metadata.TypeTable, container string) ([]annotation.Call, error) {
	sig, ok := signature.FromConstructor(ctor, names, types)
	return d.loadBySignature(ctx, sig, ok, container)
}

// LoadPropertyGetterAnnotations returns the annotations of the getter of
// prop. A property without a getter signature yields nil without any scan.
func (d *Deserializer) LoadPropertyGetterAnnotations(ctx context.Context, prop *metadata.Property, names metadata.NameResolver, container string) ([]annotation.Call, error) {
	sig, ok := signature.FromPropertyAccessor(prop, names, signature.Getter)
	return d.loadBySignature(ctx, sig, ok, container)
}

// LoadPropertySetterAnnotations returns the annotations of the setter of
// prop.
func (d *Deserializer) LoadPropertySetterAnnotations(ctx context.Context, prop *metadata.Property, names metadata.NameResolver, container string) ([]annotation.Call, error) {
	sig, ok := signature.FromPropertyAccessor(prop, names, signature.Setter)
	return d.loadBySignature(ctx, sig, ok, container)
}

// LoadPropertyBackingFieldAnnotations returns the annotations of the field
// that stores prop.
func (d *Deserializer) LoadPropertyBackingFieldAnnotations(ctx context.Context, prop *metadata.Property, names metadata.NameResolver, types *metadata.TypeTable, container string) ([]annotation.Call, error) {
	sig, ok := signature.FromPropertyField(prop, names, types)
	return d.loadBySignature(ctx, sig, ok, container)
}

// LoadValueParameterAnnotations returns the annotations of value parameter
// i of fn. The extension receiver, if any, occupies the first JVM
// parameter, so i is shifted by one for extension functions.
func (d *Deserializer) LoadValueParameterAnnotations(ctx context.Context, fn *metadata.Function, names metadata.NameResolver, types *metadata.TypeTable, i int, container string) ([]annotation.Call, error) {
	if fn == nil || i < 0 || i >= len(fn.ValueParameters) {
		return nil, nil
	}
	method, ok := signature.FromFunction(fn, names, types)
	if fn.IsExtension() {
		i++
	}
	return d.loadBySignature(ctx, signature.Parameter(method, i), ok, container)
}

// LoadExtensionReceiverAnnotations returns the annotations of the receiver
// parameter of an extension function. It is nil for other functions.
func (d *Deserializer) LoadExtensionReceiverAnnotations(ctx context.Context, fn *metadata.Function, names metadata.NameResolver, types *metadata.TypeTable, container string) ([]annotation.Call, error) {
	if fn == nil || !fn.IsExtension() {
		return nil, nil
	}
	method, ok := signature.FromFunction(fn, names, types)
	return d.loadBySignature(ctx, signature.Parameter(method, 0), ok, container)
}

// Index returns the whole annotation index of container. An unresolvable
// container has the empty index.
func (d *Deserializer) Index(ctx context.Context, container string) (*index.Index, error) {
	art := d.resolve(ctx, container)
	if art == nil {
		return index.Empty(), nil
	}
	return d.ensureIndex(ctx, art)
}

// Preload scans containers concurrently so later lookups hit the cache.
// Concurrency is bounded by the resource controller's worker limit.
// Unresolvable containers are skipped; the first scan error is returned.
func (d *Deserializer) Preload(ctx context.Context, containers ...string) error {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	err := func() error {
		for _, container := range containers {
			if err := d.resources.AcquireWorker(gctx); err != nil {
				return err
			}
			g.Go(func() error {
				defer d.resources.ReleaseWorker()
				art := d.resolve(gctx, container)
				if art == nil {
					return nil
				}
				_, err := d.ensureIndex(gctx, art)
				return err
			})
		}
		return nil
	}()

	if werr := g.Wait(); werr != nil {
		err = werr
	}
	d.logger.LogPreload(ctx, len(containers), time.Since(start), err)
	return err
}

// Stats is a point-in-time view of a Deserializer.
type Stats struct {
	// CachedIndexes is the number of artifacts with a cached index.
	CachedIndexes int
	// MemoryInUse is the size of raw bytes currently claimed.
	MemoryInUse int64
	// PeakMemory is the largest MemoryInUse observed.
	PeakMemory int64
}

// Stats returns current statistics.
func (d *Deserializer) Stats() Stats {
	return Stats{
		CachedIndexes: d.cache.Len(),
		MemoryInUse:   d.resources.MemoryUsage(),
		PeakMemory:    d.resources.PeakMemoryUsage(),
	}
}

func (d *Deserializer) loadBySignature(ctx context.Context, sig signature.Signature, ok bool, container string) ([]annotation.Call, error) {
	if !ok {
		d.metrics.RecordLookup(false)
		return nil, nil
	}
	art := d.resolve(ctx, container)
	if art == nil {
		d.metrics.RecordLookup(false)
		return nil, nil
	}
	ix, err := d.ensureIndex(ctx, art)
	if err != nil {
		return nil, err
	}
	calls := ix.Lookup(sig)
	d.metrics.RecordLookup(len(calls) > 0)
	return calls, nil
}

func (d *Deserializer) resolve(ctx context.Context, container string) *artifact.Artifact {
	if d.resolver == nil {
		d.logger.LogResolve(ctx, container, artifact.ErrNotFound)
		return nil
	}
	art, err := d.resolver.Resolve(ctx, container)
	if err != nil || art == nil {
		d.logger.LogResolve(ctx, container, err)
		return nil
	}
	return art
}

// ensureIndex returns the cached index of art, scanning its raw bytes on
// the first request.
func (d *Deserializer) ensureIndex(ctx context.Context, art *artifact.Artifact) (*index.Index, error) {
	h := art.Handle()
	ix, computed, err := d.cache.GetOrCompute(h, func() (*index.Index, error) {
		return d.scan(ctx, art)
	})
	d.metrics.RecordCacheLookup(!computed)
	if err != nil {
		var np *ErrIndexNotPublished
		if errors.As(err, &np) {
			d.logger.WithHandle(h).ErrorContext(ctx, "cache consistency violation", "error", err)
		}
		return nil, err
	}
	return ix, nil
}

func (d *Deserializer) scan(ctx context.Context, art *artifact.Artifact) (*index.Index, error) {
	h := art.Handle()
	data, err := art.Claim(ctx, d.resources)
	if err != nil {
		if errors.Is(err, artifact.ErrConsumed) {
			return nil, &ErrIndexNotPublished{Handle: h, cause: artifact.ErrConsumed}
		}
		return nil, err
	}
	defer art.Release()

	start := time.Now()
	ix, err := scan.Scan(data, d.filter)
	elapsed := time.Since(start)
	d.metrics.RecordScan(elapsed, err)
	d.logger.LogScan(ctx, h, ix, elapsed, err)
	if err != nil {
		return nil, err
	}
	art.Commit()
	return ix, nil
}
