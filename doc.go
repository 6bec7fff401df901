// Package classanno recovers the annotations of compiled JVM declarations.
//
// Compiled Kotlin classes carry two views of their declarations: the class
// file itself, where annotations are attached to methods, fields and
// parameters, and compact serialized metadata records that describe the
// source-level declarations. Given a metadata record and the container
// class that owns it, a Deserializer derives the JVM signature of the
// member, scans the container's class file once, and returns the
// annotations attached to that signature.
//
// # Quick Start
//
//	cp, _ := artifact.NewClasspath(0,
//	    artifact.NewStoreRoot("classes", blobstore.NewLocalStore("./build/classes"), nil),
//	)
//	d := classanno.New(classanno.WithResolver(cp))
//
//	calls, err := d.LoadFunctionAnnotations(ctx, fn, names, types, "com/example/Foo")
//	for _, c := range calls {
//	    fmt.Println(c)
//	}
//
// Missing signatures and unresolvable containers are not errors; they yield
// no annotations. Annotations stored inline in type records are returned by
// LoadTypeAnnotations without touching any class file.
//
// # Special Annotations
//
// Annotations the compiler handles on its own (kotlin.Metadata, nullability
// markers) are excluded by the configured annotation.Filter:
//
//	d := classanno.New(classanno.WithFilter(annotation.NewSpecialFilter("com/example/Internal")))
//
// # Caching
//
// Every artifact is scanned successfully at most once; a failed scan keeps
// the raw bytes so a later query can retry. The resulting index is kept in a
// cache.IndexCache keyed by artifact handle. The default cache is safe for
// concurrent use. Preload warms it for many containers at once:
//
//	err := d.Preload(ctx, "com/example/Foo", "com/example/Bar")
//
// # Resource Limits
//
// A resource.Controller bounds the raw class bytes held in memory, the
// read throughput and the number of concurrent preload scans:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	    MaxWorkers:       runtime.GOMAXPROCS(0),
//	})
//	d := classanno.New(classanno.WithResolver(cp), classanno.WithResourceController(rc))
package classanno
