// Package artifact models compiled class binaries and how they are found.
//
// A Handle names a binary by classpath location and internal class name;
// handles are compared by value and key the index cache. An Artifact pairs
// a handle with raw bytes that are consumed exactly once:
//
//	data, err := art.Claim(ctx, rc)
//	if err != nil {
//	    return err
//	}
//	defer art.Release()
//	if err := use(data); err != nil {
//	    return err // bytes stay claimable
//	}
//	art.Commit()
//
// A Classpath resolves container class names against ordered roots.
// StoreRoot searches a blobstore.Store directory tree, JarRoot a zip
// archive. Both accept plain, zstd (".class.zst") and lz4 (".class.lz4")
// encoded class files.
package artifact
