// Package metadata decodes the compact serialized declaration records that a
// compiler embeds next to its class files.
//
// The records are protobuf messages. Only the parts needed to recompute
// binary member signatures and to read inline type annotations are modeled:
//
//   - Function, Constructor, Property and ValueParameter records
//   - Type uses, including the inline type annotation extension block
//   - the JVM signature extension blocks (method, constructor, property)
//   - string, qualified name and type tables
//
// Records reference names and types by table index. Resolve them with a
// NameResolver (see Names) and a TypeTable:
//
//	names := metadata.NewNames(strings, qualifiedNames)
//	fn, err := metadata.DecodeFunction(raw)
//	if err != nil {
//	    return err
//	}
//	ret := fn.ReturnTypeIn(types)
//	fmt.Println(names.QualifiedClassName(ret.ClassName))
//
// Decoding uses google.golang.org/protobuf/encoding/protowire directly, so no
// generated code is required. Unknown fields are skipped.
package metadata
