// Package annotation models deserialized annotation applications and the
// filter that decides which of them are reported.
//
// A Call is built either from a class file, by handing the visitor returned
// by NewArgumentVisitor to the class reader, or from a serialized metadata
// record with FromProto. Class names use the ClassID form
// "pkg/sub/Outer.Inner" in both cases.
package annotation
