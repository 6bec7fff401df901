// Package testutil provides test fixtures for classanno.
//
// This package is intended for use in tests only. It assembles minimal JVM
// class files from a declarative description so readers and scanners can be
// exercised without a compiler:
//
//	data := testutil.Class{
//		Name: "com/example/Foo",
//		Methods: []testutil.Method{{
//			Name:    "bar",
//			Desc:    "()V",
//			Visible: []testutil.Annotation{{Desc: "Lcom/example/A;"}},
//		}},
//	}.Bytes()
package testutil
