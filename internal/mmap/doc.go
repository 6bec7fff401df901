// Package mmap maps class files and archives read-only into memory.
//
//	m, err := mmap.Open("Foo.class")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
//
// Unix uses mmap(2) and madvise(2); Windows uses CreateFileMapping and
// MapViewOfFile, where access hints are ignored.
//
// Bytes must not be used after Close.
package mmap
