// Package mmap provides read-only memory-mapped file access.
//
//	m, err := mmap.Open("run.snap")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
// On Unix the file is mapped with mmap(2) and access hints are passed through
// madvise(2). Other platforms read the file into memory; Advise is a no-op there.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers must
// not touch slices returned by Bytes after Close returns.
package mmap
