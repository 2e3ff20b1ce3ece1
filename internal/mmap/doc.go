// Package mmap maps files read-only into memory.
//
// Training sources are mapped once and sampled at random offsets for the
// lifetime of a run, so the kernel page cache does the buffering:
//
//	m, err := mmap.Open("train.tsv")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessRandom)
//	data := m.Bytes()
//
// Unix platforms use mmap(2) and madvise(2); Windows uses
// CreateFileMapping/MapViewOfFile and ignores access hints.
//
// Close is idempotent. Slices returned by Bytes must not be used after Close.
package mmap
