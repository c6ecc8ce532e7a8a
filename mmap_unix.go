// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.
//
// Modifications (c) 2017 The Memory Authors, further adapted for goalloc.

//go:build darwin || dragonfly || freebsd || linux || openbsd || solaris || netbsd

package memalloc

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// mapRegion acquires size bytes (a multiple of the page size) of
// zero-initialized, private, anonymous, read-write virtual memory.
// golang.org/x/sys/unix is used in place of the raw syscall package for
// named flags and a stable, per-GOOS-correct signature.
func mapRegion(size int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	if uintptr(unsafe.Pointer(&b[0]))%uintptr(osPageSize()) != 0 {
		panic("memalloc: mmap returned a non-page-aligned address")
	}
	return b, nil
}

// unmapRegion releases a mapping obtained from mapRegion.
func unmapRegion(addr unsafe.Pointer, size int) error {
	b := unsafe.Slice((*byte)(addr), size)
	return unix.Munmap(b)
}

// osPageSize reports the system's page size.
func osPageSize() int {
	return unix.Getpagesize()
}
