// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command liballoc builds a C-ABI shared object exporting malloc, free,
// calloc and realloc, backed by github.com/rtmacaibay/memory-allocator's
// Allocator. It is meant to be built with:
//
//	go build -buildmode=c-shared -o liballoc.so ./cmd/liballoc
//
// and interposed over an unmodified binary with:
//
//	LD_PRELOAD=$(pwd)/liballoc.so command
//
// exactly as the original allocator.c's header comment documents, just
// with the custom allocator compiled to a Go shared object instead of a C
// one.
package main

// #include <stddef.h>
import "C"

import (
	"unsafe"

	memalloc "github.com/rtmacaibay/memory-allocator"
)

//export malloc
func malloc(size C.size_t) unsafe.Pointer {
	return memalloc.Malloc(uintptr(size))
}

//export free
func free(ptr unsafe.Pointer) {
	memalloc.Free(ptr)
}

//export calloc
func calloc(nmemb, size C.size_t) unsafe.Pointer {
	return memalloc.Calloc(uintptr(nmemb), uintptr(size))
}

//export realloc
func realloc(ptr unsafe.Pointer, size C.size_t) unsafe.Pointer {
	return memalloc.Realloc(ptr, uintptr(size))
}

func main() {}
