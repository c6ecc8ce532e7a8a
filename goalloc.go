// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memalloc implements a drop-in C runtime allocator: malloc,
// free, calloc and realloc, satisfying requests directly out of
// anonymous page-aligned mappings obtained from the OS rather than
// delegating to the host's libc. It is meant to be exercised either
// in-process (this package's API) or interposed over an unmodified
// binary via the cgo shim in cmd/liballoc built with
// -buildmode=c-shared and LD_PRELOADed.
package memalloc

import (
	"sync"
	"unsafe"
)

// Allocator allocates and frees memory directly against anonymous OS
// mappings. Its zero value is ready to use. An Allocator is safe for
// concurrent use by multiple goroutines: every exported method takes mu
// on entry and releases it on every exit path.
type Allocator struct {
	mu  sync.Mutex
	reg registry
	cfg config
}

// Default is the process-wide allocator that Malloc/Free/Calloc/Realloc
// and cmd/liballoc's cgo exports operate on.
var Default Allocator

// SetAlgorithm overrides the cached placement policy, bypassing
// ALLOCATOR_ALGORITHM. Intended for tests that need to exercise more than
// one policy without forking a process per case.
func (a *Allocator) SetAlgorithm(p Policy) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg.loaded = true
	a.cfg.policy = p
}

// SetScribble overrides the cached scribble-on-alloc flag, bypassing
// ALLOCATOR_SCRIBBLE.
func (a *Allocator) SetScribble(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg.loaded = true
	a.cfg.scribble = on
}

// Malloc allocates n bytes and returns a pointer to the start of the
// payload, or nil if the OS mapping layer refused the request. n is
// rounded up per roundUp8 before anything else happens.
func (a *Allocator) Malloc(n uintptr) unsafe.Pointer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allocateLocked(n)
}

// allocateLocked is Malloc's body with the lock already held, so that
// Calloc and Realloc can call it without releasing and reacquiring the
// mutex around the composite operation. sync.Mutex is not re-entrant, so
// every exported entry point takes the lock once and funnels into an
// *Locked helper rather than calling another exported method.
func (a *Allocator) allocateLocked(n uintptr) unsafe.Pointer {
	n = roundUp8(n)
	a.cfg.ensureLoaded()
	need := n + headerSize

	if b := a.reg.selectBlock(need, a.cfg.policy); b != nil {
		var p unsafe.Pointer
		if b.idle() {
			p = a.reuseIdle(b, need)
		} else {
			p = a.splitBlock(b, need).payload()
		}
		a.maybeScribble(p, n)
		return p
	}

	b, err := a.growRegion(need)
	if err != nil {
		return nil
	}
	p := b.payload()
	a.maybeScribble(p, n)
	return p
}

func (a *Allocator) maybeScribble(p unsafe.Pointer, n uintptr) {
	if !a.cfg.scribble || n == 0 {
		return
	}
	buf := unsafe.Slice((*byte)(p), n)
	for i := range buf {
		buf[i] = scribbleByte
	}
}

// Free releases the allocation at p. p == nil is a no-op. p must have
// been returned by Malloc, Calloc or Realloc and not already freed.
func (a *Allocator) Free(p unsafe.Pointer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseLocked(p)
}

func (a *Allocator) releaseLocked(p unsafe.Pointer) {
	if p == nil {
		return
	}
	b := blockFromPayload(p)
	if Debug {
		logEvent("release", b.allocID, b.size, b.usage)
	}
	b.usage = 0
	a.reclaimIfIdle(b)
}

// Calloc allocates space for nmemb objects of size bytes each and zeroes
// it. It returns nil if either factor is zero.
func (a *Allocator) Calloc(nmemb, size uintptr) unsafe.Pointer {
	if nmemb == 0 || size == 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.allocateLocked(nmemb * size)
	if p == nil {
		return nil
	}
	buf := unsafe.Slice((*byte)(p), nmemb*size)
	for i := range buf {
		buf[i] = 0
	}
	return p
}

// Realloc resizes the allocation at p to n bytes. p == nil behaves like
// Malloc(n); n == 0 behaves like Free(p) and returns nil. When the
// existing block's total size already covers n, the block is resized in
// place without copying; otherwise a new block is allocated, the
// preserved prefix is copied over, and the old block is freed.
func (a *Allocator) Realloc(p unsafe.Pointer, n uintptr) unsafe.Pointer {
	a.mu.Lock()
	defer a.mu.Unlock()

	if p == nil {
		return a.allocateLocked(n)
	}
	if n == 0 {
		a.releaseLocked(p)
		return nil
	}

	n = roundUp8(n)
	b := blockFromPayload(p)
	if b.size >= n+headerSize {
		b.usage = n + headerSize
		return p
	}

	newPtr := a.allocateLocked(n)
	if newPtr == nil {
		return nil
	}

	oldPayload := b.payloadCap()
	copyLen := oldPayload
	if n < copyLen {
		copyLen = n
	}
	if copyLen > 0 {
		dst := unsafe.Slice((*byte)(newPtr), copyLen)
		src := unsafe.Slice((*byte)(p), copyLen)
		copy(dst, src)
	}
	a.releaseLocked(p)
	return newPtr
}

// UsableSize reports the number of payload bytes available at p without
// reallocating — size minus header, for the block p was carved from. p
// must point at a live allocation's payload.
func (a *Allocator) UsableSize(p unsafe.Pointer) uintptr {
	if p == nil {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	b := blockFromPayload(p)
	return b.size - headerSize
}

// Malloc allocates n bytes from the process-wide Default allocator.
func Malloc(n uintptr) unsafe.Pointer { return Default.Malloc(n) }

// Free releases p back to the process-wide Default allocator.
func Free(p unsafe.Pointer) { Default.Free(p) }

// Calloc allocates zeroed space for nmemb objects of size bytes from the
// process-wide Default allocator.
func Calloc(nmemb, size uintptr) unsafe.Pointer { return Default.Calloc(nmemb, size) }

// Realloc resizes p to n bytes using the process-wide Default allocator.
func Realloc(p unsafe.Pointer, n uintptr) unsafe.Pointer { return Default.Realloc(p, n) }

// UsableSize reports the usable payload size of p via the process-wide
// Default allocator.
func UsableSize(p unsafe.Pointer) uintptr { return Default.UsableSize(p) }
