// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memalloc

import "unsafe"

// block is the in-band header placed immediately before every payload. It
// mirrors struct mem_block from the original allocator.c: allocID, size and
// usage drive placement and splitting, regionStart/regionSize identify the
// enclosing mapping, and next threads the block into the global registry.
//
// All pointer arithmetic on blocks is confined to this file. Every other
// file in the package only ever holds a *block and calls these helpers; it
// never computes an offset into a mapping by hand. The preconditions below
// are the invariants from the data model section of the spec and must hold
// on entry to every method here.
type block struct {
	allocID     uint64
	size        uintptr
	usage       uintptr
	regionStart *block
	regionSize  uintptr
	next        *block
}

// headerSize is the fixed number of bytes a block header occupies ahead of
// its payload. It is a compile-time constant in spirit; computed once
// because unsafe.Sizeof on a non-generic struct is already constant but
// spelling it via a var keeps the dependent arithmetic below readable.
var headerSize = unsafe.Sizeof(block{})

// blockAt reinterprets the memory at p as a *block. p must point to the
// start of a region or to a position computed by atOffset below; it must
// never be an arbitrary user pointer.
func blockAt(p unsafe.Pointer) *block {
	return (*block)(p)
}

// payload returns the address of the first payload byte owned by b: the
// pointer handed back to callers of allocate. Precondition: b.usage > 0
// (b is active) — an idle block has no live payload.
func (b *block) payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(b), headerSize)
}

// blockFromPayload recovers the header for a live user pointer p. This is
// the only legal inverse of payload: p must have been returned by
// allocate (or reallocate) and must not yet have been released.
func blockFromPayload(p unsafe.Pointer) *block {
	return (*block)(unsafe.Add(p, -int(headerSize)))
}

// atOffset returns the address off bytes past b's header start. Used to
// locate a split residue (off == b.usage) or the block following b within
// the same region (off == b.size).
func (b *block) atOffset(off uintptr) unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(b), off)
}

// slack is the number of bytes available for a new allocation to land in
// b's trailing space: size-usage for an active block, size for an idle
// one (usage == 0 already makes the arithmetic agree, so no branch is
// needed).
func (b *block) slack() uintptr {
	return b.size - b.usage
}

// idle reports whether b currently holds no live allocation.
func (b *block) idle() bool {
	return b.usage == 0
}

// payloadCap returns the number of payload bytes an active block can
// report to the caller without the header, i.e. how much Realloc copies
// when it moves a block. UsableSize reports size, not usage, minus the
// header and does not use this.
func (b *block) payloadCap() uintptr {
	if b.usage == 0 {
		return 0
	}
	return b.usage - headerSize
}

// sameRegion reports whether b and other were carved from the same
// mapping.
func (b *block) sameRegion(other *block) bool {
	return b.regionStart == other.regionStart
}

// regionEnd returns one-past-the-last address of b's enclosing region.
// Precondition: b is a region's first block (b == b.regionStart).
func (b *block) regionEnd() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(b), b.regionSize)
}

// roundUp8 rounds n up to a multiple of 8, deliberately using an
// over-alignment formula rather than the conventional ((n+7)/8)*8: a size
// that is already a multiple of 8 still advances to the next multiple.
// This guarantees every payload has at least one byte of slack past the
// requested size.
func roundUp8(n uintptr) uintptr {
	return (n/8)*8 + 8
}
