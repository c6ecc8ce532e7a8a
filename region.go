// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memalloc

import "unsafe"

// growRegion maps a brand new region large enough to host a single block
// of need bytes (header included), rounded up to a whole number of OS
// pages, and appends that lone block to the registry. Mirrors malloc's
// region-mapping branch in allocator.c.
func (a *Allocator) growRegion(need uintptr) (*block, error) {
	pageSize := uintptr(osPageSize())
	pages := need / pageSize
	if need%pageSize != 0 {
		pages++
	}
	regionSize := pages * pageSize

	mem, err := mapRegion(int(regionSize))
	if err != nil {
		return nil, err
	}

	b := blockAt(unsafe.Pointer(&mem[0]))
	b.allocID = a.reg.nextID()
	b.size = regionSize
	b.usage = need
	b.regionStart = b
	b.regionSize = regionSize
	a.reg.pushBack(b)

	if Debug {
		logEvent("grow", b.allocID, b.size, b.usage)
	}
	return b, nil
}

// reuseIdle restores an idle block to active use in place, assigning it a
// fresh allocation id. Its size is left untouched; any slack beyond need
// stays implicitly reserved for this slot until a later reuse shrinks it
// via split.
func (a *Allocator) reuseIdle(b *block, need uintptr) unsafe.Pointer {
	b.usage = need
	b.allocID = a.reg.nextID()
	if Debug {
		logEvent("reuse", b.allocID, b.size, b.usage)
	}
	return b.payload()
}

// splitBlock carves a new block r out of active block b's trailing slack,
// placing r's header at b+b.usage, and shrinks b to exactly its current
// usage. r is spliced into the registry immediately after b. Returns r.
func (a *Allocator) splitBlock(b *block, need uintptr) *block {
	r := blockAt(b.atOffset(b.usage))
	r.allocID = a.reg.nextID()
	r.size = b.size - b.usage
	r.usage = need
	r.regionStart = b.regionStart
	r.regionSize = b.regionSize

	a.reg.insertAfter(b, r)
	b.size = b.usage

	if Debug {
		logEvent("split", r.allocID, r.size, r.usage)
	}
	return r
}

// reclaimIfIdle runs a liveness scan after a block in freed's region has
// just gone idle: if every block sharing freed's regionStart now has
// usage == 0, the whole region is unmapped and excised from the
// registry, whether that run sits at the head, the tail, the middle, or
// spans the entire registry. Returns true if the region was reclaimed.
// Unmap failure is logged, not propagated: registry state has already
// been updated consistently, so callers see success regardless.
func (a *Allocator) reclaimIfIdle(freed *block) bool {
	origin := freed.regionStart

	var before, first, after *block
	allIdle := true

	a.reg.iterate(func(b *block) bool {
		if b.regionStart == origin {
			if first == nil {
				first = b
			}
			if !b.idle() {
				allIdle = false
			}
			return true
		}
		if first == nil {
			before = b
			return true
		}
		if after == nil {
			after = b
			return false
		}
		return true
	})

	if !allIdle {
		return false
	}

	a.reg.removeRun(before, after)

	if Debug {
		logEvent("reclaim", origin.allocID, origin.regionSize, 0)
	}

	if err := unmapRegion(unsafe.Pointer(origin), int(origin.regionSize)); err != nil {
		logUnmapFailure(err)
	}
	return true
}
