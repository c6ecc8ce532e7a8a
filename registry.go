// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memalloc

// registry is the single ordered linked list threaded through every block
// that currently exists, across every region, plus the monotonic
// allocation-ID counter. It carries no locking of its own: every method
// here is called with the owning Allocator's mutex already held.
type registry struct {
	head, tail  *block
	allocations uint64
}

// nextID returns a fresh, strictly increasing allocation id. Called once
// per block birth: region growth, split residue creation, and idle-block
// reuse.
func (r *registry) nextID() uint64 {
	id := r.allocations
	r.allocations++
	return id
}

// pushBack appends b to the registry in O(1) via the tail pointer. Used
// when a region is first grown; b.next must already be nil.
func (r *registry) pushBack(b *block) {
	b.next = nil
	if r.tail == nil {
		r.head = b
		r.tail = b
		return
	}
	r.tail.next = b
	r.tail = b
}

// insertAfter splices next immediately following prev in the registry,
// updating the tail anchor if prev was the last block. Used by split to
// place a residue block right after its donor.
func (r *registry) insertAfter(prev, next *block) {
	next.next = prev.next
	prev.next = next
	if r.tail == prev {
		r.tail = next
	}
}

// iterate calls fn for every block in registry order, stopping early if
// fn returns false. It is O(n) and allocation-free.
func (r *registry) iterate(fn func(b *block) bool) {
	for b := r.head; b != nil; b = b.next {
		if !fn(b) {
			return
		}
	}
}

// removeRun excises the maximal contiguous run [first, last] from the
// registry — used by region reclamation once every block belonging to a
// dying region has been located. before is the block immediately
// preceding first in the registry, or nil if first == head; after is the
// block immediately following last, or nil if last == tail.
func (r *registry) removeRun(before, after *block) {
	switch {
	case before == nil && after == nil:
		r.head, r.tail = nil, nil
	case before == nil:
		r.head = after
	case after == nil:
		r.tail = before
		before.next = nil
	default:
		before.next = after
	}
}

// empty reports whether the registry currently tracks any blocks at all,
// the Go expression of invariant 5: head == nil iff tail == nil iff no
// regions exist.
func (r *registry) empty() bool {
	return r.head == nil
}
