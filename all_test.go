// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memalloc

import (
	"math"
	"testing"
	"unsafe"

	"github.com/cznic/mathutil"
)

// quota caps the stress tests below: keep allocating random-sized blocks
// until this many bytes have been requested in total.
const quota = 32 << 20

func randSource(t *testing.T, lo, hi int) *mathutil.FC32 {
	t.Helper()
	rng, err := mathutil.NewFC32(lo, hi, true)
	if err != nil {
		t.Fatal(err)
	}
	rng.Seed(42)
	return rng
}

// test1 allocates a random mix of sizes up to max, writes a distinctive
// pattern into each, verifies every pattern survived, then frees
// everything in shuffled order — ported from cznic/memory's test1, generalized
// from []byte slots to raw unsafe.Pointer payloads.
func test1(t *testing.T, max int) {
	var a Allocator
	rem := quota
	var ptrs []unsafe.Pointer
	var sizes []int

	rng := randSource(t, 0, math.MaxInt32)
	pos := rng.Pos()

	for rem > 0 {
		size := int(rng.Next())%max + 1
		rem -= size
		p := a.Malloc(uintptr(size))
		if p == nil {
			t.Fatal("Malloc returned nil")
		}
		ptrs = append(ptrs, p)
		sizes = append(sizes, size)
		buf := unsafe.Slice((*byte)(p), size)
		for i := range buf {
			buf[i] = byte(rng.Next())
		}
	}

	rng.Seek(pos)
	for i, p := range ptrs {
		size := int(rng.Next())%max + 1
		if sizes[i] != size {
			t.Fatalf("size mismatch at %d: got %d want %d", i, sizes[i], size)
		}
		buf := unsafe.Slice((*byte)(p), size)
		for j, g := range buf {
			if e := byte(rng.Next()); g != e {
				t.Fatalf("corruption at alloc %d byte %d: got %#02x want %#02x", i, j, g, e)
			}
		}
	}

	for i := range ptrs {
		j := int(rng.Next()) % len(ptrs)
		ptrs[i], ptrs[j] = ptrs[j], ptrs[i]
	}

	for _, p := range ptrs {
		a.Free(p)
	}

	if !a.reg.empty() {
		t.Fatalf("registry not empty after freeing everything: head=%v tail=%v", a.reg.head, a.reg.tail)
	}
}

func Test1Small(t *testing.T) { test1(t, 2*osPageSize()) }
func Test1Big(t *testing.T)   { test1(t, 8*osPageSize()) }

// test2 is test1 without the shuffle: verify-then-free in allocation
// order.
func test2(t *testing.T, max int) {
	var a Allocator
	rem := quota
	var ptrs []unsafe.Pointer
	var sizes []int

	rng := randSource(t, 0, math.MaxInt32)
	pos := rng.Pos()

	for rem > 0 {
		size := int(rng.Next())%max + 1
		rem -= size
		p := a.Malloc(uintptr(size))
		if p == nil {
			t.Fatal("Malloc returned nil")
		}
		ptrs = append(ptrs, p)
		sizes = append(sizes, size)
		buf := unsafe.Slice((*byte)(p), size)
		for i := range buf {
			buf[i] = byte(rng.Next())
		}
	}

	rng.Seek(pos)
	for i, p := range ptrs {
		size := int(rng.Next())%max + 1
		if sizes[i] != size {
			t.Fatalf("size mismatch at %d", i)
		}
		buf := unsafe.Slice((*byte)(p), size)
		for j, g := range buf {
			if e := byte(rng.Next()); g != e {
				t.Fatalf("corruption at alloc %d byte %d", i, j)
			}
		}
		a.Free(p)
	}

	if !a.reg.empty() {
		t.Fatalf("registry not empty after freeing everything")
	}
}

func Test2Small(t *testing.T) { test2(t, 2*osPageSize()) }
func Test2Big(t *testing.T)   { test2(t, 8*osPageSize()) }

// test3 interleaves random allocation and random freeing, like cznic's
// own test3, checking live allocations for corruption at the end.
func test3(t *testing.T, max int) {
	var a Allocator
	rem := quota
	live := map[unsafe.Pointer][]byte{}

	rng := randSource(t, 1, max)

	for rem > 0 {
		switch int(rng.Next()) % 3 {
		case 0, 1:
			size := int(rng.Next())
			rem -= size
			p := a.Malloc(uintptr(size))
			if p == nil {
				t.Fatal("Malloc returned nil")
			}
			buf := unsafe.Slice((*byte)(p), size)
			for i := range buf {
				buf[i] = byte(i)
			}
			live[p] = append([]byte(nil), buf...)
		default:
			for p, want := range live {
				got := unsafe.Slice((*byte)(p), len(want))
				for i := range got {
					got[i] = 0
				}
				rem += len(want)
				a.Free(p)
				delete(live, p)
				break
			}
		}
	}

	for p, want := range live {
		got := unsafe.Slice((*byte)(p), len(want))
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("corrupted heap at byte %d: got %#02x want %#02x", i, got[i], want[i])
			}
		}
		a.Free(p)
	}

	if !a.reg.empty() {
		t.Fatalf("registry not empty after freeing everything")
	}
}

func Test3Small(t *testing.T) { test3(t, 2*osPageSize()) }
func Test3Big(t *testing.T)   { test3(t, 8*osPageSize()) }

func benchmarkMalloc(b *testing.B, size uintptr) {
	var a Allocator
	ptrs := make([]unsafe.Pointer, 0, b.N)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := a.Malloc(size)
		if p == nil {
			b.Fatal("Malloc returned nil")
		}
		ptrs = append(ptrs, p)
	}
	b.StopTimer()
	for _, p := range ptrs {
		a.Free(p)
	}
}

func BenchmarkMalloc16(b *testing.B) { benchmarkMalloc(b, 1<<4) }
func BenchmarkMalloc32(b *testing.B) { benchmarkMalloc(b, 1<<5) }
func BenchmarkMalloc64(b *testing.B) { benchmarkMalloc(b, 1<<6) }
