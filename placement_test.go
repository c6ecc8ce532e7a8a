// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memalloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// newCandidates builds a registry of blocks with the given (size, usage)
// pairs and returns it plus the individual blocks for assertions.
func newCandidates(pairs ...[2]uintptr) (registry, []*block) {
	var r registry
	blocks := make([]*block, len(pairs))
	for i, p := range pairs {
		b := &block{size: p[0], usage: p[1]}
		blocks[i] = b
		r.pushBack(b)
	}
	return r, blocks
}

func TestSelectFirstFit(t *testing.T) {
	r, blocks := newCandidates(
		[2]uintptr{100, 90}, // slack 10
		[2]uintptr{100, 50}, // slack 50
		[2]uintptr{100, 0},  // idle, slack 100
	)
	got := r.selectBlock(20, FirstFit)
	assert.Same(t, blocks[1], got, "first_fit should return the earliest block with enough slack")
}

func TestSelectBestFit(t *testing.T) {
	r, blocks := newCandidates(
		[2]uintptr{100, 50}, // slack 50
		[2]uintptr{100, 70}, // slack 30
		[2]uintptr{100, 0},  // idle, slack 100
	)
	got := r.selectBlock(20, BestFit)
	assert.Same(t, blocks[1], got, "best_fit should minimize slack among candidates")
}

func TestSelectBestFitTieBreaksToEarlier(t *testing.T) {
	r, blocks := newCandidates(
		[2]uintptr{100, 70}, // slack 30
		[2]uintptr{100, 70}, // slack 30, tie
	)
	got := r.selectBlock(20, BestFit)
	assert.Same(t, blocks[0], got)
}

func TestSelectWorstFit(t *testing.T) {
	r, blocks := newCandidates(
		[2]uintptr{100, 50}, // slack 50
		[2]uintptr{100, 10}, // slack 90
		[2]uintptr{100, 70}, // slack 30
	)
	got := r.selectBlock(20, WorstFit)
	assert.Same(t, blocks[1], got, "worst_fit should maximize slack among candidates")
}

// TestSelectWorstFitThreshold checks that a worst_fit candidate with
// slack of exactly 1 byte is never chosen, even when it is the only
// block with any slack at all and need <= 1.
func TestSelectWorstFitThreshold(t *testing.T) {
	r, _ := newCandidates([2]uintptr{100, 99}) // slack 1
	got := r.selectBlock(1, WorstFit)
	assert.Nil(t, got)
}

func TestSelectNoCandidate(t *testing.T) {
	r, _ := newCandidates([2]uintptr{100, 100})
	assert.Nil(t, r.selectBlock(1, FirstFit))
	assert.Nil(t, r.selectBlock(1, BestFit))
	assert.Nil(t, r.selectBlock(1, WorstFit))
}
