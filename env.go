// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memalloc

import (
	"os"
	"strconv"
)

// Policy selects which placement algorithm selectBlock (placement.go) uses
// to choose a reusable block. The zero value is FirstFit, the default.
type Policy int

const (
	// FirstFit returns the first candidate block encountered in
	// registry order.
	FirstFit Policy = iota
	// BestFit returns the candidate with the least slack, ties broken
	// by registry order.
	BestFit
	// WorstFit returns the candidate with the most slack (slack > 1),
	// ties broken by registry order.
	WorstFit
)

func (p Policy) String() string {
	switch p {
	case BestFit:
		return "best_fit"
	case WorstFit:
		return "worst_fit"
	default:
		return "first_fit"
	}
}

func parsePolicy(s string) Policy {
	switch s {
	case "best_fit":
		return BestFit
	case "worst_fit":
		return WorstFit
	default:
		return FirstFit
	}
}

// config is the allocator's env-derived tuning, read once and cached on an
// Allocator rather than re-parsed on every call: two plain os.Getenv
// lookups done once per Allocator, on its first allocation, unless
// SetAlgorithm/SetScribble has already set them.
type config struct {
	policy   Policy
	scribble bool
	loaded   bool
}

func (c *config) ensureLoaded() {
	if c.loaded {
		return
	}
	c.policy = parsePolicy(os.Getenv("ALLOCATOR_ALGORITHM"))
	c.scribble = envBool(os.Getenv("ALLOCATOR_SCRIBBLE"))
	c.loaded = true
}

func envBool(s string) bool {
	if s == "" {
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && n != 0
}

// scribbleByte is the sentinel byte a freshly returned payload is filled
// with when ALLOCATOR_SCRIBBLE parses to a nonzero integer, matching the
// original source's scribble_this.
const scribbleByte = 0xAA
