// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memalloc

// selectBlock walks the registry under the active placement policy looking
// for a block with enough trailing slack to satisfy need bytes (already
// including the header — callers pass req+headerSize). It returns nil if
// no block qualifies, in which case the caller grows a new region.
//
// A candidate is any block b with b.slack() >= need: either an idle
// block whose whole size suffices, or an active block whose unused tail
// is big enough to host a split residue. Under worst_fit a candidate
// with 0 or 1 spare bytes is never selected — that little slack isn't
// worth tracking as "the worst" fit.
func (r *registry) selectBlock(need uintptr, policy Policy) *block {
	var best *block
	var bestSlack uintptr

	switch policy {
	case BestFit:
		bestSlack = ^uintptr(0) // max uintptr: anything is smaller
	case WorstFit:
		bestSlack = 1 // strict '> 1' threshold from the source
	}

	var found *block
	r.iterate(func(b *block) bool {
		slack := b.slack()
		if slack < need {
			return true
		}

		switch policy {
		case FirstFit:
			found = b
			return false
		case BestFit:
			if slack < bestSlack {
				bestSlack = slack
				best = b
			}
		case WorstFit:
			if slack > bestSlack {
				bestSlack = slack
				best = b
			}
		}
		return true
	})

	if policy == FirstFit {
		return found
	}
	return best
}
