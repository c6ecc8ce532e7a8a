// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memalloc

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Debug gates the per-call trace lines that shadow the original
// allocator.c's compile-time DEBUG macro and cznic/memory's trace flag.
// Left false by default so a production build of liballoc.so never pays
// for a logrus call it doesn't need.
var Debug = false

// log is the package-wide diagnostic sink. Tests may swap its output via
// log.SetOutput on this logger without affecting the default logger
// used elsewhere in a host process that has also imported logrus.
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func logEvent(kind string, allocID uint64, size, usage uintptr) {
	log.WithFields(logrus.Fields{
		"event":   kind,
		"allocID": allocID,
		"size":    size,
		"usage":   usage,
	}).Debug("memalloc")
}

func logUnmapFailure(err error) {
	log.WithError(err).Warn("memalloc: unmap failed")
}

// Dump walks the registry and writes one "[REGION]" line per region
// followed by a "[BLOCK]" line per block, in registry order — a
// human-readable snapshot of live and idle blocks for debugging. It uses
// only stack-resident locals and fmt.Fprintf directly against w,
// deliberately bypassing logrus: a dump routine must never, even
// transitively, invoke the allocator's own allocate.
func (a *Allocator) Dump(w io.Writer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var currentRegion *block
	a.reg.iterate(func(b *block) bool {
		if b.regionStart != currentRegion {
			currentRegion = b.regionStart
			fmt.Fprintf(w, "[REGION] %p-%p %d\n",
				currentRegion, currentRegion.regionEnd(), currentRegion.regionSize)
		}

		payload := uintptr(0)
		if b.usage != 0 {
			payload = b.usage - headerSize
		}
		fmt.Fprintf(w, "[BLOCK]  %p-%p (%d) %d %d %d\n",
			b, b.atOffset(b.size), b.allocID, b.size, b.usage, payload)
		return true
	})
}

// DumpStderr is a convenience wrapper matching the original allocator.c's
// print_memory(), which always targeted stderr.
func (a *Allocator) DumpStderr() {
	a.Dump(os.Stderr)
}
