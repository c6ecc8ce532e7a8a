// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command goallocctl drives the memalloc allocator in-process for manual
// exploration, benchmarking and soak testing, without needing to build
// and LD_PRELOAD the cgo shared object in cmd/liballoc.
package main

import "github.com/rtmacaibay/memory-allocator/cmd/goallocctl/cmd"

func main() {
	cmd.Execute()
}
