// Copyright 2017 The Memory Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"os"
	"time"
	"unsafe"

	"github.com/cznic/mathutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	memalloc "github.com/rtmacaibay/memory-allocator"
)

// uintptrFromPtr and ptrFromUintptr let this command hold live
// allocations in a plain []uintptr rather than []unsafe.Pointer: the
// memory behind these pointers is OS-mapped, not GC-managed, so there is
// no risk of the Go collector moving or reclaiming it out from under an
// untyped uintptr the way there would be for ordinary heap pointers.
func uintptrFromPtr(p unsafe.Pointer) uintptr { return uintptr(p) }
func ptrFromUintptr(u uintptr) unsafe.Pointer { return unsafe.Pointer(u) }

func init() {
	benchCmd.Flags().String("algorithm", "first_fit", "placement policy: first_fit, best_fit or worst_fit")
	benchCmd.Flags().Int("ops", 10000, "number of allocate/free operations to perform")
	benchCmd.Flags().Int("max-size", 4096, "maximum payload size per allocation, in bytes")
	benchCmd.Flags().Bool("scribble", false, "fill every freshly returned payload with 0xAA")
	benchCmd.Flags().Bool("dump", false, "dump the final registry state to stderr")

	for _, name := range []string{"algorithm", "ops", "max-size", "scribble", "dump"} {
		_ = viper.BindPFlag(name, benchCmd.Flags().Lookup(name))
	}

	rootCmd.AddCommand(benchCmd)
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run a randomized allocate/free workload and report timing",
	RunE:  runBench,
}

func runBench(cmd *cobra.Command, args []string) error {
	var a memalloc.Allocator
	switch viper.GetString("algorithm") {
	case "best_fit":
		a.SetAlgorithm(memalloc.BestFit)
	case "worst_fit":
		a.SetAlgorithm(memalloc.WorstFit)
	default:
		a.SetAlgorithm(memalloc.FirstFit)
	}
	a.SetScribble(viper.GetBool("scribble"))

	ops := viper.GetInt("ops")
	maxSize := viper.GetInt("max-size")
	if maxSize < 1 {
		maxSize = 1
	}

	rng, err := mathutil.NewFC32(1, maxSize, true)
	if err != nil {
		return err
	}
	rng.Seed(time.Now().UnixNano())

	var live []uintptr
	start := time.Now()
	for i := 0; i < ops; i++ {
		if len(live) > 0 && i%2 == 0 {
			j := int(rng.Next()) % len(live)
			a.Free(ptrFromUintptr(live[j]))
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}
		p := a.Malloc(uintptr(int(rng.Next())))
		if p != nil {
			live = append(live, uintptrFromPtr(p))
		}
	}
	elapsed := time.Since(start)

	for _, p := range live {
		a.Free(ptrFromUintptr(p))
	}

	log.WithFields(map[string]interface{}{
		"ops":       ops,
		"elapsed":   elapsed,
		"algorithm": viper.GetString("algorithm"),
	}).Info("bench complete")

	if viper.GetBool("dump") {
		a.Dump(os.Stderr)
	}
	return nil
}
