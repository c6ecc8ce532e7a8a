// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.
//
// Modifications (c) 2017 The Memory Authors, further adapted for goalloc.

//go:build windows

package memalloc

import (
	"errors"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// mmap on Windows is a two-step process: CreateFileMapping gets a handle
// backed by the system paging file, then MapViewOfFile gets an actual
// pointer into the process's address space.

var (
	handleMapMu sync.Mutex
	handleMap   = map[uintptr]windows.Handle{}
)

// mapRegion is the Windows counterpart of the unix mapRegion, backed by
// golang.org/x/sys/windows instead of the lower-level syscall package.
func mapRegion(size int) ([]byte, error) {
	maxSizeHigh := uint32(int64(size) >> 32)
	maxSizeLow := uint32(int64(size) & 0xFFFFFFFF)

	h, err := windows.CreateFileMapping(windows.InvalidHandle, nil, windows.PAGE_READWRITE, maxSizeHigh, maxSizeLow, nil)
	if h == 0 {
		return nil, os.NewSyscallError("CreateFileMapping", err)
	}

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if addr == 0 {
		windows.CloseHandle(h)
		return nil, os.NewSyscallError("MapViewOfFile", err)
	}

	if addr%uintptr(osPageSize()) != 0 {
		panic("memalloc: mmap returned a non-page-aligned address")
	}

	handleMapMu.Lock()
	handleMap[addr] = h
	handleMapMu.Unlock()

	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// unmapRegion releases a mapping obtained from mapRegion. Locking the
// handle lookup alongside UnmapViewOfFile keeps another goroutine from
// racing a concurrent mapRegion that happens to reuse the freed address.
func unmapRegion(addr unsafe.Pointer, size int) error {
	base := uintptr(addr)

	handleMapMu.Lock()
	defer handleMapMu.Unlock()

	if err := windows.UnmapViewOfFile(base); err != nil {
		return err
	}

	h, ok := handleMap[base]
	delete(handleMap, base)

	if !ok {
		return errors.New("memalloc: unmap of unknown base address")
	}

	if err := windows.CloseHandle(h); err != nil {
		return os.NewSyscallError("CloseHandle", err)
	}
	return nil
}

// osPageSize reports the system's page size.
func osPageSize() int {
	var si windows.SystemInfo
	windows.GetSystemInfo(&si)
	return int(si.PageSize)
}
