//go:build windows
// +build windows

// File: arena/numapool_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows-specific NUMA-aware allocator factory.

package arena

// createNUMAAllocator returns the NUMA allocator for Windows.
func createNUMAAllocator() NUMAAllocator {
	return newWindowsNUMAAllocator()
}
