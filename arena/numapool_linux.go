//go:build linux
// +build linux

// File: arena/numapool_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific NUMA-aware allocator factory.

package arena

// createNUMAAllocator returns the NUMA allocator for Linux.
func createNUMAAllocator() NUMAAllocator {
	return createNUMAAllocatorLinux()
}
