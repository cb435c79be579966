//go:build linux
// +build linux

// File: arena/numa_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux NUMA allocator using mmap plus a best-effort mbind(2) call, with no
// cgo and no libnuma dependency. mbind has no portable wrapper in
// golang.org/x/sys/unix, so it is invoked as a raw syscall; a failure there
// only means the pages land wherever the kernel's default policy puts them,
// which is the same "degrades gracefully to a single-node topology" posture
// spec.md §6 asks of every platform probe.

package arena

import (
	"errors"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	sysMbindAMD64 = 237
	mpolBind      = 2
	mpolfStaticNodes = 1 << 15
)

type linuxNUMAAllocator struct{}

func newLinuxNUMAAllocator() NUMAAllocator {
	return &linuxNUMAAllocator{}
}

func (l *linuxNUMAAllocator) Alloc(size int, node int) ([]byte, error) {
	if size <= 0 {
		return nil, errors.New("arena: alloc size must be positive")
	}
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, err
	}
	bindToNode(b, node)
	return b, nil
}

func (l *linuxNUMAAllocator) Free(buf []byte) {
	if len(buf) == 0 {
		return
	}
	_ = unix.Munmap(buf)
}

func (l *linuxNUMAAllocator) Nodes() (int, error) {
	return 1, nil
}

// bindToNode best-effort-binds buf's pages to node via a raw mbind(2) call.
// Errors are deliberately swallowed: mbind support varies by kernel config
// and architecture, and this allocator must never fail a job over a
// placement hint.
func bindToNode(buf []byte, node int) {
	if len(buf) == 0 || node < 0 {
		return
	}
	mask := uint64(1) << uint(node)
	_, _, _ = syscall.Syscall6(
		sysMbindAMD64,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
		uintptr(mpolBind),
		uintptr(unsafe.Pointer(&mask)),
		uintptr(64),
		uintptr(mpolfStaticNodes),
	)
}

func createNUMAAllocatorLinux() NUMAAllocator {
	return newLinuxNUMAAllocator()
}
