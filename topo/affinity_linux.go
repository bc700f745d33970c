// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package topo

import (
	"runtime"
	"syscall"
	"unsafe"
)

// Pin binds the calling goroutine to an OS thread and that thread to the
// CPU matching the worker id. Best effort: ids beyond 63 CPUs are left to
// the OS scheduler.
func (t *Thread) Pin() {
	runtime.LockOSThread()
	setAffinity(t.id)
}

// Unpin releases the OS-thread binding established by Pin.
func (t *Thread) Unpin() {
	runtime.UnlockOSThread()
}

// setAffinity pins the current thread to the given CPU via
// sched_setaffinity(2).
func setAffinity(cpu int) {
	if cpu < 0 || cpu >= 64 {
		return
	}
	mask := [1]uintptr{1 << uint(cpu)}
	_, _, _ = syscall.RawSyscall(
		syscall.SYS_SCHED_SETAFFINITY,
		0, // current thread
		uintptr(unsafe.Sizeof(mask[0])),
		uintptr(unsafe.Pointer(&mask)),
	)
}
