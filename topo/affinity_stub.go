// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package topo

import "runtime"

// Pin binds the calling goroutine to an OS thread. CPU affinity is only
// available on Linux; elsewhere the OS scheduler places the thread.
func (t *Thread) Pin() {
	runtime.LockOSThread()
}

// Unpin releases the OS-thread binding established by Pin.
func (t *Thread) Unpin() {
	runtime.UnlockOSThread()
}
