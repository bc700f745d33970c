// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package worklist

import "code.hybscloud.com/iox"

// ErrWouldBlock indicates that no work is available right now.
//
// Pop returns ErrWouldBlock when the worklist (including any steal victims
// the policy consults) has nothing to hand out at this instant. It is a
// control flow signal, not a failure: more work may appear from another
// worker, so the caller retries or terminates by consensus with the other
// workers.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    v, err := wl.Pop(t)
//	    if err == nil {
//	        backoff.Reset()
//	        process(v)
//	        continue
//	    }
//	    if worklist.IsWouldBlock(err) {
//	        backoff.Wait() // idle: retry or run the termination protocol
//	        continue
//	    }
//	    return err // unexpected
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err signals transient emptiness.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil or ErrWouldBlock.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
