// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arena

import (
	"sync/atomic"
	"unsafe"
)

// This file fills the gap between code.hybscloud.com/atomix's observed
// surface, which this module uses everywhere else for typed
// load/store/add/CAS with explicit memory ordering, and the few
// operations none of its types (Uint64, Uint128, Uintptr, Int64, Int32,
// Bool) expose: Exchange, FetchAnd, FetchOr, and a bare Fence — only
// Load/Store variants, Add, and CompareAndSwap exist. Rather than guess
// at unverified atomix API surface, the four operations below are
// implemented directly over the standard library, which already
// provides exactly what's missing.

// ExchangePointer atomically stores newVal at addr and returns the
// previous value — the primitive the unbounded MPSC producer's "one
// exchange plus one store" publish step would use natively if atomix
// had one.
func ExchangePointer(addr *unsafe.Pointer, newVal unsafe.Pointer) unsafe.Pointer {
	return atomic.SwapPointer(addr, newVal)
}

// FetchAndUint64 atomically ANDs mask into *addr and returns the prior
// value. sync/atomic has no native fetch-and; this is a CAS retry loop,
// the same technique atomix's own CompareAndSwap-based helpers use.
func FetchAndUint64(addr *uint64, mask uint64) uint64 {
	for {
		old := atomic.LoadUint64(addr)
		if atomic.CompareAndSwapUint64(addr, old, old&mask) {
			return old
		}
	}
}

// FetchOrUint64 atomically ORs mask into *addr and returns the prior value.
func FetchOrUint64(addr *uint64, mask uint64) uint64 {
	for {
		old := atomic.LoadUint64(addr)
		if atomic.CompareAndSwapUint64(addr, old, old|mask) {
			return old
		}
	}
}

// Fence issues a full sequentially-consistent barrier. Go's memory model
// already makes every sync/atomic operation sequentially consistent, so
// there is no bare fence primitive in the standard library; this forces
// one by performing a no-op atomic add on a dedicated cell, the common
// idiom for a standalone fence in Go.
func Fence() {
	atomic.AddInt64(&fenceCell, 0)
}

var fenceCell int64
