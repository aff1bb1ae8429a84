// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ckfifo

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfzoo"
	"code.hybscloud.com/lfzoo/arena"
)

type pad [64]byte

type entry struct {
	next  atomix.Uintptr
	key   uint64
	value uint64
}

var entrySize = unsafe.Sizeof(entry{})

func entryPtr(addr uintptr) *entry { return (*entry)(unsafe.Pointer(addr)) }
func entryAddr(e *entry) uintptr   { return uintptr(unsafe.Pointer(e)) }

// FIFO is a CK-style SPSC intrusive-list FIFO with a recyclable stub.
// headPtr is consumer-owned, tailPtr producer-owned; headSnapshot and
// garbage are producer-only bookkeeping for the recycling scheme, never
// touched by the consumer.
type FIFO struct {
	_            pad
	headPtr      atomix.Uintptr
	_            pad
	tailPtr      atomix.Uintptr
	_            pad
	count        atomix.Int64
	headSnapshot uintptr
	garbage      uintptr

	arena *arena.Arena
}

// New creates an empty FIFO backed by a.
func New(a *arena.Arena) *FIFO {
	q := &FIFO{arena: a}
	stub, err := q.newEntry()
	if err != nil {
		panic("ckfifo: arena cannot hold the stub entry: " + err.Error())
	}
	addr := entryAddr(stub)
	q.headPtr.StoreRelaxed(addr)
	q.tailPtr.StoreRelaxed(addr)
	q.headSnapshot = addr
	q.garbage = addr
	return q
}

func (q *FIFO) newEntry() (*entry, error) {
	ptr, err := q.arena.Alloc(entrySize)
	if err != nil {
		return nil, err
	}
	e := (*entry)(ptr)
	e.next.StoreRelaxed(0)
	return e, nil
}

// Len returns an approximate element count, observability only.
func (q *FIFO) Len() int { return int(q.count.LoadRelaxed()) }

// recycle returns a consumed entry ready for reuse, or false if nothing
// has been consumed since the last recycle.
func (q *FIFO) recycle() (*entry, bool) {
	if q.headSnapshot == q.garbage {
		q.headSnapshot = q.headPtr.LoadAcquire()
		if q.headSnapshot == q.garbage {
			return nil, false
		}
	}
	e := entryPtr(q.garbage)
	q.garbage = e.next.LoadAcquire()
	return e, true
}

// Insert enqueues (key, value). Producer-only. Reuses a consumed entry
// when one is available instead of calling the arena.
func (q *FIFO) Insert(key, value uint64) lfzoo.Result {
	e, ok := q.recycle()
	if !ok {
		var err error
		e, err = q.newEntry()
		if err != nil {
			return lfzoo.OutOfMemory
		}
	}
	e.key = key
	e.value = value
	e.next.StoreRelaxed(0)

	tailAddr := q.tailPtr.LoadRelaxed()
	tail := entryPtr(tailAddr)
	eAddr := entryAddr(e)
	tail.next.StoreRelease(eAddr)
	q.tailPtr.StoreRelaxed(eAddr)
	q.count.AddAcqRel(1)
	return lfzoo.Success
}

// Delete dequeues the oldest element. key is ignored; this is FIFO pop.
// Consumer-only. Returns [lfzoo.NotFound] if the FIFO is empty.
func (q *FIFO) Delete(_ uint64) (lfzoo.Payload, lfzoo.Result) {
	headAddr := q.headPtr.LoadRelaxed()
	head := entryPtr(headAddr)
	next := head.next.LoadAcquire()
	if next == 0 {
		return lfzoo.Payload{}, lfzoo.NotFound
	}
	n := entryPtr(next)
	p := lfzoo.Payload{Key: n.key, Value: n.value}
	q.headPtr.StoreRelease(next)
	q.count.AddAcqRel(-1)
	return p, lfzoo.Success
}

// Pop is a convenience wrapper returning 0 or 1 items, matching the
// uniform pop convention every structure in this module shares.
func (q *FIFO) Pop(out *lfzoo.Payload) int {
	p, res := q.Delete(0)
	if res != lfzoo.Success {
		return 0
	}
	*out = p
	return 1
}

// Verify walks from headPtr following next pointers and confirms tailPtr
// is reached within a bounded step count. Search is not supported for
// this structure: entries carry no stable index to search by once the
// recycling scheme starts reusing them.
func (q *FIFO) Verify() lfzoo.Result {
	limit := int(q.count.LoadRelaxed())*2 + 64
	cur := q.headPtr.LoadAcquire()
	tailAddr := q.tailPtr.LoadRelaxed()
	for i := 0; i < limit; i++ {
		if cur == tailAddr {
			return lfzoo.Success
		}
		n := entryPtr(cur)
		next := n.next.LoadAcquire()
		if next == 0 {
			// The producer's link has not yet become visible; benign.
			return lfzoo.Success
		}
		cur = next
	}
	return lfzoo.Corrupt
}

// GetMetadata describes FIFO for callers that select a structure
// dynamically.
func (q *FIFO) GetMetadata() lfzoo.Metadata {
	return lfzoo.Metadata{
		Name:            "ckfifo.FIFO",
		Description:     "CK-style SPSC intrusive-list FIFO with entry recycling",
		NodeSize:        entrySize,
		RequiresLocking: false,
	}
}
