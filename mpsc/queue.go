// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpsc

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfzoo"
	"code.hybscloud.com/lfzoo/arena"
)

type pad [64]byte

// popMaxRetries bounds Pop's busy-retry loop.
const popMaxRetries = 64

type node struct {
	next  atomix.Uintptr
	key   uint64
	value uint64
}

var nodeSize = unsafe.Sizeof(node{})

func nodePtr(addr uintptr) *node { return (*node)(unsafe.Pointer(addr)) }
func nodeAddr(n *node) uintptr   { return uintptr(unsafe.Pointer(n)) }

// Queue is the Vyukhov unbounded MPSC node queue. headPtr is the
// producer-facing insertion point; tailPtr is read and written only by
// the single consumer, but is kept atomic so Search and Verify remain
// safe to call from any goroutine.
type Queue struct {
	_       pad
	headPtr atomix.Uintptr
	_       pad
	tailPtr atomix.Uintptr
	_       pad
	count   atomix.Int64

	arena *arena.Arena
}

// New creates an empty Queue backed by a.
func New(a *arena.Arena) *Queue {
	q := &Queue{arena: a}
	stub, err := q.newNode(0, 0)
	if err != nil {
		panic("mpsc: arena cannot hold the stub node: " + err.Error())
	}
	addr := nodeAddr(stub)
	q.headPtr.StoreRelaxed(addr)
	q.tailPtr.StoreRelaxed(addr)
	return q
}

func (q *Queue) newNode(key, value uint64) (*node, error) {
	ptr, err := q.arena.Alloc(nodeSize)
	if err != nil {
		return nil, err
	}
	n := (*node)(ptr)
	n.key = key
	n.value = value
	n.next.StoreRelaxed(0)
	return n, nil
}

// Len returns an approximate element count, observability only.
func (q *Queue) Len() int { return int(q.count.LoadRelaxed()) }

// Insert enqueues (key, value): one exchange of headPtr plus one
// release-store linking the predecessor to the new node. atomix exposes
// no bare atomic exchange, so the exchange is a CompareAndSwapAcqRel
// retry loop with no bound, which makes Insert lock-free, not
// wait-free (see DESIGN.md).
func (q *Queue) Insert(key, value uint64) lfzoo.Result {
	n, err := q.newNode(key, value)
	if err != nil {
		return lfzoo.OutOfMemory
	}
	nAddr := nodeAddr(n)

	for {
		prev := q.headPtr.LoadAcquire()
		if q.headPtr.CompareAndSwapAcqRel(prev, nAddr) {
			prevNode := nodePtr(prev)
			prevNode.next.StoreRelease(nAddr)
			q.count.AddAcqRel(1)
			return lfzoo.Success
		}
	}
}

// Delete dequeues the oldest element. key is ignored; this is FIFO pop.
// Only one goroutine may call Delete or Pop at a time. Returns
// [lfzoo.NotFound] if the queue is empty, or [lfzoo.Busy] if a producer
// is caught between its exchange and its link — the caller should retry.
func (q *Queue) Delete(_ uint64) (lfzoo.Payload, lfzoo.Result) {
	tailAddr := q.tailPtr.LoadRelaxed()
	tail := nodePtr(tailAddr)
	next := tail.next.LoadAcquire()
	headAddr := q.headPtr.LoadAcquire()

	if tailAddr == headAddr {
		return lfzoo.Payload{}, lfzoo.NotFound
	}
	if next == 0 {
		return lfzoo.Payload{}, lfzoo.Busy
	}

	n := nodePtr(next)
	p := lfzoo.Payload{Key: n.key, Value: n.value}
	q.tailPtr.StoreRelaxed(next)
	q.arena.Free(unsafe.Pointer(tail))
	q.count.AddAcqRel(-1)
	return p, lfzoo.Success
}

// Pop wraps Delete with a bounded retry loop that treats busy as a retry
// signal and empty as a normal 0 return.
func (q *Queue) Pop(out *lfzoo.Payload) int {
	for i := 0; i < popMaxRetries; i++ {
		p, res := q.Delete(0)
		switch res {
		case lfzoo.Success:
			*out = p
			return 1
		case lfzoo.NotFound:
			return 0
		case lfzoo.Busy:
			continue
		default:
			return -1
		}
	}
	return -1
}

// Search performs a bounded scan from tailPtr for a key still resident
// in the queue.
func (q *Queue) Search(key uint64) lfzoo.Result {
	limit := int(q.count.LoadRelaxed())*2 + 64
	cur := q.tailPtr.LoadRelaxed()
	for i := 0; i < limit; i++ {
		n := nodePtr(cur)
		next := n.next.LoadAcquire()
		if next == 0 {
			return lfzoo.NotFound
		}
		nn := nodePtr(next)
		if nn.key == key {
			return lfzoo.Success
		}
		cur = next
	}
	return lfzoo.NotFound
}

// Verify walks from tailPtr following next pointers and confirms headPtr
// is reached within a bounded step count. Transiently observing a nil
// next before reaching headPtr is the producer's exchange/link window
// and is reported as success, not corruption.
func (q *Queue) Verify() lfzoo.Result {
	limit := int(q.count.LoadRelaxed())*2 + 64
	cur := q.tailPtr.LoadRelaxed()
	head := q.headPtr.LoadAcquire()
	for i := 0; i < limit; i++ {
		if cur == head {
			return lfzoo.Success
		}
		n := nodePtr(cur)
		next := n.next.LoadAcquire()
		if next == 0 {
			return lfzoo.Success
		}
		cur = next
	}
	return lfzoo.Corrupt
}

// GetMetadata describes Queue for callers that select a structure
// dynamically.
func (q *Queue) GetMetadata() lfzoo.Metadata {
	return lfzoo.Metadata{
		Name:            "mpsc.Queue",
		Description:     "Vyukhov unbounded MPSC node queue, lock-free producers",
		NodeSize:        nodeSize,
		RequiresLocking: false,
	}
}
