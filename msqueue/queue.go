// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package msqueue

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfzoo"
	"code.hybscloud.com/lfzoo/arena"
)

// pad is cache-line padding keeping head and tail off the same line.
type pad [64]byte

// maxRetries bounds the enqueue and dequeue helping loops. Past this a
// caller gets a result back instead of spinning forever under
// pathological contention.
const maxRetries = 16

// node is one queue element. next is 0 until linked; it is read and
// written through atomix.Uintptr because multiple producers race to
// link the next node and multiple consumers race to read it while
// helping a lagging tail forward.
type node struct {
	next  atomix.Uintptr
	key   uint64
	value uint64
}

var nodeSize = unsafe.Sizeof(node{})

func nodePtr(addr uintptr) *node { return (*node)(unsafe.Pointer(addr)) }
func nodeAddr(n *node) uintptr   { return uintptr(unsafe.Pointer(n)) }

// Queue is the Michael-Scott MPMC FIFO. Every node, including the
// permanent dummy, is allocated from a.
type Queue struct {
	_     pad
	head  atomix.Uintptr
	_     pad
	tail  atomix.Uintptr
	_     pad
	count atomix.Int64

	arena *arena.Arena
}

// New creates an empty Queue backed by a.
func New(a *arena.Arena) *Queue {
	q := &Queue{arena: a}
	dummy, err := q.newNode(0, 0)
	if err != nil {
		// The dummy node is allocated once, eagerly, from a fresh arena;
		// an allocation failure here means the arena cannot even hold
		// one node, which is a caller configuration error.
		panic("msqueue: arena cannot hold the dummy node: " + err.Error())
	}
	addr := nodeAddr(dummy)
	q.head.StoreRelaxed(addr)
	q.tail.StoreRelaxed(addr)
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

// Insert enqueues (key, value). Returns [lfzoo.OutOfMemory] if a node
// cannot be allocated, or [lfzoo.Invalid] if the retry budget is
// exhausted under contention — a back-pressure signal, not a logic
// error.
func (q *Queue) Insert(key, value uint64) lfzoo.Result {
	n, err := q.newNode(key, value)
	if err != nil {
		return lfzoo.OutOfMemory
	}
	nAddr := nodeAddr(n)

	for i := 0; i < maxRetries; i++ {
		tailAddr := q.tail.LoadAcquire()
		tail := nodePtr(tailAddr)
		next := tail.next.LoadAcquire()

		if tailAddr != q.tail.LoadAcquire() {
			continue
		}
		if next != 0 {
			// Tail is lagging behind the last linked node; help it catch
			// up before retrying our own link attempt.
			q.tail.CompareAndSwapAcqRel(tailAddr, next)
			continue
		}
		if tail.next.CompareAndSwapAcqRel(0, nAddr) {
			q.tail.CompareAndSwapAcqRel(tailAddr, nAddr)
			q.count.AddAcqRel(1)
			return lfzoo.Success
		}
	}
	q.arena.Free(unsafe.Pointer(n))
	return lfzoo.Invalid
}

// Delete dequeues the oldest element. key is ignored; this is FIFO pop.
// Returns [lfzoo.NotFound] if the queue is empty, or [lfzoo.Busy] if the
// retry budget is exhausted under contention.
func (q *Queue) Delete(_ uint64) (lfzoo.Payload, lfzoo.Result) {
	for i := 0; i < maxRetries; i++ {
		headAddr := q.head.LoadAcquire()
		tailAddr := q.tail.LoadAcquire()
		head := nodePtr(headAddr)
		next := head.next.LoadAcquire()

		if headAddr != q.head.LoadAcquire() {
			continue
		}
		if next == 0 {
			return lfzoo.Payload{}, lfzoo.NotFound
		}
		if headAddr == tailAddr {
			// Tail lags one behind a fully linked node; help it forward.
			q.tail.CompareAndSwapAcqRel(tailAddr, next)
			continue
		}

		nextNode := nodePtr(next)
		p := lfzoo.Payload{Key: nextNode.key, Value: nextNode.value}
		if q.head.CompareAndSwapAcqRel(headAddr, next) {
			q.arena.Free(unsafe.Pointer(head))
			q.count.AddAcqRel(-1)
			return p, lfzoo.Success
		}
	}
	return lfzoo.Payload{}, lfzoo.Busy
}

// Pop is a convenience wrapper: 1 on dequeue, 0 on empty, negative on
// retry exhaustion.
func (q *Queue) Pop(out *lfzoo.Payload) int {
	p, res := q.Delete(0)
	switch res {
	case lfzoo.Success:
		*out = p
		return 1
	case lfzoo.NotFound:
		return 0
	default:
		return -1
	}
}

// Search performs a bounded snapshot scan from the dummy node for a key
// still resident in the queue. Concurrent with producers and consumers,
// consistent only at the instant each node is visited.
func (q *Queue) Search(key uint64) lfzoo.Result {
	limit := int(q.count.LoadRelaxed())*2 + 64
	cur := nodePtr(q.head.LoadAcquire())
	for i := 0; i < limit; i++ {
		next := cur.next.LoadAcquire()
		if next == 0 {
			return lfzoo.NotFound
		}
		n := nodePtr(next)
		if n.key == key {
			return lfzoo.Success
		}
		cur = n
	}
	return lfzoo.NotFound
}

// Verify walks the queue from the dummy node checking the traversal
// terminates within a bounded number of steps. The traversed length is
// not compared against the approximate count: Insert and Delete bump
// count with separate atomic adds that are not part of the same
// linearization point as the link/unlink itself, so the two can
// legitimately disagree for an instant under concurrent access. This is
// deliberate rather than special-cased per caller-declared quiescence.
func (q *Queue) Verify() lfzoo.Result {
	limit := int(q.count.LoadRelaxed())*2 + 64
	cur := nodePtr(q.head.LoadAcquire())
	for i := 0; i < limit; i++ {
		next := cur.next.LoadAcquire()
		if next == 0 {
			return lfzoo.Success
		}
		cur = nodePtr(next)
	}
	return lfzoo.Corrupt
}

// GetMetadata describes Queue for callers that select a structure
// dynamically.
func (q *Queue) GetMetadata() lfzoo.Metadata {
	return lfzoo.Metadata{
		Name:            "msqueue.Queue",
		Description:     "Michael-Scott lock-free MPMC FIFO queue",
		NodeSize:        nodeSize,
		RequiresLocking: false,
	}
}
