// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vyukhov

import (
	"unsafe"

	"code.hybscloud.com/lfzoo"
)

var cellSize = unsafe.Sizeof(cell[lfzoo.Payload]{})

// MPMC is the Vyukhov bounded multi-producer multi-consumer ring,
// exposed through the module's uniform operation contract: Insert is
// FIFO enqueue, Delete is FIFO dequeue (the key argument is ignored,
// matching every queue-like structure in this module), Search is a
// snapshot scan for a key still resident in the ring.
type MPMC struct {
	ring *Ring[lfzoo.Payload]
}

// NewMPMC creates an MPMC ring of the given capacity (rounded to a power of
// two, minimum 2).
func NewMPMC(capacity int) *MPMC {
	return &MPMC{ring: New[lfzoo.Payload](capacity)}
}

// Cap returns the ring's capacity.
func (q *MPMC) Cap() int { return q.ring.Cap() }

// Insert enqueues (key, value). Returns [lfzoo.Full] if the ring is full.
func (q *MPMC) Insert(key, value uint64) lfzoo.Result {
	p := lfzoo.Payload{Key: key, Value: value}
	if err := q.ring.Enqueue(&p); err != nil {
		return lfzoo.Full
	}
	return lfzoo.Success
}

// Delete dequeues the oldest element. key is ignored; this is FIFO pop.
// Returns the dequeued payload and [lfzoo.Success], or a zero payload
// and [lfzoo.NotFound] if the ring is empty.
func (q *MPMC) Delete(_ uint64) (lfzoo.Payload, lfzoo.Result) {
	p, err := q.ring.Dequeue()
	if err != nil {
		return lfzoo.Payload{}, lfzoo.NotFound
	}
	return p, lfzoo.Success
}

// Pop is a convenience wrapper around Delete: 1 on dequeue, 0 on empty.
func (q *MPMC) Pop(out *lfzoo.Payload) int {
	p, res := q.Delete(0)
	if res != lfzoo.Success {
		return 0
	}
	*out = p
	return 1
}

// Search performs a snapshot scan for key, consistent only at the
// instant of observation — concurrent Dequeue calls may remove the
// element before or after this call returns.
func (q *MPMC) Search(key uint64) lfzoo.Result {
	enq := q.ring.enqueuePos.LoadAcquire()
	deq := q.ring.dequeuePos.LoadAcquire()
	for pos := deq; pos < enq; pos++ {
		c := &q.ring.buffer[pos&q.ring.mask]
		if c.sequence.LoadAcquire() == pos+1 && c.value.Key == key {
			return lfzoo.Success
		}
	}
	return lfzoo.NotFound
}

// Iterate visits a snapshot of the ring's elements from oldest to
// newest, calling fn for each until fn returns false or the scan ends.
// It returns the number of elements visited.
func (q *MPMC) Iterate(fn func(lfzoo.Payload) bool) int {
	enq := q.ring.enqueuePos.LoadAcquire()
	deq := q.ring.dequeuePos.LoadAcquire()
	visited := 0
	for pos := deq; pos < enq; pos++ {
		c := &q.ring.buffer[pos&q.ring.mask]
		if c.sequence.LoadAcquire() != pos+1 {
			continue
		}
		visited++
		if !fn(c.value) {
			break
		}
	}
	return visited
}

// Verify performs the ring's position-invariant check.
func (q *MPMC) Verify() lfzoo.Result {
	if q.ring.Verify() != nil {
		return lfzoo.Corrupt
	}
	return lfzoo.Success
}

// GetMetadata describes MPMC for callers that select a structure
// dynamically.
func (q *MPMC) GetMetadata() lfzoo.Metadata {
	return lfzoo.Metadata{
		Name:            "vyukhov.MPMC",
		Description:     "bounded MPMC ring with sequence-stamped cells",
		NodeSize:        cellSize,
		RequiresLocking: false,
	}
}
