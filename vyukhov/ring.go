// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vyukhov

import (
	"errors"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// pad is cache-line padding to keep the producer and consumer cursors
// from sharing a line with each other or with the buffer header.
type pad [64]byte

// ErrFull and ErrEmpty are the generic Ring's control-flow signals.
// [MPMC] wraps these into the module's uniform [lfzoo.Result] codes.
var (
	ErrFull  = errors.New("vyukhov: ring full")
	ErrEmpty = errors.New("vyukhov: ring empty")
)

type cell[T any] struct {
	sequence atomix.Uint64
	value    T
}

// Ring is the generic sequence-stamped bounded ring buffer. It is the
// engine behind [MPMC]; it is also reused, instantiated over uintptr,
// as the arena package's free-page pool — a bounded MPMC ring is exactly
// what a pool of recycled pages needs, and reusing it here means the
// arena doesn't reimplement a second bounded queue from scratch.
type Ring[T any] struct {
	_          pad
	enqueuePos atomix.Uint64
	_          pad
	dequeuePos atomix.Uint64
	_          pad
	count      atomix.Int64
	_          pad
	buffer     []cell[T]
	mask       uint64
	capacity   uint64
}

// New creates a Ring whose capacity is rounded up to the next power of
// two (minimum 2).
func New[T any](capacity int) *Ring[T] {
	if capacity < 2 {
		capacity = 2
	}
	n := roundPow2(uint64(capacity))
	r := &Ring[T]{
		buffer:   make([]cell[T], n),
		mask:     n - 1,
		capacity: n,
	}
	for i := range r.buffer {
		r.buffer[i].sequence.StoreRelaxed(uint64(i))
	}
	return r
}

func roundPow2(n uint64) uint64 {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// Cap returns the ring's capacity.
func (r *Ring[T]) Cap() int { return int(r.capacity) }

// Len returns an approximate element count. Relaxed, observability only
// — never use it to decide whether Enqueue/Dequeue will succeed.
func (r *Ring[T]) Len() int { return int(r.count.LoadRelaxed()) }

// Enqueue adds elem to the ring. Returns [ErrFull] if the ring is full.
//
// Linearization point: the release store of cell.sequence = pos+1.
func (r *Ring[T]) Enqueue(elem *T) error {
	sw := spin.Wait{}
	pos := r.enqueuePos.LoadRelaxed()
	for {
		c := &r.buffer[pos&r.mask]
		seq := c.sequence.LoadAcquire()
		diff := int64(seq) - int64(pos)
		switch {
		case diff == 0:
			if r.enqueuePos.CompareAndSwapRelaxed(pos, pos+1) {
				c.value = *elem
				c.sequence.StoreRelease(pos + 1)
				r.count.AddAcqRel(1)
				return nil
			}
			sw.Once()
			pos = r.enqueuePos.LoadRelaxed()
		case diff < 0:
			return ErrFull
		default:
			pos = r.enqueuePos.LoadRelaxed()
			sw.Once()
		}
	}
}

// Dequeue removes and returns an element. Returns [ErrEmpty] if the ring
// is empty.
//
// Linearization point: the release store of cell.sequence = pos+mask+1.
func (r *Ring[T]) Dequeue() (T, error) {
	sw := spin.Wait{}
	pos := r.dequeuePos.LoadRelaxed()
	for {
		c := &r.buffer[pos&r.mask]
		seq := c.sequence.LoadAcquire()
		diff := int64(seq) - int64(pos+1)
		switch {
		case diff == 0:
			if r.dequeuePos.CompareAndSwapRelaxed(pos, pos+1) {
				v := c.value
				var zero T
				c.value = zero
				c.sequence.StoreRelease(pos + r.mask + 1)
				r.count.AddAcqRel(-1)
				return v, nil
			}
			sw.Once()
			pos = r.dequeuePos.LoadRelaxed()
		case diff < 0:
			var zero T
			return zero, ErrEmpty
		default:
			pos = r.dequeuePos.LoadRelaxed()
			sw.Once()
		}
	}
}

// Verify confirms the ring's position invariants: dequeuePos <=
// enqueuePos and the observed size does not exceed capacity. It is safe
// to call concurrently with Enqueue/Dequeue but, like every verify in
// this module, is only a meaningful correctness check in a
// single-threaded trace.
func (r *Ring[T]) Verify() error {
	enq := r.enqueuePos.LoadAcquire()
	deq := r.dequeuePos.LoadAcquire()
	if deq > enq {
		return errors.New("vyukhov: dequeuePos exceeds enqueuePos")
	}
	if enq-deq > r.capacity {
		return errors.New("vyukhov: size exceeds capacity")
	}
	if r.buffer == nil {
		return errors.New("vyukhov: nil buffer")
	}
	return nil
}
