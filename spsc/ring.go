// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package spsc

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfzoo"
)

// pad is cache-line padding keeping the two indices apart from each
// other and from the cached copies each side keeps of the other's view.
type pad [64]byte

// Ring is a single-producer single-consumer ring buffer: modular
// indices in [0, size) rather than monotonic counters, one slot
// permanently held back to disambiguate full from empty.
type Ring struct {
	_          pad
	writeIdx   atomix.Uint64 // producer writes here
	_          pad
	cachedRead uint64 // producer's cached view of readIdx
	_          pad
	readIdx    atomix.Uint64 // consumer reads from here
	_          pad
	cachedWrit uint64 // consumer's cached view of writeIdx
	_          pad
	records    []lfzoo.Payload
	size       uint64
}

// New creates a Ring with room for size-1 live elements; size must be
// at least 2.
func New(size int) *Ring {
	if size < 2 {
		size = 2
	}
	return &Ring{
		records: make([]lfzoo.Payload, size),
		size:    uint64(size),
	}
}

// Cap returns the number of elements the ring can hold at once.
func (r *Ring) Cap() int { return int(r.size) - 1 }

// Size returns the slot count backing the ring (Cap()+1).
func (r *Ring) Size() int { return int(r.size) }

// IsEmpty reports an approximate empty state; meaningful only when
// called by the producer or the consumer, never a third party.
func (r *Ring) IsEmpty() bool {
	return r.readIdx.LoadAcquire() == r.writeIdx.LoadAcquire()
}

// IsFull reports an approximate full state, same caveat as IsEmpty.
func (r *Ring) IsFull() bool {
	w := r.writeIdx.LoadAcquire()
	next := (w + 1) % r.size
	return next == r.readIdx.LoadAcquire()
}

// Insert enqueues (key, value). Producer-only. Returns [lfzoo.Full] if
// the ring is full.
func (r *Ring) Insert(key, value uint64) lfzoo.Result {
	w := r.writeIdx.LoadRelaxed()
	next := (w + 1) % r.size
	if next == r.cachedRead {
		r.cachedRead = r.readIdx.LoadAcquire()
		if next == r.cachedRead {
			return lfzoo.Full
		}
	}
	r.records[w] = lfzoo.Payload{Key: key, Value: value}
	r.writeIdx.StoreRelease(next)
	return lfzoo.Success
}

// Delete dequeues the oldest element. key is ignored; this is FIFO pop.
// Consumer-only. Returns [lfzoo.NotFound] if the ring is empty.
func (r *Ring) Delete(_ uint64) (lfzoo.Payload, lfzoo.Result) {
	rd := r.readIdx.LoadRelaxed()
	if rd == r.cachedWrit {
		r.cachedWrit = r.writeIdx.LoadAcquire()
		if rd == r.cachedWrit {
			return lfzoo.Payload{}, lfzoo.NotFound
		}
	}
	p := r.records[rd]
	next := (rd + 1) % r.size
	r.readIdx.StoreRelease(next)
	return p, lfzoo.Success
}

// Pop is a convenience wrapper returning 0 or 1 items.
func (r *Ring) Pop(out *lfzoo.Payload) int {
	p, res := r.Delete(0)
	if res != lfzoo.Success {
		return 0
	}
	*out = p
	return 1
}

// Verify checks that both indices are in range and the observed size
// does not exceed capacity. Search is not supported for this structure:
// a ring buffer has no key-indexed lookup.
func (r *Ring) Verify() lfzoo.Result {
	w := r.writeIdx.LoadAcquire()
	rd := r.readIdx.LoadAcquire()
	if w >= r.size || rd >= r.size {
		return lfzoo.Corrupt
	}
	size := (w + r.size - rd) % r.size
	if size > r.size-1 {
		return lfzoo.Corrupt
	}
	return lfzoo.Success
}

// GetMetadata describes Ring for callers that select a structure
// dynamically.
func (r *Ring) GetMetadata() lfzoo.Metadata {
	return lfzoo.Metadata{
		Name:            "spsc.Ring",
		Description:     "single-producer single-consumer ring buffer",
		NodeSize:        0,
		RequiresLocking: false,
	}
}
