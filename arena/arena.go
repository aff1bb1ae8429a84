// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arena

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/iobuf"

	"code.hybscloud.com/lfzoo/vyukhov"
)

// DefaultPageSize is used when [New] is given a page size of zero.
// It matches code.hybscloud.com/iobuf's own default page alignment.
const DefaultPageSize = iobuf.PageSize

// counterReserve is the tail slice of every page reserved, per spec, for
// the page's live-object counter. The counter itself is tracked as a
// field on the page descriptor rather than packed into the raw bytes
// (this arena never leaves process memory, so there is nothing on the
// other side of a mapping that needs to read it out of the buffer) but
// the reservation is kept so a page's usable-bytes arithmetic matches
// the original page_size-8 budget exactly.
const counterReserve = 8

var (
	// ErrTooLarge is returned by Alloc when size+8 would not fit in a page.
	ErrTooLarge = errors.New("arena: allocation too large for page")
	// ErrNoMemory is returned by Alloc when the arena has reached its
	// configured page budget and the free-page pool is empty.
	ErrNoMemory = errors.New("arena: no pages available")
)

// page is one page-aligned fragment of arena memory.
type page struct {
	base uintptr
	mem  []byte

	count atomic.Int64 // live objects allocated from this page; fetch-sub on Free.

	// active is true while some shard is still bump-allocating from this
	// page as its cur. A page is only a candidate for the free pool once
	// both active is false (its owning shard has moved on) and count is
	// zero (every object from it has been freed) — whichever of Free and
	// the owning shard's retirement observes both conditions true does
	// the enqueue. Both sides flip their half of the pair with a
	// full-fence RMW (CompareAndSwap/Add, never a plain Store) so neither
	// can miss the other's half once it has happened.
	active atomic.Bool
	pooled atomic.Bool // guards against enqueuing the same page twice
}

// shard is one CPU's bump-pointer allocator state. Exactly one goroutine
// may be actively bumping a shard's cursor at a time; busy is a
// lightweight spin guard standing in for real CPU pinning, which Go does
// not expose portably.
type shard struct {
	busy atomic.Bool
	cur  *page
	off  uintptr // bump cursor: next allocation starts at cur.base+off-size
}

// Arena is a page-fragment bump allocator shared by every structure in
// this module. Allocation is sharded to reduce cross-goroutine
// contention on the bump cursor; freeing is safe from any goroutine.
type Arena struct {
	pageSize uintptr
	usable   uintptr // pageSize - counterReserve
	maxPages int64   // 0 = unbounded
	pages    int64   // pages handed out so far (monotonic, for the maxPages budget)

	shards []shard

	registry sync.Map // base uintptr -> *page

	free *vyukhov.Ring[uintptr] // recycled page bases ready for reuse

	shardPick atomic.Uint64
}

// New creates an Arena with the given page size (rounded to the next
// power of two, minimum 4096; zero selects [DefaultPageSize]) and the
// given number of allocator shards (zero or negative selects
// runtime.GOMAXPROCS(0)). maxPages bounds the number of pages the arena
// will ever hand out; zero means unbounded.
func New(pageSize int, shards int, maxPages int) *Arena {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageSize = int(roundPow2(uint64(pageSize)))
	if pageSize < 4096 {
		pageSize = 4096
	}
	if shards <= 0 {
		shards = runtime.GOMAXPROCS(0)
	}
	if shards < 1 {
		shards = 1
	}

	a := &Arena{
		pageSize: uintptr(pageSize),
		usable:   uintptr(pageSize) - counterReserve,
		maxPages: int64(maxPages),
		shards:   make([]shard, shards),
		// Free-page pool capacity: generous relative to maxPages, or a
		// fixed ceiling when unbounded — it only ever holds pages that
		// have been handed out once already, so this bounds how many
		// freed-but-unreused pages can sit idle, not how many the arena
		// can allocate in total.
		free: vyukhov.New[uintptr](freePoolCapacity(maxPages)),
	}
	return a
}

func freePoolCapacity(maxPages int) int {
	if maxPages > 0 && maxPages < 1<<16 {
		return nextPow2(maxPages + 1)
	}
	return 1 << 16
}

func nextPow2(n int) int {
	if n < 2 {
		return 2
	}
	return int(roundPow2(uint64(n)))
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

// PageSize returns the arena's page size.
func (a *Arena) PageSize() uintptr { return a.pageSize }

// Alloc returns size bytes (rounded up to 8) of arena memory, or an
// error if size does not fit in a page or the arena has exhausted its
// page budget.
func (a *Arena) Alloc(size uintptr) (unsafe.Pointer, error) {
	size = (size + 7) &^ 7
	if size == 0 {
		size = 8
	}
	if size+counterReserve >= a.pageSize {
		return nil, ErrTooLarge
	}

	idx := a.pickShard()
	sh := &a.shards[idx]
	a.lockShard(sh)
	defer sh.busy.Store(false)

	if p := sh.cur; p != nil && p.active.Load() && p.count.Load() == 0 {
		// Every object on the shard's own page has been freed; rewind
		// its cursor so the whole page is reused in place.
		sh.off = a.usable
	}
	if sh.cur == nil || sh.off < size {
		if old := sh.cur; old != nil {
			a.retire(old)
		}
		p, err := a.freshPage()
		if err != nil {
			return nil, err
		}
		p.active.Store(true)
		sh.cur = p
		sh.off = a.usable
	}

	sh.off -= size
	p := sh.cur
	p.count.Add(1)
	ptr := unsafe.Pointer(&p.mem[sh.off])
	return ptr, nil
}

// Free releases a pointer previously returned by Alloc. Freeing a
// pointer Alloc never returned is undefined behavior; this implementation
// does not defend against it.
func (a *Arena) Free(ptr unsafe.Pointer) {
	base := uintptr(ptr) &^ (a.pageSize - 1)
	v, _ := a.registry.Load(base)
	p := v.(*page)
	if p.count.Add(-1) == 0 && !p.active.Load() {
		a.pool(p)
	}
}

// retire marks a page no longer a shard's cur. Only the shard that owns
// the page ever calls this, so the CompareAndSwap always succeeds; it is
// an RMW rather than a plain Store so the following count check cannot
// be reordered ahead of the flag flip a concurrent Free is checking.
func (a *Arena) retire(p *page) {
	if p.active.CompareAndSwap(true, false) && p.count.Load() == 0 {
		a.pool(p)
	}
}

// pool enqueues a page to the free pool exactly once.
func (a *Arena) pool(p *page) {
	if p.pooled.CompareAndSwap(false, true) {
		_ = a.free.Enqueue(&p.base)
	}
}

// freshPage returns a page ready for a shard to bump-allocate from:
// recycled from the free pool if one is available, otherwise newly
// carved from iobuf page-aligned memory, subject to maxPages.
func (a *Arena) freshPage() (*page, error) {
	if base, err := a.free.Dequeue(); err == nil {
		v, _ := a.registry.Load(base)
		p := v.(*page)
		p.count.Store(0)
		p.pooled.Store(false)
		return p, nil
	}

	if a.maxPages > 0 && atomic.AddInt64(&a.pages, 1) > a.maxPages {
		atomic.AddInt64(&a.pages, -1)
		return nil, ErrNoMemory
	}
	if a.maxPages <= 0 {
		atomic.AddInt64(&a.pages, 1)
	}

	mem := iobuf.AlignedMem(int(a.pageSize), int(a.pageSize))
	p := &page{
		base: uintptr(unsafe.Pointer(&mem[0])),
		mem:  mem,
	}
	a.registry.Store(p.base, p)
	return p, nil
}

func (a *Arena) pickShard() uint64 {
	n := uint64(len(a.shards))
	return a.shardPick.Add(1) % n
}

// lockShard spins until it acquires the shard's exclusive bump-cursor
// guard, so a given shard's cursor is never bumped by two goroutines at
// once, with a CAS spinlock standing in for the per-CPU pinning Go
// exposes no portable way to do.
func (a *Arena) lockShard(sh *shard) {
	for !sh.busy.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// Stats reports arena-wide bookkeeping. Counts here are observability
// only, exactly like the per-structure counts elsewhere in this module:
// never use them to drive correctness decisions.
type Stats struct {
	PagesHandedOut int64
	PageSize       uintptr
}

func (a *Arena) Stats() Stats {
	return Stats{
		PagesHandedOut: atomic.LoadInt64(&a.pages),
		PageSize:       a.pageSize,
	}
}
