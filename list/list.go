// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package list

import (
	"unsafe"

	"code.hybscloud.com/lfzoo"
	"code.hybscloud.com/lfzoo/arena"
)

// node is one element of the list. pprev points at whichever word
// currently holds the pointer to this node — either another node's next
// field or the list's own first field — the classic kernel-style
// doubly-linked list trick that makes unlink O(1) with no
// special-casing for the head.
type node struct {
	next  *node
	pprev **node
	key   uint64
	value uint64
}

var nodeSize = unsafe.Sizeof(node{})

// List is a doubly-linked unordered key/value map. It is not safe for
// concurrent writers; Insert and Delete must be serialized by the
// caller. Concurrent Search calls that never race with a writer are
// fine.
type List struct {
	arena *arena.Arena
	first *node
	count int
}

// New creates an empty List backed by a.
func New(a *arena.Arena) *List {
	return &List{arena: a}
}

// Insert sets key's value, creating the entry if it does not exist.
// Returns [lfzoo.OutOfMemory] if a new node cannot be allocated.
func (l *List) Insert(key, value uint64) lfzoo.Result {
	for n := l.first; n != nil; n = n.next {
		if n.key == key {
			n.value = value
			return lfzoo.Success
		}
	}

	ptr, err := l.arena.Alloc(nodeSize)
	if err != nil {
		return lfzoo.OutOfMemory
	}
	n := (*node)(ptr)
	n.key = key
	n.value = value
	n.next = l.first
	n.pprev = &l.first
	if l.first != nil {
		l.first.pprev = &n.next
	}
	l.first = n
	l.count++
	return lfzoo.Success
}

// Delete removes key's entry. Returns [lfzoo.NotFound] if key is absent.
func (l *List) Delete(key uint64) (lfzoo.Payload, lfzoo.Result) {
	for n := l.first; n != nil; n = n.next {
		if n.key != key {
			continue
		}
		p := lfzoo.Payload{Key: n.key, Value: n.value}
		*n.pprev = n.next
		if n.next != nil {
			n.next.pprev = n.pprev
		}
		l.arena.Free(unsafe.Pointer(n))
		l.count--
		return p, lfzoo.Success
	}
	return lfzoo.Payload{}, lfzoo.NotFound
}

// Search returns [lfzoo.Success] and key's value, or [lfzoo.NotFound].
func (l *List) Search(key uint64) (uint64, lfzoo.Result) {
	for n := l.first; n != nil; n = n.next {
		if n.key == key {
			return n.value, lfzoo.Success
		}
	}
	return 0, lfzoo.NotFound
}

// Len returns the number of entries.
func (l *List) Len() int { return l.count }

// Iterate visits entries from most- to least-recently-inserted, calling
// fn for each until fn returns false or the list is exhausted. It
// returns the number of entries visited.
func (l *List) Iterate(fn func(lfzoo.Payload) bool) int {
	visited := 0
	for n := l.first; n != nil; n = n.next {
		visited++
		if !fn(lfzoo.Payload{Key: n.key, Value: n.value}) {
			break
		}
	}
	return visited
}

// Verify walks the list checking that every node's pprev actually points
// at the word referencing it, and that the traversal terminates within a
// bounded number of steps. A single-writer structure should never fail
// this unless memory has been corrupted.
func (l *List) Verify() lfzoo.Result {
	limit := l.count*2 + 16
	steps := 0
	prevSlot := &l.first
	for n := l.first; n != nil; n = n.next {
		steps++
		if steps > limit {
			return lfzoo.Corrupt
		}
		if n.pprev != prevSlot {
			return lfzoo.Corrupt
		}
		prevSlot = &n.next
	}
	return lfzoo.Success
}

// GetMetadata describes List for callers that select a structure
// dynamically.
func (l *List) GetMetadata() lfzoo.Metadata {
	return lfzoo.Metadata{
		Name:            "list.List",
		Description:     "doubly-linked unordered key/value map, single-writer",
		NodeSize:        nodeSize,
		RequiresLocking: true,
	}
}
