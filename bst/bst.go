// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bst

import (
	"unsafe"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfzoo"
	"code.hybscloud.com/lfzoo/arena"
)

// maxRetries bounds Insert's and Delete's propose/help/retry loop.
const maxRetries = 16

// maxDepth bounds Search's descent, guarding against pathological depth
// or a corrupted cycle.
const maxDepth = 64

// BST is the leaf-oriented Ellen non-blocking binary search tree.
type BST struct {
	root  uintptr // address of the permanent sentinel scaffold's superRoot
	count atomix.Int64
	arena *arena.Arena
}

// New builds an empty BST backed by a, with its permanent three-leaf
// sentinel scaffold already installed.
func New(a *arena.Arena) *BST {
	t := &BST{arena: a}

	leafS1, err1 := t.newLeaf(sentinelS1, 0)
	leafS2, err2 := t.newLeaf(sentinelS2, 0)
	leafS3, err3 := t.newLeaf(sentinelS3, 0)
	if err1 != nil || err2 != nil || err3 != nil {
		panic("bst: arena cannot hold the sentinel scaffold")
	}
	root, err := t.newInternal(sentinelS2, nodeAddr(leafS1), nodeAddr(leafS2))
	if err != nil {
		panic("bst: arena cannot hold the sentinel scaffold: " + err.Error())
	}
	superRoot, err := t.newInternal(sentinelS3, nodeAddr(root), nodeAddr(leafS3))
	if err != nil {
		panic("bst: arena cannot hold the sentinel scaffold: " + err.Error())
	}
	t.root = nodeAddr(superRoot)
	return t
}

func (t *BST) newLeaf(key, value uint64) (*node, error) {
	ptr, err := t.arena.Alloc(nodeSize)
	if err != nil {
		return nil, err
	}
	n := (*node)(ptr)
	n.isLeaf = true
	n.key.StoreRelaxed(key)
	n.value.StoreRelaxed(value)
	return n, nil
}

func (t *BST) newInternal(routingKey uint64, left, right uintptr) (*node, error) {
	ptr, err := t.arena.Alloc(nodeSize)
	if err != nil {
		return nil, err
	}
	n := (*node)(ptr)
	n.isLeaf = false
	n.key.StoreRelaxed(routingKey)
	n.left.StoreRelaxed(left)
	n.right.StoreRelaxed(right)
	n.update.StoreRelaxed(makeDesc(0, stateClean))
	return n, nil
}

func (t *BST) newIInfo(parent, oldLeaf, newInternal uintptr, leftChild bool) (*iInfo, error) {
	ptr, err := t.arena.Alloc(iInfoSize)
	if err != nil {
		return nil, err
	}
	i := (*iInfo)(ptr)
	i.parent = parent
	i.oldLeaf = oldLeaf
	i.newInternal = newInternal
	i.leftChild = leftChild
	return i, nil
}

func (t *BST) newDInfo(gp, parent, leaf, parentUpdate uintptr, leftOfGP bool) (*dInfo, error) {
	ptr, err := t.arena.Alloc(dInfoSize)
	if err != nil {
		return nil, err
	}
	d := (*dInfo)(ptr)
	d.grandparent = gp
	d.parent = parent
	d.leaf = leaf
	d.parentUpdate = parentUpdate
	d.leftOfGP = leftOfGP
	return d, nil
}

// searchResult is what a descent hands back: the grandparent and parent
// with the descriptors observed for them, the leaf reached, direction
// flags, and whether it holds key.
type searchResult struct {
	aborted bool

	grandparent uintptr
	parent      uintptr
	leaf        uintptr
	gpDesc      uintptr
	pDesc       uintptr
	leftOfParent bool
	leftOfGP     bool
	found        bool
	payload      lfzoo.Payload
}

// search descends from the root. On an internal node whose descriptor
// is not CLEAN, it helps finish that node's pending operation (the
// observing-thread-helps policy, chosen over retry-without-help so the
// tree keeps lock-free progress under contention) and reports aborted
// so the caller restarts from the root against the now-updated tree.
func (t *BST) search(key uint64) searchResult {
	var grandparent, parent uintptr
	var gpDesc, pDesc uintptr
	var leftOfParent, leftOfGP bool

	cur := t.root
	for depth := 0; depth < maxDepth; depth++ {
		n := nodePtr(cur)
		if n.isLeaf {
			found := n.key.LoadAcquire() == key && !isSentinelLeaf(n)
			return searchResult{
				grandparent:  grandparent,
				parent:       parent,
				leaf:         cur,
				gpDesc:       gpDesc,
				pDesc:        pDesc,
				leftOfParent: leftOfParent,
				leftOfGP:     leftOfGP,
				found:        found,
				payload:      lfzoo.Payload{Key: n.key.LoadAcquire(), Value: n.value.LoadAcquire()},
			}
		}
		desc := n.update.LoadAcquire()
		switch descState(desc) {
		case stateIFlag:
			t.helpInsert(iInfoPtr(descPtr(desc)))
			return searchResult{aborted: true}
		case stateDFlag:
			d := dInfoPtr(descPtr(desc))
			if t.helpDelete(d) {
				t.helpMarked(d)
			}
			return searchResult{aborted: true}
		case stateMark:
			t.helpMarked(dInfoPtr(descPtr(desc)))
			return searchResult{aborted: true}
		}

		grandparent, gpDesc, leftOfGP = parent, pDesc, leftOfParent
		parent, pDesc = cur, desc

		goLeft := key < n.key.LoadAcquire()
		leftOfParent = goLeft
		if goLeft {
			cur = n.left.LoadAcquire()
		} else {
			cur = n.right.LoadAcquire()
		}
	}
	return searchResult{aborted: true}
}

// Search reports [lfzoo.Success] if key is present, [lfzoo.NotFound]
// otherwise, or [lfzoo.Busy] if the traversal repeatedly aborts on a
// concurrently flagged node.
func (t *BST) Search(key uint64) lfzoo.Result {
	for i := 0; i < maxRetries; i++ {
		sr := t.search(key)
		if sr.aborted {
			continue
		}
		if sr.found {
			return lfzoo.Success
		}
		return lfzoo.NotFound
	}
	return lfzoo.Busy
}

// Insert sets key's value, creating a leaf if it does not exist;
// inserting an already-present key overwrites its value. Returns
// [lfzoo.Invalid] if key falls in the reserved sentinel range,
// [lfzoo.OutOfMemory] if a node or info record cannot be allocated, or
// [lfzoo.Busy] if the retry budget is exhausted.
func (t *BST) Insert(key, value uint64) lfzoo.Result {
	if key >= sentinelFloor {
		return lfzoo.Invalid
	}

	for i := 0; i < maxRetries; i++ {
		sr := t.search(key)
		if sr.aborted {
			continue
		}
		if sr.found {
			nodePtr(sr.leaf).value.StoreRelease(value)
			return lfzoo.Success
		}
		if descState(sr.pDesc) != stateClean {
			continue
		}
		if sr.grandparent != 0 && descState(sr.gpDesc) != stateClean {
			continue
		}

		existing := nodePtr(sr.leaf)
		existingKey := existing.key.LoadAcquire()

		newLeaf, err := t.newLeaf(key, value)
		if err != nil {
			return lfzoo.OutOfMemory
		}

		var routingKey uint64
		var left, right uintptr
		if key < existingKey {
			routingKey, left, right = existingKey, nodeAddr(newLeaf), sr.leaf
		} else {
			routingKey, left, right = key, sr.leaf, nodeAddr(newLeaf)
		}
		newInternal, err := t.newInternal(routingKey, left, right)
		if err != nil {
			t.arena.Free(unsafe.Pointer(newLeaf))
			return lfzoo.OutOfMemory
		}

		info, err := t.newIInfo(sr.parent, sr.leaf, nodeAddr(newInternal), sr.leftOfParent)
		if err != nil {
			t.arena.Free(unsafe.Pointer(newLeaf))
			t.arena.Free(unsafe.Pointer(newInternal))
			return lfzoo.OutOfMemory
		}

		newDesc := makeDesc(iInfoAddr(info), stateIFlag)
		parent := nodePtr(sr.parent)
		if parent.update.CompareAndSwapAcqRel(sr.pDesc, newDesc) {
			t.helpInsert(info)
			t.count.AddAcqRel(1)
			return lfzoo.Success
		}

		t.arena.Free(unsafe.Pointer(newLeaf))
		t.arena.Free(unsafe.Pointer(newInternal))
		t.arena.Free(unsafe.Pointer(info))
	}
	return lfzoo.Busy
}

// helpInsert finalizes a proposed insert: swings the parent's child
// pointer onto the new subtree, then clears the parent's descriptor.
// Safe to call more than once for the same info record — the second
// caller's CASes simply fail.
func (t *BST) helpInsert(info *iInfo) {
	parent := nodePtr(info.parent)
	if info.leftChild {
		parent.left.CompareAndSwapAcqRel(info.oldLeaf, info.newInternal)
	} else {
		parent.right.CompareAndSwapAcqRel(info.oldLeaf, info.newInternal)
	}
	iDesc := makeDesc(iInfoAddr(info), stateIFlag)
	parent.update.CompareAndSwapAcqRel(iDesc, makeDesc(0, stateClean))
}

// Delete removes key's leaf. Returns [lfzoo.NotFound] if key is absent,
// or [lfzoo.Busy] if the retry budget is exhausted.
func (t *BST) Delete(key uint64) (lfzoo.Payload, lfzoo.Result) {
	for i := 0; i < maxRetries; i++ {
		sr := t.search(key)
		if sr.aborted {
			continue
		}
		if !sr.found {
			return lfzoo.Payload{}, lfzoo.NotFound
		}
		if sr.grandparent == 0 {
			// The sentinel scaffold guarantees this never happens for a
			// real leaf; a zero grandparent here means the tree itself
			// is corrupted.
			return lfzoo.Payload{}, lfzoo.Corrupt
		}
		if descState(sr.gpDesc) != stateClean || descState(sr.pDesc) != stateClean {
			continue
		}

		dinfo, err := t.newDInfo(sr.grandparent, sr.parent, sr.leaf, sr.pDesc, sr.leftOfGP)
		if err != nil {
			return lfzoo.Payload{}, lfzoo.OutOfMemory
		}

		newDesc := makeDesc(dInfoAddr(dinfo), stateDFlag)
		grandparent := nodePtr(sr.grandparent)
		if !grandparent.update.CompareAndSwapAcqRel(sr.gpDesc, newDesc) {
			t.arena.Free(unsafe.Pointer(dinfo))
			continue
		}

		if t.helpDelete(dinfo) {
			t.helpMarked(dinfo)
			t.count.AddAcqRel(-1)
			return sr.payload, lfzoo.Success
		}
		// helpDelete backed out and restored the grandparent to CLEAN.
	}
	return lfzoo.Payload{}, lfzoo.Busy
}

// helpDelete attempts to mark the parent for removal. It returns true
// if the parent is now marked (by this call or a racing helper) and
// help-marked should proceed; false if it backed out because the parent
// had a newer operation pending, restoring the grandparent to CLEAN.
func (t *BST) helpDelete(info *dInfo) bool {
	parent := nodePtr(info.parent)
	markDesc := makeDesc(dInfoAddr(info), stateMark)
	if parent.update.CompareAndSwapAcqRel(info.parentUpdate, markDesc) {
		return true
	}
	if parent.update.LoadAcquire() == markDesc {
		return true
	}

	gp := nodePtr(info.grandparent)
	dDesc := makeDesc(dInfoAddr(info), stateDFlag)
	gp.update.CompareAndSwapAcqRel(dDesc, makeDesc(0, stateClean))
	return false
}

// helpMarked finishes a delete whose parent is already marked: swings
// the grandparent's child pointer from the parent onto the leaf's
// sibling, clears the grandparent's descriptor, and hands the parent
// and the deleted leaf back to the arena. Safe to call more than once
// for the same info record: only the call whose child-pointer CAS
// succeeds frees the two nodes.
func (t *BST) helpMarked(info *dInfo) {
	parent := nodePtr(info.parent)
	gp := nodePtr(info.grandparent)

	left := parent.left.LoadAcquire()
	var sibling uintptr
	if left == info.leaf {
		sibling = parent.right.LoadAcquire()
	} else {
		sibling = parent.left.LoadAcquire()
	}

	var swung bool
	if info.leftOfGP {
		swung = gp.left.CompareAndSwapAcqRel(info.parent, sibling)
	} else {
		swung = gp.right.CompareAndSwapAcqRel(info.parent, sibling)
	}
	dDesc := makeDesc(dInfoAddr(info), stateDFlag)
	gp.update.CompareAndSwapAcqRel(dDesc, makeDesc(0, stateClean))

	if swung {
		t.arena.Free(unsafe.Pointer(parent))
		t.arena.Free(unsafe.Pointer(nodePtr(info.leaf)))
	}
}

// Pop is not meaningful for an ordered map; BST does not implement it.

// Iterate visits a snapshot of the tree's live leaves in an unspecified
// order, calling fn for each until fn returns false or the traversal
// ends. It returns the number of leaves visited. The walk is bounded to
// guard against a corrupted cycle.
func (t *BST) Iterate(fn func(lfzoo.Payload) bool) int {
	visited := 0
	stack := []uintptr{t.root}
	limit := int(t.count.LoadRelaxed())*4 + 256
	steps := 0
	for len(stack) > 0 && steps < limit {
		steps++
		addr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := nodePtr(addr)
		if n.isLeaf {
			if isSentinelLeaf(n) {
				continue
			}
			visited++
			if !fn(lfzoo.Payload{Key: n.key.LoadAcquire(), Value: n.value.LoadAcquire()}) {
				return visited
			}
			continue
		}
		stack = append(stack, n.left.LoadAcquire(), n.right.LoadAcquire())
	}
	return visited
}

// Verify walks the tree depth-first from the root confirming that no
// child pointer is nil and that the traversal terminates within a
// bounded step count.
func (t *BST) Verify() lfzoo.Result {
	limit := int(t.count.LoadRelaxed())*4 + 256
	stack := []uintptr{t.root}
	steps := 0
	for len(stack) > 0 {
		steps++
		if steps > limit {
			return lfzoo.Corrupt
		}
		addr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if addr == 0 {
			return lfzoo.Corrupt
		}
		n := nodePtr(addr)
		if n.isLeaf {
			continue
		}
		stack = append(stack, n.left.LoadAcquire(), n.right.LoadAcquire())
	}
	return lfzoo.Success
}

// GetMetadata describes BST for callers that select a structure
// dynamically.
func (t *BST) GetMetadata() lfzoo.Metadata {
	return lfzoo.Metadata{
		Name:            "bst.BST",
		Description:     "leaf-oriented Ellen non-blocking binary search tree",
		NodeSize:        nodeSize,
		RequiresLocking: false,
	}
}
