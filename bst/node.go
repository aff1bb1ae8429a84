// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bst

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// Update descriptor states, packed into the low 2 bits of the update
// word; the high bits are the info-record pointer.
const (
	stateClean = uintptr(0)
	stateDFlag = uintptr(1)
	stateIFlag = uintptr(2)
	stateMark  = uintptr(3)
	stateMask  = uintptr(0b11)
)

func descState(d uintptr) uintptr { return d & stateMask }
func descPtr(d uintptr) uintptr    { return d &^ stateMask }
func makeDesc(ptr, state uintptr) uintptr {
	return (ptr &^ stateMask) | (state & stateMask)
}

// node represents both leaves and internal nodes. isLeaf selects which
// fields are meaningful: a leaf uses key/value; an internal node uses
// key as its routing key plus left/right/update. A single struct avoids
// the unsafe type-punning a separate Leaf/Internal representation would
// need when casting between them through a tagged pointer.
type node struct {
	isLeaf bool
	key    atomix.Uint64
	value  atomix.Uint64
	left   atomix.Uintptr
	right  atomix.Uintptr
	update atomix.Uintptr
}

var nodeSize = unsafe.Sizeof(node{})

func nodePtr(addr uintptr) *node { return (*node)(unsafe.Pointer(addr)) }
func nodeAddr(n *node) uintptr   { return uintptr(unsafe.Pointer(n)) }

// Three reserved keys above any real key form the permanent sentinel
// scaffold. Insert rejects any key at or above sentinelFloor.
const (
	sentinelS1    = ^uint64(0) - 2
	sentinelS2    = ^uint64(0) - 1
	sentinelS3    = ^uint64(0)
	sentinelFloor = sentinelS1
)

func isSentinelLeaf(n *node) bool { return n.key.LoadAcquire() >= sentinelFloor }

// iInfo describes a proposed leaf-to-subtree substitution.
type iInfo struct {
	parent      uintptr
	oldLeaf     uintptr
	newInternal uintptr
	leftChild   bool // true: oldLeaf/newInternal replace parent's left child
}

var iInfoSize = unsafe.Sizeof(iInfo{})

func iInfoPtr(addr uintptr) *iInfo { return (*iInfo)(unsafe.Pointer(addr)) }
func iInfoAddr(i *iInfo) uintptr   { return uintptr(unsafe.Pointer(i)) }

// dInfo describes a proposed leaf removal.
type dInfo struct {
	grandparent   uintptr
	parent        uintptr
	leaf          uintptr
	parentUpdate  uintptr // parent's descriptor as observed before flagging
	leftOfGP      bool    // true: parent is grandparent's left child
}

var dInfoSize = unsafe.Sizeof(dInfo{})

func dInfoPtr(addr uintptr) *dInfo { return (*dInfo)(unsafe.Pointer(addr)) }
func dInfoAddr(i *dInfo) uintptr   { return uintptr(unsafe.Pointer(i)) }
