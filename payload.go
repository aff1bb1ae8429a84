// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfzoo

// Payload is the common key/value pair every structure in this module
// shares: two 64-bit unsigned integers, uninterpreted by the library.
// Structures that are ordered (the BST) use Key as the
// ordering dimension; queue-like structures ignore Key entirely on
// dequeue and treat Value as opaque.
type Payload struct {
	Key   uint64
	Value uint64
}
