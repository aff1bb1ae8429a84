// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package msqueue implements the Michael-Scott lock-free MPMC FIFO
// queue: a dummy-node linked list where producers race a
// compare-and-swap on the tail node's next pointer and help advance a
// lagging tail, and consumers race a compare-and-swap on the head
// pointer. Both sides carry a bounded retry budget rather than spinning
// forever.
package msqueue
