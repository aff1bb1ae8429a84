// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ckfifo implements an alternative CK-style SPSC intrusive-list
// FIFO: a singly-linked list with a stub entry and an entry-recycling
// scheme (head_snapshot/garbage) that lets the
// producer reuse entries the consumer has already passed instead of
// calling the arena on every enqueue.
package ckfifo
