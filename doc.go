// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfzoo provides the arena allocator and the uniform operation
// contract shared by the module's seven lock-free and wait-free
// concurrent data structures.
//
// # Structures
//
// Each structure lives in its own subpackage, one algorithm each:
//
//	list    - doubly-linked unordered map, single-writer safe
//	msqueue - Michael-Scott lock-free MPMC FIFO with a dummy node
//	vyukhov - bounded MPMC ring with sequence-stamped cells
//	mpsc    - unbounded lock-free-producer / obstruction-free-consumer queue
//	spsc    - single-producer single-consumer ring buffer
//	ckfifo  - alternative SPSC, intrusive linked list with a recyclable stub
//	bst     - leaf-oriented Ellen non-blocking binary search tree
//
// The node-based structures (list, msqueue, mpsc, ckfifo, bst) allocate
// from a shared [arena.Arena]; vyukhov and spsc keep their elements in a
// flat slice and take no arena. The arena is a page-fragment bump
// allocator that can be mapped into more than one execution context so
// that both sides dereference the same pointers. An in-process arena is
// sufficient to exercise every algorithm; nothing in this module requires
// an actual cross-process mapping.
//
// # Quick start
//
//	a := arena.New(arena.DefaultPageSize, 0, 0)
//	q := msqueue.New(a)
//	q.Insert(1, 100)
//	v, res := q.Delete(0)
//
// # Uniform contract
//
// Every structure in every subpackage is built by its package's New
// constructor and implements Insert/Delete/Verify/GetMetadata, plus
// Search except in spsc and ckfifo, with the same fixed [Result] codes,
// so a caller (or a test helper) can treat them uniformly:
//
//	Success = 0, NotFound = -1, Exists = -2, OutOfMemory = -3,
//	Invalid = -4, Corrupt = -5, Busy = -6, Full = -7
//
// [Result.Err] bridges a code to an idiomatic Go error; [IsWouldBlock]
// reports whether an error is
// the retryable "try again" signal (Busy, Full, or the underlying
// [code.hybscloud.com/iox] ErrWouldBlock).
//
// # Concurrency
//
// Every operation either completes, reports a logical-absence/capacity
// result, or exhausts a bounded internal retry budget and reports Busy
// (msqueue's Insert reports Invalid instead). The exceptions are mpsc's
// Insert and vyukhov's Enqueue/Dequeue, whose CAS retry loops have no
// bound: they spin until the CAS succeeds or the ring is seen full or
// empty. Nothing blocks the calling goroutine on a mutex or channel. Producer/consumer constraints
// (who may call Insert, who may call Delete) vary per structure and are
// documented on each subpackage.
//
// # Dependencies
//
// This module uses [code.hybscloud.com/atomix] for atomics with explicit
// memory ordering, [code.hybscloud.com/spin] for bounded-retry backoff,
// [code.hybscloud.com/iox] for semantic errors, and
// [code.hybscloud.com/iobuf] for page-aligned arena memory.
package lfzoo
