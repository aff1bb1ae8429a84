// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package vyukhov implements the bounded multi-producer multi-consumer
// ring buffer described by Dmitry Vyukhov: a circular buffer of cells
// each carrying a sequence number that serves simultaneously as the
// producer/consumer coordination token and as the cell's ABA guard.
//
// Capacity is rounded up to a power of two (minimum 2). No per-element
// allocation occurs — reclamation is trivial — so Ring does not take an
// [code.hybscloud.com/lfzoo/arena.Arena].
package vyukhov
