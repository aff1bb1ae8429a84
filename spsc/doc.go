// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package spsc implements a single-producer single-consumer ring
// buffer: a flat payload-slot array with read and write indices pinned
// to separate cache lines. Like the vyukhov ring, and unlike the
// node-based structures in this module, it needs no arena — its storage is one
// contiguous slice sized at construction, never grown or individually
// freed.
package spsc
