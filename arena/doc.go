// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package arena implements the shared-memory arena the rest of this
// module's structures allocate their nodes from: a page-fragment bump
// allocator, sharded per CPU, backed by page-aligned memory so that a
// pointer can be mapped back to its owning page by masking alone.
//
// The arena is written to be mappable into more than one execution
// context (the library's original motivation is a kernel-loaded sandboxed
// program and an ordinary user-space process sharing one address region),
// but nothing here requires that: an in-process [Arena] shared by
// goroutines is enough to exercise every structure in this module, and is
// all the test suite uses.
package arena
