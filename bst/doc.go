// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bst implements the leaf-oriented Ellen non-blocking binary
// search tree: user data lives only in leaves, internal nodes route on a
// key and carry a tagged update descriptor (CLEAN/IFLAG/DFLAG/MARK) that
// both announces an in-flight structural change and lets any thread that
// observes it finish the change on the announcing thread's behalf —
// cooperative helping rather than locking.
//
// The tree is rooted at a permanent two-level sentinel scaffold (three
// "infinite" sentinel leaves) rather than the single sentinel pair
// described at a high level: this guarantees every real leaf always has
// both a parent and a grandparent, so delete's grandparent-swinging CAS
// never has to special-case a leaf hanging directly off the root. See
// DESIGN.md.
package bst
