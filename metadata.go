// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfzoo

// Metadata describes a structure for callers that select or report on
// a structure without knowing its concrete type ahead of time (the
// sandbox-integration drivers this module is built for do exactly that,
// binding to whichever structure a given producer/consumer pair was
// configured with).
type Metadata struct {
	Name            string
	Description     string
	NodeSize        uintptr
	RequiresLocking bool
}

// Verifier is implemented by every structure's read-only integrity check.
type Verifier interface {
	Verify() Result
}

// MetadataProvider is implemented by every structure.
type MetadataProvider interface {
	GetMetadata() Metadata
}
