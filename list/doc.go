// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package list implements a doubly-linked unordered key-value map: a
// single-writer-safe structure whose splice is not atomic. Concurrent
// writers race; callers that need concurrent mutation
// must serialize externally (a mutex around Insert/Delete) or use one of
// this module's lock-free structures instead. Concurrent read-only
// Search calls that never race with a write are fine.
package list
