// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mpsc implements the Vyukhov unbounded multi-producer
// single-consumer node queue: a producer does one exchange of the head
// pointer plus one release-store of the predecessor's next field, the
// exchange being a compare-and-swap retry loop, so producers are
// lock-free rather than wait-free; the single consumer is obstruction-free,
// occasionally observing the transient window between a producer's
// exchange and its link and reporting busy so the caller can retry.
package mpsc
