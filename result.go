// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfzoo

import (
	"fmt"

	"code.hybscloud.com/iox"
)

// Result is the fixed-value outcome code every structure's operations
// return, chosen for cross-process / FFI stability rather than Go
// ergonomics alone — a driver on the other side of an arena mapping reads
// these as plain integers.
type Result int8

// Result codes. Values are part of the wire contract and must not change.
const (
	Success     Result = 0
	NotFound    Result = -1
	Exists      Result = -2
	OutOfMemory Result = -3
	Invalid     Result = -4
	Corrupt     Result = -5
	Busy        Result = -6
	Full        Result = -7
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case NotFound:
		return "not found"
	case Exists:
		return "exists"
	case OutOfMemory:
		return "out of memory"
	case Invalid:
		return "invalid"
	case Corrupt:
		return "corrupt"
	case Busy:
		return "busy"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("result(%d)", int8(r))
	}
}

// resultError wraps a non-Success Result as an error so callers that
// prefer idiomatic Go error handling don't have to switch on Result
// everywhere; callers that want the raw code can type-assert or keep
// using the Result return value directly where a structure exposes it.
type resultError struct{ r Result }

func (e resultError) Error() string { return "lfzoo: " + e.r.String() }

// Err converts r to an error, or nil for Success.
//
// [IsWouldBlock] classifies the Busy and Full errors as retryable. The
// error carries only the code: it wraps no [code.hybscloud.com/iox]
// error.
func (r Result) Err() error {
	if r == Success {
		return nil
	}
	return resultError{r}
}

// IsWouldBlock reports whether err is a retryable back-pressure signal:
// [Busy], [Full], or the underlying [code.hybscloud.com/iox] ErrWouldBlock.
func IsWouldBlock(err error) bool {
	if err == nil {
		return false
	}
	if re, ok := err.(resultError); ok {
		return re.r == Busy || re.r == Full
	}
	return iox.IsWouldBlock(err)
}

// ResultOf extracts the Result code carried by err. Returns Success for
// nil, Busy for an unwrapped iox "would block" error, and Invalid for any
// other error this package did not itself produce.
func ResultOf(err error) Result {
	if err == nil {
		return Success
	}
	if re, ok := err.(resultError); ok {
		return re.r
	}
	if iox.IsWouldBlock(err) {
		return Busy
	}
	return Invalid
}
