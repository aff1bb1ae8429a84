// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfzoo_test

import (
	"fmt"

	"code.hybscloud.com/lfzoo"
	"code.hybscloud.com/lfzoo/arena"
	"code.hybscloud.com/lfzoo/bst"
	"code.hybscloud.com/lfzoo/msqueue"
)

// Example demonstrates the uniform operation contract: every structure
// returns the same fixed [lfzoo.Result] codes regardless of algorithm.
func Example() {
	a := arena.New(arena.DefaultPageSize, 0, 0)

	q := msqueue.New(a)
	q.Insert(1, 100)
	q.Insert(2, 200)

	tr := bst.New(a)
	tr.Insert(1, 100)
	tr.Insert(2, 200)

	for _, res := range []lfzoo.Result{q.Search(2), tr.Search(2)} {
		fmt.Println(res)
	}

	// Output:
	// success
	// success
}

// ExampleResult_Err shows bridging a fixed Result code to an idiomatic
// Go error for callers that prefer errors.Is-style handling.
func ExampleResult_Err() {
	err := lfzoo.Busy.Err()
	fmt.Println(err)
	fmt.Println(lfzoo.IsWouldBlock(err))

	// Output:
	// lfzoo: busy
	// true
}
