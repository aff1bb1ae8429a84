// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bst_test

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"code.hybscloud.com/lfzoo"
	"code.hybscloud.com/lfzoo/arena"
	"code.hybscloud.com/lfzoo/bst"
)

func newTree() *bst.BST {
	return bst.New(arena.New(4096, 4, 0))
}

func TestInsertSearchDelete(t *testing.T) {
	tr := newTree()

	if res := tr.Search(1); res != lfzoo.NotFound {
		t.Fatalf("Search on empty tree: got %v, want NotFound", res)
	}
	if res := tr.Insert(1, 100); res != lfzoo.Success {
		t.Fatalf("Insert: got %v", res)
	}
	if res := tr.Search(1); res != lfzoo.Success {
		t.Fatalf("Search(1): got %v, want Success", res)
	}

	p, res := tr.Delete(1)
	if res != lfzoo.Success {
		t.Fatalf("Delete(1): got %v", res)
	}
	if p.Value != 100 {
		t.Fatalf("Delete(1): got value %d, want 100", p.Value)
	}
	if res := tr.Search(1); res != lfzoo.NotFound {
		t.Fatal("Search(1) after Delete: expected NotFound")
	}
	if _, res := tr.Delete(1); res != lfzoo.NotFound {
		t.Fatal("Delete(1) twice: expected NotFound")
	}
}

func TestInsertOverwrite(t *testing.T) {
	tr := newTree()
	tr.Insert(5, 50)
	if res := tr.Insert(5, 51); res != lfzoo.Success {
		t.Fatalf("Insert (overwrite): got %v", res)
	}
	var got uint64
	tr.Iterate(func(p lfzoo.Payload) bool {
		if p.Key == 5 {
			got = p.Value
		}
		return true
	})
	if got != 51 {
		t.Fatalf("overwritten value: got %d, want 51", got)
	}
}

func TestInsertRejectsSentinelRange(t *testing.T) {
	tr := newTree()
	if res := tr.Insert(^uint64(0), 1); res != lfzoo.Invalid {
		t.Fatalf("Insert(MaxUint64): got %v, want Invalid", res)
	}
}

// TestManyInsertsAndDeletes exercises the tree as subtrees grow several
// internal nodes deep and then get torn back down.
func TestManyInsertsAndDeletes(t *testing.T) {
	tr := newTree()
	const n = 2000
	r := rand.New(rand.NewSource(1))
	keys := r.Perm(n)

	for _, k := range keys {
		if res := tr.Insert(uint64(k), uint64(k)*2); res != lfzoo.Success {
			t.Fatalf("Insert(%d): %v", k, res)
		}
	}
	if res := tr.Verify(); res != lfzoo.Success {
		t.Fatalf("Verify after inserts: got %v", res)
	}
	for _, k := range keys {
		if res := tr.Search(uint64(k)); res != lfzoo.Success {
			t.Fatalf("Search(%d): got %v, want Success", k, res)
		}
	}

	r.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	for _, k := range keys {
		p, res := tr.Delete(uint64(k))
		if res != lfzoo.Success {
			t.Fatalf("Delete(%d): %v", k, res)
		}
		if p.Value != uint64(k)*2 {
			t.Fatalf("Delete(%d): got value %d, want %d", k, p.Value, uint64(k)*2)
		}
	}
	if res := tr.Verify(); res != lfzoo.Success {
		t.Fatalf("Verify after deletes: got %v", res)
	}
	for _, k := range keys {
		if res := tr.Search(uint64(k)); res != lfzoo.NotFound {
			t.Fatalf("Search(%d) after delete: got %v, want NotFound", k, res)
		}
	}
}

func TestIterate(t *testing.T) {
	tr := newTree()
	want := map[uint64]uint64{1: 10, 2: 20, 3: 30}
	for k, v := range want {
		tr.Insert(k, v)
	}
	got := make(map[uint64]uint64)
	visited := tr.Iterate(func(p lfzoo.Payload) bool {
		got[p.Key] = p.Value
		return true
	})
	if visited != len(want) {
		t.Fatalf("Iterate visited %d, want %d", visited, len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("Iterate: key %d got %d, want %d", k, got[k], v)
		}
	}
}

// TestConcurrentMixedOps drives concurrent inserts, deletes, and
// searches for a shared key range, then checks the tree is still
// internally consistent.
func TestConcurrentMixedOps(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	tr := newTree()
	const (
		goroutines = 8
		opsPer     = 2000
		keySpace   = 500
	)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for i := 0; i < opsPer; i++ {
				k := uint64(r.Intn(keySpace))
				switch r.Intn(3) {
				case 0:
					tr.Insert(k, k)
				case 1:
					tr.Delete(k)
				case 2:
					tr.Search(k)
				}
			}
		}(int64(g))
	}
	wg.Wait()

	if res := tr.Verify(); res != lfzoo.Success {
		t.Fatalf("Verify after concurrent ops: got %v", res)
	}
}

func ExampleBST() {
	tr := bst.New(arena.New(4096, 1, 0))
	tr.Insert(1, 77)
	p, res := tr.Delete(1)
	if res == lfzoo.Success {
		fmt.Println(p.Value)
	}

	// Output:
	// 77
}
