// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mpsc_test

import (
	"fmt"
	"sync"
	"testing"

	"code.hybscloud.com/lfzoo"
	"code.hybscloud.com/lfzoo/arena"
	"code.hybscloud.com/lfzoo/mpsc"
)

func newQueue() *mpsc.Queue {
	return mpsc.New(arena.New(4096, 4, 0))
}

func TestQueueFIFO(t *testing.T) {
	q := newQueue()
	for i := uint64(0); i < 10; i++ {
		if res := q.Insert(i, i*10); res != lfzoo.Success {
			t.Fatalf("Insert(%d): %v", i, res)
		}
	}
	for i := uint64(0); i < 10; i++ {
		p, res := q.Delete(0)
		if res != lfzoo.Success {
			t.Fatalf("Delete: got %v", res)
		}
		if p.Key != i {
			t.Fatalf("Delete: got key %d, want %d", p.Key, i)
		}
	}
	if _, res := q.Delete(0); res != lfzoo.NotFound {
		t.Fatalf("Delete on empty: got %v, want NotFound", res)
	}
}

func TestQueueSearchVerify(t *testing.T) {
	q := newQueue()
	q.Insert(1, 100)
	q.Insert(2, 200)
	if res := q.Search(2); res != lfzoo.Success {
		t.Fatalf("Search(2): got %v", res)
	}
	if res := q.Search(99); res != lfzoo.NotFound {
		t.Fatalf("Search(99): got %v", res)
	}
	if res := q.Verify(); res != lfzoo.Success {
		t.Fatalf("Verify: got %v", res)
	}
}

func TestQueuePop(t *testing.T) {
	q := newQueue()
	var out lfzoo.Payload
	if n := q.Pop(&out); n != 0 {
		t.Fatalf("Pop on empty: got %d, want 0", n)
	}
	q.Insert(3, 30)
	if n := q.Pop(&out); n != 1 {
		t.Fatalf("Pop: got %d, want 1", n)
	}
	if out.Value != 30 {
		t.Fatalf("Pop: got %+v", out)
	}
}

// TestQueueConcurrentProducers runs many producers against a single
// consumer goroutine, the only configuration this structure supports.
func TestQueueConcurrentProducers(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	const (
		producers   = 8
		perProducer = 5000
		total       = producers * perProducer
	)
	q := newQueue()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base uint64) {
			defer wg.Done()
			for i := uint64(0); i < perProducer; i++ {
				if res := q.Insert(base+i, base+i); res != lfzoo.Success {
					t.Errorf("Insert: %v", res)
					return
				}
			}
		}(uint64(p) * perProducer)
	}

	dequeued := 0
	seen := make(map[uint64]bool, total)
	for dequeued < total {
		var out lfzoo.Payload
		n := q.Pop(&out)
		if n != 1 {
			continue
		}
		if seen[out.Key] {
			t.Fatalf("duplicate dequeue of key %d", out.Key)
		}
		seen[out.Key] = true
		dequeued++
	}
	wg.Wait()

	if dequeued != total {
		t.Fatalf("dequeued %d, want %d", dequeued, total)
	}
}

func ExampleQueue() {
	q := mpsc.New(arena.New(4096, 1, 0))
	q.Insert(1, 9)
	p, res := q.Delete(0)
	if res == lfzoo.Success {
		fmt.Println(p.Value)
	}

	// Output:
	// 9
}
