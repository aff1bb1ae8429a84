// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package vyukhov_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"code.hybscloud.com/lfzoo/vyukhov"
)

// TestSequenceWrap exercises a capacity-2 ring across two full laps:
// enqueue twice, dequeue twice, enqueue twice again, dequeue twice —
// cell 0's sequence value traverses 0 -> 1 -> 2 -> 3 -> 4 and cell 1's
// 1 -> 2 -> 3 -> 4 -> 5.
func TestSequenceWrap(t *testing.T) {
	r := vyukhov.New[int](2)

	for _, v := range []int{1, 2} {
		if err := r.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", v, err)
		}
	}
	if err := r.Enqueue(new(int)); err != vyukhov.ErrFull {
		t.Fatalf("Enqueue on full ring: got %v, want ErrFull", err)
	}
	for _, want := range []int{1, 2} {
		got, err := r.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		if got != want {
			t.Fatalf("Dequeue: got %d, want %d", got, want)
		}
	}
	if _, err := r.Dequeue(); err != vyukhov.ErrEmpty {
		t.Fatalf("Dequeue on empty ring: got %v, want ErrEmpty", err)
	}
	for _, v := range []int{3, 4} {
		if err := r.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", v, err)
		}
	}
	for _, want := range []int{3, 4} {
		got, err := r.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		if got != want {
			t.Fatalf("Dequeue: got %d, want %d", got, want)
		}
	}
}

func TestRingCapacityRoundsUpToPow2(t *testing.T) {
	r := vyukhov.New[int](5)
	if got := r.Cap(); got != 8 {
		t.Fatalf("Cap: got %d, want 8", got)
	}
}

func TestRingVerify(t *testing.T) {
	r := vyukhov.New[int](4)
	if err := r.Verify(); err != nil {
		t.Fatalf("Verify on fresh ring: %v", err)
	}
	v := 42
	if err := r.Enqueue(&v); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := r.Verify(); err != nil {
		t.Fatalf("Verify after Enqueue: %v", err)
	}
}

// TestConcurrentMPMC drives 8 producers and 8 consumers, 100000 enqueues
// each, expecting exactly 800000 successful dequeues and no lost or
// duplicated elements.
func TestConcurrentMPMC(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	const (
		producers   = 8
		consumers   = 8
		perProducer = 100000
	)
	r := vyukhov.New[uint64](1024)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base uint64) {
			defer wg.Done()
			for i := uint64(0); i < perProducer; i++ {
				v := base + i
				for r.Enqueue(&v) == vyukhov.ErrFull {
				}
			}
		}(uint64(p) * perProducer)
	}

	const target = int64(producers * perProducer)
	var dequeued int64
	var mu sync.Mutex
	seen := make(map[uint64]bool, producers*perProducer)
	done := make(chan struct{})
	var closeOnce sync.Once
	var cwg sync.WaitGroup
	for c := 0; c < consumers; c++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for {
				v, err := r.Dequeue()
				if err == nil {
					mu.Lock()
					if seen[v] {
						t.Errorf("duplicate dequeue of %d", v)
					}
					seen[v] = true
					mu.Unlock()
					if atomic.AddInt64(&dequeued, 1) == target {
						closeOnce.Do(func() { close(done) })
					}
					continue
				}
				select {
				case <-done:
					return
				default:
				}
			}
		}()
	}

	wg.Wait()
	<-done
	cwg.Wait()

	if dequeued != target {
		t.Fatalf("dequeued %d, want %d", dequeued, target)
	}
}
