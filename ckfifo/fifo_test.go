// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ckfifo_test

import (
	"fmt"
	"sync"
	"testing"

	"code.hybscloud.com/lfzoo"
	"code.hybscloud.com/lfzoo/arena"
	"code.hybscloud.com/lfzoo/ckfifo"
)

func newFIFO() *ckfifo.FIFO {
	return ckfifo.New(arena.New(4096, 1, 0))
}

func TestFIFOBasic(t *testing.T) {
	q := newFIFO()
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
		if p.Key != i || p.Value != i*10 {
			t.Fatalf("Delete: got %+v, want key=%d value=%d", p, i, i*10)
		}
	}
	if _, res := q.Delete(0); res != lfzoo.NotFound {
		t.Fatalf("Delete on empty: got %v, want NotFound", res)
	}
}

// TestFIFORecycling drives the queue through many more enqueue/dequeue
// cycles than a single arena page could hold entries for if every
// enqueue allocated fresh, exercising the recycling path.
func TestFIFORecycling(t *testing.T) {
	q := newFIFO()
	for round := 0; round < 5000; round++ {
		if res := q.Insert(uint64(round), uint64(round)); res != lfzoo.Success {
			t.Fatalf("round %d Insert: %v", round, res)
		}
		p, res := q.Delete(0)
		if res != lfzoo.Success {
			t.Fatalf("round %d Delete: %v", round, res)
		}
		if p.Key != uint64(round) {
			t.Fatalf("round %d Delete: got key %d, want %d", round, p.Key, round)
		}
	}
}

func TestFIFOVerify(t *testing.T) {
	q := newFIFO()
	if res := q.Verify(); res != lfzoo.Success {
		t.Fatalf("Verify on fresh FIFO: got %v", res)
	}
	q.Insert(1, 1)
	q.Insert(2, 2)
	if res := q.Verify(); res != lfzoo.Success {
		t.Fatalf("Verify with elements: got %v", res)
	}
	q.Delete(0)
	if res := q.Verify(); res != lfzoo.Success {
		t.Fatalf("Verify after delete: got %v", res)
	}
}

func TestFIFOConcurrentSingleProducerSingleConsumer(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	const total = 100000
	q := newFIFO()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := uint64(0); i < total; i++ {
			for q.Insert(i, i) != lfzoo.Success {
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := uint64(0); i < total; i++ {
			var p lfzoo.Payload
			for q.Pop(&p) != 1 {
			}
			if p.Key != i {
				t.Errorf("Delete: got key %d, want %d", p.Key, i)
			}
		}
	}()
	wg.Wait()
}

func ExampleFIFO() {
	q := ckfifo.New(arena.New(4096, 1, 0))
	q.Insert(1, 21)
	p, res := q.Delete(0)
	if res == lfzoo.Success {
		fmt.Println(p.Value)
	}

	// Output:
	// 21
}
