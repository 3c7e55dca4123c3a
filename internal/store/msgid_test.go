package store

import (
	"sync"
	"testing"
)

func TestAllocatorStrictlyIncreasing(t *testing.T) {
	var a idAllocator
	last := a.next()
	for i := 0; i < 10000; i++ {
		id := a.next()
		if id <= last {
			t.Fatalf("id %d not greater than previous %d", id, last)
		}
		last = id
	}
}

func TestAllocatorConcurrentUnique(t *testing.T) {
	var a idAllocator
	const workers = 8
	const perWorker = 500

	var mu sync.Mutex
	seen := make(map[int64]bool, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, a.next())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				if seen[id] {
					t.Errorf("duplicate id %d", id)
				}
				seen[id] = true
			}
		}()
	}
	wg.Wait()

	if len(seen) != workers*perWorker {
		t.Errorf("got %d unique ids, want %d", len(seen), workers*perWorker)
	}
}

func TestMessageTimeRecoversInstant(t *testing.T) {
	var a idAllocator
	id := a.next()
	got := MessageTime(id)
	if got.IsZero() {
		t.Fatal("MessageTime returned zero time")
	}
}
