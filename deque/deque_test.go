package deque_test

import (
	"sync"
	"testing"

	"github.com/momentics/wsched/deque"
)

func TestDequeCapacityRoundsUpToPowerOfTwo(t *testing.T) {
	d := deque.New[int](5)
	if got := d.Cap(); got != 8 {
		t.Fatalf("Cap() = %d, want 8", got)
	}
}

func TestDequePushPopIsLIFO(t *testing.T) {
	d := deque.New[int](8)
	for i := 0; i < 4; i++ {
		if !d.PushBottom(i) {
			t.Fatalf("PushBottom(%d) reported full", i)
		}
	}
	for i := 3; i >= 0; i-- {
		v, ok := d.PopBottom()
		if !ok || v != i {
			t.Fatalf("PopBottom() = (%d, %v), want (%d, true)", v, ok, i)
		}
	}
	if _, ok := d.PopBottom(); ok {
		t.Fatal("PopBottom() on an empty deque should report false")
	}
}

func TestDequePushBottomFullReturnsFalse(t *testing.T) {
	d := deque.New[int](2)
	if !d.PushBottom(1) || !d.PushBottom(2) {
		t.Fatal("first two pushes into a capacity-2 deque should succeed")
	}
	if d.PushBottom(3) {
		t.Fatal("push into a full deque should return false")
	}
}

func TestDequeStealTopTakesOppositeEnd(t *testing.T) {
	d := deque.New[int](8)
	for i := 0; i < 4; i++ {
		d.PushBottom(i)
	}
	v, ok := d.StealTop()
	if !ok || v != 0 {
		t.Fatalf("StealTop() = (%d, %v), want (0, true)", v, ok)
	}
	// The owner still sees the rest in LIFO order from the bottom.
	last, ok := d.PopBottom()
	if !ok || last != 3 {
		t.Fatalf("PopBottom() = (%d, %v), want (3, true)", last, ok)
	}
}

// Every item pushed must be observed exactly once across the owner popping
// from the bottom and any number of concurrent thieves stealing from the
// top — no duplicate, no loss.
func TestDequeConcurrentStealersSeeEachItemOnce(t *testing.T) {
	const n = 20000
	d := deque.New[int](1 << 16)
	for i := 0; i < n; i++ {
		if !d.PushBottom(i) {
			t.Fatalf("PushBottom(%d) reported full", i)
		}
	}

	var mu sync.Mutex
	seen := make(map[int]int, n)
	record := func(v int) {
		mu.Lock()
		seen[v]++
		mu.Unlock()
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, ok := d.StealTop()
				if !ok {
					if d.Len() <= 0 {
						return
					}
					continue
				}
				record(v)
			}
		}()
	}
	for {
		v, ok := d.PopBottom()
		if !ok {
			break
		}
		record(v)
	}
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("observed %d distinct values, want %d", len(seen), n)
	}
	for v, count := range seen {
		if count != 1 {
			t.Fatalf("value %d observed %d times, want exactly 1", v, count)
		}
	}
}

func TestGlobalQueueFIFOOrder(t *testing.T) {
	q := deque.NewGlobalQueue[int](8)
	for i := 0; i < 5; i++ {
		if !q.Enqueue(i) {
			t.Fatalf("Enqueue(%d) reported full", i)
		}
	}
	for i := 0; i < 5; i++ {
		v, ok := q.Dequeue()
		if !ok || v != i {
			t.Fatalf("Dequeue() = (%d, %v), want (%d, true)", v, ok, i)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("Dequeue() on an empty queue should report false")
	}
}

func TestGlobalQueueFullReturnsFalse(t *testing.T) {
	q := deque.NewGlobalQueue[int](2)
	if !q.Enqueue(1) || !q.Enqueue(2) {
		t.Fatal("first two enqueues into a capacity-2 queue should succeed")
	}
	if q.Enqueue(3) {
		t.Fatal("enqueue into a full queue should return false")
	}
}

func TestGlobalQueueConcurrentProducersConsumers(t *testing.T) {
	const n = 20000
	q := deque.NewGlobalQueue[int](1 << 16)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < n/4; i++ {
				for !q.Enqueue(base*(n/4) + i) {
				}
			}
		}(p)
	}

	var mu sync.Mutex
	seen := make(map[int]bool, n)
	var consumers sync.WaitGroup
	done := make(chan struct{})
	for c := 0; c < 4; c++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				v, ok := q.Dequeue()
				if ok {
					mu.Lock()
					seen[v] = true
					mu.Unlock()
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
	for len(seen) < n {
		mu.Lock()
		count := len(seen)
		mu.Unlock()
		if count >= n {
			break
		}
	}
	close(done)
	consumers.Wait()

	if len(seen) != n {
		t.Fatalf("observed %d distinct values, want %d", len(seen), n)
	}
}
