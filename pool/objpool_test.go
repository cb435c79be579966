package pool_test

import (
	"testing"

	"github.com/momentics/wsched/pool"
)

func TestSyncPoolGetReturnsCreatorOutputWhenEmpty(t *testing.T) {
	created := 0
	sp := pool.NewSyncPool(func() []byte {
		created++
		return make([]byte, 0, 64)
	})

	buf := sp.Get()
	if cap(buf) != 64 {
		t.Fatalf("Get() cap = %d, want 64", cap(buf))
	}
	if created != 1 {
		t.Fatalf("creator called %d times, want 1", created)
	}
}

func TestSyncPoolPutGetRoundTrip(t *testing.T) {
	sp := pool.NewSyncPool(func() *int {
		v := 0
		return &v
	})

	v := sp.Get()
	*v = 42
	sp.Put(v)

	// sync.Pool gives no strong guarantee the same object comes back, but
	// nothing else has touched this pool, so it must.
	got := sp.Get()
	if *got != 42 {
		t.Fatalf("Get() after Put() = %d, want 42 (the same object recycled)", *got)
	}
}

func TestSyncPoolSatisfiesObjectPoolInterface(t *testing.T) {
	var _ pool.ObjectPool[int] = pool.NewSyncPool(func() int { return 0 })
}
