package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	c := New(1 * time.Second)

	c.Set("key1", "value1")

	val, found := c.Get("key1")
	if !found {
		t.Error("Expected to find key1")
	}
	if val != "value1" {
		t.Errorf("Expected value1, got %v", val)
	}
}

func TestCache_Expiration(t *testing.T) {
	c := New(10 * time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("key1", "value1")

	// Should exist immediately
	if _, found := c.Get("key1"); !found {
		t.Error("Expected to find key1 immediately")
	}

	// Advance the clock past the TTL
	now = now.Add(10*time.Minute + time.Second)

	if _, found := c.Get("key1"); found {
		t.Error("Expected key1 to be expired")
	}
}

func TestCache_Clear(t *testing.T) {
	c := New(1 * time.Second)

	c.Set("key1", "value1")
	c.Clear("key1")

	_, found := c.Get("key1")
	if found {
		t.Error("Expected key1 to be cleared")
	}
}

func TestCache_GetOrCompute_ComputesOnce(t *testing.T) {
	c := New(10 * time.Minute)

	var calls int
	for i := 0; i < 3; i++ {
		val, err := c.GetOrCompute("key1", func() (any, error) {
			calls++
			return "computed", nil
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if val != "computed" {
			t.Errorf("Expected computed, got %v", val)
		}
	}

	if calls != 1 {
		t.Errorf("Expected 1 compute within TTL, got %d", calls)
	}
}

func TestCache_GetOrCompute_RecomputesAfterExpiry(t *testing.T) {
	c := New(10 * time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }

	var calls int
	compute := func() (any, error) {
		calls++
		return calls, nil
	}

	if _, err := c.GetOrCompute("key1", compute); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	now = now.Add(10*time.Minute + time.Second)

	val, err := c.GetOrCompute("key1", compute)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected recompute after expiry, got %d calls", calls)
	}
	if val != 2 {
		t.Errorf("Expected fresh value 2, got %v", val)
	}
}

func TestCache_GetOrCompute_ErrorNotCached(t *testing.T) {
	c := New(10 * time.Minute)

	boom := errors.New("compute failed")
	_, err := c.GetOrCompute("key1", func() (any, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected compute error, got %v", err)
	}

	val, err := c.GetOrCompute("key1", func() (any, error) {
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("Expected no error after failed compute, got %v", err)
	}
	if val != "recovered" {
		t.Errorf("Expected recovered, got %v", val)
	}
}

func TestCache_GetOrCompute_ConcurrentCallersShareOneCompute(t *testing.T) {
	c := New(10 * time.Minute)

	var calls int32
	start := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			val, err := c.GetOrCompute("key1", func() (any, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return "shared", nil
			})
			if err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if val != "shared" {
				t.Errorf("Expected shared, got %v", val)
			}
		}()
	}

	close(start)
	// Give the goroutines time to pile onto the same key
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected 1 compute for concurrent callers, got %d", got)
	}
}
