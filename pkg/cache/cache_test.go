package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestKeyOf(t *testing.T) {
	tests := []struct {
		a, b []string
		same bool
	}{
		{[]string{"x = 1", "flat"}, []string{"x = 1", "flat"}, true},
		{[]string{"x = 1", "flat"}, []string{"x = 1", "nested"}, false},
		{[]string{"ab", "c"}, []string{"a", "bc"}, false},
		{[]string{"", "a"}, []string{"a", ""}, false},
		{[]string{}, []string{""}, false},
	}

	for i, tt := range tests {
		if got := KeyOf(tt.a...) == KeyOf(tt.b...); got != tt.same {
			t.Errorf("tests[%d] - KeyOf(%q) == KeyOf(%q) is %v, want %v", i, tt.a, tt.b, got, tt.same)
		}
	}

	if s := KeyOf("x").String(); len(s) != 64 {
		t.Errorf("expected 64 hex digits, got %d (%s)", len(s), s)
	}
}

func TestGetPut(t *testing.T) {
	c := New(4)
	k := KeyOf("print(1)")

	if _, ok := c.Get(k); ok {
		t.Fatal("empty cache returned a value")
	}
	c.Put(k, "console.log(1);")
	v, ok := c.Get(k)
	if !ok || v != "console.log(1);" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	c.Put(k, "updated")
	if v, _ := c.Get(k); v != "updated" {
		t.Fatalf("overwrite failed, got %q", v)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}

	stats := c.Stats()
	if stats.Entries != 1 || stats.Hits != 2 || stats.Misses != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	a, b, d := KeyOf("a"), KeyOf("b"), KeyOf("d")

	c.Put(a, "A")
	c.Put(b, "B")
	c.Get(a) // b is now the oldest
	c.Put(d, "D")

	if _, ok := c.Get(b); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get(a); !ok {
		t.Error("a should still be cached")
	}
	if _, ok := c.Get(d); !ok {
		t.Error("d should be cached")
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
}

func TestZeroCapacityDisables(t *testing.T) {
	c := New(0)
	k := KeyOf("x")
	c.Put(k, "y")
	if _, ok := c.Get(k); ok {
		t.Fatal("disabled cache stored a value")
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				k := KeyOf(fmt.Sprint(i, j%20))
				if _, ok := c.Get(k); !ok {
					c.Put(k, "v")
				}
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 16 {
		t.Fatalf("cache grew past capacity: %d", c.Len())
	}
}
