package rng

import "testing"

func TestStreamDeterminism(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 1000; i++ {
		if av, bv := a.NextU64(), b.NextU64(); av != bv {
			t.Fatalf("streams diverged at step %d: %d != %d", i, av, bv)
		}
	}
}

func TestForkIsolation(t *testing.T) {
	master := New(42)
	f1 := master.Fork("plates/seed")
	f2 := master.Fork("plates/grow")
	if f1.NextU64() == f2.NextU64() {
		t.Fatal("different labels produced identical first values")
	}

	// Same label forks are identical regardless of master stream state.
	master.NextU64()
	f3 := master.Fork("plates/seed")
	if f3.NextU64() != New(42).Fork("plates/seed").NextU64() {
		t.Fatal("fork depends on master stream position")
	}
}

func TestNextF64Range(t *testing.T) {
	r := New(7)
	for i := 0; i < 10000; i++ {
		v := r.NextF64()
		if v < 0 || v >= 1 {
			t.Fatalf("NextF64 out of [0,1): %v", v)
		}
		s := r.NextF64Signed()
		if s < -1 || s >= 1 {
			t.Fatalf("NextF64Signed out of [-1,1): %v", s)
		}
	}
}

func TestRangeF64(t *testing.T) {
	r := New(3)
	for i := 0; i < 1000; i++ {
		v := r.RangeF64(0.3, 1.0)
		if v < 0.3 || v >= 1.0 {
			t.Fatalf("RangeF64 out of bounds: %v", v)
		}
	}
}

func TestGaussFinite(t *testing.T) {
	r := New(11)
	var sum float64
	const n = 10000
	for i := 0; i < n; i++ {
		v := r.Gauss()
		if v != v {
			t.Fatal("Gauss returned NaN")
		}
		sum += v
	}
	if mean := sum / n; mean < -0.1 || mean > 0.1 {
		t.Fatalf("Gauss mean too far from 0: %v", mean)
	}
}

func TestSplitmixKnownValues(t *testing.T) {
	// Fixed points of the reference implementation; these must never change
	// or every generated world changes with them.
	if got := Splitmix64(0); got != 0xE220A8397B1DCDAF {
		t.Fatalf("Splitmix64(0) = %#x", got)
	}
	if a, b := Splitmix32(1), Splitmix32(1); a != b {
		t.Fatalf("Splitmix32 not deterministic: %#x != %#x", a, b)
	}
}
