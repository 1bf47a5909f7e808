package noise

import (
	"math"
	"testing"
)

func TestDeterminism(t *testing.T) {
	a := New(4, 0.5, 1234)
	b := New(4, 0.5, 1234)
	for i := 0; i < 100; i++ {
		x := float64(i) * 0.137
		y := float64(i) * 0.291
		if av, bv := a.Eval2(x, y), b.Eval2(x, y); av != bv {
			t.Fatalf("Eval2 diverged at %v,%v: %v != %v", x, y, av, bv)
		}
	}
}

func TestEvalRange(t *testing.T) {
	n := New(5, 0.5, 99)
	for i := 0; i < 1000; i++ {
		u := float64(i) / 1000
		v := float64(i%100) / 100
		if got := n.Cyl(u, v, 4); got < 0 || got > 1 {
			t.Fatalf("Cyl out of [0,1]: %v", got)
		}
		if got := n.CylSigned(u, v, 4); got < -1 || got > 1 {
			t.Fatalf("CylSigned out of [-1,1]: %v", got)
		}
		if got := n.RidgedCyl(u, v, 6); got < 0 || got > 1 {
			t.Fatalf("RidgedCyl out of [0,1]: %v", got)
		}
	}
}

func TestSeamContinuity(t *testing.T) {
	// u=0 and u=1 are the same point on the cylinder, so the sampled values
	// must agree exactly on the wrap column.
	n := New(4, 0.5, 42)
	for i := 0; i < 64; i++ {
		v := float64(i) / 64
		a := n.Cyl(0, v, 6)
		b := n.Cyl(1, v, 6)
		if math.Abs(a-b) > 1e-9 {
			t.Fatalf("seam discontinuity at v=%v: %v vs %v", v, a, b)
		}
	}
}

func TestSeedChangesField(t *testing.T) {
	a := New(4, 0.5, 1)
	b := New(4, 0.5, 2)
	same := 0
	const samples = 100
	for i := 0; i < samples; i++ {
		u := float64(i) / samples
		if a.Cyl(u, 0.5, 4) == b.Cyl(u, 0.5, 4) {
			same++
		}
	}
	if same == samples {
		t.Fatal("different seeds produced identical fields")
	}
}

func TestMeanderSeam(t *testing.T) {
	m := NewMeander(77)
	for i := 0; i < 32; i++ {
		v := float64(i) / 32
		a := m.At(0, v, 256)
		b := m.At(1, v, 256)
		if math.Abs(a-b) > 1e-9 {
			t.Fatalf("meander seam discontinuity at v=%v: %v vs %v", v, a, b)
		}
	}
}
