package grid

import "testing"

func TestWrapX(t *testing.T) {
	g := New[int](10, 5)
	tests := []struct {
		in, want int
	}{
		{0, 0},
		{9, 9},
		{10, 0},
		{-1, 9},
		{-10, 0},
		{25, 5},
	}
	for _, tt := range tests {
		if got := g.WrapX(tt.in); got != tt.want {
			t.Errorf("WrapX(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestWrapXYPolarBoundary(t *testing.T) {
	g := New[int](10, 5)
	if _, _, ok := g.WrapXY(3, -1); ok {
		t.Error("y=-1 should be out of bounds")
	}
	if _, _, ok := g.WrapXY(3, 5); ok {
		t.Error("y=H should be out of bounds")
	}
	if x, y, ok := g.WrapXY(-1, 2); !ok || x != 9 || y != 2 {
		t.Errorf("WrapXY(-1,2) = (%d,%d,%v)", x, y, ok)
	}
}

func TestNeighborCounts(t *testing.T) {
	g := New[int](10, 5)
	out := make([][2]int, 0, 8)

	// Interior cell: full neighborhoods.
	if n := len(g.Neighbors4(out, 5, 2)); n != 4 {
		t.Errorf("interior Neighbors4 = %d", n)
	}
	if n := len(g.Neighbors8(out, 5, 2)); n != 8 {
		t.Errorf("interior Neighbors8 = %d", n)
	}

	// Top row: no northern neighbors, but E-W wraps.
	if n := len(g.Neighbors4(out, 0, 0)); n != 3 {
		t.Errorf("top row Neighbors4 = %d", n)
	}
	if n := len(g.Neighbors8(out, 0, 0)); n != 5 {
		t.Errorf("top row Neighbors8 = %d", n)
	}
}

func TestNeighborsWrapAcrossSeam(t *testing.T) {
	g := New[int](10, 5)
	out := g.Neighbors4(nil, 0, 2)
	found := false
	for _, nb := range out {
		if nb[0] == 9 && nb[1] == 2 {
			found = true
		}
	}
	if !found {
		t.Error("west neighbor of x=0 should wrap to x=W-1")
	}
}

func TestSetAt(t *testing.T) {
	g := New[float32](4, 3)
	g.Set(2, 1, 7.5)
	if got := g.At(2, 1); got != 7.5 {
		t.Errorf("At(2,1) = %v", got)
	}
	if got := g.Data[g.Idx(2, 1)]; got != 7.5 {
		t.Errorf("Data[Idx] = %v", got)
	}
}

func TestWrapDeltaX(t *testing.T) {
	tests := []struct {
		a, b, w, want float64
	}{
		{1, 9, 10, 2},
		{9, 1, 10, -2},
		{3, 1, 10, 2},
		{5, 5, 10, 0},
	}
	for _, tt := range tests {
		if got := WrapDeltaX(tt.a, tt.b, tt.w); got != tt.want {
			t.Errorf("WrapDeltaX(%v,%v,%v) = %v, want %v", tt.a, tt.b, tt.w, got, tt.want)
		}
	}
}
