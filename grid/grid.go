// Package grid provides the flat row-major 2D field used throughout the
// generator. The east-west axis wraps (cylindrical topology); the north-south
// axis does not.
package grid

// Grid is a logical 2D array of W*H cells stored row-major.
type Grid[T any] struct {
	Data []T
	W, H int
}

// New allocates a zeroed grid with the given dimensions.
func New[T any](w, h int) *Grid[T] {
	return &Grid[T]{
		Data: make([]T, w*h),
		W:    w,
		H:    h,
	}
}

// Idx returns the linear slice index for (x, y).
func (g *Grid[T]) Idx(x, y int) int {
	return y*g.W + x
}

// At returns the value at (x, y).
func (g *Grid[T]) At(x, y int) T {
	return g.Data[y*g.W+x]
}

// Set stores a value at (x, y).
func (g *Grid[T]) Set(x, y int, v T) {
	g.Data[y*g.W+x] = v
}

// WrapX wraps an x coordinate into [0, W).
func (g *Grid[T]) WrapX(x int) int {
	return ((x % g.W) + g.W) % g.W
}

// WrapXY wraps x and bounds-checks y. The N/S polar boundary does not wrap.
func (g *Grid[T]) WrapXY(x, y int) (int, int, bool) {
	if y < 0 || y >= g.H {
		return 0, 0, false
	}
	return g.WrapX(x), y, true
}

var offsets4 = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

var offsets8 = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Neighbors4 appends the 4-connected neighbors of (x, y) to out and returns
// it. Callers reuse the out buffer across cells to avoid allocation.
func (g *Grid[T]) Neighbors4(out [][2]int, x, y int) [][2]int {
	out = out[:0]
	for _, off := range offsets4 {
		if nx, ny, ok := g.WrapXY(x+off[0], y+off[1]); ok {
			out = append(out, [2]int{nx, ny})
		}
	}
	return out
}

// Neighbors8 appends the 8-connected neighbors of (x, y) to out and returns it.
func (g *Grid[T]) Neighbors8(out [][2]int, x, y int) [][2]int {
	out = out[:0]
	for _, off := range offsets8 {
		if nx, ny, ok := g.WrapXY(x+off[0], y+off[1]); ok {
			out = append(out, [2]int{nx, ny})
		}
	}
	return out
}

// WrapDeltaX returns the shortest signed x-span between two columns on a
// cylinder of width w.
func WrapDeltaX(ax, bx, w float64) float64 {
	d := ax - bx
	if d > w/2 {
		d -= w
	} else if d < -w/2 {
		d += w
	}
	return d
}
