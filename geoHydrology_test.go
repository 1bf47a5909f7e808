package worldgen

import (
	"math"
	"testing"

	"github.com/vnovak404/worldgen/grid"
)

func TestHydroScale(t *testing.T) {
	tests := []struct {
		w, h, want int
	}{
		{256, 128, 8},
		{2048, 1024, 8},
		{4096, 2048, 5},
		{8192, 4096, 2},
	}
	for _, tt := range tests {
		if got := hydroScale(tt.w, tt.h); got != tt.want {
			t.Errorf("hydroScale(%d,%d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
		if got := hydroScale(tt.w, tt.h); tt.w*tt.h*got*got > maxHydroCells {
			t.Errorf("hydroScale(%d,%d) exceeds cell ceiling", tt.w, tt.h)
		}
	}
}

// synthTerrain builds a terrain with an ocean border, a sloped interior and
// a closed depression, to exercise filling and drainage.
func synthTerrain(w, h int) *grid.Grid[float32] {
	g := grid.New[float32](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < 2 || x >= w-2 || y < 2 || y >= h-2 {
				g.Set(x, y, -50)
				continue
			}
			// Slope up toward the center.
			cx := float64(x-w/2) / float64(w)
			cy := float64(y-h/2) / float64(h)
			g.Set(x, y, float32(500*(1-math.Hypot(cx, cy)*2)+50))
		}
	}
	// Closed pit that must be filled to drain.
	g.Set(w/3, h/3, 5)
	g.Set(w/3+1, h/3, 8)
	return g
}

func TestPriorityFloodDrains(t *testing.T) {
	w, h := 64, 48
	elev := synthTerrain(w, h)
	priorityFlood(elev)
	dir := computeFlowDirection(elev)

	n := w * h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if elev.At(x, y) <= 0 {
				continue
			}
			// Follow D8 pointers; must reach water within n steps, strictly
			// descending on the filled surface.
			cx, cy := x, y
			for step := 0; ; step++ {
				if step > n {
					t.Fatalf("path from (%d,%d) did not terminate", x, y)
				}
				d := dir.At(cx, cy)
				if d >= 8 {
					if elev.At(cx, cy) > 0 {
						t.Fatalf("land cell (%d,%d) is a sink after filling", cx, cy)
					}
					break
				}
				off := hydroOffsets[d]
				nx := ((cx+off[0])%w + w) % w
				ny := cy + off[1]
				if elev.At(nx, ny) >= elev.At(cx, cy) {
					t.Fatalf("flow from (%d,%d) runs uphill", cx, cy)
				}
				if elev.At(nx, ny) <= 0 {
					break
				}
				cx, cy = nx, ny
			}
		}
	}
}

func TestPriorityFloodMonotone(t *testing.T) {
	w, h := 64, 48
	elev := synthTerrain(w, h)
	orig := make([]float32, len(elev.Data))
	copy(orig, elev.Data)

	priorityFlood(elev)

	for i := range elev.Data {
		if elev.Data[i] < orig[i] {
			t.Fatalf("filling lowered cell %d: %v -> %v", i, orig[i], elev.Data[i])
		}
	}
}

func TestFlowAccumulationRamp(t *testing.T) {
	// A west-east ramp in the middle row, flanked by two rows that sit 200 m
	// higher and drain straight into it; flow grows along the middle row.
	w, h := 8, 3
	elev := grid.New[float32](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Fall toward the east; the outer rows feed the middle row.
			elev.Set(x, y, float32(100-10*x+200*absInt(y-1)))
		}
	}
	dir := computeFlowDirection(elev)
	sorted := argsortDescending(elev.Data)

	precip := make([]float32, w*h)
	for i := range precip {
		precip[i] = 1
	}
	flow := flowAccumulation(dir, precip, sorted)

	// Middle row accumulates monotonically eastward. The first two columns
	// are excluded: the E-W wrap makes the ramp head drain backwards across
	// the seam.
	y := 1
	for x := 2; x < w; x++ {
		if flow[y*w+x] <= flow[y*w+x-1] {
			t.Fatalf("flow not increasing along ramp at x=%d: %v <= %v", x, flow[y*w+x], flow[y*w+x-1])
		}
	}
	// The ramp foot collects the upstream cells of its row.
	if got := flow[y*w+w-1]; got < float32(w-2) {
		t.Fatalf("ramp foot flow = %v, want >= %v", got, w-2)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestUpscaleBicubicConstant(t *testing.T) {
	src := grid.New[float32](8, 4)
	for i := range src.Data {
		src.Data[i] = 3.25
	}
	dst := upscaleBicubic(src, 4)
	if dst.W != 32 || dst.H != 16 {
		t.Fatalf("upscaled dims %dx%d, want 32x16", dst.W, dst.H)
	}
	for i, v := range dst.Data {
		if math.Abs(float64(v)-3.25) > 1e-5 {
			t.Fatalf("constant field not preserved at %d: %v", i, v)
		}
	}
}

func TestUpscaleNearest(t *testing.T) {
	src := grid.New[float32](4, 2)
	for i := range src.Data {
		src.Data[i] = float32(i)
	}
	dst := upscaleNearest(src, 2)
	if dst.W != 8 || dst.H != 4 {
		t.Fatalf("upscaled dims %dx%d", dst.W, dst.H)
	}
	if dst.At(5, 1) != src.At(2, 0) {
		t.Fatalf("nearest sample mismatch: %v != %v", dst.At(5, 1), src.At(2, 0))
	}
}

func TestRiverFlowCutoff(t *testing.T) {
	n := 1000
	flow := make([]float32, n)
	land := make([]bool, n)
	for i := range flow {
		flow[i] = float32(i + 1)
		land[i] = true
	}
	cutoff := riverFlowCutoff(flow, land, 0.1)
	// Top 10% of 1000 cells: cutoff near the 900th value.
	if cutoff < 890 || cutoff > 910 {
		t.Fatalf("cutoff = %v, want ~900", cutoff)
	}

	// Too few land cells: no rivers.
	if c := riverFlowCutoff(flow[:50], land[:50], 0.1); c != math.MaxFloat64 {
		t.Fatalf("small-sample cutoff = %v, want MaxFloat64", c)
	}
}

func TestPrecipCutoffFactor(t *testing.T) {
	if f := precipCutoffFactor(800); math.Abs(f-1) > 1e-9 {
		t.Fatalf("factor at 800mm = %v, want 1", f)
	}
	if precipCutoffFactor(0) <= precipCutoffFactor(2400) {
		t.Fatal("wet regions should have a lower cutoff than dry ones")
	}
}

func TestDownsampleMax(t *testing.T) {
	hw, hh, scale := 8, 8, 4
	flow := make([]float32, hw*hh)
	flow[3*hw+2] = 42 // inside the top-left block
	flow[5*hw+6] = 7  // inside the bottom-right block

	out := downsampleMax(flow, hw, hh, scale)
	if out.W != 2 || out.H != 2 {
		t.Fatalf("downsampled dims %dx%d", out.W, out.H)
	}
	if out.At(0, 0) != 42 {
		t.Fatalf("block max (0,0) = %v, want 42", out.At(0, 0))
	}
	if out.At(1, 1) != 7 {
		t.Fatalf("block max (1,1) = %v, want 7", out.At(1, 1))
	}
}

func TestRainfallNormalization(t *testing.T) {
	p := testParams()
	p.RainfallScale = 2.0
	m := generateBase(t, 42, p)

	var landSum float64
	var landCount int
	for i, e := range m.Elevation.Data {
		if e > 0 {
			landSum += float64(m.Precipitation.Data[i])
			landCount++
		}
	}
	if landCount == 0 {
		t.Fatal("no land cells")
	}
	mean := landSum / float64(landCount)
	want := 800.0 * p.RainfallScale
	if math.Abs(mean-want) > want*0.01 {
		t.Fatalf("land mean precipitation %v, want ~%v", mean, want)
	}
}
