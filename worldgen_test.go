package worldgen

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/vnovak404/worldgen/grid"
)

// testParams returns a small configuration that keeps tests fast.
func testParams() *Params {
	p := NewParams()
	p.Width = 256
	p.Height = 128
	p.NumMacroplates = 4
	p.NumMicroplates = 64
	return p
}

func generateBase(t *testing.T, seed uint64, params *Params) *Map {
	t.Helper()
	m, err := NewMap(seed, params)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.GenerateBase(context.Background()); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestGenerateDeterministic(t *testing.T) {
	m1, _, err := Generate(context.Background(), 42, testParams())
	if err != nil {
		t.Fatal(err)
	}
	m2, _, err := Generate(context.Background(), 42, testParams())
	if err != nil {
		t.Fatal(err)
	}

	for i := range m1.Elevation.Data {
		if m1.Elevation.Data[i] != m2.Elevation.Data[i] {
			t.Fatalf("elevation differs at cell %d: %v != %v", i, m1.Elevation.Data[i], m2.Elevation.Data[i])
		}
	}
	if !bytes.Equal(m1.RenderHeightmap(), m2.RenderHeightmap()) {
		t.Fatal("heightmap renders differ between identical runs")
	}
	if !bytes.Equal(m1.RenderRivers(), m2.RenderRivers()) {
		t.Fatal("river renders differ between identical runs")
	}
}

func TestSeedChangesMap(t *testing.T) {
	m1 := generateBase(t, 1, testParams())
	m2 := generateBase(t, 2, testParams())
	same := 0
	for i := range m1.Elevation.Data {
		if m1.Elevation.Data[i] == m2.Elevation.Data[i] {
			same++
		}
	}
	if same == len(m1.Elevation.Data) {
		t.Fatal("different seeds produced identical elevation")
	}
}

func TestPlatePartitionComplete(t *testing.T) {
	p := testParams()
	m := generateBase(t, 42, p)

	used := make([]bool, p.NumMicroplates)
	for i, pid := range m.PlateID.Data {
		if int(pid) >= p.NumMicroplates {
			t.Fatalf("cell %d has out-of-range plate id %d", i, pid)
		}
		used[pid] = true
	}
	for pid, u := range used {
		if !u {
			t.Errorf("plate id %d unused", pid)
		}
	}
}

func TestBoundaryClosure(t *testing.T) {
	m := generateBase(t, 42, testParams())

	out := make([][2]int, 0, 4)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			pid := m.PlateID.At(x, y)
			hasDiff := false
			for _, nb := range m.PlateID.Neighbors4(out, x, y) {
				if m.PlateID.At(nb[0], nb[1]) != pid {
					hasDiff = true
					break
				}
			}
			isBoundary := m.BoundaryType.At(x, y) != BoundaryInterior
			if hasDiff != isBoundary {
				t.Fatalf("cell (%d,%d): neighbor disagreement %v but boundary %v", x, y, hasDiff, isBoundary)
			}
		}
	}
}

func TestDistanceZeroOnBoundary(t *testing.T) {
	m := generateBase(t, 42, testParams())

	for i, d := range m.BoundaryDist.Data {
		if d < 0 {
			t.Fatalf("negative distance at cell %d: %v", i, d)
		}
		isBoundary := m.BoundaryType.Data[i] != BoundaryInterior
		if isBoundary && d != 0 {
			t.Fatalf("boundary cell %d has distance %v", i, d)
		}
		if !isBoundary && d == 0 {
			t.Fatalf("interior cell %d has zero distance", i)
		}
	}
}

func TestSeaLevelCalibration(t *testing.T) {
	for _, frac := range []float64{0.3, 0.54, 0.6} {
		p := testParams()
		p.ContinentalFraction = frac
		m := generateBase(t, 7, p)

		above := 0
		for _, e := range m.Elevation.Data {
			if e > 0 {
				above++
			}
		}
		n := len(m.Elevation.Data)
		want := frac * float64(n)
		if diff := float64(above) - want; diff < -2 || diff > 2 {
			t.Errorf("fraction %v: %d cells above sea level, want %.0f +/- 2", frac, above, want)
		}
	}
}

func TestTwoMacroplates(t *testing.T) {
	p := testParams()
	p.NumMacroplates = 2
	m := generateBase(t, 2, p)

	seen := map[int]bool{}
	for _, mid := range m.MacroID {
		seen[mid] = true
	}
	if len(seen) != 2 {
		t.Fatalf("expected exactly 2 macroplate ids, got %d", len(seen))
	}
}

func TestRiversOnLandOnly(t *testing.T) {
	p := testParams()
	p.RiverThreshold = 0.05
	m, _, err := Generate(context.Background(), 1, p)
	if err != nil {
		t.Fatal(err)
	}

	rivers := 0
	for i, f := range m.RiverFlow.Data {
		if f > 0 {
			rivers++
			if m.Elevation.Data[i] <= 0 {
				t.Fatalf("river on ocean cell %d", i)
			}
		}
	}
	if rivers == 0 {
		t.Fatal("no river cells at a permissive threshold")
	}
}

func TestTimingsCanonical(t *testing.T) {
	_, timings, err := Generate(context.Background(), 42, testParams())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"plate_seed", "plate_grow", "plate_properties", "boundaries",
		"distance_field", "elevation", "temperature", "precipitation",
		"biomes", "hydrology", "TOTAL",
	}
	if len(timings) != len(want) {
		t.Fatalf("got %d timings, want %d", len(timings), len(want))
	}
	for i, name := range want {
		if timings[i].Name != name {
			t.Errorf("timing %d = %q, want %q", i, timings[i].Name, name)
		}
		if timings[i].Ms < 0 {
			t.Errorf("timing %q negative: %v", name, timings[i].Ms)
		}
	}
}

func TestLayers(t *testing.T) {
	m, _, err := Generate(context.Background(), 42, testParams())
	if err != nil {
		t.Fatal(err)
	}
	layers := m.Layers()
	wantNames := []string{
		"plates", "boundaries", "distance", "heightmap", "map",
		"temperature", "precipitation", "biomes", "rivers",
	}
	if len(layers) != len(wantNames) {
		t.Fatalf("got %d layers, want %d", len(layers), len(wantNames))
	}
	for i, l := range layers {
		if l.Name != wantNames[i] {
			t.Errorf("layer %d = %q, want %q", i, l.Name, wantNames[i])
		}
		if len(l.RGBA) != m.W*m.H*4 {
			t.Errorf("layer %q has %d bytes, want %d", l.Name, len(l.RGBA), m.W*m.H*4)
		}
	}
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, err := NewMap(42, testParams())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.GenerateBase(ctx); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"width too small", func(p *Params) { p.Width = 100 }},
		{"width too large", func(p *Params) { p.Width = 10000 }},
		{"height too small", func(p *Params) { p.Height = 64 }},
		{"too few macroplates", func(p *Params) { p.NumMacroplates = 1 }},
		{"too many microplates", func(p *Params) { p.NumMicroplates = 9000 }},
		{"micro below macro", func(p *Params) { p.NumMacroplates = 32; p.NumMicroplates = 31 }},
		{"fraction above one", func(p *Params) { p.ContinentalFraction = 1.5 }},
		{"negative threshold", func(p *Params) { p.RiverThreshold = -0.1 }},
		{"zero mountain width", func(p *Params) { p.MountainWidth = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.mutate(p)
			if _, err := NewMap(42, p); !errors.Is(err, ErrInvalidParameters) {
				t.Fatalf("expected ErrInvalidParameters, got %v", err)
			}
		})
	}
}

func TestGenerateRiversRequiresBase(t *testing.T) {
	m, err := NewMap(42, testParams())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.GenerateRivers(context.Background()); !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestTemperatureEquator(t *testing.T) {
	p := testParams()
	m, err := NewMap(7, p)
	if err != nil {
		t.Fatal(err)
	}
	// Flat sea-level world isolates the latitude gradient.
	m.Elevation = grid.New[float32](m.W, m.H)
	if err := m.assignTemperature(); err != nil {
		t.Fatal(err)
	}

	var sum float64
	y := m.H / 2
	for x := 0; x < m.W; x++ {
		sum += float64(m.Temperature.At(x, y))
	}
	mean := sum / float64(m.W)
	if mean < 28 || mean > 32 {
		t.Fatalf("equator row mean temperature %.2fC, want ~30C", mean)
	}
}

func TestExportGeoJSON(t *testing.T) {
	m, _, err := Generate(context.Background(), 42, testParams())
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.ExportGeoJSONBoundaries()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(b, []byte(`"FeatureCollection"`)) {
		t.Fatal("boundary export is not a feature collection")
	}
	r, err := m.ExportGeoJSONRivers()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(r, []byte(`"FeatureCollection"`)) {
		t.Fatal("river export is not a feature collection")
	}
}
