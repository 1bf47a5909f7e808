package worldgen

import (
	"container/heap"
	"math"

	"github.com/vnovak404/worldgen/grid"
	"github.com/vnovak404/worldgen/rng"
)

const unclaimedPlate = math.MaxUint16

// seedPlates places macroplate centers and microplate seeds.
//
// Macroplates use plain Poisson-disk dart throwing with a relaxing minimum
// distance. Microplates use variable density: the spacing shrinks near
// macroplate Voronoi boundaries, so future plate borders fracture into
// smaller shards (cracked-eggshell effect).
func (m *Map) seedPlates() error {
	r := m.rngFor("plates/seed")
	m.MacroSeeds = poissonSeeds(m.W, m.H, m.Params.NumMacroplates, r.Fork("macro"))
	m.MicroSeeds = poissonVariableSeeds(m.W, m.H, m.Params.NumMicroplates, r.Fork("micro"), m.MacroSeeds)
	return nil
}

// poissonSeeds throws darts until count sites are accepted, relaxing the
// spacing constraint whenever it gets stuck.
func poissonSeeds(w, h, count int, r *rng.Rng) [][2]float64 {
	minDist := math.Sqrt(float64(w*h)/float64(count)) * 0.6
	seeds := make([][2]float64, 0, count)
	attempts := 0
	relaxInterval := count * 200

	for len(seeds) < count && attempts < count*2000 {
		x := r.RangeF64(0, float64(w))
		y := r.RangeF64(0, float64(h))

		ok := true
		for _, s := range seeds {
			if wrapDist(s[0], s[1], x, y, float64(w)) < minDist {
				ok = false
				break
			}
		}
		if ok {
			seeds = append(seeds, [2]float64{x, y})
		}
		attempts++
		if attempts%relaxInterval == 0 {
			minDist *= 0.85
		}
	}

	// Dart budget exhausted: fill the remainder uniformly.
	for len(seeds) < count {
		seeds = append(seeds, [2]float64{r.RangeF64(0, float64(w)), r.RangeF64(0, float64(h))})
	}
	return seeds
}

// poissonVariableSeeds throws darts with a locally varying minimum distance:
// tight near macroplate boundaries, wide in their interiors.
func poissonVariableSeeds(w, h, count int, r *rng.Rng, macroSeeds [][2]float64) [][2]float64 {
	baseDist := math.Sqrt(float64(w*h)/float64(count)) * 0.6
	seeds := make([][2]float64, 0, count)
	attempts := 0
	relaxInterval := count * 200
	relaxFactor := 1.0

	for len(seeds) < count && attempts < count*2000 {
		x := r.RangeF64(0, float64(w))
		y := r.RangeF64(0, float64(h))

		// 0 at a macroplate center, ~1 on the equidistant boundary.
		proximity := macroBoundaryProximity(x, y, macroSeeds, float64(w))
		// minScale 0.35 makes boundary shards ~8x smaller in area than
		// interior plates.
		const minScale = 0.35
		localDist := baseDist * (minScale + (1-minScale)*(1-proximity*proximity)) * relaxFactor

		ok := true
		for _, s := range seeds {
			if wrapDist(s[0], s[1], x, y, float64(w)) < localDist {
				ok = false
				break
			}
		}
		if ok {
			seeds = append(seeds, [2]float64{x, y})
		}
		attempts++
		if attempts%relaxInterval == 0 {
			relaxFactor *= 0.85
		}
	}

	for len(seeds) < count {
		seeds = append(seeds, [2]float64{r.RangeF64(0, float64(w)), r.RangeF64(0, float64(h))})
	}
	return seeds
}

// macroBoundaryProximity returns d1/d2 for the two nearest macroplate
// centers: 0 at a center, approaching 1 on a Voronoi boundary.
func macroBoundaryProximity(x, y float64, macroSeeds [][2]float64, w float64) float64 {
	d1 := math.MaxFloat64
	d2 := math.MaxFloat64
	for _, mc := range macroSeeds {
		d := wrapDist(mc[0], mc[1], x, y, w)
		if d < d1 {
			d2 = d1
			d1 = d
		} else if d < d2 {
			d2 = d
		}
	}
	if d2 <= 0 {
		return 0
	}
	return math.Min(d1/d2, 1)
}

// wrapDist is the Euclidean distance between two points with E-W wrapping.
func wrapDist(ax, ay, bx, by, w float64) float64 {
	dx := grid.WrapDeltaX(ax, bx, w)
	dy := ay - by
	return math.Sqrt(dx*dx + dy*dy)
}

// growEntry is a pending expansion step in the plate growth queue.
type growEntry struct {
	cost float64
	x, y int
	pid  uint16
}

// growHeap is a min-heap over accumulated cost. Ties break on lower plate
// id, then row, then column, so the labelling is fully deterministic.
type growHeap []growEntry

func (h growHeap) Len() int { return len(h) }
func (h growHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	if h[i].pid != h[j].pid {
		return h[i].pid < h[j].pid
	}
	if h[i].y != h[j].y {
		return h[i].y < h[j].y
	}
	return h[i].x < h[j].x
}
func (h growHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *growHeap) Push(v any)        { *h = append(*h, v.(growEntry)) }
func (h *growHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// growPlates labels every cell with a microplate id via noise-weighted
// multi-source Dijkstra expansion. The step cost is modulated by octave
// noise, so boundaries follow noise contours instead of straight Voronoi
// edges; BoundaryNoise controls how far they deviate.
func (m *Map) growPlates() error {
	w, h := m.W, m.H
	plateID := grid.New[uint16](w, h)
	for i := range plateID.Data {
		plateID.Data[i] = unclaimedPlate
	}

	growNoise := m.noiseFor("plates/grow", 4, 0.5)
	bn := m.Params.BoundaryNoise

	gh := make(growHeap, 0, len(m.MicroSeeds))
	for i, s := range m.MicroSeeds {
		x := int(s[0])
		if x >= w {
			x = w - 1
		}
		y := int(s[1])
		if y >= h {
			y = h - 1
		}
		if plateID.At(x, y) == unclaimedPlate {
			plateID.Set(x, y, uint16(i))
			gh = append(gh, growEntry{cost: 0, x: x, y: y, pid: uint16(i)})
		}
	}
	heap.Init(&gh)

	// First plate to reach a cell claims it; cells are claimed at push time
	// so later, more expensive paths never overwrite them.
	out := make([][2]int, 0, 8)
	for gh.Len() > 0 {
		e := heap.Pop(&gh).(growEntry)
		if plateID.At(e.x, e.y) != e.pid {
			continue // stale entry
		}

		for _, nb := range plateID.Neighbors8(out, e.x, e.y) {
			nx, ny := nb[0], nb[1]
			if plateID.At(nx, ny) != unclaimedPlate {
				continue
			}

			step := 1.0
			if nx != e.x && ny != e.y {
				step = math.Sqrt2
			}

			// The noise field creates "hills" that slow growth and
			// "valleys" that speed it up.
			u := float64(nx) / float64(w)
			v := float64(ny) / float64(h)
			costMult := math.Max(1+growNoise.CylSigned(u, v, 6)*bn, 0.05)

			plateID.Set(nx, ny, e.pid)
			heap.Push(&gh, growEntry{cost: e.cost + step*costMult, x: nx, y: ny, pid: e.pid})
		}
	}

	for i, pid := range plateID.Data {
		if pid == unclaimedPlate {
			return internalErr("plate_grow", "cell %d left unlabelled", i)
		}
	}

	m.PlateID = plateID
	return nil
}
