package worldgen

import (
	"container/heap"
	"math"

	"github.com/vnovak404/worldgen/grid"
	"github.com/vnovak404/worldgen/noise"
	"github.com/vnovak404/worldgen/various"
)

// maxHydroCells bounds the super-resolution grid (256M cells).
const maxHydroCells = 256_000_000

// flowNone marks a cell with no downstream neighbor (ocean or sink).
const flowNone uint8 = 255

// Meander perturbation added to the upscaled elevation so straight slopes
// develop sinuosity. Amplitude in meters.
const (
	meanderAmp      = 12.0
	meanderFreqMult = 0.75 // base frequency relative to grid width
)

// Monotonic drainage epsilon for priority-flood filling, in meters.
const floodEpsilon = 1e-3

// hydroScale returns the upscale factor: target 8x, auto-reduced so the
// hi-res grid stays under the cell ceiling.
func hydroScale(w, h int) int {
	base := w * h
	for s := 8; s >= 1; s-- {
		if base*s*s <= maxHydroCells {
			return s
		}
	}
	return 1
}

// hydro neighbor offsets and distances, fixed order for deterministic
// tie-breaks.
var hydroOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

var hydroDists = [8]float64{
	math.Sqrt2, 1, math.Sqrt2,
	1, 1,
	math.Sqrt2, 1, math.Sqrt2,
}

// assignHydrology runs the full river pipeline:
//
//  1. Bicubic upscale of elevation to super-resolution, plus a meander
//     perturbation on land.
//  2. Barnes priority flood seeded from the ocean, filling every depression
//     to its pour point plus a monotonic epsilon, so all land drains.
//  3. D8 flow directions on the filled surface.
//  4. Flow accumulation seeded with upscaled precipitation, in a single
//     pass over cells in descending filled order.
//  5. River extraction by a flow threshold scaled locally by precipitation.
//  6. Per-basin upstream extension of headwaters.
//  7. Max-pool downsample to base resolution and valley carving back into
//     the base elevation.
func (m *Map) assignHydrology() error {
	w, h := m.W, m.H
	scale := hydroScale(w, h)

	// 1. Upscale and perturb.
	hiElev := upscaleBicubic(m.Elevation, scale)
	hw, hh := hiElev.W, hiElev.H
	m.addMeanders(hiElev)

	// 2. Fill depressions in place.
	priorityFlood(hiElev)

	// 3. D8 directions.
	flowDir := computeFlowDirection(hiElev)

	// 4. Accumulation needs the descending order of the filled surface.
	sorted := argsortDescending(hiElev.Data)
	hiElev = nil // free before allocating the flow field

	hiPrecip := upscaleNearest(m.Precipitation, scale)
	flow := flowAccumulation(flowDir, hiPrecip.Data, sorted)
	sorted = nil

	// 5. Threshold: RiverThreshold picks the top fraction of land cells by
	// flow; the local cutoff then shifts with precipitation so wet regions
	// get denser networks.
	landHi := make([]bool, hw*hh)
	for i := range landHi {
		// Land/ocean at super-resolution follows the base sea level so the
		// river mask matches the rendered coastline.
		landHi[i] = m.Elevation.Data[(i/hw/scale)*w+(i%hw)/scale] > 0
	}
	cutoff := riverFlowCutoff(flow, landHi, m.Params.RiverThreshold)
	m.riverFlowCutoff = cutoff

	riverHi := make([]float32, hw*hh)
	various.KickOffChunkWorkers(hw*hh, func(start, end int) {
		for i := start; i < end; i++ {
			if !landHi[i] {
				continue
			}
			local := cutoff * precipCutoffFactor(float64(hiPrecip.Data[i]))
			if float64(flow[i]) >= local {
				riverHi[i] = flow[i]
			}
		}
	})

	// 6. Extend headwaters upstream into sub-threshold territory so rivers
	// do not truncate abruptly.
	extendHeadwaters(riverHi, flow, flowDir, hw, hh, m.Params.RiverExtension*scale)

	// 7. Down to base resolution; carve.
	riverFlow := downsampleMax(riverHi, hw, hh, scale)
	for i, e := range m.Elevation.Data {
		if e <= 0 {
			riverFlow.Data[i] = 0
		}
	}
	m.RiverFlow = riverFlow
	m.carveValleys()
	return nil
}

// addMeanders perturbs land cells of the upscaled elevation with a
// high-frequency noise field so flow paths wiggle. Ocean cells are left
// untouched to keep the coastline stable.
func (m *Map) addMeanders(hiElev *grid.Grid[float32]) {
	meander := noise.NewMeander(int64(m.rngFor("hydrology/meander").NextU64()))
	freq := float64(m.W) * meanderFreqMult
	hw, hh := hiElev.W, hiElev.H

	various.KickOffChunkWorkers(hh, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			v := float64(y) / float64(hh)
			for x := 0; x < hw; x++ {
				i := y*hw + x
				if hiElev.Data[i] <= 0 {
					continue
				}
				u := float64(x) / float64(hw)
				hiElev.Data[i] += float32(meander.At(u, v, freq) * meanderAmp)
			}
		}
	})
}

// catmullRom evaluates the Catmull-Rom spline through p0..p3 at t in [0,1].
func catmullRom(p0, p1, p2, p3, t float64) float64 {
	return p1 + 0.5*t*(p2-p0+t*(2*p0-5*p1+4*p2-p3+t*(3*(p1-p2)+p3-p0)))
}

// upscaleBicubic resamples the grid by an integer factor with Catmull-Rom
// interpolation, wrapped E-W and clamped N-S.
func upscaleBicubic(src *grid.Grid[float32], scale int) *grid.Grid[float32] {
	sw, sh := src.W, src.H
	dw, dh := sw*scale, sh*scale
	dst := grid.New[float32](dw, dh)

	clampY := func(y int) int {
		if y < 0 {
			return 0
		}
		if y > sh-1 {
			return sh - 1
		}
		return y
	}

	various.KickOffChunkWorkers(dh, func(yStart, yEnd int) {
		var col [4]float64
		for dy := yStart; dy < yEnd; dy++ {
			syf := (float64(dy)+0.5)/float64(scale) - 0.5
			sy := int(math.Floor(syf))
			fy := syf - float64(sy)
			y0, y1, y2, y3 := clampY(sy-1), clampY(sy), clampY(sy+1), clampY(sy+2)

			for dx := 0; dx < dw; dx++ {
				sxf := (float64(dx)+0.5)/float64(scale) - 0.5
				sx := int(math.Floor(sxf))
				fx := sxf - float64(sx)

				for k := 0; k < 4; k++ {
					x := ((sx - 1 + k) % sw + sw) % sw
					col[k] = catmullRom(
						float64(src.At(x, y0)),
						float64(src.At(x, y1)),
						float64(src.At(x, y2)),
						float64(src.At(x, y3)),
						fy,
					)
				}
				dst.Data[dy*dw+dx] = float32(catmullRom(col[0], col[1], col[2], col[3], fx))
			}
		}
	})

	return dst
}

// upscaleNearest resamples by an integer factor with nearest-neighbor
// lookup; used for precipitation where smoothness does not matter.
func upscaleNearest(src *grid.Grid[float32], scale int) *grid.Grid[float32] {
	dw, dh := src.W*scale, src.H*scale
	dst := grid.New[float32](dw, dh)

	various.KickOffChunkWorkers(dh, func(yStart, yEnd int) {
		for dy := yStart; dy < yEnd; dy++ {
			srcRow := src.Data[(dy/scale)*src.W : (dy/scale+1)*src.W]
			dstRow := dst.Data[dy*dw : (dy+1)*dw]
			for dx := 0; dx < dw; dx++ {
				dstRow[dx] = srcRow[dx/scale]
			}
		}
	})
	return dst
}

// floodEntry is a pending cell in the priority-flood heap.
type floodEntry struct {
	elev float32
	idx  int32
}

// floodHeap is a min-heap on elevation; ties break on index so the fill is
// deterministic.
type floodHeap []floodEntry

func (h floodHeap) Len() int { return len(h) }
func (h floodHeap) Less(i, j int) bool {
	if h[i].elev != h[j].elev {
		return h[i].elev < h[j].elev
	}
	return h[i].idx < h[j].idx
}
func (h floodHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *floodHeap) Push(v any)   { *h = append(*h, v.(floodEntry)) }
func (h *floodHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// priorityFlood fills depressions in place (Barnes et al.). Ocean cells are
// natural outlets; the heap is seeded from coastal ocean cells and the polar
// rows, then land is raised to at least the pour elevation plus a monotonic
// epsilon, so every land cell drains to an outlet.
func priorityFlood(elev *grid.Grid[float32]) {
	w, h := elev.W, elev.H
	n := w * h
	visited := make([]bool, n)
	fh := make(floodHeap, 0, w*4)

	for i, e := range elev.Data {
		if e <= 0 {
			visited[i] = true
		}
	}

	// Polar rows: land touching the top/bottom edge drains off-map.
	for x := 0; x < w; x++ {
		if !visited[x] {
			visited[x] = true
			fh = append(fh, floodEntry{elev: elev.Data[x], idx: int32(x)})
		}
		bot := (h-1)*w + x
		if !visited[bot] {
			visited[bot] = true
			fh = append(fh, floodEntry{elev: elev.Data[bot], idx: int32(bot)})
		}
	}

	// Coastal ocean cells adjacent to unvisited land seed the flood so
	// depressions fill toward the nearest coast, not the poles.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if elev.Data[i] > 0 {
				continue
			}
			for _, off := range hydroOffsets {
				ny := y + off[1]
				if ny < 0 || ny >= h {
					continue
				}
				nx := ((x+off[0])%w + w) % w
				if !visited[ny*w+nx] {
					fh = append(fh, floodEntry{elev: elev.Data[i], idx: int32(i)})
					break
				}
			}
		}
	}
	heap.Init(&fh)

	for fh.Len() > 0 {
		cell := heap.Pop(&fh).(floodEntry)
		ci := int(cell.idx)
		cx := ci % w
		cy := ci / w

		for _, off := range hydroOffsets {
			ny := cy + off[1]
			if ny < 0 || ny >= h {
				continue
			}
			nx := ((cx+off[0])%w + w) % w
			ni := ny*w + nx
			if visited[ni] {
				continue
			}
			visited[ni] = true

			if min := cell.elev + floodEpsilon; elev.Data[ni] < min {
				elev.Data[ni] = min
			}
			heap.Push(&fh, floodEntry{elev: elev.Data[ni], idx: int32(ni)})
		}
	}
}

// computeFlowDirection assigns each cell its D8 direction: the index into
// hydroOffsets of the steepest-descent neighbor, or flowNone for sinks and
// the ocean. The neighbor enumeration order is the fixed tie-break.
func computeFlowDirection(elev *grid.Grid[float32]) *grid.Grid[uint8] {
	w, h := elev.W, elev.H
	flowDir := grid.New[uint8](w, h)

	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < w; x++ {
				e := float64(elev.At(x, y))
				if e <= 0 {
					flowDir.Set(x, y, flowNone)
					continue
				}
				bestDir := flowNone
				bestSlope := 0.0

				for d, off := range hydroOffsets {
					ny := y + off[1]
					if ny < 0 || ny >= h {
						continue
					}
					nx := ((x+off[0])%w + w) % w
					slope := (e - float64(elev.At(nx, ny))) / hydroDists[d]
					if slope > bestSlope {
						bestSlope = slope
						bestDir = uint8(d)
					}
				}
				flowDir.Set(x, y, bestDir)
			}
		}
	})
	return flowDir
}

// flowAccumulation pushes precipitation downstream: cells are visited
// highest first, each adding its accumulated flow to its D8 neighbor. A
// single pass suffices because the D8 graph is a forest rooted at outlets.
func flowAccumulation(flowDir *grid.Grid[uint8], precip []float32, sorted []int32) []float32 {
	w, h := flowDir.W, flowDir.H
	flow := make([]float32, w*h)
	copy(flow, precip)

	for _, idx := range sorted {
		i := int(idx)
		dir := flowDir.Data[i]
		if dir >= 8 {
			continue
		}
		x := i % w
		y := i / w
		off := hydroOffsets[dir]
		ny := y + off[1]
		if ny < 0 || ny >= h {
			continue
		}
		nx := ((x+off[0])%w + w) % w
		flow[ny*w+nx] += flow[i]
	}
	return flow
}

// riverFlowCutoff returns the flow value separating the top RiverThreshold
// fraction of land cells. With too few land cells there are no rivers.
func riverFlowCutoff(flow []float32, land []bool, threshold float64) float64 {
	var landFlows []float32
	for i, isLand := range land {
		if isLand && flow[i] > 0 {
			landFlows = append(landFlows, flow[i])
		}
	}
	if len(landFlows) <= 100 {
		return math.MaxFloat64
	}
	sortFloat32s(landFlows)
	idx := int((1 - threshold) * float64(len(landFlows)))
	if idx > len(landFlows)-1 {
		idx = len(landFlows) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return float64(landFlows[idx])
}

// precipCutoffFactor shifts the river cutoff with local precipitation: wet
// regions get denser networks at the same threshold setting.
func precipCutoffFactor(precipMM float64) float64 {
	return clamp(1600/(800+precipMM), 0.5, 2)
}

// extendHeadwaters walks upstream from every river headwater, marking up to
// maxSteps sub-threshold cells as river so channels taper into the terrain
// instead of truncating.
func extendHeadwaters(riverHi, flow []float32, flowDir *grid.Grid[uint8], w, h, maxSteps int) {
	if maxSteps <= 0 {
		return
	}

	// upstreamOf returns the highest-flow neighbor draining into (x, y) and
	// whether any draining neighbor is already a river cell.
	upstreamOf := func(x, y int) (best int, hasRiverUpstream bool) {
		best = -1
		bestFlow := float32(-1)
		for _, off := range hydroOffsets {
			ny := y + off[1]
			if ny < 0 || ny >= h {
				continue
			}
			nx := ((x+off[0])%w + w) % w
			ni := ny*w + nx
			dir := flowDir.Data[ni]
			if dir >= 8 {
				continue
			}
			// Accept only neighbors whose downstream step lands on (x, y).
			back := hydroOffsets[dir]
			if ((nx+back[0])%w+w)%w != x || ny+back[1] != y {
				continue
			}
			if riverHi[ni] > 0 {
				hasRiverUpstream = true
			}
			if flow[ni] > bestFlow {
				bestFlow = flow[ni]
				best = ni
			}
		}
		return best, hasRiverUpstream
	}

	// Headwaters are collected before any extension, so the tip of an
	// extended channel is not taken as a new headwater and extended again.
	n := w * h
	var heads []int
	for i := 0; i < n; i++ {
		if riverHi[i] == 0 {
			continue
		}

		// Headwater: no river neighbor drains into this cell.
		if _, riverUp := upstreamOf(i%w, i/w); riverUp {
			continue
		}
		heads = append(heads, i)
	}

	for _, i := range heads {
		cur := i
		for step := 0; step < maxSteps; step++ {
			next, _ := upstreamOf(cur%w, cur/w)
			if next < 0 || riverHi[next] > 0 {
				break
			}
			riverHi[next] = flow[next]
			cur = next
		}
	}
}

// downsampleMax reduces the hi-res flow field to base resolution, keeping
// the maximum of each scale x scale block so thin rivers survive.
func downsampleMax(flow []float32, hw, hh, scale int) *grid.Grid[float32] {
	bw, bh := hw/scale, hh/scale
	out := grid.New[float32](bw, bh)

	various.KickOffChunkWorkers(bh, func(yStart, yEnd int) {
		for by := yStart; by < yEnd; by++ {
			for bx := 0; bx < bw; bx++ {
				var maxVal float32
				for dy := 0; dy < scale; dy++ {
					hy := by*scale + dy
					rowOff := hy * hw
					for dx := 0; dx < scale; dx++ {
						if v := flow[rowOff+bx*scale+dx]; v > maxVal {
							maxVal = v
						}
					}
				}
				out.Data[by*bw+bx] = maxVal
			}
		}
	})
	return out
}

// carveValleys subtracts a Gaussian valley kernel around every river cell
// from the base elevation. The depth grows with the logarithm of the flow,
// so confluences sit slightly deeper than headwaters. Carved cells keep a
// minimal freeboard above sea level so the coastline stays put.
func (m *Map) carveValleys() {
	if m.Params.ValleyDepth <= 0 || m.riverFlowCutoff == math.MaxFloat64 {
		return
	}
	w, h := m.W, m.H
	radius := int(math.Ceil(m.Params.ValleyRadius * 2))
	if radius < 1 {
		radius = 1
	}

	delta := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f := float64(m.RiverFlow.At(x, y))
			if f <= 0 {
				continue
			}
			depth := m.Params.ValleyDepth * math.Log1p(f/m.riverFlowCutoff)
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := ((x+dx)%w + w) % w
					d := depth * gaussianFalloff(math.Hypot(float64(dx), float64(dy)), m.Params.ValleyRadius)
					if ni := ny*w + nx; d > delta[ni] {
						delta[ni] = d
					}
				}
			}
		}
	}

	for i, d := range delta {
		if d <= 0 {
			continue
		}
		e := float64(m.Elevation.Data[i])
		if e <= 0 {
			continue
		}
		floor := math.Min(e, 1.0)
		m.Elevation.Data[i] = float32(math.Max(e-d, floor))
	}
}
