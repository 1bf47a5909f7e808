package worldgen

import (
	"math"

	"github.com/vnovak404/worldgen/grid"
	"github.com/vnovak404/worldgen/various"
)

const noNearSeed = math.MaxUint16

// distSq is the squared Euclidean distance from (x, y) to a boundary cell
// (bx, by) with E-W wrapping.
func distSq(x, y int, bx, by uint16, w int) float64 {
	dxRaw := math.Abs(float64(x) - float64(bx))
	dx := math.Min(dxRaw, float64(w)-dxRaw)
	dy := float64(y) - float64(by)
	return dx*dx + dy*dy
}

// assignBoundaryDistance builds the Euclidean distance field to the nearest
// boundary cell using the jump flooding algorithm.
//
// Each cell propagates the coordinates of its best known boundary seed to
// neighbors at exponentially shrinking step sizes. Passes are data-parallel
// over cells and double-buffered, with a barrier between passes; two extra
// passes at step 2 and 1 clean up the residual errors JFA is known for.
// Unlike chamfer sweeps this compares true Euclidean distances at every
// step, so the contours come out circular with no diamond artifacts.
func (m *Map) assignBoundaryDistance() error {
	w, h := m.W, m.H
	n := w * h

	nearX := make([]uint16, n)
	nearY := make([]uint16, n)
	for i := range nearX {
		nearX[i] = noNearSeed
		nearY[i] = noNearSeed
	}

	// Boundary cells seed with their own coordinates.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if m.BoundaryType.Data[i] != BoundaryInterior {
				nearX[i] = uint16(x)
				nearY[i] = uint16(y)
			}
		}
	}

	dirs := [8][2]int{
		{-1, 0}, {1, 0}, {0, -1}, {0, 1},
		{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
	}

	nextX := make([]uint16, n)
	nextY := make([]uint16, n)

	runPass := func(step int) {
		various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
			for y := yStart; y < yEnd; y++ {
				for x := 0; x < w; x++ {
					i := y*w + x
					bestSq := math.MaxFloat64
					bestX := nearX[i]
					bestY := nearY[i]
					if bestX != noNearSeed {
						bestSq = distSq(x, y, bestX, bestY, w)
					}

					for _, d := range dirs {
						ny := y + d[1]*step
						if ny < 0 || ny >= h {
							continue
						}
						nx := ((x+d[0]*step)%w + w) % w
						ni := ny*w + nx
						if nearX[ni] == noNearSeed {
							continue
						}
						cand := distSq(x, y, nearX[ni], nearY[ni], w)
						if cand < bestSq {
							bestSq = cand
							bestX = nearX[ni]
							bestY = nearY[ni]
						}
					}

					nextX[i] = bestX
					nextY[i] = bestY
				}
			}
		})
		nearX, nextX = nextX, nearX
		nearY, nextY = nextY, nearY
	}

	maxDim := w
	if h > maxDim {
		maxDim = h
	}
	for step := nextPow2(maxDim) / 2; step >= 1; step /= 2 {
		runPass(step)
	}
	// JFA+2 cleanup.
	runPass(2)
	runPass(1)

	dist := grid.New[float32](w, h)
	various.KickOffChunkWorkers(n, func(start, end int) {
		for i := start; i < end; i++ {
			if nearX[i] == noNearSeed {
				dist.Data[i] = float32(math.MaxFloat32)
				continue
			}
			dist.Data[i] = float32(math.Sqrt(distSq(i%w, i/w, nearX[i], nearY[i], w)))
		}
	})

	m.BoundaryDist = dist
	m.NearBX = &grid.Grid[uint16]{Data: nearX, W: w, H: h}
	m.NearBY = &grid.Grid[uint16]{Data: nearY, W: w, H: h}
	return nil
}

// DistanceSign reports which side of its nearest boundary the cell at
// (x, y) is on: +1 on the overriding side of a convergent boundary, -1 on
// the subducting side, 0 for non-convergent boundaries.
func (m *Map) DistanceSign(x, y int) int {
	bx := int(m.NearBX.At(x, y))
	by := int(m.NearBY.At(x, y))
	if bx >= m.W || by >= m.H {
		return 0
	}
	if m.BoundaryType.At(bx, by) != BoundaryConvergent {
		return 0
	}
	pa := m.BoundaryPlateA.At(bx, by)
	pb := m.BoundaryPlateB.At(bx, by)
	over := m.overridingPlate(pa, pb, bx, by)
	if m.PlateID.At(x, y) == over {
		return 1
	}
	return -1
}

// nextPow2 returns the smallest power of two >= v.
func nextPow2(v int) int {
	p := 1
	for p < v {
		p *= 2
	}
	return p
}
