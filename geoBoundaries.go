package worldgen

import (
	"math"

	"github.com/vnovak404/worldgen/grid"
	"github.com/vnovak404/worldgen/various"
)

// Boundary type codes.
const (
	BoundaryInterior   uint8 = 0
	BoundaryConvergent uint8 = 1
	BoundaryDivergent  uint8 = 2
	BoundaryTransform  uint8 = 3
)

// extractBoundaries finds every cell with a 4-neighbor on a different
// microplate and classifies it by relative plate motion.
//
// The relative velocity of the two plates is projected onto the boundary
// normal: closing motion is convergent, opening is divergent, and when the
// tangential component dominates the boundary is transform. A cell adjacent
// to several plates takes the class of its fastest-moving pairing. The two
// plate ids are stored per boundary cell so later stages can look up the
// pairing without fragile neighbor searches.
//
// Major boundaries are those that build first-order relief: both plates
// continental, or a continental/oceanic pairing under convergence
// (subduction). Everything else is minor.
func (m *Map) extractBoundaries() error {
	w, h := m.W, m.H
	btype := grid.New[uint8](w, h)
	major := grid.New[uint8](w, h)
	plateA := grid.New[uint16](w, h)
	plateB := grid.New[uint16](w, h)

	offsets := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < w; x++ {
				pid := m.PlateID.At(x, y)
				bestType := BoundaryInterior
				bestRate := 0.0
				bestOther := pid

				for _, off := range offsets {
					nx, ny, ok := m.PlateID.WrapXY(x+off[0], y+off[1])
					if !ok {
						continue
					}
					npid := m.PlateID.At(nx, ny)
					if npid == pid {
						continue
					}

					// Boundary normal: from this cell toward the neighbor.
					nl := math.Hypot(float64(off[0]), float64(off[1]))
					normX := float64(off[0]) / nl
					normY := float64(off[1]) / nl

					va := m.Velocity[pid]
					vb := m.Velocity[npid]
					relX := va.X - vb.X
					relY := va.Y - vb.Y

					dot := relX*normX + relY*normY
					cross := math.Abs(relX*normY - relY*normX)

					var bt uint8
					var rate float64
					if math.Abs(dot) > cross {
						if dot > 0 {
							bt, rate = BoundaryConvergent, dot
						} else {
							bt, rate = BoundaryDivergent, -dot
						}
					} else {
						bt, rate = BoundaryTransform, cross
					}

					if rate > bestRate {
						bestRate = rate
						bestType = bt
						bestOther = npid
					}
				}

				if bestType != BoundaryInterior {
					btype.Set(x, y, bestType)
					plateA.Set(x, y, pid)
					plateB.Set(x, y, bestOther)
					if m.isMajorBoundary(pid, bestOther, bestType) {
						major.Set(x, y, 1)
					}
				}
			}
		}
	})

	m.BoundaryType = btype
	m.BoundaryMajor = major
	m.BoundaryPlateA = plateA
	m.BoundaryPlateB = plateB
	return nil
}

// isMajorBoundary applies the plate-type pairing table.
func (m *Map) isMajorBoundary(pa, pb uint16, btype uint8) bool {
	aCont := m.IsContinental[pa]
	bCont := m.IsContinental[pb]
	if aCont && bCont {
		return true
	}
	if aCont != bCont {
		return btype == BoundaryConvergent
	}
	return false
}

// overridingPlate returns, for a convergent pairing, the plate that rides
// over the other: the continental plate in a mixed pairing, otherwise the
// plate whose motion points more strongly into the boundary cell at (bx, by).
func (m *Map) overridingPlate(pa, pb uint16, bx, by int) uint16 {
	aCont := m.IsContinental[pa]
	bCont := m.IsContinental[pb]
	if aCont != bCont {
		if aCont {
			return pa
		}
		return pb
	}

	// Same type: compare how hard each plate pushes toward the boundary.
	w := float64(m.W)
	sa := m.MicroSeeds[pa]
	sb := m.MicroSeeds[pb]
	dax := grid.WrapDeltaX(float64(bx), sa[0], w)
	day := float64(by) - sa[1]
	dbx := grid.WrapDeltaX(float64(bx), sb[0], w)
	dby := float64(by) - sb[1]

	pushA := m.Velocity[pa].X*dax + m.Velocity[pa].Y*day
	pushB := m.Velocity[pb].X*dbx + m.Velocity[pb].Y*dby
	if pushA >= pushB {
		return pa
	}
	return pb
}
