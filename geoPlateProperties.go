package worldgen

import (
	"math"
	"sort"

	"github.com/Flokey82/go_gens/vectors"
)

// assignPlateProperties groups microplates into macroplates, decides which
// plates are continental, and assigns plate velocities and base elevations.
//
// Macroplate membership is nearest-center with per-macroplate noise
// distortion, so macroplate territories come out organic instead of
// circular. Continental assignment is driven by a low-frequency noise field
// sampled at the microplate seeds: plates are flagged continental in
// descending noise order until the target cell fraction is covered, which
// decouples continent shapes from the macroplate grouping.
func (m *Map) assignPlateProperties() error {
	w, h := float64(m.W), float64(m.H)
	numMicro := len(m.MicroSeeds)
	numMacro := len(m.MacroSeeds)
	r := m.rngFor("plates/properties")

	// Macroplate membership, noise-weighted per macroplate.
	groupNoise := m.noiseFor("plates/macro-group", 3, 0.5)
	bn := m.Params.BoundaryNoise
	macroID := make([]int, numMicro)
	for i, ms := range m.MicroSeeds {
		u := ms[0] / w
		v := ms[1] / h
		bestD := math.MaxFloat64
		bestJ := 0
		for j, mc := range m.MacroSeeds {
			d := wrapDist(ms[0], ms[1], mc[0], mc[1], w)
			// Offsetting the sample per macroplate gives each group its own
			// distortion field.
			n := groupNoise.CylSigned(u, v+float64(j)*3.17, 3)
			dd := d * d * math.Max(1+n*bn, 0.1)
			if dd < bestD {
				bestD = dd
				bestJ = j
			}
		}
		macroID[i] = bestJ
	}

	// Cell counts per microplate.
	microCounts := make([]int, numMicro)
	for _, pid := range m.PlateID.Data {
		if int(pid) < numMicro {
			microCounts[pid]++
		}
	}
	macroCounts := make([]int, numMacro)
	for i, c := range microCounts {
		macroCounts[macroID[i]] += c
	}

	// Continental assignment: low-frequency noise at the seed positions,
	// highest values become land until the target fraction is reached.
	contNoise := m.noiseFor("plates/continents", 3, 0.5)
	type plateNoise struct {
		idx int
		val float64
	}
	noiseVals := make([]plateNoise, numMicro)
	for i, ms := range m.MicroSeeds {
		noiseVals[i] = plateNoise{
			idx: i,
			val: contNoise.Cyl(ms[0]/w, ms[1]/h, 2.5),
		}
	}
	sort.Slice(noiseVals, func(a, b int) bool {
		if noiseVals[a].val != noiseVals[b].val {
			return noiseVals[a].val > noiseVals[b].val
		}
		return noiseVals[a].idx < noiseVals[b].idx
	})

	total := 0
	for _, c := range microCounts {
		total += c
	}
	isContinental := make([]bool, numMicro)
	remaining := int(m.Params.ContinentalFraction * float64(total))
	for _, pn := range noiseVals {
		if remaining <= 0 {
			break
		}
		isContinental[pn.idx] = true
		remaining -= microCounts[pn.idx]
	}

	// Macroplate velocities: random direction and magnitude with the
	// area-weighted mean subtracted for net-zero momentum.
	vr := r.Fork("velocities")
	macroVel := make([]vectors.Vec2, numMacro)
	for i := range macroVel {
		angle := vr.RangeF64(0, 2*math.Pi)
		mag := vr.RangeF64(0.3, 1.0)
		macroVel[i] = vectors.Vec2{X: math.Cos(angle) * mag, Y: math.Sin(angle) * mag}
	}
	var sx, sy, sw float64
	for i, v := range macroVel {
		wt := float64(macroCounts[i])
		sx += v.X * wt
		sy += v.Y * wt
		sw += wt
	}
	if sw > 0 {
		bx, by := sx/sw, sy/sw
		for i := range macroVel {
			macroVel[i].X -= bx
			macroVel[i].Y -= by
		}
	}

	// Microplate velocity = macroplate velocity + a small perturbation so
	// minor boundaries still have some relative motion.
	velocity := make([]vectors.Vec2, numMicro)
	for i := 0; i < numMicro; i++ {
		mv := macroVel[macroID[i]]
		angle := vr.RangeF64(0, 2*math.Pi)
		mag := vr.RangeF64(0, 0.15)
		velocity[i] = vectors.Vec2{
			X: mv.X + math.Cos(angle)*mag,
			Y: mv.Y + math.Sin(angle)*mag,
		}
	}

	// Base elevation per microplate.
	er := r.Fork("base-elevation")
	baseElev := make([]float32, numMicro)
	for i := range baseElev {
		if isContinental[i] {
			baseElev[i] = float32(er.RangeF64(200, 800))
		} else {
			baseElev[i] = float32(er.RangeF64(-4000, -3000))
		}
	}

	m.MacroID = macroID
	m.IsContinental = isContinental
	m.Velocity = velocity
	m.PlateBaseElev = baseElev
	return nil
}
