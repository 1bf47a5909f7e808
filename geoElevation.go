package worldgen

import (
	"math"

	"github.com/vnovak404/worldgen/grid"
	"github.com/vnovak404/worldgen/various"
)

// Reference width all pixel-based parameters are authored for. Scaling them
// with resolution keeps the same slider values producing the same geography
// at any grid size.
const refWidth = 2048.0

// assignElevation builds the signed elevation field in meters.
//
// Elevation is driven by geology (plate boundaries), not noise: per-cell
// boundary profiles (mountains, trenches, ridges, rifts) are computed from
// the distance field, smoothed to hide the Voronoi ridge discontinuities,
// then combined with the per-plate base elevation, coastline perturbation,
// interior terrain, fine detail and ridged mountain texture. A chamfer-based
// continental shelf and the sea-level normalization run last.
func (m *Map) assignElevation() error {
	w, h := m.W, m.H
	n := w * h
	scale := float64(w) / refWidth

	detailNoise := m.noiseFor("elevation/detail", 4, 0.5)
	ridgeNoise := m.noiseFor("elevation/ridge", 4, 0.45)
	ridgeWarp1 := m.noiseFor("elevation/ridge-warp-1", 3, 0.5)
	ridgeWarp2 := m.noiseFor("elevation/ridge-warp-2", 3, 0.5)
	coastLarge := m.noiseFor("elevation/coast-large", 3, 0.5)
	coastSmall := m.noiseFor("elevation/coast-small", 4, 0.5)
	warpX := m.noiseFor("elevation/warp-x", 3, 0.5)
	warpY := m.noiseFor("elevation/warp-y", 3, 0.5)
	interiorLand := m.noiseFor("elevation/interior-land", 5, 0.5)
	interiorOcean := m.noiseFor("elevation/interior-ocean", 3, 0.5)
	chainNoise := m.noiseFor("elevation/chain", 3, 0.5)
	baseNoise := m.noiseFor("elevation/base", 4, 0.5)

	mw := m.Params.MountainWidth * scale
	blurSigma := m.Params.BlurSigma * scale
	shelfWidth := m.Params.ShelfWidth * scale
	interiorDist := 80.0 * scale
	coastDistMax := 100.0 * scale
	ridgeDistMax := 120.0 * scale

	// Phase 1: boundary profiles per cell.
	profileOff := make([]float64, n)
	mtAmp := make([]float64, n)
	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				bx := int(m.NearBX.Data[i])
				by := int(m.NearBY.Data[i])
				if bx >= w || by >= h {
					continue
				}
				pid := m.PlateID.Data[i]
				dist := float64(m.BoundaryDist.Data[i])
				btype := m.BoundaryType.At(bx, by)
				pa := m.BoundaryPlateA.At(bx, by)
				pb := m.BoundaryPlateB.At(bx, by)
				rate := m.relativeRate(pa, pb)
				isMajor := m.BoundaryMajor.At(bx, by) != 0

				off, ma := m.boundaryProfile(btype, dist, rate, pid, pa, pb, isMajor, scale)

				// Chain modulation: ridged noise along the boundary tangent
				// breaks uniform ranges into individual peaks.
				if (math.Abs(off) > 50 || ma > 10) && dist < mw*3 {
					dx := float64(bx - x)
					dy := float64(by - y)
					l := math.Max(math.Hypot(dx, dy), 1)
					tx := -dy / l
					ty := dx / l
					along := (float64(x)*tx + float64(y)*ty) / float64(w)
					across := (float64(x)*ty + float64(y)*(-tx)) / float64(w)
					chain := clamp(chainNoise.Ridged2(along*6, across*18), 0, 1)
					mod := 0.25 + 0.75*chain
					off *= mod
					ma *= mod
				}

				profileOff[i] = off
				mtAmp[i] = ma
			}
		}
	})

	// Phase 2: smooth the profiles.
	blurGrid(profileOff, w, h, blurSigma)
	blurGrid(mtAmp, w, h, blurSigma)

	// Phase 3: final elevation per cell.
	coastAmp := m.Params.CoastAmp
	interiorAmp := m.Params.InteriorAmp
	detailAmp := m.Params.DetailAmp

	height := grid.New[float32](w, h)
	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			v := float64(y) / float64(h)
			for x := 0; x < w; x++ {
				i := y*w + x
				pid := m.PlateID.Data[i]
				dist := float64(m.BoundaryDist.Data[i])
				isCont := m.IsContinental[pid]
				u := float64(x) / float64(w)

				// Domain warping keeps the noise components from lining up.
				wu := u + warpX.CylSigned(u, v, 4)*0.06
				wv := v + warpY.CylSigned(u, v, 4)*0.06

				// Per-plate base elevation blended with noise; continental
				// plates taper toward their coastline.
				baseCenter := float64(m.PlateBaseElev[pid])
				bn := baseNoise.CylSigned(wu, wv, 2.5)
				var base float64
				if isCont {
					taper := smoothstep01(math.Min(dist/shelfWidth, 1))
					base = (baseCenter + bn*500) * taper
				} else {
					base = baseCenter + bn*200
				}

				// Interior terrain variation.
				var interior float64
				if isCont {
					weight := smoothstep01(math.Min(dist/interiorDist, 1))
					interior = interiorLand.CylSigned(wu, wv, 4) * 350 * interiorAmp * weight
				} else {
					interior = interiorOcean.CylSigned(wu, wv, 3) * 150 * interiorAmp
				}

				// Coastline perturbation.
				var coast float64
				if dist < coastDistMax {
					weight := smoothstep01(1 - math.Min(dist/coastDistMax, 1))
					large := coastLarge.CylSigned(wu, wv, 3) * 800
					small := coastSmall.CylSigned(wu, wv, 15) * 300
					coast = (large + small) * weight * coastAmp
				}

				detail := detailNoise.CylSigned(wu, wv, 10) * detailAmp

				// Ridged texture near convergent boundaries.
				var ridge float64
				if ma := mtAmp[i]; ma > 0 && dist < ridgeDistMax {
					rw1 := ridgeWarp1.CylSigned(wu, wv, 6) * 0.10
					rw2 := ridgeWarp2.CylSigned(wu, wv, 6) * 0.10
					r := clamp(ridgeNoise.RidgedCyl(wu+rw1, wv+rw2, 6), 0, 1)
					falloff := smoothstep01(1 - math.Min(dist/ridgeDistMax, 1))
					ridge = r * ma * falloff
				}

				height.Data[i] = float32(base + profileOff[i] + coast + interior + detail + ridge)
			}
		}
	})

	addContinentalShelf(height, shelfWidth)
	m.Elevation = height
	m.normalizeSeaLevel()
	return nil
}

// relativeRate is the magnitude of the relative velocity of two plates.
func (m *Map) relativeRate(pa, pb uint16) float64 {
	va := m.Velocity[pa]
	vb := m.Velocity[pb]
	return math.Hypot(va.X-vb.X, va.Y-vb.Y)
}

// boundaryProfile returns (elevation offset, mountain noise amplitude) for a
// cell at the given distance from its nearest boundary. All pixel distances
// scale with resolution.
func (m *Map) boundaryProfile(btype uint8, dist, rate float64, pid, pa, pb uint16, isMajor bool, scale float64) (float64, float64) {
	rateFactor := math.Min(rate, 2)
	ms := m.Params.MountainScale
	ts := m.Params.TrenchScale
	mw := m.Params.MountainWidth * scale

	strength := 0.35
	if isMajor {
		strength = 1.0
	}

	switch btype {
	case BoundaryConvergent:
		paCont := m.IsContinental[pa]
		pbCont := m.IsContinental[pb]
		switch {
		case paCont && pbCont:
			// Continental collision: high, wide ranges on both sides.
			peak := (3500 + rateFactor*2000) * ms * strength
			return peak * gaussianFalloff(dist, mw), (400 + rateFactor*200) * ms * strength
		case paCont != pbCont:
			if m.IsContinental[pid] {
				// Overriding continental side: coastal range set back from
				// the trench.
				peak := (3000 + rateFactor*1800) * ms * strength
				offsetDist := math.Max(dist-30*scale, 0)
				return peak * gaussianFalloff(offsetDist, mw*0.8), (300 + rateFactor*150) * ms * strength
			}
			// Subducting oceanic side: deep trench hugging the boundary.
			trench := -2500 * math.Min(rateFactor, 1.5) * ts * strength
			return trench * gaussianFalloff(dist, 12*scale), 0
		default:
			// Ocean-ocean: trench at the boundary, island arc behind it.
			if dist < 15*scale {
				trench := -1800 * math.Min(rateFactor, 1.5) * ts * strength
				return trench * gaussianFalloff(dist, 8*scale), 0
			}
			arc := 1000 * math.Min(rateFactor, 1.5) * ms * strength
			return arc * gaussianFalloff(dist-35*scale, 18*scale), 150 * ms * strength
		}
	case BoundaryDivergent:
		bothOceanic := !m.IsContinental[pa] && !m.IsContinental[pb]
		if bothOceanic {
			ridge := m.Params.RidgeHeight * math.Min(rateFactor, 1.5) * strength
			return ridge * gaussianFalloff(dist, 35*scale), 0
		}
		rift := -m.Params.RiftDepth * math.Min(rateFactor, 1.5) * strength
		return rift * gaussianFalloff(dist, 30*scale), 0
	default:
		// Transform boundaries shear without building relief.
		return 0, 0
	}
}

// blurGrid applies a separable Gaussian blur in place: wrapped E-W, clamped
// N-S.
func blurGrid(data []float64, w, h int, sigma float64) {
	radius := int(math.Ceil(sigma * 3))
	if radius == 0 {
		return
	}

	kernel := make([]float64, radius+1)
	for i := range kernel {
		kernel[i] = math.Exp(-float64(i*i) / (2 * sigma * sigma))
	}
	sum := kernel[0]
	for _, k := range kernel[1:] {
		sum += 2 * k
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	// Horizontal pass with E-W wrap.
	tmp := make([]float64, w*h)
	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			row := data[y*w : (y+1)*w]
			for x := 0; x < w; x++ {
				s := row[x] * kernel[0]
				for r := 1; r <= radius; r++ {
					s += row[((x-r)%w+w)%w] * kernel[r]
					s += row[(x+r)%w] * kernel[r]
				}
				tmp[y*w+x] = s
			}
		}
	})

	// Vertical pass, clamped at the polar edges.
	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < w; x++ {
				s := tmp[y*w+x] * kernel[0]
				for r := 1; r <= radius; r++ {
					uy := y - r
					if uy < 0 {
						uy = 0
					}
					dy := y + r
					if dy > h-1 {
						dy = h - 1
					}
					s += tmp[uy*w+x] * kernel[r]
					s += tmp[dy*w+x] * kernel[r]
				}
				data[y*w+x] = s
			}
		}
	})
}

// addContinentalShelf raises near-coast ocean cells onto a gentle shelf.
// Coast distance comes from a two-pass chamfer with E-W wrapping.
func addContinentalShelf(height *grid.Grid[float32], shelfWidth float64) {
	w, h := height.W, height.H
	n := w * h

	land := make([]bool, n)
	coastDist := make([]float64, n)
	for i, e := range height.Data {
		if e > 0 {
			land[i] = true
			coastDist[i] = 0
		} else {
			coastDist[i] = math.MaxFloat64
		}
	}

	type chamferStep struct {
		dx, dy int
		cost   float64
	}
	forward := []chamferStep{{-1, 0, 1}, {0, -1, 1}, {-1, -1, math.Sqrt2}, {1, -1, math.Sqrt2}}
	backward := []chamferStep{{1, 0, 1}, {0, 1, 1}, {1, 1, math.Sqrt2}, {-1, 1, math.Sqrt2}}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			for _, st := range forward {
				ny := y + st.dy
				if ny < 0 || ny >= h {
					continue
				}
				nx := ((x+st.dx)%w + w) % w
				if c := coastDist[ny*w+nx] + st.cost; c < coastDist[i] {
					coastDist[i] = c
				}
			}
		}
	}
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			i := y*w + x
			for _, st := range backward {
				ny := y + st.dy
				if ny < 0 || ny >= h {
					continue
				}
				nx := ((x+st.dx)%w + w) % w
				if c := coastDist[ny*w+nx] + st.cost; c < coastDist[i] {
					coastDist[i] = c
				}
			}
		}
	}

	for i := 0; i < n; i++ {
		if !land[i] && coastDist[i] < shelfWidth {
			shelfElev := -250 * smoothstep01(coastDist[i]/shelfWidth)
			if float64(height.Data[i]) < shelfElev {
				height.Data[i] = float32(shelfElev)
			}
		}
	}
}

// normalizeSeaLevel shifts the elevation field so that the fraction of
// cells above zero matches the configured continental fraction. The
// threshold is the matching quantile of the elevation histogram; cells tied
// exactly at the threshold (the shelf taper produces large tie groups) are
// split by cell index so the land count stays exact.
func (m *Map) normalizeSeaLevel() {
	n := len(m.Elevation.Data)
	if n == 0 {
		return
	}

	data := m.Elevation.Data
	order := argsortAscending(data)

	idx := int((1 - m.Params.ContinentalFraction) * float64(n))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	threshold := data[order[idx]]

	// Ranks above idx that share the threshold value would land exactly at
	// zero after the shift; nudge them onto the land side.
	const tieNudge = 1e-4
	for k := idx + 1; k < n && data[order[k]] == threshold; k++ {
		data[order[k]] += tieNudge
	}

	for i := range data {
		data[i] -= threshold
	}
	m.SeaLevelShift = float64(threshold)
}
