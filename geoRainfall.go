package worldgen

import (
	"math"

	"github.com/vnovak404/worldgen/grid"
	"github.com/vnovak404/worldgen/various"
)

// assignRainfall computes precipitation in mm/year with a banded Hadley-cell
// wind model and row-wise moisture advection.
//
// Each row is walked in its prevailing wind direction (trade easterlies
// 0-30, westerlies 30-60, polar easterlies 60-90, smoothly blended) carrying
// a moisture scalar. Ocean cells recharge it toward a temperature-dependent
// capacity; land cells rain part of it out, more on upslopes (orographic
// lift), and recycle part of the rainfall back into the air
// (evapotranspiration). Rows are independent, so they run in parallel.
//
// The advected field is then modulated by the latitude profile (ITCZ boost,
// subtropical suppression, mid-latitude cyclonic boost), blurred N-S to
// smooth band artifacts, and normalized so the land mean is ~800mm times
// RainfallScale.
func (m *Map) assignRainfall() error {
	w, h := m.W, m.H
	precip := grid.New[float32](w, h)

	// Moisture capacity by temperature: gentler than real Clausius-Clapeyron
	// (doubling per 20C instead of 10C) with a floor so polar air still
	// carries some moisture.
	capacityForTemp := func(tempC float64) float64 {
		cc := 50 * math.Pow(2, tempC/20)
		return clamp(cc, 15, 200)
	}

	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		recorded := make([]float64, w)
		for y := yStart; y < yEnd; y++ {
			latDeg := math.Abs(float64(y)/float64(h)-0.5) * 2 * 90

			// Wind direction from the Hadley cells, smoothly blended at the
			// band transitions.
			tradeToWest := smoothstep(25, 35, latDeg)
			westToPolar := smoothstep(55, 65, latDeg)
			tw := -1*(1-tradeToWest) + 1*tradeToWest
			dx := tw*(1-westToPolar) + -1*westToPolar

			// A warmup lap lets the moisture state settle before recording.
			warmup := w / 4
			totalSteps := warmup + w

			for i := range recorded {
				recorded[i] = 0
			}

			startX := -warmup
			step := 1
			if dx <= 0 {
				startX = w - 1 + warmup
				step = -1
			}

			moisture := 0.0
			for s := 0; s < totalSteps; s++ {
				rawX := startX + step*s
				x := ((rawX % w) + w) % w

				elev := float64(m.Elevation.At(x, y))
				tempC := float64(m.Temperature.At(x, y))
				cap := capacityForTemp(tempC)

				if elev <= 0 {
					// Ocean: recharge toward capacity.
					moisture += (cap - moisture) * 0.05
				} else {
					baseDepletion := 0.025

					// Orographic lift: upslopes in wind direction wring
					// moisture out.
					prevX := (((rawX - step) % w) + w) % w
					slope := math.Max(elev-float64(m.Elevation.At(prevX, y)), 0)
					depletion := math.Min(baseDepletion+0.0005*slope, 0.5)

					rain := moisture * depletion
					moisture -= rain

					// Evapotranspiration recycles rainfall back into the
					// air; this is what keeps continental interiors wet.
					evapFrac := 0.1 + 0.4*smoothstep(-10, 30, tempC)
					moisture += rain * evapFrac

					// Convective contribution from solar heating.
					moisture += 0.3 * smoothstep(5, 30, tempC)

					if s >= warmup {
						recorded[x] += rain
					}
				}

				moisture = clamp(moisture, 0, cap*1.5)
			}

			for x := 0; x < w; x++ {
				precip.Set(x, y, float32(recorded[x]))
			}
		}
	})

	// Latitude modulation: ITCZ boost, subtropical dip, mid-latitude
	// cyclonic boost.
	for y := 0; y < h; y++ {
		latDeg := math.Abs(float64(y)/float64(h)-0.5) * 2 * 90

		itcz := 1 + 0.3*math.Exp(-latDeg*latDeg/(2*8*8))
		subDist := latDeg - 28
		subtropical := 1 - 0.3*math.Exp(-subDist*subDist/(2*8*8))
		midDist := latDeg - 50
		midlat := 1 + 0.4*math.Exp(-midDist*midDist/(2*12*12))

		f := float32(itcz * subtropical * midlat)
		row := precip.Data[y*w : (y+1)*w]
		for x := range row {
			row[x] *= f
		}
	}

	// Light N-S blur to soften the latitude bands.
	const sigma = 4.0
	radius := int(math.Ceil(sigma * 3))
	kernel := make([]float64, 2*radius+1)
	var ksum float64
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		ksum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= ksum
	}

	blurred := grid.New[float32](w, h)
	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < w; x++ {
				var sum float64
				for k, dy := 0, -radius; dy <= radius; k, dy = k+1, dy+1 {
					sy := y + dy
					if sy < 0 {
						sy = 0
					}
					if sy > h-1 {
						sy = h - 1
					}
					sum += float64(precip.At(x, sy)) * kernel[k]
				}
				blurred.Set(x, y, float32(sum))
			}
		}
	})

	// Normalize so the global land mean is ~800mm/year, then apply the
	// rainfall scale.
	var landSum float64
	var landCount int
	for i, e := range m.Elevation.Data {
		if e > 0 {
			landSum += float64(blurred.Data[i])
			landCount++
		}
	}
	landMean := 1.0
	if landCount > 0 {
		landMean = landSum / float64(landCount)
	}
	scale := 1.0
	if landMean > 1e-10 {
		scale = 800 / landMean
	}
	scale *= m.Params.RainfallScale

	for i := range blurred.Data {
		v := float64(blurred.Data[i]) * scale
		if v < 0 {
			v = 0
		}
		blurred.Data[i] = float32(v)
	}

	m.Precipitation = blurred
	return nil
}
