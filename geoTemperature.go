package worldgen

import (
	"math"

	"github.com/Flokey82/go_gens/gameconstants"
	"github.com/vnovak404/worldgen/grid"
	"github.com/vnovak404/worldgen/various"
)

// Display clamp for the temperature layer.
const (
	minDisplayTempC = -40.0
	maxDisplayTempC = 40.0
)

// assignTemperature computes the mean annual surface temperature in Celsius:
// a latitude gradient from +30C at the equator to -30C at the poles
// (lat^1.5 curve, which widens the tropics), an altitude lapse for land
// above sea level, and a small octave-noise variation.
func (m *Map) assignTemperature() error {
	w, h := m.W, m.H
	temp := grid.New[float32](w, h)
	tempNoise := m.noiseFor("climate/temperature", 4, 0.5)

	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			lat := math.Abs(float64(y)/float64(h)-0.5) * 2 // 0 equator, 1 poles
			baseTemp := 30 - 60*math.Pow(lat, 1.5)
			v := float64(y) / float64(h)
			for x := 0; x < w; x++ {
				t := baseTemp
				if elev := float64(m.Elevation.At(x, y)); elev > 0 {
					t -= gameconstants.EarthElevationTemperatureFalloff * elev
				}
				u := float64(x) / float64(w)
				t += tempNoise.CylSigned(u, v, 8) * 2
				temp.Set(x, y, float32(t))
			}
		}
	})

	m.Temperature = temp
	return nil
}
