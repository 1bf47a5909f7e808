package worldgen

import (
	"math"

	"github.com/Flokey82/genbiome"
	"github.com/mazznoer/colorgrad"
	"github.com/vnovak404/worldgen/rng"
	"github.com/vnovak404/worldgen/various"
)

// Layer is a named rendered RGBA8 image of W x H pixels.
type Layer struct {
	Name string
	RGBA []byte
}

// Layers renders every display layer of the map in canonical order. The
// rivers layer is all terrain until GenerateRivers has run.
func (m *Map) Layers() []Layer {
	return []Layer{
		{Name: "plates", RGBA: m.RenderPlates()},
		{Name: "boundaries", RGBA: m.RenderBoundaries()},
		{Name: "distance", RGBA: m.RenderDistance()},
		{Name: "heightmap", RGBA: m.RenderHeightmap()},
		{Name: "map", RGBA: m.RenderMap()},
		{Name: "temperature", RGBA: m.RenderTemperature()},
		{Name: "precipitation", RGBA: m.RenderPrecipitation()},
		{Name: "biomes", RGBA: m.RenderBiomes()},
		{Name: "rivers", RGBA: m.RenderRivers()},
	}
}

func lerpColor(a, b [4]uint8, t float64) [4]uint8 {
	t = clamp(t, 0, 1)
	return [4]uint8{
		uint8(math.Round(float64(a[0]) + (float64(b[0])-float64(a[0]))*t)),
		uint8(math.Round(float64(a[1]) + (float64(b[1])-float64(a[1]))*t)),
		uint8(math.Round(float64(a[2]) + (float64(b[2])-float64(a[2]))*t)),
		255,
	}
}

func putColor(buf []byte, i int, c [4]uint8) {
	buf[i*4] = c[0]
	buf[i*4+1] = c[1]
	buf[i*4+2] = c[2]
	buf[i*4+3] = c[3]
}

// Terrain palette, tuned for meter-scale elevation.
var (
	waterDeep    = [4]uint8{18, 36, 70, 255}
	waterMid     = [4]uint8{32, 55, 92, 255}
	waterShallow = [4]uint8{38, 78, 120, 255}
	coastShallow = [4]uint8{52, 100, 145, 255}
	landLow      = [4]uint8{70, 130, 62, 255}
	landMid      = [4]uint8{140, 180, 100, 255}
	landHigh     = [4]uint8{190, 170, 120, 255}
	mountainLow  = [4]uint8{140, 120, 100, 255}
	mountainHigh = [4]uint8{220, 220, 215, 255}
	snow         = [4]uint8{245, 248, 250, 255}
	beachSand    = [4]uint8{210, 200, 160, 255}
)

// RenderMap renders the shaded terrain color map.
func (m *Map) RenderMap() []byte {
	w, h := m.W, m.H
	rgba := make([]byte, w*h*4)

	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < w; x++ {
				elev := float64(m.Elevation.At(x, y))
				var c [4]uint8
				if elev <= 0 {
					depth := math.Min(-elev, 5000) / 5000
					switch {
					case depth < 0.15:
						c = lerpColor(coastShallow, waterShallow, depth/0.15)
					case depth < 0.5:
						c = lerpColor(waterShallow, waterMid, (depth-0.15)/0.35)
					default:
						c = lerpColor(waterMid, waterDeep, (depth-0.5)/0.5)
					}
				} else {
					e := math.Min(elev, 6000)
					switch {
					case e < 5:
						c = beachSand
					case e < 500:
						c = lerpColor(landLow, landMid, (e-5)/495)
					case e < 1500:
						c = lerpColor(landMid, landHigh, (e-500)/1000)
					case e < 3000:
						c = lerpColor(mountainLow, mountainHigh, (e-1500)/1500)
					default:
						c = lerpColor(mountainHigh, snow, math.Min((e-3000)/3000, 1))
					}
				}
				putColor(rgba, y*w+x, c)
			}
		}
	})
	return rgba
}

// RenderPlates colors microplates by their macroplate, with a slight shade
// variation per microplate. Major boundaries draw bright white, minor dim
// gray.
func (m *Map) RenderPlates() []byte {
	w, h := m.W, m.H
	rgba := make([]byte, w*h*4)

	// One distinct hue per macroplate.
	macroColors := make([][4]uint8, len(m.MacroSeeds))
	cols := colorgrad.Rainbow().Colors(uint(len(macroColors)))
	for i, c := range cols {
		cr, cg, cb, _ := c.RGBA()
		macroColors[i] = [4]uint8{
			uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8), 255,
		}
	}

	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				var c [4]uint8
				if m.BoundaryType.Data[i] != BoundaryInterior {
					if m.BoundaryMajor.Data[i] != 0 {
						c = [4]uint8{255, 255, 255, 255}
					} else {
						c = [4]uint8{140, 140, 140, 255}
					}
				} else {
					pid := int(m.PlateID.Data[i])
					base := macroColors[m.MacroID[pid]]
					shade := rng.Splitmix32(uint32(pid)*13 + 7)
					offset := int(shade&0x1F) - 16
					c = [4]uint8{
						uint8(clamp(float64(int(base[0])+offset), 0, 255)),
						uint8(clamp(float64(int(base[1])+offset), 0, 255)),
						uint8(clamp(float64(int(base[2])+offset), 0, 255)),
						255,
					}
				}
				putColor(rgba, i, c)
			}
		}
	})
	return rgba
}

// RenderBoundaries draws boundary classes: convergent red, divergent blue,
// transform green; major bright, minor dim.
func (m *Map) RenderBoundaries() []byte {
	w, h := m.W, m.H
	rgba := make([]byte, w*h*4)

	for i := range m.BoundaryType.Data {
		isMajor := m.BoundaryMajor.Data[i] != 0
		var c [4]uint8
		switch m.BoundaryType.Data[i] {
		case BoundaryConvergent:
			if isMajor {
				c = [4]uint8{220, 50, 50, 255}
			} else {
				c = [4]uint8{120, 40, 40, 255}
			}
		case BoundaryDivergent:
			if isMajor {
				c = [4]uint8{50, 80, 220, 255}
			} else {
				c = [4]uint8{40, 50, 120, 255}
			}
		case BoundaryTransform:
			if isMajor {
				c = [4]uint8{50, 200, 80, 255}
			} else {
				c = [4]uint8{40, 100, 50, 255}
			}
		default:
			c = [4]uint8{20, 20, 20, 255}
		}
		putColor(rgba, i, c)
	}
	return rgba
}

// RenderDistance maps the boundary distance field through a perceptual
// gradient.
func (m *Map) RenderDistance() []byte {
	w, h := m.W, m.H
	rgba := make([]byte, w*h*4)

	var maxD float32 = 1
	for _, d := range m.BoundaryDist.Data {
		if d > maxD && d < math.MaxFloat32 {
			maxD = d
		}
	}

	grad := colorgrad.Viridis()
	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				t := clamp(float64(m.BoundaryDist.Data[i])/float64(maxD), 0, 1)
				cr, cg, cb, _ := grad.At(t).RGBA()
				putColor(rgba, i, [4]uint8{uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8), 255})
			}
		}
	})
	return rgba
}

// RenderHeightmap renders the elevation as normalized grayscale.
func (m *Map) RenderHeightmap() []byte {
	w, h := m.W, m.H
	rgba := make([]byte, w*h*4)

	lo, hi := minMax(m.Elevation.Data)
	rangeH := float64(hi - lo)
	if rangeH < 1 {
		rangeH = 1
	}

	for i, e := range m.Elevation.Data {
		v := uint8(clamp(float64(e-lo)/rangeH*255, 0, 255))
		putColor(rgba, i, [4]uint8{v, v, v, 255})
	}
	return rgba
}

// Temperature color stops.
var (
	tempCold   = [4]uint8{220, 230, 255, 255} // -30C: white-blue
	tempFreeze = [4]uint8{80, 180, 220, 255}  // 0C: cyan
	tempCool   = [4]uint8{60, 160, 80, 255}   // 15C: green
	tempWarm   = [4]uint8{220, 200, 60, 255}  // 25C: yellow
	tempHot    = [4]uint8{200, 50, 30, 255}   // 35C+: red
)

// RenderTemperature renders the temperature field, clamped to the display
// range.
func (m *Map) RenderTemperature() []byte {
	w, h := m.W, m.H
	rgba := make([]byte, w*h*4)

	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < w; x++ {
				t := clamp(float64(m.Temperature.At(x, y)), minDisplayTempC, maxDisplayTempC)
				var c [4]uint8
				switch {
				case t < -30:
					c = tempCold
				case t < 0:
					c = lerpColor(tempCold, tempFreeze, (t+30)/30)
				case t < 15:
					c = lerpColor(tempFreeze, tempCool, t/15)
				case t < 25:
					c = lerpColor(tempCool, tempWarm, (t-15)/10)
				case t < 35:
					c = lerpColor(tempWarm, tempHot, (t-25)/10)
				default:
					c = tempHot
				}
				putColor(rgba, y*w+x, c)
			}
		}
	})
	return rgba
}

// Precipitation color stops (mm/year).
var (
	precipDry      = [4]uint8{200, 180, 130, 255} // 0: tan
	precipLow      = [4]uint8{210, 200, 80, 255}  // 250
	precipMed      = [4]uint8{60, 160, 70, 255}   // 1000
	precipHigh     = [4]uint8{50, 100, 200, 255}  // 2500
	precipVeryHigh = [4]uint8{20, 40, 120, 255}   // 4000+
)

// RenderPrecipitation renders annual precipitation.
func (m *Map) RenderPrecipitation() []byte {
	w, h := m.W, m.H
	rgba := make([]byte, w*h*4)

	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < w; x++ {
				p := float64(m.Precipitation.At(x, y))
				var c [4]uint8
				switch {
				case p < 250:
					c = lerpColor(precipDry, precipLow, p/250)
				case p < 1000:
					c = lerpColor(precipLow, precipMed, (p-250)/750)
				case p < 2500:
					c = lerpColor(precipMed, precipHigh, (p-1000)/1500)
				case p < 4000:
					c = lerpColor(precipHigh, precipVeryHigh, (p-2500)/1500)
				default:
					c = precipVeryHigh
				}
				putColor(rgba, y*w+x, c)
			}
		}
	})
	return rgba
}

// RenderBiomes renders the Whittaker biome classification.
func (m *Map) RenderBiomes() []byte {
	w, h := m.W, m.H
	rgba := make([]byte, w*h*4)

	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				if m.BiomeID.Data[i] == BiomeOcean {
					putColor(rgba, i, waterMid)
					continue
				}
				tempC := int(m.Temperature.Data[i])
				precipDM := int(m.Precipitation.Data[i] / 100)
				col := genbiome.GetWhittakerModBiomeColor(tempC, precipDM, 1)
				putColor(rgba, i, [4]uint8{col.R, col.G, col.B, 255})
			}
		}
	})
	return rgba
}

// Muted terrain for the river overlay.
var (
	riverWater    = [4]uint8{30, 45, 65, 255}
	riverLandLow  = [4]uint8{160, 170, 140, 255}
	riverLandHigh = [4]uint8{190, 180, 155, 255}
	riverMtn      = [4]uint8{210, 205, 195, 255}
	riverBlue     = [4]uint8{15, 40, 140, 255}
)

// RenderRivers overlays the river network on muted terrain; intensity
// follows the logarithm of the accumulated flow.
func (m *Map) RenderRivers() []byte {
	w, h := m.W, m.H
	rgba := make([]byte, w*h*4)

	var maxFlow float32 = 1
	for _, f := range m.RiverFlow.Data {
		if f > maxFlow {
			maxFlow = f
		}
	}
	logMax := math.Log(float64(maxFlow))
	if logMax <= 0 {
		logMax = 1
	}

	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < w; x++ {
				elev := float64(m.Elevation.At(x, y))
				flow := float64(m.RiverFlow.At(x, y))

				var base [4]uint8
				if elev <= 0 {
					base = riverWater
				} else {
					e := math.Min(elev, 5000)
					if e < 500 {
						base = lerpColor(riverLandLow, riverLandHigh, e/500)
					} else {
						base = lerpColor(riverLandHigh, riverMtn, math.Min((e-500)/4500, 1))
					}
				}

				c := base
				if flow > 0 {
					intensity := clamp(math.Log(flow)/logMax, 0, 1)
					c = lerpColor(base, riverBlue, 0.7+0.3*intensity)
				}
				putColor(rgba, y*w+x, c)
			}
		}
	})
	return rgba
}
