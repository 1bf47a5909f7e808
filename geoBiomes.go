package worldgen

import (
	"github.com/Flokey82/genbiome"
	"github.com/vnovak404/worldgen/grid"
	"github.com/vnovak404/worldgen/various"
)

// BiomeOcean marks water cells in the biome layer.
const BiomeOcean uint8 = 255

// assignBiomes classifies every land cell into a Whittaker biome from its
// mean annual temperature and precipitation.
func (m *Map) assignBiomes() error {
	w, h := m.W, m.H
	biomes := grid.New[uint8](w, h)

	various.KickOffChunkWorkers(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < w; x++ {
				if m.Elevation.At(x, y) <= 0 {
					biomes.Set(x, y, BiomeOcean)
					continue
				}
				tempC := int(m.Temperature.At(x, y))
				precipDM := int(m.Precipitation.At(x, y) / 100) // mm -> dm
				biomes.Set(x, y, uint8(genbiome.GetWhittakerModBiome(tempC, precipDM)))
			}
		}
	})

	m.BiomeID = biomes
	return nil
}
