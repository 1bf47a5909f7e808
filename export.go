package worldgen

import (
	geojson "github.com/paulmach/go.geojson"
)

// cellLonLat maps grid coordinates onto the equirectangular lon/lat frame.
func (m *Map) cellLonLat(x, y int) []float64 {
	lon := float64(x)/float64(m.W)*360 - 180
	lat := 90 - float64(y)/float64(m.H)*180
	return []float64{lon, lat}
}

// ExportGeoJSONBoundaries returns the plate boundary cells as a GeoJSON
// feature collection: one MultiPoint feature per boundary class and
// major/minor grade.
func (m *Map) ExportGeoJSONBoundaries() ([]byte, error) {
	type key struct {
		btype uint8
		major bool
	}
	names := map[uint8]string{
		BoundaryConvergent: "convergent",
		BoundaryDivergent:  "divergent",
		BoundaryTransform:  "transform",
	}

	buckets := make(map[key][][]float64)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			bt := m.BoundaryType.At(x, y)
			if bt == BoundaryInterior {
				continue
			}
			k := key{btype: bt, major: m.BoundaryMajor.At(x, y) != 0}
			buckets[k] = append(buckets[k], m.cellLonLat(x, y))
		}
	}

	fc := geojson.NewFeatureCollection()
	for _, bt := range []uint8{BoundaryConvergent, BoundaryDivergent, BoundaryTransform} {
		for _, major := range []bool{true, false} {
			coords := buckets[key{btype: bt, major: major}]
			if len(coords) == 0 {
				continue
			}
			f := geojson.NewMultiPointFeature(coords...)
			f.SetProperty("type", names[bt])
			f.SetProperty("major", major)
			fc.AddFeature(f)
		}
	}
	return fc.MarshalJSON()
}

// ExportGeoJSONRivers returns the river cells as a GeoJSON MultiPoint
// feature with the peak accumulated flow as a property. Empty until
// GenerateRivers has run.
func (m *Map) ExportGeoJSONRivers() ([]byte, error) {
	var coords [][]float64
	var maxFlow float32
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			f := m.RiverFlow.At(x, y)
			if f <= 0 {
				continue
			}
			coords = append(coords, m.cellLonLat(x, y))
			if f > maxFlow {
				maxFlow = f
			}
		}
	}

	fc := geojson.NewFeatureCollection()
	if len(coords) > 0 {
		f := geojson.NewMultiPointFeature(coords...)
		f.SetProperty("max_flow", float64(maxFlow))
		fc.AddFeature(f)
	}
	return fc.MarshalJSON()
}
