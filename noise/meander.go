package noise

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Meander is a small high-frequency perturbation field used to give the
// upscaled hydrology grid sinuosity. It is a separate noise flavor so river
// texture decorrelates from the elevation octaves.
type Meander struct {
	p *perlin.Perlin
}

// NewMeander returns a meander field for the given seed.
func NewMeander(seed int64) *Meander {
	return &Meander{p: perlin.NewPerlin(2, 2, 3, seed)}
}

// At samples the perturbation at normalized (u, v) with the given frequency.
// The x axis is folded onto a circle so the seam at u=0/1 stays continuous.
// Output is roughly [-1, 1].
func (m *Meander) At(u, v, freq float64) float64 {
	angle := 2 * math.Pi * u
	r := freq / (2 * math.Pi)
	// Perlin2D has no 3D variant here; sample two offset slices and blend by
	// the circle coordinates to keep the seam continuous.
	a := m.p.Noise2D(math.Cos(angle)*r+7.13, v*freq)
	b := m.p.Noise2D(math.Sin(angle)*r+91.7, v*freq)
	return a*0.5 + b*0.5
}
