// Package noise provides the multi-octave noise fields used by the
// generator, backed by opensimplex.
package noise

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Noise is a wrapper for opensimplex.Noise, initialized with
// a given seed, persistence, and number of octaves.
type Noise struct {
	Octaves     int
	Persistence float64
	Amplitudes  []float64
	Seed        int64
	OS          opensimplex.Noise
}

// New returns a new Noise.
func New(octaves int, persistence float64, seed int64) *Noise {
	n := &Noise{
		Octaves:     octaves,
		Persistence: persistence,
		Amplitudes:  make([]float64, octaves),
		Seed:        seed,
		OS:          opensimplex.NewNormalized(seed),
	}

	// Initialize the amplitudes.
	for i := range n.Amplitudes {
		n.Amplitudes[i] = math.Pow(persistence, float64(i))
	}

	return n
}

// Eval2 returns the noise value at the given point in [0, 1].
func (n *Noise) Eval2(x, y float64) float64 {
	var sum, sumOfAmplitudes float64
	for octave := 0; octave < n.Octaves; octave++ {
		frequency := 1 << octave
		fFreq := float64(frequency)
		sum += n.Amplitudes[octave] * n.OS.Eval2(x*fFreq, y*fFreq)
		sumOfAmplitudes += n.Amplitudes[octave]
	}
	return sum / sumOfAmplitudes
}

// Eval3 returns the noise value at the given point in [0, 1].
func (n *Noise) Eval3(x, y, z float64) float64 {
	var sum, sumOfAmplitudes float64
	for octave := 0; octave < n.Octaves; octave++ {
		frequency := 1 << octave
		fFreq := float64(frequency)
		sum += n.Amplitudes[octave] * n.OS.Eval3(x*fFreq, y*fFreq, z*fFreq)
		sumOfAmplitudes += n.Amplitudes[octave]
	}
	return sum / sumOfAmplitudes
}

// Cyl samples the noise on a cylinder so that u=0 and u=1 meet seamlessly.
// u and v are normalized map coordinates; freq sets the base frequency.
// The x axis is embedded as a circle whose circumference matches freq, so
// the per-octave frequency doubling preserves continuity across the seam.
func (n *Noise) Cyl(u, v, freq float64) float64 {
	angle := 2 * math.Pi * u
	r := freq / (2 * math.Pi)
	return n.Eval3(math.Cos(angle)*r, math.Sin(angle)*r, v*freq)
}

// CylSigned is Cyl remapped to [-1, 1].
func (n *Noise) CylSigned(u, v, freq float64) float64 {
	return n.Cyl(u, v, freq)*2 - 1
}

// RidgedCyl is the ridged variant of Cyl: sharp crests where the underlying
// octaves cross zero. Output is in [0, 1].
func (n *Noise) RidgedCyl(u, v, freq float64) float64 {
	angle := 2 * math.Pi * u
	r := freq / (2 * math.Pi)
	x := math.Cos(angle) * r
	y := math.Sin(angle) * r
	z := v * freq

	var sum, sumOfAmplitudes float64
	for octave := 0; octave < n.Octaves; octave++ {
		fFreq := float64(int(1) << octave)
		s := n.OS.Eval3(x*fFreq, y*fFreq, z*fFreq)*2 - 1
		sum += n.Amplitudes[octave] * (1 - math.Abs(s))
		sumOfAmplitudes += n.Amplitudes[octave]
	}
	return sum / sumOfAmplitudes
}

// Ridged2 is the planar ridged variant, used where the coordinates are
// already boundary-relative and do not wrap.
func (n *Noise) Ridged2(x, y float64) float64 {
	var sum, sumOfAmplitudes float64
	for octave := 0; octave < n.Octaves; octave++ {
		fFreq := float64(int(1) << octave)
		s := n.OS.Eval2(x*fFreq, y*fFreq)*2 - 1
		sum += n.Amplitudes[octave] * (1 - math.Abs(s))
		sumOfAmplitudes += n.Amplitudes[octave]
	}
	return sum / sumOfAmplitudes
}
