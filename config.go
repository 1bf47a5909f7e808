package worldgen

// Params holds all configuration options for the map generation. Every field
// maps to a slider in the front-end; defaults are tuned so seed 42 at
// 2048x1024 produces a recognizable Earth-like map.
type Params struct {
	// Resolution
	Width  int // Grid width in cells (256-8192)
	Height int // Grid height in cells (128-4096); Width >= 2*Height recommended

	// Plate tectonics
	NumMacroplates      int     // Number of macroplates (2-32)
	NumMicroplates      int     // Number of microplates (50-4000)
	ContinentalFraction float64 // Target fraction of land cells (0-1)
	BoundaryNoise       float64 // How much plate borders deviate from straight Voronoi edges

	// Elevation profile
	BlurSigma     float64 // Gaussian blur applied to boundary profiles
	MountainScale float64 // Peak height multiplier for convergent boundaries
	TrenchScale   float64 // Depth multiplier for subduction trenches
	MountainWidth float64 // Mountain range half-width in cells (at 2048-wide reference)

	// Noise
	CoastAmp    float64 // Coastline perturbation amplitude
	InteriorAmp float64 // Continental interior terrain amplitude
	DetailAmp   float64 // Fine detail noise amplitude in meters

	// Features
	ShelfWidth  float64 // Continental shelf width in cells
	RidgeHeight float64 // Mid-ocean ridge height in meters
	RiftDepth   float64 // Continental rift depth in meters

	// Climate / hydrology
	RainfallScale  float64 // Global precipitation multiplier
	RiverThreshold float64 // Fraction of land cells rendered as rivers (0-1)
	RiverExtension int     // Max cells a river is extended upstream past the threshold
	ValleyRadius   float64 // Valley carving Gaussian sigma in cells; the kernel reaches twice this far
	ValleyDepth    float64 // Valley carving depth in meters per log-flow unit
}

// NewParams returns a new Params with default values.
func NewParams() *Params {
	return &Params{
		Width:               2048,
		Height:              1024,
		NumMacroplates:      8,
		NumMicroplates:      600,
		ContinentalFraction: 0.3,
		BoundaryNoise:       2.0,
		BlurSigma:           3.0,
		MountainScale:       0.6,
		TrenchScale:         1.0,
		MountainWidth:       5.0,
		CoastAmp:            1.0,
		InteriorAmp:         1.0,
		DetailAmp:           50.0,
		ShelfWidth:          50.0,
		RidgeHeight:         1500.0,
		RiftDepth:           600.0,
		RainfallScale:       1.0,
		RiverThreshold:      0.01,
		RiverExtension:      16,
		ValleyRadius:        2.5,
		ValleyDepth:         90.0,
	}
}

// Validate checks all parameter ranges. It runs before any allocation so
// bad input fails fast.
func (p *Params) Validate() error {
	if p.Width < 256 || p.Width > 8192 {
		return paramErr("width %d outside [256, 8192]", p.Width)
	}
	if p.Height < 128 || p.Height > 4096 {
		return paramErr("height %d outside [128, 4096]", p.Height)
	}
	if p.NumMacroplates < 2 || p.NumMacroplates > 32 {
		return paramErr("num_macroplates %d outside [2, 32]", p.NumMacroplates)
	}
	if p.NumMicroplates < 50 || p.NumMicroplates > 4000 {
		return paramErr("num_microplates %d outside [50, 4000]", p.NumMicroplates)
	}
	if p.NumMicroplates < p.NumMacroplates {
		return paramErr("num_microplates %d below num_macroplates %d", p.NumMicroplates, p.NumMacroplates)
	}
	if p.ContinentalFraction < 0 || p.ContinentalFraction > 1 {
		return paramErr("continental_fraction %g outside [0, 1]", p.ContinentalFraction)
	}
	if p.RiverThreshold < 0 || p.RiverThreshold > 1 {
		return paramErr("river_threshold %g outside [0, 1]", p.RiverThreshold)
	}
	if p.BoundaryNoise < 0 || p.BlurSigma < 0 || p.MountainWidth <= 0 || p.ShelfWidth <= 0 {
		return paramErr("noise/width parameters must be positive")
	}
	if p.RiverExtension < 0 {
		return paramErr("river_extension %d negative", p.RiverExtension)
	}
	if p.ValleyRadius < 0 || p.ValleyDepth < 0 {
		return paramErr("valley parameters must be non-negative")
	}
	return nil
}
