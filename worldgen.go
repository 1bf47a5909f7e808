// Package worldgen is a deterministic, resolution-independent procedural
// world generator. A single integer seed plus tunable parameters produce a
// stack of Earth-like raster layers: a microplate partition, classified
// plate boundaries, a boundary distance field, a signed elevation field,
// temperature and precipitation, and a river network.
//
// Grids are cylindrical: the east-west axis wraps, the north-south axis does
// not. The pipeline is a strict DAG of stages; every stage output is
// read-only afterwards, except the elevation field, which the hydrology
// stage carves with river valleys.
package worldgen

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Flokey82/go_gens/vectors"
	"github.com/vnovak404/worldgen/grid"
	"github.com/vnovak404/worldgen/noise"
	"github.com/vnovak404/worldgen/rng"
	"github.com/vnovak404/worldgen/various"
)

// maxBaseCells bounds the base grid allocation.
const maxBaseCells = 8192 * 4096

// Map holds every field produced by the pipeline. All fields are created by
// GenerateBase/GenerateRivers and immutable afterwards, except Elevation,
// which GenerateRivers carves.
type Map struct {
	W, H   int
	Seed   uint64
	Params *Params

	// Plate partition.
	MacroSeeds    [][2]float64   // macroplate center positions
	MicroSeeds    [][2]float64   // microplate seed positions
	PlateID       *grid.Grid[uint16]
	MacroID       []int          // per microplate: owning macroplate
	IsContinental []bool         // per microplate
	Velocity      []vectors.Vec2 // per microplate
	PlateBaseElev []float32      // per microplate base elevation in meters

	// Boundaries.
	BoundaryType   *grid.Grid[uint8] // interior/convergent/divergent/transform
	BoundaryMajor  *grid.Grid[uint8] // 1 on major boundary cells
	BoundaryPlateA *grid.Grid[uint16]
	BoundaryPlateB *grid.Grid[uint16]

	// Distance field.
	BoundaryDist *grid.Grid[float32]
	NearBX       *grid.Grid[uint16] // x of nearest boundary cell
	NearBY       *grid.Grid[uint16] // y of nearest boundary cell

	// Elevation in meters, sea level at 0 after normalization.
	Elevation     *grid.Grid[float32]
	SeaLevelShift float64 // threshold subtracted to calibrate the land fraction

	// Climate.
	Temperature   *grid.Grid[float32] // degrees Celsius
	Precipitation *grid.Grid[float32] // mm/year
	BiomeID       *grid.Grid[uint8]

	// Hydrology.
	RiverFlow *grid.Grid[float32] // accumulated flow on river cells, 0 elsewhere

	riverFlowCutoff float64 // hi-res flow threshold, kept for valley carving
}

// Timing records the wall time of one pipeline stage.
type Timing struct {
	Name string
	Ms   float64
}

// NewMap validates the parameters and returns an empty map ready for
// generation. No grids are allocated yet.
func NewMap(seed uint64, params *Params) (*Map, error) {
	if params == nil {
		params = NewParams()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.Width*params.Height > maxBaseCells {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, params.Width, params.Height)
	}
	return &Map{
		W:      params.Width,
		H:      params.Height,
		Seed:   seed,
		Params: params,
	}, nil
}

// rngFor returns the deterministic sub-stream for the given stage label.
func (m *Map) rngFor(label string) *rng.Rng {
	return rng.New(m.Seed).Fork(label)
}

// noiseFor returns an octave noise field seeded from the given stage label.
func (m *Map) noiseFor(label string, octaves int, persistence float64) *noise.Noise {
	return noise.New(octaves, persistence, int64(m.rngFor(label).NextU64()))
}

// runStage times fn, appends the result to timings and honors cancellation.
func (m *Map) runStage(ctx context.Context, name string, timings *[]Timing, fn func() error) error {
	if ctx != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: before %s", ErrCancelled, name)
	}
	start := time.Now()
	if err := fn(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	ms := various.RoundToDecimals(float64(time.Since(start).Microseconds())/1000, 1)
	*timings = append(*timings, Timing{Name: name, Ms: ms})
	log.Println("Done", name, "in", time.Since(start).String())
	return nil
}

// GenerateBase runs every stage except hydrology. It is the cheap first
// phase of the two-phase contract; GenerateRivers reuses its fields.
func (m *Map) GenerateBase(ctx context.Context) ([]Timing, error) {
	var timings []Timing
	totalStart := time.Now()

	if err := m.runStage(ctx, "plate_seed", &timings, m.seedPlates); err != nil {
		return timings, err
	}
	if err := m.runStage(ctx, "plate_grow", &timings, m.growPlates); err != nil {
		return timings, err
	}
	if err := m.runStage(ctx, "plate_properties", &timings, m.assignPlateProperties); err != nil {
		return timings, err
	}
	if err := m.runStage(ctx, "boundaries", &timings, m.extractBoundaries); err != nil {
		return timings, err
	}
	if err := m.runStage(ctx, "distance_field", &timings, m.assignBoundaryDistance); err != nil {
		return timings, err
	}
	if err := m.runStage(ctx, "elevation", &timings, m.assignElevation); err != nil {
		return timings, err
	}
	if err := m.runStage(ctx, "temperature", &timings, m.assignTemperature); err != nil {
		return timings, err
	}
	if err := m.runStage(ctx, "precipitation", &timings, m.assignRainfall); err != nil {
		return timings, err
	}
	if err := m.runStage(ctx, "biomes", &timings, m.assignBiomes); err != nil {
		return timings, err
	}

	// Empty river layer until GenerateRivers runs.
	m.RiverFlow = grid.New[float32](m.W, m.H)

	timings = append(timings, Timing{
		Name: "TOTAL",
		Ms:   various.RoundToDecimals(float64(time.Since(totalStart).Microseconds())/1000, 1),
	})
	return timings, nil
}

// GenerateRivers runs the hydrology stage on top of a generated base. It
// fills depressions at super-resolution, extracts the river network and
// carves valleys back into the base elevation.
func (m *Map) GenerateRivers(ctx context.Context) (Timing, error) {
	if m.Elevation == nil || m.Precipitation == nil {
		return Timing{}, internalErr("hydrology", "base pass has not run")
	}
	var timings []Timing
	if err := m.runStage(ctx, "hydrology", &timings, m.assignHydrology); err != nil {
		return Timing{}, err
	}
	return timings[0], nil
}

// Generate runs the full pipeline: base pass plus hydrology. The returned
// timings cover every stage plus TOTAL.
func Generate(ctx context.Context, seed uint64, params *Params) (*Map, []Timing, error) {
	m, err := NewMap(seed, params)
	if err != nil {
		return nil, nil, err
	}
	timings, err := m.GenerateBase(ctx)
	if err != nil {
		return nil, timings, err
	}
	hydro, err := m.GenerateRivers(ctx)
	if err != nil {
		return nil, timings, err
	}

	// Fold hydrology into the total.
	total := timings[len(timings)-1]
	timings = timings[:len(timings)-1]
	timings = append(timings, hydro, Timing{Name: "TOTAL", Ms: total.Ms + hydro.Ms})
	return m, timings, nil
}
