package worldgen

import (
	"math"
	"slices"
	"sync"

	"github.com/Flokey82/go_gens/utils"
	"github.com/vnovak404/worldgen/various"
)

var minMax = utils.MinMax[float32]

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// smoothstep is 0 at edge0, 1 at edge1 with zero slope at both ends.
func smoothstep(edge0, edge1, x float64) float64 {
	t := clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// smoothstep01 is smoothstep over [0, 1].
func smoothstep01(t float64) float64 {
	t = clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

// gaussianFalloff is exp(-d^2 / 2 sigma^2).
func gaussianFalloff(dist, sigma float64) float64 {
	return math.Exp(-dist * dist / (2 * sigma * sigma))
}

func sortFloat32s(s []float32) {
	slices.Sort(s)
}

// floatSortKey maps a float32 onto a uint32 whose unsigned order matches
// the float order, so index keys can be packed and sorted as primitives.
func floatSortKey(e float32) uint32 {
	b := math.Float32bits(e)
	if b&0x80000000 != 0 {
		return ^b
	}
	return b | 0x80000000
}

// argsortAscending returns the cell indices ordered by ascending value;
// equal values order by index.
func argsortAscending(vals []float32) []int32 {
	return argsortKeyed(vals, func(v float32) uint32 { return floatSortKey(v) })
}

// argsortDescending returns the cell indices ordered by descending value;
// equal values order by ascending index.
func argsortDescending(vals []float32) []int32 {
	return argsortKeyed(vals, func(v float32) uint32 { return ^floatSortKey(v) })
}

// argsortKeyed packs (key(value), index) pairs into uint64s, sorts chunks
// in parallel and merges them pairwise. The hydrology grids run to a few
// hundred million cells, where a comparator-based sort dominates the whole
// stage; a primitive sort with a linear merge does not.
func argsortKeyed(vals []float32, key func(float32) uint32) []int32 {
	n := len(vals)
	keys := make([]uint64, n)
	various.KickOffChunkWorkers(n, func(start, end int) {
		for i := start; i < end; i++ {
			keys[i] = uint64(key(vals[i]))<<32 | uint64(uint32(i))
		}
	})

	sortPackedKeys(keys)

	idxs := make([]int32, n)
	various.KickOffChunkWorkers(n, func(start, end int) {
		for i := start; i < end; i++ {
			idxs[i] = int32(uint32(keys[i]))
		}
	})
	return idxs
}

// sortPackedKeys sorts in place: parallel chunk sorts followed by pairwise
// merge rounds.
func sortPackedKeys(keys []uint64) {
	n := len(keys)
	const numChunks = 8
	if n < 1<<16 {
		slices.Sort(keys)
		return
	}

	bounds := make([]int, numChunks+1)
	for i := 0; i <= numChunks; i++ {
		bounds[i] = i * n / numChunks
	}

	var wg sync.WaitGroup
	for c := 0; c < numChunks; c++ {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			slices.Sort(keys[lo:hi])
		}(bounds[c], bounds[c+1])
	}
	wg.Wait()

	buf := make([]uint64, n)
	src, dst := keys, buf
	for len(bounds) > 2 {
		nextBounds := make([]int, 0, len(bounds)/2+1)
		nextBounds = append(nextBounds, 0)

		var mw sync.WaitGroup
		for p := 0; p+2 < len(bounds); p += 2 {
			lo, mid, hi := bounds[p], bounds[p+1], bounds[p+2]
			nextBounds = append(nextBounds, hi)
			mw.Add(1)
			go func(lo, mid, hi int) {
				defer mw.Done()
				mergeRuns(src[lo:mid], src[mid:hi], dst[lo:hi])
			}(lo, mid, hi)
		}
		// Odd run out: copy through.
		if len(bounds)%2 == 0 {
			lo, hi := bounds[len(bounds)-2], bounds[len(bounds)-1]
			nextBounds = append(nextBounds, hi)
			copy(dst[lo:hi], src[lo:hi])
		}
		mw.Wait()

		src, dst = dst, src
		bounds = nextBounds
	}
	if &src[0] != &keys[0] {
		copy(keys, src)
	}
}

// mergeRuns merges two sorted runs into out.
func mergeRuns(a, b, out []uint64) {
	i, j, o := 0, 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			out[o] = a[i]
			i++
		} else {
			out[o] = b[j]
			j++
		}
		o++
	}
	o += copy(out[o:], a[i:])
	copy(out[o:], b[j:])
}
