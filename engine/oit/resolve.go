package oit

import "math"

// weightClampMin and weightClampMax bound the depth weight so that extreme
// depths cannot zero out or blow up a fragment's contribution. Values follow
// the McGuire & Bavoil 2013 reference tuning.
const (
	weightClampMin = 1e-2
	weightClampMax = 3e3
)

// revealageFloor is the lowest previous-frame revealage used when estimating
// per-fragment transmittance, so pow never sees a zero base.
const revealageFloor = 0.04

// FragmentWeight computes the naive WBOIT blend weight for a fragment:
// coverage scaled by a monotonically decreasing polynomial of view-space
// depth, clamped to [1e-2, 3e3]. Nearer and more opaque fragments contribute
// proportionally more to the accumulated color.
//
// This is the single source of truth for the weight math; the accumulation
// fragment shaders implement the identical expression.
//
// Parameters:
//   - coverage: fragment alpha in [0, 1]
//   - viewDepth: positive view-space distance from the camera
//
// Returns:
//   - float32: the blend weight
func FragmentWeight(coverage, viewDepth float32) float32 {
	z := float64(viewDepth)
	a := z / 5.0
	b := z / 200.0
	falloff := 10.0 / (1e-5 + a*a + b*b*b*b*b*b)
	if falloff < weightClampMin {
		falloff = weightClampMin
	} else if falloff > weightClampMax {
		falloff = weightClampMax
	}
	return coverage * float32(falloff)
}

// EqualizationFactor computes the histogram-equalized transmittance estimate
// used by the HE variant to reweight a fragment. cdfValue is the previous
// frame's CDF sampled at the fragment's tile and normalized depth, i.e. the
// estimated fraction of transparent mass in front of the fragment;
// prevRevealage is the pixel's total transmittance from the previous frame.
// Assuming absorbance is distributed along depth in proportion to the CDF,
// the transmittance in front of the fragment is prevRevealage^cdfValue.
//
// A zeroed CDF (first frame, or an empty tile) yields a factor of 1, so the
// HE weight degrades to the naive weight exactly.
//
// Parameters:
//   - prevRevealage: previous frame's revealage at this pixel, in [0, 1]
//   - cdfValue: previous frame's CDF at this fragment's tile and depth, in [0, 1]
//
// Returns:
//   - float32: multiplicative weight adjustment in (0, 1]
func EqualizationFactor(prevRevealage, cdfValue float32) float32 {
	r := float64(prevRevealage)
	if r < revealageFloor {
		r = revealageFloor
	} else if r > 1 {
		r = 1
	}
	u := float64(cdfValue)
	if u < 0 {
		u = 0
	} else if u > 1 {
		u = 1
	}
	return float32(math.Pow(r, u))
}

// DepthBin maps a view-space depth to its histogram bin index. Depth is
// normalized by maxDepth and scaled across numBins; out-of-range depths clamp
// into the first or last bin.
//
// Parameters:
//   - viewDepth: positive view-space distance from the camera
//   - maxDepth: far end of the binned depth range, must be positive
//   - numBins: bins per tile, must be at least 1
//
// Returns:
//   - uint32: bin index in [0, numBins-1]
func DepthBin(viewDepth, maxDepth float32, numBins uint32) uint32 {
	if viewDepth <= 0 {
		return 0
	}
	normalized := viewDepth / maxDepth
	if normalized >= 1 {
		return numBins - 1
	}
	bin := uint32(normalized * float32(numBins))
	if bin >= numBins {
		bin = numBins - 1
	}
	return bin
}

// BuildCDF transforms one tile's histogram counts into a monotonically
// non-decreasing cumulative distribution in [0, 1] and zeroes the counts in
// place, mirroring the consume-and-clear contract of the CDF build compute
// shader. cdf[i] is the inclusive prefix sum of counts through bin i divided
// by the tile total. A tile with zero total count produces an all-zero CDF.
//
// Parameters:
//   - histogram: one tile's per-bin counts; zeroed on return
//
// Returns:
//   - []float32: the tile's CDF, one entry per bin
func BuildCDF(histogram []uint32) []float32 {
	cdf := make([]float32, len(histogram))
	var total uint64
	for _, count := range histogram {
		total += uint64(count)
	}
	if total > 0 {
		var running uint64
		for i, count := range histogram {
			running += uint64(count)
			cdf[i] = float32(float64(running) / float64(total))
		}
	}
	for i := range histogram {
		histogram[i] = 0
	}
	return cdf
}

// Accumulator mirrors one pixel's accumulation targets across the blend
// passes: Accum collects weight-scaled premultiplied color in rgb and
// weight-scaled coverage in alpha under additive blending; Revealage collects
// the product of per-fragment (1 - coverage) under multiplicative blending.
// Both are order-independent by construction.
type Accumulator struct {
	Accum     [4]float32
	Revealage float32
}

// NewAccumulator returns an Accumulator in its cleared state: accumulation at
// zero, revealage at one, matching the pass's attachment clear values.
//
// Returns:
//   - Accumulator: the cleared accumulator
func NewAccumulator() Accumulator {
	return Accumulator{Revealage: 1}
}

// Blend folds one fragment into the accumulator, mirroring the accumulation
// pass's two blend states for a single pixel.
//
// Parameters:
//   - premulColor: the fragment's premultiplied rgb color
//   - coverage: fragment alpha in [0, 1]
//   - weight: blend weight, typically from FragmentWeight
func (a *Accumulator) Blend(premulColor [3]float32, coverage, weight float32) {
	a.Accum[0] += weight * premulColor[0]
	a.Accum[1] += weight * premulColor[1]
	a.Accum[2] += weight * premulColor[2]
	a.Accum[3] += weight * coverage
	a.Revealage *= 1 - coverage
}

// Resolve composites the accumulated transparency over a destination color,
// mirroring the composite pass for a single pixel.
//
// Parameters:
//   - dst: the existing opaque color at this pixel
//
// Returns:
//   - [3]float32: the final blended color
func (a *Accumulator) Resolve(dst [3]float32) [3]float32 {
	return CompositeOver(a.Accum, a.Revealage, dst)
}

// CompositeOver reconstructs the final blended color for one pixel from the
// accumulation and revealage values: the weighted average color is covered
// over the destination with alpha (1 - revealage), using premultiplied-alpha
// blending so the destination is untouched where revealage is 1.
//
// Parameters:
//   - accum: weight-scaled premultiplied color sum (rgb) and coverage sum (a)
//   - revealage: product of (1 - coverage) over the pixel's fragments
//   - dst: the existing opaque color at this pixel
//
// Returns:
//   - [3]float32: the final blended color
func CompositeOver(accum [4]float32, revealage float32, dst [3]float32) [3]float32 {
	weightSum := accum[3]
	if weightSum < 1e-5 {
		weightSum = 1e-5
	}
	alpha := 1 - revealage
	var out [3]float32
	for i := range out {
		avg := accum[i] / weightSum
		out[i] = avg*alpha + dst[i]*(1-alpha)
	}
	return out
}
