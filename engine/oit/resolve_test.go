package oit

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float32) bool {
	return math.Abs(float64(a)-float64(b)) <= float64(tol)
}

func TestCompositeOver_EmptyLeavesDestinationUntouched(t *testing.T) {
	acc := NewAccumulator()
	dst := [3]float32{0.1, 0.5, 0.9}
	out := acc.Resolve(dst)
	if out != dst {
		t.Fatalf("empty accumulator changed destination: got %v want %v", out, dst)
	}
}

func TestCompositeOver_SingleFragmentIsExactOverBlend(t *testing.T) {
	rgb := [3]float32{0.8, 0.4, 0.2}
	coverage := float32(0.6)
	dst := [3]float32{0.1, 0.2, 0.3}

	acc := NewAccumulator()
	premul := [3]float32{rgb[0] * coverage, rgb[1] * coverage, rgb[2] * coverage}
	acc.Blend(premul, coverage, FragmentWeight(coverage, 3.0))
	out := acc.Resolve(dst)

	// One fragment must match sorted alpha blending exactly: the weight
	// cancels out of the average.
	for i := range out {
		want := rgb[i]*coverage + dst[i]*(1-coverage)
		if !almostEqual(out[i], want, 1e-5) {
			t.Fatalf("channel %d: got %.6f want %.6f", i, out[i], want)
		}
	}
}

func TestAccumulator_BlendOrderIndependent(t *testing.T) {
	type frag struct {
		premul   [3]float32
		coverage float32
		depth    float32
	}
	frags := []frag{
		{[3]float32{0.5, 0.0, 0.0}, 0.5, 2.0},
		{[3]float32{0.0, 0.4, 0.0}, 0.4, 5.0},
		{[3]float32{0.0, 0.0, 0.3}, 0.3, 9.0},
		{[3]float32{0.2, 0.2, 0.0}, 0.25, 14.0},
	}
	orders := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
	}
	dst := [3]float32{0.2, 0.2, 0.2}

	var first [3]float32
	var firstRevealage float32
	for oi, order := range orders {
		acc := NewAccumulator()
		for _, fi := range order {
			f := frags[fi]
			acc.Blend(f.premul, f.coverage, FragmentWeight(f.coverage, f.depth))
		}
		out := acc.Resolve(dst)
		if oi == 0 {
			first = out
			firstRevealage = acc.Revealage
			continue
		}
		if !almostEqual(acc.Revealage, firstRevealage, 1e-6) {
			t.Fatalf("order %v: revealage %.7f differs from %.7f", order, acc.Revealage, firstRevealage)
		}
		for i := range out {
			if !almostEqual(out[i], first[i], 1e-5) {
				t.Fatalf("order %v channel %d: got %.6f want %.6f", order, i, out[i], first[i])
			}
		}
	}
}

func TestAccumulator_ThreeHalfCoverageFragments(t *testing.T) {
	rgb := [3]float32{0.9, 0.6, 0.3}
	coverage := float32(0.5)
	dst := [3]float32{0.0, 0.0, 0.0}

	acc := NewAccumulator()
	for range 3 {
		premul := [3]float32{rgb[0] * coverage, rgb[1] * coverage, rgb[2] * coverage}
		acc.Blend(premul, coverage, FragmentWeight(coverage, 4.0))
	}

	// Revealage is the product of three (1 - 0.5) terms.
	if !almostEqual(acc.Revealage, 0.125, 1e-6) {
		t.Fatalf("revealage: got %.6f want 0.125", acc.Revealage)
	}

	// Equal colors at equal depth average back to the color, composited at
	// alpha 0.875 over black.
	out := acc.Resolve(dst)
	for i := range out {
		want := rgb[i] * 0.875
		if !almostEqual(out[i], want, 1e-5) {
			t.Fatalf("channel %d: got %.6f want %.6f", i, out[i], want)
		}
	}
}

func TestAccumulator_NearFragmentDominates(t *testing.T) {
	coverage := float32(0.5)
	near := [3]float32{1.0 * coverage, 0.0, 0.0}
	far := [3]float32{0.0, 1.0 * coverage, 0.0}

	acc := NewAccumulator()
	acc.Blend(near, coverage, FragmentWeight(coverage, 1.0))
	acc.Blend(far, coverage, FragmentWeight(coverage, 40.0))
	out := acc.Resolve([3]float32{0, 0, 0})

	if out[0] <= out[1] {
		t.Fatalf("near red fragment should outweigh far green: got r=%.6f g=%.6f", out[0], out[1])
	}
}

func TestFragmentWeight_MonotonicInDepthAndClamped(t *testing.T) {
	coverage := float32(0.5)
	depths := []float32{0.5, 1, 2, 5, 10, 25, 50, 100, 200}
	prev := float32(math.Inf(1))
	for _, z := range depths {
		w := FragmentWeight(coverage, z)
		if w <= 0 {
			t.Fatalf("weight at depth %.1f is not positive: %.6f", z, w)
		}
		if w > prev {
			t.Fatalf("weight increased with depth at z=%.1f: %.6f > %.6f", z, w, prev)
		}
		prev = w
	}

	// Clamp at both ends of the falloff.
	if got, want := FragmentWeight(1, 0), float32(weightClampMax); !almostEqual(got, want, 1e-2) {
		t.Fatalf("near clamp: got %.3f want %.3f", got, want)
	}
	if got, want := FragmentWeight(1, 1e6), float32(weightClampMin); !almostEqual(got, want, 1e-6) {
		t.Fatalf("far clamp: got %.6f want %.6f", got, want)
	}

	// Weight scales linearly with coverage.
	if got, want := FragmentWeight(0.25, 10), FragmentWeight(1, 10)*0.25; !almostEqual(got, want, 1e-5) {
		t.Fatalf("coverage scaling: got %.6f want %.6f", got, want)
	}
}

func TestDepthBin_RangeAndClamping(t *testing.T) {
	const bins = 64
	const maxDepth = 100.0

	cases := []struct {
		depth float32
		want  uint32
	}{
		{-5, 0},
		{0, 0},
		{0.5, 0},
		{50, 32},
		{99.9, 63},
		{100, 63},
		{1e6, 63},
	}
	for _, c := range cases {
		if got := DepthBin(c.depth, maxDepth, bins); got != c.want {
			t.Fatalf("DepthBin(%.2f): got %d want %d", c.depth, got, c.want)
		}
	}
}

func TestBuildCDF_MonotonicAndNormalized(t *testing.T) {
	histogram := []uint32{0, 4, 0, 2, 10, 0, 0, 4}
	cdf := BuildCDF(histogram)

	if len(cdf) != 8 {
		t.Fatalf("cdf length: got %d want 8", len(cdf))
	}
	prev := float32(0)
	for i, v := range cdf {
		if v < prev {
			t.Fatalf("cdf not monotonic at bin %d: %.6f < %.6f", i, v, prev)
		}
		prev = v
	}
	if !almostEqual(cdf[len(cdf)-1], 1.0, 1e-6) {
		t.Fatalf("cdf last bin: got %.6f want 1.0", cdf[len(cdf)-1])
	}
	if !almostEqual(cdf[1], 0.2, 1e-6) {
		t.Fatalf("cdf bin 1: got %.6f want 0.2", cdf[1])
	}

	// Consume-and-clear contract.
	for i, v := range histogram {
		if v != 0 {
			t.Fatalf("histogram bin %d not cleared: %d", i, v)
		}
	}
}

func TestBuildCDF_EmptyTileIsAllZeros(t *testing.T) {
	histogram := make([]uint32, 16)
	cdf := BuildCDF(histogram)
	for i, v := range cdf {
		if v != 0 {
			t.Fatalf("empty tile cdf bin %d: got %.6f want 0", i, v)
		}
	}
}

func TestBuildCDF_SingleSpike(t *testing.T) {
	histogram := []uint32{0, 0, 7, 0}
	cdf := BuildCDF(histogram)
	want := []float32{0, 0, 1, 1}
	for i := range want {
		if !almostEqual(cdf[i], want[i], 1e-6) {
			t.Fatalf("spike cdf bin %d: got %.6f want %.6f", i, cdf[i], want[i])
		}
	}
}

func TestEqualizationFactor_Properties(t *testing.T) {
	// A zeroed CDF must leave the naive weight untouched.
	if got := EqualizationFactor(0.3, 0); !almostEqual(got, 1, 1e-6) {
		t.Fatalf("zero cdf: got %.6f want 1", got)
	}

	// At the back of the depth distribution the factor is the pixel's total
	// transmittance.
	if got := EqualizationFactor(0.3, 1); !almostEqual(got, 0.3, 1e-6) {
		t.Fatalf("full cdf: got %.6f want 0.3", got)
	}

	// Monotone decreasing along the depth distribution.
	prev := float32(math.Inf(1))
	for _, u := range []float32{0, 0.25, 0.5, 0.75, 1} {
		f := EqualizationFactor(0.5, u)
		if f > prev {
			t.Fatalf("factor increased at cdf=%.2f: %.6f > %.6f", u, f, prev)
		}
		prev = f
	}

	// Fully opaque pixels clamp to the revealage floor instead of zeroing
	// every weight.
	if got := EqualizationFactor(0, 1); !almostEqual(got, revealageFloor, 1e-6) {
		t.Fatalf("floor clamp: got %.6f want %.6f", got, float32(revealageFloor))
	}
}
