package common

import (
	"math"
	"testing"
)

const matEpsilon = 1e-5

func matNear(a, b float32) bool {
	return math.Abs(float64(a-b)) < matEpsilon
}

func TestVec3Helpers(t *testing.T) {
	if got := Dot3([3]float32{1, 2, 3}, [3]float32{4, -5, 6}); got != 12 {
		t.Fatalf("Dot3: got %f want 12", got)
	}

	c := Cross3([3]float32{1, 0, 0}, [3]float32{0, 1, 0})
	if c != [3]float32{0, 0, 1} {
		t.Fatalf("Cross3 of x and y: got %v", c)
	}

	n := Normalize3([3]float32{0, 3, 4})
	if !matNear(n[0], 0) || !matNear(n[1], 0.6) || !matNear(n[2], 0.8) {
		t.Fatalf("Normalize3: got %v", n)
	}
	if Normalize3([3]float32{}) != ([3]float32{}) {
		t.Fatal("Normalize3 of the zero vector must stay zero")
	}
}

func TestIdentity(t *testing.T) {
	m := []float32{9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9}
	Identity(m)
	for i, v := range m {
		want := float32(0)
		if i == 0 || i == 5 || i == 10 || i == 15 {
			want = 1
		}
		if v != want {
			t.Fatalf("identity[%d]: got %f want %f", i, v, want)
		}
	}
}

func TestMul4(t *testing.T) {
	var id [16]float32
	Identity(id[:])

	m := []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}

	var out [16]float32
	Mul4(out[:], id[:], m)
	for i := range m {
		if out[i] != m[i] {
			t.Fatalf("I*M[%d]: got %f want %f", i, out[i], m[i])
		}
	}

	// Translation applied to a scale matrix: T * S places the translation
	// untouched in the last column and keeps the scaled diagonal.
	var translate, scale [16]float32
	Identity(translate[:])
	translate[12], translate[13], translate[14] = 3, -4, 5
	Identity(scale[:])
	scale[0], scale[5], scale[10] = 2, 3, 4

	Mul4(out[:], translate[:], scale[:])
	if out[0] != 2 || out[5] != 3 || out[10] != 4 {
		t.Fatalf("T*S diagonal: got %f %f %f", out[0], out[5], out[10])
	}
	if out[12] != 3 || out[13] != -4 || out[14] != 5 {
		t.Fatalf("T*S translation: got %f %f %f", out[12], out[13], out[14])
	}
}

func TestMul4_OutAliasesInput(t *testing.T) {
	var a [16]float32
	Identity(a[:])
	a[12] = 7

	var b [16]float32
	Identity(b[:])
	b[13] = 2

	// Writing the result into one of the operands must not corrupt the product.
	Mul4(a[:], a[:], b[:])
	if a[12] != 7 || a[13] != 2 {
		t.Fatalf("aliased multiply: got translation %f %f %f", a[12], a[13], a[14])
	}
}

func TestPerspective(t *testing.T) {
	var m [16]float32
	fovY := float32(math.Pi / 2) // 90 degrees, f = 1
	Perspective(m[:], fovY, 2.0, 1.0, 101.0)

	if !matNear(m[0], 0.5) {
		t.Fatalf("m[0]: got %f want 0.5", m[0])
	}
	if !matNear(m[5], 1.0) {
		t.Fatalf("m[5]: got %f want 1", m[5])
	}
	if !matNear(m[10], 101.0/(1.0-101.0)) {
		t.Fatalf("m[10]: got %f", m[10])
	}
	if m[11] != -1 {
		t.Fatalf("m[11]: got %f want -1", m[11])
	}
	if !matNear(m[14], (1.0*101.0)/(1.0-101.0)) {
		t.Fatalf("m[14]: got %f", m[14])
	}
	if m[15] != 0 {
		t.Fatalf("m[15]: got %f want 0", m[15])
	}

	// Near plane projects to clip z = 0, far plane to clip z = far depth 1.
	nearClip := m[10]*(-1.0) + m[14]
	nearW := float32(1.0)
	if !matNear(nearClip/nearW, 0) {
		t.Fatalf("near plane depth: got %f want 0", nearClip/nearW)
	}
	farClip := m[10]*(-101.0) + m[14]
	farW := float32(101.0)
	if !matNear(farClip/farW, 1) {
		t.Fatalf("far plane depth: got %f want 1", farClip/farW)
	}
}

func TestBuildModelMatrix_TranslationScale(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], 1, 2, 3, 0, 0, 0, 2, 3, 4)

	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Fatalf("scale diagonal: got %f %f %f", m[0], m[5], m[10])
	}
	if m[12] != 1 || m[13] != 2 || m[14] != 3 {
		t.Fatalf("translation: got %f %f %f", m[12], m[13], m[14])
	}
	if m[3] != 0 || m[7] != 0 || m[11] != 0 || m[15] != 1 {
		t.Fatalf("bottom row: got %f %f %f %f", m[3], m[7], m[11], m[15])
	}
}

func TestBuildModelMatrix_YRotation(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], 0, 0, 0, 0, float32(math.Pi/2), 0, 1, 1, 1)

	// A quarter turn about +Y maps +X to -Z and +Z to +X.
	xAxis := [3]float32{m[0], m[1], m[2]}
	zAxis := [3]float32{m[8], m[9], m[10]}
	if !matNear(xAxis[0], 0) || !matNear(xAxis[1], 0) || !matNear(xAxis[2], -1) {
		t.Fatalf("rotated x axis: got %v", xAxis)
	}
	if !matNear(zAxis[0], 1) || !matNear(zAxis[1], 0) || !matNear(zAxis[2], 0) {
		t.Fatalf("rotated z axis: got %v", zAxis)
	}
}

func TestLookAt(t *testing.T) {
	var v [16]float32
	LookAt(v[:], 0, 0, 10, 0, 0, 0, 0, 1, 0)

	// The world origin sits 10 units in front of the camera, along view -Z.
	x := v[0]*0 + v[4]*0 + v[8]*0 + v[12]
	y := v[1]*0 + v[5]*0 + v[9]*0 + v[13]
	z := v[2]*0 + v[6]*0 + v[10]*0 + v[14]
	if !matNear(x, 0) || !matNear(y, 0) || !matNear(z, -10) {
		t.Fatalf("origin in view space: got %f %f %f", x, y, z)
	}

	// The eye position maps to the view-space origin.
	ex := v[0]*0 + v[4]*0 + v[8]*10 + v[12]
	ez := v[2]*0 + v[6]*0 + v[10]*10 + v[14]
	if !matNear(ex, 0) || !matNear(ez, 0) {
		t.Fatalf("eye in view space: got %f . %f", ex, ez)
	}
}

func TestInvert4(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], 3, -2, 5, 0.4, 1.1, -0.7, 2, 2, 2)

	var inv, product [16]float32
	if !Invert4(inv[:], m[:]) {
		t.Fatal("Invert4 reported singular for an invertible matrix")
	}
	Mul4(product[:], m[:], inv[:])
	for i, v := range product {
		want := float32(0)
		if i == 0 || i == 5 || i == 10 || i == 15 {
			want = 1
		}
		if math.Abs(float64(v-want)) > 1e-4 {
			t.Fatalf("M*inv(M)[%d]: got %f want %f", i, v, want)
		}
	}
}

func TestInvert4_Singular(t *testing.T) {
	var zero [16]float32
	out := [16]float32{42}
	if Invert4(out[:], zero[:]) {
		t.Fatal("Invert4 must report singular for the zero matrix")
	}
	if out[0] != 42 {
		t.Fatalf("singular inversion must leave out untouched, got %f", out[0])
	}
}

func TestSliceToBytes(t *testing.T) {
	if SliceToBytes([]float32(nil)) != nil {
		t.Fatal("nil slice must convert to nil")
	}

	data := []uint32{0x04030201, 0x08070605}
	b := SliceToBytes(data)
	if len(b) != 8 {
		t.Fatalf("length: got %d want 8", len(b))
	}
	for i := range 8 {
		if b[i] != byte(i+1) {
			t.Fatalf("byte %d: got %d want %d", i, b[i], i+1)
		}
	}
}

func TestStructToBytes(t *testing.T) {
	v := struct {
		A uint32
		B uint32
	}{A: 0x01010101, B: 0x02020202}
	b := StructToBytes(&v)
	if len(b) != 8 {
		t.Fatalf("length: got %d want 8", len(b))
	}
	if b[0] != 1 || b[4] != 2 {
		t.Fatalf("contents: got %v", b)
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 7, 9); got != 7 {
		t.Fatalf("Coalesce ints: got %d", got)
	}
	if got := Coalesce("", "fallback"); got != "fallback" {
		t.Fatalf("Coalesce strings: got %q", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Fatalf("Coalesce all-zero: got %d", got)
	}
}
