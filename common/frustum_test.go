package common

import (
	"math"
	"testing"
)

// demoFrustum builds a frustum for a camera at the origin looking down -Z with
// a symmetric 90 degree field of view, so the side planes satisfy |x| <= -z.
func demoFrustum() Frustum {
	var proj, view, viewProj [16]float32
	Perspective(proj[:], float32(math.Pi/2), 1.0, 0.1, 100.0)
	LookAt(view[:], 0, 0, 0, 0, 0, -1, 0, 1, 0)
	Mul4(viewProj[:], proj[:], view[:])
	return ExtractFrustumFromMatrix(viewProj[:])
}

func TestFrustum_PlanesNormalized(t *testing.T) {
	f := demoFrustum()
	for i, p := range f.Planes {
		length := math.Sqrt(float64(
			p.Normal[0]*p.Normal[0] + p.Normal[1]*p.Normal[1] + p.Normal[2]*p.Normal[2],
		))
		if math.Abs(length-1.0) > 1e-4 {
			t.Fatalf("plane %d normal length: got %f", i, length)
		}
	}
}

func TestFrustum_IntersectsSphere(t *testing.T) {
	f := demoFrustum()

	cases := []struct {
		name    string
		x, y, z float32
		radius  float32
		want    bool
	}{
		{"center of view", 0, 0, -10, 1, true},
		{"behind camera", 0, 0, 10, 1, false},
		{"beyond far plane", 0, 0, -150, 1, false},
		{"outside left plane", -30, 0, -10, 1, false},
		{"straddles left plane", -11, 0, -10, 2, true},
		{"fully outside left plane", -13, 0, -10, 0.5, false},
		{"above top plane", 0, 25, -10, 1, false},
		{"straddles far plane", 0, 0, -100, 3, true},
	}
	for _, c := range cases {
		if got := f.IntersectsSphere(c.x, c.y, c.z, c.radius); got != c.want {
			t.Fatalf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestFrustum_OrbitCameraSeesTarget(t *testing.T) {
	// A camera orbiting a target must always keep the target's bounding
	// sphere inside its frustum.
	var proj, view, viewProj [16]float32
	Perspective(proj[:], float32(60.0*math.Pi/180.0), 16.0/9.0, 0.1, 500.0)

	for _, azimuth := range []float64{0, 0.7, 1.9, 3.5, 5.2} {
		eyeX := float32(8 * math.Cos(azimuth))
		eyeZ := float32(8 * math.Sin(azimuth))
		LookAt(view[:], eyeX, 3, eyeZ, 0, 0.5, 0, 0, 1, 0)
		Mul4(viewProj[:], proj[:], view[:])
		f := ExtractFrustumFromMatrix(viewProj[:])

		if !f.IntersectsSphere(0, 0.5, 0, 0.75) {
			t.Fatalf("azimuth %.1f: target sphere culled", azimuth)
		}
	}
}
