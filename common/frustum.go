package common

import (
	"math"
)

// Plane is the set of points satisfying Dot3(Normal, p) + Distance = 0.
type Plane struct {
	Normal   [3]float32
	Distance float32
}

// Frustum holds the six bounding planes of a view volume, ordered left,
// right, bottom, top, near, far. Normals point into the volume, so a point
// is inside when every plane reports a non-negative signed distance.
type Frustum struct {
	Planes [6]Plane
}

// ExtractFrustumFromMatrix derives the six clipping planes from a combined
// view-projection matrix using the Gribb/Hartmann row method: each plane is
// the matrix's fourth row plus or minus one of the first three. Planes come
// back normalized so signed distances are in world units.
//
// Parameters:
//   - viewProj: 16 floats, column-major View * Projection
//
// Returns:
//   - Frustum: normalized planes in left, right, bottom, top, near, far order
func ExtractFrustumFromMatrix(viewProj []float32) Frustum {
	var f Frustum
	for i := range f.Planes {
		// Row r element c of the column-major matrix sits at viewProj[c*4+r].
		// Plane pairs share a source row: 0 left/right, 1 bottom/top, 2 near/far.
		r := i / 2
		sign := float32(1)
		if i%2 == 1 {
			sign = -1
		}
		p := &f.Planes[i]
		p.Normal[0] = viewProj[3] + sign*viewProj[r]
		p.Normal[1] = viewProj[7] + sign*viewProj[4+r]
		p.Normal[2] = viewProj[11] + sign*viewProj[8+r]
		p.Distance = viewProj[15] + sign*viewProj[12+r]
		p.normalize()
	}
	return f
}

// IntersectsSphere tests a bounding sphere against the frustum planes.
// Requires normalized planes (ExtractFrustumFromMatrix normalizes them).
//
// Parameters:
//   - x, y, z: sphere center in world space
//   - radius: sphere radius in world units
//
// Returns:
//   - bool: true if the sphere is at least partially inside the frustum
func (f *Frustum) IntersectsSphere(x, y, z, radius float32) bool {
	center := [3]float32{x, y, z}
	for i := range f.Planes {
		p := &f.Planes[i]
		if Dot3(p.Normal, center)+p.Distance < -radius {
			return false
		}
	}
	return true
}

// normalize rescales the plane to a unit normal, keeping the distance
// consistent with the new scale.
func (p *Plane) normalize() {
	length := float32(math.Sqrt(float64(Dot3(p.Normal, p.Normal))))
	if length > 0 {
		inv := 1.0 / length
		p.Normal[0] *= inv
		p.Normal[1] *= inv
		p.Normal[2] *= inv
		p.Distance *= inv
	}
}
