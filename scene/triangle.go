package scene

import "github.com/achilleasa/polaris-bvh/types"

// A triangle that references three vertices of a mesh.
type Triangle struct {
	Mesh *Mesh
	V    [3]uint32
}

// Get the triangle bounding box.
func (tri *Triangle) BBox() BBox {
	p := tri.Mesh.Positions
	return EmptyBBox().
		Expand(p[tri.V[0]]).
		Expand(p[tri.V[1]]).
		Expand(p[tri.V[2]])
}

// Solve for the ray distance and the barycentric coordinates of the hit
// point. Rays that are parallel to the triangle plane never hit.
func (tri *Triangle) solve(ray *Ray) (t, u, v float64, hit bool) {
	p0 := tri.Mesh.Positions[tri.V[0]]
	e1 := tri.Mesh.Positions[tri.V[1]].Sub(p0)
	e2 := tri.Mesh.Positions[tri.V[2]].Sub(p0)

	pvec := ray.Dir.Cross(e2)
	det := e1.Dot(pvec)
	if det == 0 {
		return 0, 0, 0, false
	}
	invDet := 1.0 / det

	s := ray.Origin.Sub(p0)
	u = s.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	qvec := s.Cross(e1)
	v = ray.Dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = e2.Dot(qvec) * invDet
	if t < ray.MinT || t > ray.MaxT {
		return 0, 0, 0, false
	}

	return t, u, v, true
}

// Test whether the ray hits the triangle.
func (tri *Triangle) Hit(ray *Ray) bool {
	_, _, _, hit := tri.solve(ray)
	return hit
}

// Intersect the ray with the triangle and populate isect on a hit.
func (tri *Triangle) Intersect(ray *Ray, isect *Intersection) bool {
	t, u, v, hit := tri.solve(ray)
	if !hit {
		return false
	}

	w := 1 - u - v
	m := tri.Mesh

	var n types.Vec3
	if len(m.Normals) == len(m.Positions) {
		n = m.Normals[tri.V[0]].Mul(w).
			Add(m.Normals[tri.V[1]].Mul(u)).
			Add(m.Normals[tri.V[2]].Mul(v))
	} else {
		p0 := m.Positions[tri.V[0]]
		n = m.Positions[tri.V[1]].Sub(p0).Cross(m.Positions[tri.V[2]].Sub(p0))
	}
	shadingNormal := n.Normalize()
	n = shadingNormal
	if n.Dot(ray.Dir) >= 0 {
		n = n.Neg()
	}

	uv := types.Vec2{u, v}
	if len(m.UVs) == len(m.Positions) {
		uv = m.UVs[tri.V[0]].Mul(w).
			Add(m.UVs[tri.V[1]].Mul(u)).
			Add(m.UVs[tri.V[2]].Mul(v))
	}

	ray.MaxT = t
	isect.T = t
	isect.Normal = n
	isect.ShadingNormal = shadingNormal
	isect.Primitive = tri
	isect.UV = uv
	isect.MaterialIndex = m.MaterialIndex
	return true
}
