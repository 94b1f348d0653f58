package scene

import (
	"math"

	"github.com/achilleasa/polaris-bvh/types"
)

// An analytic sphere primitive.
type Sphere struct {
	Center types.Vec3
	Radius float64

	MaterialIndex uint32
}

// Create a new sphere.
func NewSphere(center types.Vec3, radius float64) *Sphere {
	return &Sphere{Center: center, Radius: radius}
}

// Get the sphere bounding box.
func (s *Sphere) BBox() BBox {
	r := types.Vec3{s.Radius, s.Radius, s.Radius}
	return BBox{
		Min: s.Center.Sub(r),
		Max: s.Center.Add(r),
	}
}

// Solve the ray-sphere quadratic and return the closest root that lies
// inside the ray interval.
func (s *Sphere) solve(ray *Ray) (float64, bool) {
	oc := ray.Origin.Sub(s.Center)
	a := ray.Dir.Dot(ray.Dir)
	b := 2.0 * ray.Dir.Dot(oc)
	c := oc.Dot(oc) - s.Radius*s.Radius

	delta := b*b - 4*a*c
	if delta < 0 || a == 0 {
		return 0, false
	}

	sqrtDelta := math.Sqrt(delta)
	t1 := (-b - sqrtDelta) / (2 * a)
	t2 := (-b + sqrtDelta) / (2 * a)

	if t1 >= ray.MinT && t1 <= ray.MaxT {
		return t1, true
	}
	if t2 >= ray.MinT && t2 <= ray.MaxT {
		return t2, true
	}
	return 0, false
}

// Test whether the ray hits the sphere.
func (s *Sphere) Hit(ray *Ray) bool {
	_, hit := s.solve(ray)
	return hit
}

// Intersect the ray with the sphere and populate isect on a hit.
func (s *Sphere) Intersect(ray *Ray, isect *Intersection) bool {
	t, hit := s.solve(ray)
	if !hit {
		return false
	}

	outward := ray.At(t).Sub(s.Center).Normalize()
	n := outward
	if n.Dot(ray.Dir) > 0 {
		n = n.Neg()
	}

	ray.MaxT = t
	isect.T = t
	isect.Normal = n
	isect.ShadingNormal = outward
	isect.Primitive = s
	isect.UV = sphericalUV(outward)
	isect.MaterialIndex = s.MaterialIndex
	return true
}

// Map a unit direction to [0,1]^2 using its azimuth and inclination.
func sphericalUV(n types.Vec3) types.Vec2 {
	phi := math.Atan2(n[2], n[0])
	if phi < 0 {
		phi += 2 * math.Pi
	}
	theta := math.Acos(math.Max(-1, math.Min(1, n[1])))
	return types.Vec2{phi / (2 * math.Pi), theta / math.Pi}
}
