package scene

import (
	"math"

	"github.com/achilleasa/polaris-bvh/types"
)

// A ray with a mutable parametric interval [MinT, MaxT].
//
// MaxT is both an input constraint (hits past it are ignored) and an output
// channel: a successful nearest-hit query shrinks it to the hit distance. A
// ray must not be shared between goroutines while a query is running.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3

	MinT float64
	MaxT float64
}

// Create a ray with an unbounded [0, +inf) interval.
func NewRay(origin, dir types.Vec3) Ray {
	return Ray{
		Origin: origin,
		Dir:    dir,
		MinT:   0,
		MaxT:   math.Inf(1),
	}
}

// Evaluate the point at parametric distance t along the ray.
func (r *Ray) At(t float64) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Intersection stores the details of a ray-primitive hit.
type Intersection struct {
	// Parametric distance of the hit along the ray.
	T float64

	// Surface normal at the hit point, facing against the ray direction.
	Normal types.Vec3

	// Unflipped shading normal. For triangles this is the interpolated
	// vertex normal; for spheres the outward normal.
	ShadingNormal types.Vec3

	// The primitive that was hit.
	Primitive Primitive

	// Interpolated surface coordinates. Triangles without uv data report
	// their barycentric coordinates; spheres report spherical coordinates.
	UV types.Vec2

	// Opaque index used by the shading layer to select a material.
	MaterialIndex uint32
}

// Get the world-space hit point for the ray that produced this intersection.
func (isect *Intersection) Point(ray *Ray) types.Vec3 {
	return ray.At(isect.T)
}
