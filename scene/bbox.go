package scene

import (
	"fmt"
	"math"

	"github.com/achilleasa/polaris-bvh/types"
)

// BBox is an axis-aligned bounding box defined by its min and max corners.
//
// The zero value is a degenerate box at the origin. Use EmptyBBox to obtain a
// box that can be grown with Expand/Union without picking up the origin.
type BBox struct {
	Min types.Vec3
	Max types.Vec3
}

// Create an empty bounding box. An empty box has its min corner at +inf and
// its max corner at -inf so the first expansion replaces both corners.
func EmptyBBox() BBox {
	return BBox{
		Min: types.Vec3{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64},
		Max: types.Vec3{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64},
	}
}

// Create a bounding box from two corners. The corners do not need to be ordered.
func NewBBox(p0, p1 types.Vec3) BBox {
	return BBox{
		Min: types.MinVec3(p0, p1),
		Max: types.MaxVec3(p0, p1),
	}
}

// Returns true if the box has not been expanded yet.
func (b BBox) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Grow the box so it contains point p.
func (b BBox) Expand(p types.Vec3) BBox {
	return BBox{
		Min: types.MinVec3(b.Min, p),
		Max: types.MaxVec3(b.Max, p),
	}
}

// Grow the box so it contains other. Expanding by an empty box is a no-op.
func (b BBox) Union(other BBox) BBox {
	if other.IsEmpty() {
		return b
	}
	return BBox{
		Min: types.MinVec3(b.Min, other.Min),
		Max: types.MaxVec3(b.Max, other.Max),
	}
}

// Get the box side lengths. Returns a zero vector for empty boxes.
func (b BBox) Extent() types.Vec3 {
	if b.IsEmpty() {
		return types.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Get the box center.
func (b BBox) Centroid() types.Vec3 {
	if b.IsEmpty() {
		return types.Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Calculate the box surface area: 2 * (ex*ey + ey*ez + ez*ex).
func (b BBox) SurfaceArea() float64 {
	e := b.Extent()
	return 2.0 * (e[0]*e[1] + e[1]*e[2] + e[2]*e[0])
}

// Returns true if p lies inside or on the surface of the box.
func (b BBox) Contains(p types.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Intersect the ray with the box using the slab method.
//
// The parametric interval starts as [ray.MinT, ray.MaxT] and gets clipped
// against each pair of axis-aligned planes. The method returns the clipped
// interval and whether it is non-empty. The ray is not modified.
func (b BBox) Intersect(ray *Ray) (t0, t1 float64, ok bool) {
	t0, t1 = ray.MinT, ray.MaxT
	for axis := 0; axis < 3; axis++ {
		origin := ray.Origin[axis]
		dir := ray.Dir[axis]

		// Rays parallel to the slab only pass if the origin lies inside it.
		if dir == 0 {
			if origin < b.Min[axis] || origin > b.Max[axis] {
				return t0, t1, false
			}
			continue
		}

		invDir := 1.0 / dir
		tNear := (b.Min[axis] - origin) * invDir
		tFar := (b.Max[axis] - origin) * invDir
		if tNear > tFar {
			tNear, tFar = tFar, tNear
		}

		if tNear > t0 {
			t0 = tNear
		}
		if tFar < t1 {
			t1 = tFar
		}
		if t0 > t1 {
			return t0, t1, false
		}
	}

	return t0, t1, true
}

func (b BBox) String() string {
	if b.IsEmpty() {
		return "[empty]"
	}
	return fmt.Sprintf("[(%.3f, %.3f, %.3f) - (%.3f, %.3f, %.3f)]", b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
}
