package scene

// The Primitive interface is implemented by all geometry that can be
// partitioned by the BVH builder and tested for ray intersections.
type Primitive interface {
	// Get the primitive bounding box.
	BBox() BBox

	// Test whether the ray hits the primitive inside [ray.MinT, ray.MaxT].
	// Implementations must not modify the ray.
	Hit(ray *Ray) bool

	// Test whether the ray hits the primitive inside [ray.MinT, ray.MaxT].
	// On a hit, implementations shrink ray.MaxT to the hit distance and
	// populate isect. On a miss, neither the ray nor isect are modified.
	Intersect(ray *Ray, isect *Intersection) bool
}

// PrimitiveList is an unaccelerated aggregate that tests every primitive for
// each query. It serves as a reference when validating accelerated queries.
type PrimitiveList []Primitive

// Get the union of all primitive bounding boxes.
func (pl PrimitiveList) BoundingBox() BBox {
	bbox := EmptyBBox()
	for _, prim := range pl {
		bbox = bbox.Union(prim.BBox())
	}
	return bbox
}

// Returns true if the ray hits any primitive in the list.
func (pl PrimitiveList) Hit(ray *Ray) bool {
	for _, prim := range pl {
		if prim.Hit(ray) {
			return true
		}
	}
	return false
}

// Find the closest primitive hit by the ray.
func (pl PrimitiveList) Intersect(ray *Ray, isect *Intersection) bool {
	hit := false
	for _, prim := range pl {
		if prim.Intersect(ray, isect) {
			hit = true
		}
	}
	return hit
}
