package scene

import (
	"math"
	"testing"

	"github.com/achilleasa/polaris-bvh/types"
)

func TestEmptyBBox(t *testing.T) {
	bbox := EmptyBBox()
	if !bbox.IsEmpty() {
		t.Fatal("expected new bbox to be empty")
	}
	if bbox.SurfaceArea() != 0 {
		t.Fatalf("expected empty bbox surface area to be 0; got %f", bbox.SurfaceArea())
	}
	if bbox.Centroid() != (types.Vec3{}) {
		t.Fatalf("expected empty bbox centroid to be the origin; got %v", bbox.Centroid())
	}

	p := types.XYZ(1, -2, 3)
	bbox = bbox.Expand(p)
	if bbox.Min != p || bbox.Max != p {
		t.Fatalf("expected expanding an empty bbox by %v to yield a point box; got %v", p, bbox)
	}

	other := NewBBox(types.XYZ(-1, -1, -1), types.XYZ(2, 2, 2))
	if got := EmptyBBox().Union(other); got != other {
		t.Fatalf("expected union with empty bbox to yield %v; got %v", other, got)
	}
	if got := other.Union(EmptyBBox()); got != other {
		t.Fatalf("expected union with empty bbox to be a no-op; got %v", got)
	}
}

func TestBBoxMetrics(t *testing.T) {
	bbox := NewBBox(types.XYZ(2, 3, 4), types.XYZ(0, 0, 0))

	if bbox.Min != types.XYZ(0, 0, 0) || bbox.Max != types.XYZ(2, 3, 4) {
		t.Fatalf("expected corners to be ordered; got %v", bbox)
	}
	if got := bbox.Extent(); got != types.XYZ(2, 3, 4) {
		t.Fatalf("expected extent (2, 3, 4); got %v", got)
	}
	if got := bbox.Centroid(); got != types.XYZ(1, 1.5, 2) {
		t.Fatalf("expected centroid (1, 1.5, 2); got %v", got)
	}

	expArea := 2.0 * (2*3 + 3*4 + 4*2)
	if got := bbox.SurfaceArea(); got != expArea {
		t.Fatalf("expected surface area %f; got %f", expArea, got)
	}

	if !bbox.Contains(types.XYZ(1, 1, 1)) || bbox.Contains(types.XYZ(3, 1, 1)) {
		t.Fatal("unexpected Contains result")
	}
}

func TestBBoxRayIntersection(t *testing.T) {
	bbox := NewBBox(types.XYZ(-1, -1, -1), types.XYZ(1, 1, 1))

	type spec struct {
		origin types.Vec3
		dir    types.Vec3
		minT   float64
		maxT   float64
		expHit bool
		expT0  float64
		expT1  float64
	}

	specs := []spec{
		// Straight hit along z
		{types.XYZ(0, 0, -5), types.XYZ(0, 0, 1), 0, math.Inf(1), true, 4, 6},
		// Origin inside the box
		{types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), 0, math.Inf(1), true, 0, 1},
		// Miss: parallel to the x slab but outside it
		{types.XYZ(2, 0, -5), types.XYZ(0, 0, 1), 0, math.Inf(1), false, 0, 0},
		// Miss: box behind the ray
		{types.XYZ(0, 0, 5), types.XYZ(0, 0, 1), 0, math.Inf(1), false, 0, 0},
		// Miss: ray interval ends before reaching the box
		{types.XYZ(0, 0, -5), types.XYZ(0, 0, 1), 0, 3, false, 0, 0},
		// Interval clipped by the ray bounds
		{types.XYZ(0, 0, -5), types.XYZ(0, 0, 1), 4.5, 5.5, true, 4.5, 5.5},
		// Diagonal hit
		{types.XYZ(-5, -5, -5), types.XYZ(1, 1, 1), 0, math.Inf(1), true, 4, 6},
	}

	for index, s := range specs {
		ray := Ray{Origin: s.origin, Dir: s.dir, MinT: s.minT, MaxT: s.maxT}
		t0, t1, hit := bbox.Intersect(&ray)
		if hit != s.expHit {
			t.Fatalf("[spec %d] expected hit to be %t; got %t", index, s.expHit, hit)
		}
		if !hit {
			continue
		}
		if math.Abs(t0-s.expT0) > 1e-9 || math.Abs(t1-s.expT1) > 1e-9 {
			t.Fatalf("[spec %d] expected interval [%f, %f]; got [%f, %f]", index, s.expT0, s.expT1, t0, t1)
		}
		if ray.MinT != s.minT || ray.MaxT != s.maxT {
			t.Fatalf("[spec %d] expected ray interval to remain unchanged", index)
		}
	}
}
