package tracer

import (
	"math"
	"math/rand"

	"github.com/achilleasa/polaris-bvh/scene"
	"github.com/achilleasa/polaris-bvh/types"
)

// Generate count rays that start on a sphere enclosing bbox and point towards
// random points inside it. The same seed always yields the same rays. If the
// bbox is empty, rays start at the origin and point in random directions.
// A non-positive count yields no rays.
func RandomRays(bbox scene.BBox, count int, seed int64) []scene.Ray {
	if count < 0 {
		count = 0
	}
	rng := rand.New(rand.NewSource(seed))
	rays := make([]scene.Ray, count)

	if bbox.IsEmpty() {
		for idx := range rays {
			rays[idx] = scene.NewRay(types.Vec3{}, randomUnitVector(rng))
		}
		return rays
	}

	center := bbox.Centroid()
	extent := bbox.Extent()
	radius := math.Max(extent.Len(), 1.0)

	for idx := range rays {
		origin := center.Add(randomUnitVector(rng).Mul(radius))
		target := types.Vec3{
			bbox.Min[0] + rng.Float64()*extent[0],
			bbox.Min[1] + rng.Float64()*extent[1],
			bbox.Min[2] + rng.Float64()*extent[2],
		}
		rays[idx] = scene.NewRay(origin, target.Sub(origin).Normalize())
	}

	return rays
}

// Pick a uniformly distributed direction on the unit sphere.
func randomUnitVector(rng *rand.Rand) types.Vec3 {
	z := 2.0*rng.Float64() - 1.0
	phi := 2.0 * math.Pi * rng.Float64()
	r := math.Sqrt(1.0 - z*z)
	return types.Vec3{r * math.Cos(phi), r * math.Sin(phi), z}
}
