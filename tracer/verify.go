package tracer

import (
	"fmt"
	"math"

	"github.com/achilleasa/polaris-bvh/scene"
)

// Max allowed difference between nearest hit distances, relative to the
// distance magnitude.
const verifyTolerance = 1e-9

// A ray for which two accelerators returned different answers.
type Mismatch struct {
	// Index of the ray in the verified batch.
	Index int
	Ray   scene.Ray

	// Existence query results.
	Hit, RefHit bool

	// Nearest hit distances; +Inf on a miss.
	T, RefT float64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("ray %d (origin %v, dir %v): hit %t/%t, nearest t %g/%g", m.Index, m.Ray.Origin, m.Ray.Dir, m.Hit, m.RefHit, m.T, m.RefT)
}

// Compare the existence and nearest-hit answers of accel against a reference
// accelerator for each ray and return the rays where they differ.
func Verify(accel, reference Accelerator, rays []scene.Ray) []Mismatch {
	var mismatches []Mismatch
	for index := range rays {
		hit, t := query(accel, rays[index])
		refHit, refT := query(reference, rays[index])

		if hit == refHit && distancesMatch(t, refT) {
			continue
		}

		mismatches = append(mismatches, Mismatch{
			Index:  index,
			Ray:    rays[index],
			Hit:    hit,
			RefHit: refHit,
			T:      t,
			RefT:   refT,
		})
	}
	return mismatches
}

// Run both queries on private ray copies.
func query(accel Accelerator, ray scene.Ray) (bool, float64) {
	existRay := ray
	anyHit := accel.Hit(&existRay)

	var isect scene.Intersection
	nearestRay := ray
	if !accel.Intersect(&nearestRay, &isect) {
		return anyHit, math.Inf(1)
	}
	return anyHit, isect.T
}

func distancesMatch(t, refT float64) bool {
	if math.IsInf(t, 1) || math.IsInf(refT, 1) {
		return math.IsInf(t, 1) && math.IsInf(refT, 1)
	}
	return math.Abs(t-refT) <= verifyTolerance*math.Max(1.0, math.Abs(refT))
}
