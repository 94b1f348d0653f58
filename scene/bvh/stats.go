package bvh

import "time"

// Stats describes the shape of a built hierarchy.
type Stats struct {
	Primitives int
	Nodes      int
	Leafs      int

	// Leafs that exceed the max leaf size because no split candidate could
	// separate their primitive centroids.
	DegenerateLeafs int

	MaxDepth    int
	MaxLeafSize int

	BuildTime time.Duration
}

// Get the average number of primitives per leaf.
func (s Stats) AvgLeafSize() float64 {
	if s.Leafs == 0 {
		return 0
	}
	return float64(s.Primitives) / float64(s.Leafs)
}
