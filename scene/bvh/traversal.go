package bvh

import (
	"math"

	"github.com/achilleasa/polaris-bvh/scene"
)

// The initial capacity of the traversal stacks. Trees deeper than this grow
// the stack on demand.
const traversalStackSize = 64

// A deferred node visit for the nearest-hit traversal.
type deferredNode struct {
	node int32

	// Entry distance of the ray into the node bbox, computed when the node
	// was deferred.
	tNear float64

	// If set, the node is only visited when no hit was recorded since it
	// was deferred or when tNear is still closer than the best hit.
	prune bool

	// Hit count at the time the node was deferred.
	hitsAtPush int
}

// Returns true if the ray hits any primitive in the BVH. The ray is not
// modified.
func (bvh *BVH) Hit(ray *scene.Ray) bool {
	if len(bvh.nodes) == 0 {
		return false
	}

	var stackBuf [traversalStackSize]int32
	stack := append(stackBuf[:0], 0)
	for len(stack) > 0 {
		node := &bvh.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if node.IsLeaf() {
			for _, prim := range bvh.primitives[node.Start : node.Start+node.Range] {
				if prim.Hit(ray) {
					return true
				}
			}
			continue
		}

		// A single child is visited without testing its bbox.
		if node.Left == NoChild {
			stack = append(stack, node.Right)
			continue
		}
		if node.Right == NoChild {
			stack = append(stack, node.Left)
			continue
		}

		_, _, leftHit := bvh.nodes[node.Left].BBox.Intersect(ray)
		_, _, rightHit := bvh.nodes[node.Right].BBox.Intersect(ray)
		if rightHit {
			stack = append(stack, node.Right)
		}
		if leftHit {
			stack = append(stack, node.Left)
		}
	}

	return false
}

// Find the closest primitive hit by the ray.
//
// On a hit, ray.MaxT is shrunk to the hit distance and isect describes the
// closest hit. Children are visited front to back and a far child is skipped
// when its entry distance is not closer than a hit found in its sibling.
func (bvh *BVH) Intersect(ray *scene.Ray, isect *scene.Intersection) bool {
	if len(bvh.nodes) == 0 {
		return false
	}

	hits := 0
	var stackBuf [traversalStackSize]deferredNode
	stack := append(stackBuf[:0], deferredNode{node: 0})
	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if entry.prune && hits > entry.hitsAtPush && entry.tNear >= ray.MaxT {
			continue
		}

		node := &bvh.nodes[entry.node]
		if node.IsLeaf() {
			for _, prim := range bvh.primitives[node.Start : node.Start+node.Range] {
				if prim.Intersect(ray, isect) {
					hits++
				}
			}
			continue
		}

		if node.Left == NoChild {
			stack = append(stack, deferredNode{node: node.Right})
			continue
		}
		if node.Right == NoChild {
			stack = append(stack, deferredNode{node: node.Left})
			continue
		}

		leftT0, _, leftHit := bvh.nodes[node.Left].BBox.Intersect(ray)
		rightT0, _, rightHit := bvh.nodes[node.Right].BBox.Intersect(ray)
		switch {
		case !leftHit && !rightHit:
			continue
		case !rightHit:
			stack = append(stack, deferredNode{node: node.Left})
		case !leftHit:
			stack = append(stack, deferredNode{node: node.Right})
		default:
			first, second := node.Left, node.Right
			secondT0 := rightT0
			if rightT0 < leftT0 {
				first, second = second, first
				secondT0 = leftT0
			}

			// The second child is popped after the entire first subtree
			// has been processed.
			stack = append(stack,
				deferredNode{node: second, tNear: secondT0, prune: true, hitsAtPush: hits},
				deferredNode{node: first},
			)
		}
	}

	return hits > 0
}

// Find the distance to the closest hit or +Inf if the ray misses. The ray is
// not modified.
func (bvh *BVH) ClosestDistance(ray *scene.Ray) float64 {
	query := *ray
	var isect scene.Intersection
	if !bvh.Intersect(&query, &isect) {
		return math.Inf(1)
	}
	return isect.T
}
