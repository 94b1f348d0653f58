// Package bvh implements a bounding volume hierarchy over scene primitives.
//
// The hierarchy is built once from a primitive list using a bucketed surface
// area heuristic and is read-only afterwards, so queries from multiple
// goroutines are safe as long as each goroutine uses its own ray.
package bvh

import (
	"github.com/achilleasa/polaris-bvh/scene"
)

// NoChild marks a missing child reference in a Node.
const NoChild int32 = -1

// A BVH node. Nodes are stored in a contiguous list and reference their
// children by index. Each node covers the primitive window
// [Start, Start+Range) of the BVH primitive list.
type Node struct {
	// Union of the bounding boxes of the primitives in the node window.
	BBox scene.BBox

	Start uint32
	Range uint32

	// Child node indices or NoChild. Both are NoChild for leafs.
	Left  int32
	Right int32
}

// Returns true if the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == NoChild && n.Right == NoChild
}

// BVH is a bounding volume hierarchy built over a list of primitives.
type BVH struct {
	// The primitive list; reordered during construction so that every node
	// covers a contiguous window.
	primitives []scene.Primitive

	// Nodes stored as a contiguous list; the root is at index 0. An empty
	// list denotes an empty BVH.
	nodes []Node

	stats Stats
}

// Get the bounding box of the whole hierarchy. Returns an empty bbox if the
// BVH contains no primitives.
func (bvh *BVH) BoundingBox() scene.BBox {
	if len(bvh.nodes) == 0 {
		return scene.EmptyBBox()
	}
	return bvh.nodes[0].BBox
}

// Get the reordered primitive list. Callers must not modify it.
func (bvh *BVH) Primitives() []scene.Primitive {
	return bvh.primitives
}

// Get the node list. Callers must not modify it.
func (bvh *BVH) Nodes() []Node {
	return bvh.nodes
}

// Get the statistics collected while building the hierarchy.
func (bvh *BVH) Stats() Stats {
	return bvh.stats
}

// Visit all nodes in depth-first order. The callback receives the node index,
// the node and its depth (the root is at depth 0). Returning false from the
// callback stops the walk.
func (bvh *BVH) Walk(fn func(index int32, node *Node, depth int) bool) {
	if len(bvh.nodes) == 0 {
		return
	}

	type walkEntry struct {
		index int32
		depth int
	}

	stack := []walkEntry{{0, 0}}
	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &bvh.nodes[entry.index]
		if !fn(entry.index, node, entry.depth) {
			return
		}

		if node.Right != NoChild {
			stack = append(stack, walkEntry{node.Right, entry.depth + 1})
		}
		if node.Left != NoChild {
			stack = append(stack, walkEntry{node.Left, entry.depth + 1})
		}
	}
}
