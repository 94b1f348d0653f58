package bvh

import (
	"math"
	"time"

	"github.com/achilleasa/polaris-bvh/log"
	"github.com/achilleasa/polaris-bvh/scene"
	"github.com/achilleasa/polaris-bvh/types"
)

const (
	// The default number of buckets used for generating split candidates.
	DefaultBucketCount = 10

	// The default max number of primitives per leaf.
	DefaultMaxLeafSize = 4
)

// Options controls how the BVH builder partitions primitives.
type Options struct {
	// Nodes with at most this many primitives become leafs.
	MaxLeafSize int

	// Number of buckets per axis. The builder evaluates BucketCount-1 evenly
	// spaced split candidates along each axis.
	BucketCount int
}

// Get the default build options.
func DefaultOptions() Options {
	return Options{
		MaxLeafSize: DefaultMaxLeafSize,
		BucketCount: DefaultBucketCount,
	}
}

// A primitive together with its cached bbox and centroid.
type buildItem struct {
	prim     scene.Primitive
	bbox     scene.BBox
	centroid types.Vec3
}

// A scored split candidate.
type splitScore struct {
	axis       int
	splitPoint float64

	leftBBox, rightBBox   scene.BBox
	leftCount, rightCount int
	score                 float64
}

// A node waiting to be partitioned.
type workItem struct {
	node  int32
	depth int
}

type builder struct {
	logger log.Logger

	opts Options

	items []buildItem
	nodes []Node
	stats Stats
}

// Construct a BVH for the given primitives using a maximum leaf size and the
// default bucket count.
func New(prims []scene.Primitive, maxLeafSize int) *BVH {
	opts := DefaultOptions()
	opts.MaxLeafSize = maxLeafSize
	return Build(prims, opts)
}

// Construct a BVH from a set of primitives.
//
// The builder reorders the prims slice in place so that each node covers a
// contiguous window of it; the returned BVH keeps using the same backing
// array. Any assumption the caller holds about the order of prims is invalid
// once Build is called.
//
// Splits are scored with the surface area heuristic:
// score = left count * left bbox area + right count * right bbox area.
//
// A node is turned into a leaf when it holds at most opts.MaxLeafSize
// primitives or when no candidate split yields two non-empty partitions.
// Candidates are spread over the node bbox rather than the centroid range, so
// the latter happens whenever all centroids fall between two adjacent
// candidates (for example when they coincide) and may produce leafs larger
// than opts.MaxLeafSize.
//
// A MaxLeafSize below 1 selects DefaultMaxLeafSize and a BucketCount below 2
// selects DefaultBucketCount.
func Build(prims []scene.Primitive, opts Options) *BVH {
	if opts.MaxLeafSize < 1 {
		opts.MaxLeafSize = DefaultMaxLeafSize
	}
	if opts.BucketCount < 2 {
		opts.BucketCount = DefaultBucketCount
	}

	b := &builder{
		logger: log.New("bvh builder"),
		opts:   opts,
		items:  make([]buildItem, len(prims)),
		nodes:  make([]Node, 0),
		stats: Stats{
			Primitives: len(prims),
		},
	}

	for idx, prim := range prims {
		b.items[idx].prim = prim
	}

	start := time.Now()
	if len(prims) > 0 {
		b.build()
	}

	// Write back the final primitive order.
	for idx, item := range b.items {
		prims[idx] = item.prim
	}

	b.stats.BuildTime = time.Since(start)
	b.logger.Debugf(
		"BVH tree build time: %d ms, primitives: %d, maxDepth: %d, nodes: %d, leafs: %d (degenerate: %d)",
		b.stats.BuildTime.Nanoseconds()/1e6, b.stats.Primitives,
		b.stats.MaxDepth, b.stats.Nodes, b.stats.Leafs, b.stats.DegenerateLeafs,
	)

	return &BVH{
		primitives: prims,
		nodes:      b.nodes,
		stats:      b.stats,
	}
}

// Create the root node and partition it until all nodes are leafs.
func (b *builder) build() {
	rootBBox := scene.EmptyBBox()
	for idx := range b.items {
		b.items[idx].bbox = b.items[idx].prim.BBox()
		b.items[idx].centroid = b.items[idx].bbox.Centroid()
		rootBBox = rootBBox.Union(b.items[idx].bbox)
	}

	root := b.appendNode(rootBBox, 0, uint32(len(b.items)))
	stack := []workItem{{node: root, depth: 0}}
	for len(stack) > 0 {
		work := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		left, right, split := b.partition(work.node, work.depth)
		if !split {
			continue
		}

		// Push right first so the left subtree is processed next.
		stack = append(stack, workItem{right, work.depth + 1}, workItem{left, work.depth + 1})
	}
}

// Append a new leaf node and return its index.
func (b *builder) appendNode(bbox scene.BBox, start, count uint32) int32 {
	b.nodes = append(b.nodes, Node{
		BBox:  bbox,
		Start: start,
		Range: count,
		Left:  NoChild,
		Right: NoChild,
	})
	b.stats.Nodes++
	return int32(len(b.nodes) - 1)
}

// Attempt to split a node into two children. Returns the child indices and
// true if the node was split or false if the node was kept as a leaf.
func (b *builder) partition(nodeIndex int32, depth int) (left, right int32, split bool) {
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	node := b.nodes[nodeIndex]
	if int(node.Range) <= b.opts.MaxLeafSize {
		b.createLeaf(node, false)
		return NoChild, NoChild, false
	}

	workList := b.items[node.Start : node.Start+node.Range]
	bestSplit := b.findBestSplit(workList, node.BBox)
	if bestSplit == nil {
		b.createLeaf(node, true)
		return NoChild, NoChild, false
	}

	mid := partitionItems(workList, bestSplit.axis, bestSplit.splitPoint)

	left = b.appendNode(bestSplit.leftBBox, node.Start, uint32(mid))
	right = b.appendNode(bestSplit.rightBBox, node.Start+uint32(mid), node.Range-uint32(mid))
	b.nodes[nodeIndex].Left = left
	b.nodes[nodeIndex].Right = right
	return left, right, true
}

// Evaluate BucketCount-1 evenly spaced split candidates along each axis and
// return the one with the lowest score or nil if every candidate produces an
// empty partition.
func (b *builder) findBestSplit(workList []buildItem, bbox scene.BBox) *splitScore {
	var bestSplit *splitScore
	bestScore := math.Inf(1)

	extent := bbox.Extent()
	buckets := float64(b.opts.BucketCount)
	for axis := 0; axis < 3; axis++ {
		for i := 0; i < b.opts.BucketCount-1; i++ {
			splitPoint := bbox.Min[axis] + extent[axis]*float64(i+1)/buckets

			candidate := scoreSplit(workList, axis, splitPoint)
			if candidate.leftCount == 0 || candidate.rightCount == 0 {
				continue
			}

			if candidate.score < bestScore {
				bestScore = candidate.score
				bestSplit = &candidate
			}
		}
	}

	return bestSplit
}

// Record leaf stats for a node that will not be split any further.
func (b *builder) createLeaf(node Node, degenerate bool) {
	b.stats.Leafs++
	if degenerate {
		b.stats.DegenerateLeafs++
	}
	if int(node.Range) > b.stats.MaxLeafSize {
		b.stats.MaxLeafSize = int(node.Range)
	}
}

// Score splitting workList at splitPoint along axis using the surface area
// heuristic. Items whose centroid lies below the split point are assigned to
// the left partition.
func scoreSplit(workList []buildItem, axis int, splitPoint float64) splitScore {
	s := splitScore{
		axis:       axis,
		splitPoint: splitPoint,
		leftBBox:   scene.EmptyBBox(),
		rightBBox:  scene.EmptyBBox(),
	}

	for idx := range workList {
		item := &workList[idx]
		if item.centroid[axis] < splitPoint {
			s.leftCount++
			s.leftBBox = s.leftBBox.Union(item.bbox)
		} else {
			s.rightCount++
			s.rightBBox = s.rightBBox.Union(item.bbox)
		}
	}

	s.score = float64(s.leftCount)*s.leftBBox.SurfaceArea() +
		float64(s.rightCount)*s.rightBBox.SurfaceArea()
	return s
}

// Reorder workList in place so that items whose centroid lies below
// splitPoint along axis come first. Returns the number of such items. The
// relative order of items within each side is not preserved.
func partitionItems(workList []buildItem, axis int, splitPoint float64) int {
	lo, hi := 0, len(workList)-1
	for {
		for lo <= hi && workList[lo].centroid[axis] < splitPoint {
			lo++
		}
		for lo <= hi && workList[hi].centroid[axis] >= splitPoint {
			hi--
		}
		if lo >= hi {
			return lo
		}
		workList[lo], workList[hi] = workList[hi], workList[lo]
		lo++
		hi--
	}
}
