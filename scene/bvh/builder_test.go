package bvh

import (
	"testing"

	"github.com/achilleasa/polaris-bvh/scene"
	"github.com/achilleasa/polaris-bvh/types"
)

// A primitive with a fixed bbox that never reports hits.
type boxPrimitive struct {
	bbox scene.BBox
}

func (p *boxPrimitive) BBox() scene.BBox                                { return p.bbox }
func (p *boxPrimitive) Hit(*scene.Ray) bool                             { return false }
func (p *boxPrimitive) Intersect(*scene.Ray, *scene.Intersection) bool { return false }

func TestLeafSplitting(t *testing.T) {
	type primSpec struct {
		min types.Vec3
		max types.Vec3
	}

	primSpecs := []primSpec{
		{types.Vec3{-2, 0, -2}, types.Vec3{-1, 1, -1}},
		{types.Vec3{1, 0, -2}, types.Vec3{2, 1, -1}},
		{types.Vec3{-2, 0, 1}, types.Vec3{-1, 1, 2}},
		{types.Vec3{1, 0, 1}, types.Vec3{2, 1, 2}},
	}

	makeList := func() []scene.Primitive {
		itemList := make([]scene.Primitive, len(primSpecs))
		for idx, ps := range primSpecs {
			itemList[idx] = &boxPrimitive{scene.NewBBox(ps.min, ps.max)}
		}
		return itemList
	}

	type spec struct {
		maxLeafSize int
		expNodes    int
		expLeafs    int
		expDepth    int
	}
	specs := []spec{
		// Partition each item in a single leaf
		{1, 7, 4, 2},
		// Partition two items in a single leaf
		{2, 3, 2, 1},
		// All items fit in the root
		{4, 1, 1, 0},
	}

	for index, s := range specs {
		tree := New(makeList(), s.maxLeafSize)
		stats := tree.Stats()

		if len(tree.Nodes()) != s.expNodes || stats.Nodes != s.expNodes {
			t.Fatalf("[spec %d] expected bvh tree to have %d nodes; got %d", index, s.expNodes, len(tree.Nodes()))
		}
		if stats.Leafs != s.expLeafs {
			t.Fatalf("[spec %d] expected bvh tree to have %d leafs; got %d", index, s.expLeafs, stats.Leafs)
		}
		if stats.MaxDepth != s.expDepth {
			t.Fatalf("[spec %d] expected max depth %d; got %d", index, s.expDepth, stats.MaxDepth)
		}
		if stats.DegenerateLeafs != 0 {
			t.Fatalf("[spec %d] expected no degenerate leafs; got %d", index, stats.DegenerateLeafs)
		}
	}
}

func TestDegenerateSplit(t *testing.T) {
	// All centroids coincide so no candidate can separate the primitives.
	prims := make([]scene.Primitive, 10)
	for idx := range prims {
		prims[idx] = scene.NewSphere(types.XYZ(1, 2, 3), float64(idx+1))
	}

	tree := New(prims, 2)
	stats := tree.Stats()

	if len(tree.Nodes()) != 1 {
		t.Fatalf("expected a single node; got %d", len(tree.Nodes()))
	}
	root := tree.Nodes()[0]
	if !root.IsLeaf() || root.Range != 10 {
		t.Fatalf("expected root to be a leaf holding 10 primitives; got %+v", root)
	}
	if stats.DegenerateLeafs != 1 || stats.MaxLeafSize != 10 {
		t.Fatalf("expected 1 degenerate leaf of size 10; got %d leafs with max size %d", stats.DegenerateLeafs, stats.MaxLeafSize)
	}
}

func TestEmptyBuild(t *testing.T) {
	tree := New(nil, 4)

	if !tree.BoundingBox().IsEmpty() {
		t.Fatalf("expected empty bbox; got %v", tree.BoundingBox())
	}
	if len(tree.Nodes()) != 0 {
		t.Fatalf("expected no nodes; got %d", len(tree.Nodes()))
	}

	ray := scene.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1))
	var isect scene.Intersection
	if tree.Hit(&ray) || tree.Intersect(&ray, &isect) {
		t.Fatal("expected empty bvh to never report hits")
	}
}

func TestPartitionItems(t *testing.T) {
	xs := []float64{5, 1, 7, 2, 9, 3, 0}
	items := make([]buildItem, len(xs))
	for idx, x := range xs {
		items[idx].centroid = types.XYZ(x, 0, 0)
	}

	mid := partitionItems(items, 0, 4)
	if mid != 4 {
		t.Fatalf("expected 4 items below the split point; got %d", mid)
	}
	for idx, item := range items {
		below := item.centroid[0] < 4
		if below != (idx < mid) {
			t.Fatalf("item %d with centroid %f is on the wrong side of the partition", idx, item.centroid[0])
		}
	}

	// All items on one side
	if mid = partitionItems(items, 0, 100); mid != len(items) {
		t.Fatalf("expected all items below the split point; got %d", mid)
	}
	if mid = partitionItems(items, 0, -1); mid != 0 {
		t.Fatalf("expected no items below the split point; got %d", mid)
	}
}

func TestScoreSplit(t *testing.T) {
	items := []buildItem{
		{bbox: scene.NewBBox(types.XYZ(0, 0, 0), types.XYZ(1, 1, 1))},
		{bbox: scene.NewBBox(types.XYZ(2, 0, 0), types.XYZ(3, 1, 1))},
		{bbox: scene.NewBBox(types.XYZ(4, 0, 0), types.XYZ(5, 1, 1))},
	}
	for idx := range items {
		items[idx].centroid = items[idx].bbox.Centroid()
	}

	s := scoreSplit(items, 0, 2)
	if s.leftCount != 1 || s.rightCount != 2 {
		t.Fatalf("expected 1/2 split; got %d/%d", s.leftCount, s.rightCount)
	}

	// left: unit cube (area 6); right: 3x1x1 box (area 14)
	expScore := 1*6.0 + 2*14.0
	if s.score != expScore {
		t.Fatalf("expected score %f; got %f", expScore, s.score)
	}

	s = scoreSplit(items, 1, 0)
	if s.leftCount != 0 || s.rightCount != 3 {
		t.Fatalf("expected empty left partition; got %d/%d", s.leftCount, s.rightCount)
	}
}

func TestLeafSizeDefault(t *testing.T) {
	boxes := []scene.BBox{
		scene.NewBBox(types.Vec3{-2, 0, -2}, types.Vec3{-1, 1, -1}),
		scene.NewBBox(types.Vec3{1, 0, -2}, types.Vec3{2, 1, -1}),
		scene.NewBBox(types.Vec3{-2, 0, 1}, types.Vec3{-1, 1, 2}),
		scene.NewBBox(types.Vec3{1, 0, 1}, types.Vec3{2, 1, 2}),
	}

	for _, maxLeafSize := range []int{0, -3} {
		prims := make([]scene.Primitive, len(boxes))
		for idx, bbox := range boxes {
			prims[idx] = &boxPrimitive{bbox}
		}

		// The default leaf size fits all 4 items in the root
		stats := New(prims, maxLeafSize).Stats()
		if stats.Nodes != 1 || stats.Leafs != 1 || stats.DegenerateLeafs != 0 || stats.MaxLeafSize != 4 {
			t.Fatalf("[leaf size %d] expected a single non-degenerate leaf with 4 items; got %+v", maxLeafSize, stats)
		}
	}
}

func TestClusteredCentroidsLeaf(t *testing.T) {
	// The centroids (x=0 and x=0.01) are distinct but no candidate split
	// point of the [-10, 10] node bbox falls between them.
	prims := []scene.Primitive{
		&boxPrimitive{scene.NewBBox(types.Vec3{-10, -1, -1}, types.Vec3{10, 1, 1})},
		&boxPrimitive{scene.NewBBox(types.Vec3{-9.98, -1, -1}, types.Vec3{10, 1, 1})},
	}

	tree := New(prims, 1)
	stats := tree.Stats()
	if stats.Nodes != 1 || stats.DegenerateLeafs != 1 || stats.MaxLeafSize != 2 {
		t.Fatalf("expected a single degenerate leaf with 2 items; got %+v", stats)
	}

	checkInvariants(t, tree, 1, DefaultBucketCount)
}
