package geometry

import (
	"sort"

	"github.com/ItsHoff/rusty/pkg/core"
)

// SplitMode selects the BVH partitioning policy
type SplitMode int

const (
	// SplitSAH scores bucketed candidate planes with the surface area
	// heuristic. Default.
	SplitSAH SplitMode = iota
	// SplitMedian splits at the object median along the longest axis
	SplitMedian
)

const (
	// Nodes with at most this many primitives become leaves
	maxLeafSize = 8
	// Number of bucketed candidate planes evaluated per split
	numBuckets = 12
	// Estimated cost of a traversal step relative to one intersection
	splitOverhead = 0.125
)

// BVHNode is one node of the flattened tree. Interior nodes store child
// indices into the node array and the split axis; leaf nodes store a
// contiguous range into the reordered primitive array. Children are always
// appended after their parent, so Right == 0 only ever occurs on leaves.
type BVHNode struct {
	Bounds core.AABB
	Left   int32 // Interior: left child index
	Right  int32 // Interior: right child index
	Start  int32 // Leaf: first primitive in the range
	Count  int32 // Leaf: number of primitives
	Axis   uint8 // Interior: split axis for ordered traversal
}

// IsLeaf reports whether the node holds primitives directly
func (n *BVHNode) IsLeaf() bool {
	return n.Right == 0
}

// BVH is an immutable bounding volume hierarchy over the scene triangles.
// The tree is a flat array of nodes addressed by index; primitives are
// reordered so every leaf covers a contiguous range. Once built, the BVH
// is read-only and safe for concurrent traversal without locking.
type BVH struct {
	Nodes     []BVHNode
	Triangles []*Triangle // Reordered, grouped by leaf
	PrimIndex []int32     // Reordered position -> original scene index
}

type buildPrim struct {
	index    int32
	bounds   core.AABB
	centroid core.Vec3
}

type builder struct {
	prims     []buildPrim
	nodes     []BVHNode
	splitMode SplitMode
}

// NewBVH builds a tree over the given triangles using the SAH split policy
func NewBVH(triangles []*Triangle) *BVH {
	return NewBVHWithMode(triangles, SplitSAH)
}

// NewBVHWithMode builds a tree with an explicit split policy
func NewBVHWithMode(triangles []*Triangle, mode SplitMode) *BVH {
	prims := make([]buildPrim, len(triangles))
	for i, tri := range triangles {
		prims[i] = buildPrim{
			index:    int32(i),
			bounds:   tri.BoundingBox(),
			centroid: tri.Center(),
		}
	}

	b := &builder{
		prims:     prims,
		nodes:     make([]BVHNode, 0, 2*len(prims)+1),
		splitMode: mode,
	}
	b.buildNode(0, len(prims))

	ordered := make([]*Triangle, len(prims))
	primIndex := make([]int32, len(prims))
	for i, prim := range b.prims {
		ordered[i] = triangles[prim.index]
		primIndex[i] = prim.index
	}

	return &BVH{
		Nodes:     b.nodes,
		Triangles: ordered,
		PrimIndex: primIndex,
	}
}

// buildNode partitions prims[start:end] and returns the node index
func (b *builder) buildNode(start, end int) int32 {
	bounds := core.EmptyAABB()
	for i := start; i < end; i++ {
		bounds = bounds.Union(b.prims[i].bounds)
	}

	nodeIndex := int32(len(b.nodes))
	count := end - start

	// An empty primitive set yields a single empty leaf
	if count <= maxLeafSize {
		b.nodes = append(b.nodes, BVHNode{
			Bounds: bounds,
			Start:  int32(start),
			Count:  int32(count),
		})
		return nodeIndex
	}

	centroidBounds := core.EmptyAABB()
	for i := start; i < end; i++ {
		c := b.prims[i].centroid
		centroidBounds = centroidBounds.Union(core.NewAABB(c, c))
	}
	axis := centroidBounds.LongestAxis()

	var mid int
	switch {
	case centroidBounds.Size().Axis(axis) < 1e-12:
		// Degenerate node: all centroids coincide, median split
		mid = b.medianSplit(start, end, axis)
	case b.splitMode == SplitMedian:
		mid = b.medianSplit(start, end, axis)
	default:
		sahMid, ok := b.sahSplit(start, end, axis, bounds, centroidBounds)
		if !ok {
			// No split beats the leaf cost
			b.nodes = append(b.nodes, BVHNode{
				Bounds: bounds,
				Start:  int32(start),
				Count:  int32(count),
			})
			return nodeIndex
		}
		mid = sahMid
	}

	// Reserve the interior node before recursing so children land after it
	b.nodes = append(b.nodes, BVHNode{Bounds: bounds, Axis: uint8(axis)})
	left := b.buildNode(start, mid)
	right := b.buildNode(mid, end)
	b.nodes[nodeIndex].Left = left
	b.nodes[nodeIndex].Right = right
	return nodeIndex
}

// medianSplit sorts the range by centroid and splits it in half
func (b *builder) medianSplit(start, end, axis int) int {
	prims := b.prims[start:end]
	sort.Slice(prims, func(i, j int) bool {
		return prims[i].centroid.Axis(axis) < prims[j].centroid.Axis(axis)
	})
	return start + (end-start)/2
}

// sahSplit evaluates bucketed candidate planes along the given axis and
// partitions at the minimal-cost plane. Returns false when no candidate
// improves on the cost of leaving the node as a leaf.
func (b *builder) sahSplit(start, end, axis int, bounds, centroidBounds core.AABB) (int, bool) {
	count := end - start
	axisMin := centroidBounds.Min.Axis(axis)
	axisExtent := centroidBounds.Size().Axis(axis)

	type bucket struct {
		count  int
		bounds core.AABB
	}
	var buckets [numBuckets]bucket
	for i := range buckets {
		buckets[i].bounds = core.EmptyAABB()
	}

	bucketOf := func(p *buildPrim) int {
		idx := int(float64(numBuckets) * (p.centroid.Axis(axis) - axisMin) / axisExtent)
		if idx >= numBuckets {
			idx = numBuckets - 1
		}
		if idx < 0 {
			idx = 0
		}
		return idx
	}

	for i := start; i < end; i++ {
		idx := bucketOf(&b.prims[i])
		buckets[idx].count++
		buckets[idx].bounds = buckets[idx].bounds.Union(b.prims[i].bounds)
	}

	// Score every candidate plane between adjacent buckets:
	// cost = overhead + (leftArea*leftCount + rightArea*rightCount) / parentArea
	parentArea := bounds.SurfaceArea()
	bestCost := core.Infinity
	bestPlane := -1
	for plane := 0; plane < numBuckets-1; plane++ {
		leftBounds := core.EmptyAABB()
		rightBounds := core.EmptyAABB()
		leftCount, rightCount := 0, 0
		for i := 0; i <= plane; i++ {
			leftBounds = leftBounds.Union(buckets[i].bounds)
			leftCount += buckets[i].count
		}
		for i := plane + 1; i < numBuckets; i++ {
			rightBounds = rightBounds.Union(buckets[i].bounds)
			rightCount += buckets[i].count
		}
		if leftCount == 0 || rightCount == 0 {
			continue
		}
		cost := splitOverhead +
			(leftBounds.SurfaceArea()*float64(leftCount)+
				rightBounds.SurfaceArea()*float64(rightCount))/parentArea
		if cost < bestCost {
			bestCost = cost
			bestPlane = plane
		}
	}

	leafCost := float64(count)
	if bestPlane < 0 || bestCost >= leafCost {
		return 0, false
	}

	// Partition the range around the chosen plane
	mid := start
	for i := start; i < end; i++ {
		if bucketOf(&b.prims[i]) <= bestPlane {
			b.prims[mid], b.prims[i] = b.prims[i], b.prims[mid]
			mid++
		}
	}
	if mid == start || mid == end {
		return 0, false
	}
	return mid, true
}
