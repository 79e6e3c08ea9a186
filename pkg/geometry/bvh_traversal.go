package geometry

import (
	"github.com/ItsHoff/rusty/pkg/core"
)

// traversalStackSize bounds the node stack. Depth grows logarithmically in
// the primitive count so 64 covers any realistic scene.
const traversalStackSize = 64

// Hit finds the closest intersection along the ray within [ray.TMin, ray.TMax].
// Children are visited near-first using the entry distance of their bounds,
// and subtrees whose entry lies beyond the closest hit so far are skipped.
func (bvh *BVH) Hit(ray core.Ray) (Intersection, bool) {
	var closest Intersection
	found := false
	tMax := ray.TMax

	if len(bvh.Nodes) == 0 {
		return closest, false
	}

	var stack [traversalStackSize]int32
	stackTop := 0
	stack[stackTop] = 0
	stackTop++

	for stackTop > 0 {
		stackTop--
		node := &bvh.Nodes[stack[stackTop]]

		if node.IsLeaf() {
			var isect Intersection
			for i := node.Start; i < node.Start+node.Count; i++ {
				if bvh.Triangles[i].Hit(ray, ray.TMin, tMax, &isect) {
					isect.PrimID = int(bvh.PrimIndex[i])
					closest = isect
					found = true
					tMax = isect.T
				}
			}
			continue
		}

		leftT, leftHit := bvh.Nodes[node.Left].Bounds.HitInterval(ray, ray.TMin, tMax)
		rightT, rightHit := bvh.Nodes[node.Right].Bounds.HitInterval(ray, ray.TMin, tMax)
		switch {
		case leftHit && rightHit:
			// Push the farther child first so the nearer one pops next
			if leftT <= rightT {
				stack[stackTop] = node.Right
				stack[stackTop+1] = node.Left
			} else {
				stack[stackTop] = node.Left
				stack[stackTop+1] = node.Right
			}
			stackTop += 2
		case leftHit:
			stack[stackTop] = node.Left
			stackTop++
		case rightHit:
			stack[stackTop] = node.Right
			stackTop++
		}
	}
	return closest, found
}

// IsOccluded reports whether anything blocks the ray within its interval.
// Any intersection terminates the query, so traversal order is irrelevant.
func (bvh *BVH) IsOccluded(ray core.Ray) bool {
	if len(bvh.Nodes) == 0 {
		return false
	}

	var stack [traversalStackSize]int32
	stackTop := 0
	stack[stackTop] = 0
	stackTop++

	var isect Intersection
	for stackTop > 0 {
		stackTop--
		node := &bvh.Nodes[stack[stackTop]]
		if !node.Bounds.Hit(ray, ray.TMin, ray.TMax) {
			continue
		}

		if node.IsLeaf() {
			for i := node.Start; i < node.Start+node.Count; i++ {
				if bvh.Triangles[i].Hit(ray, ray.TMin, ray.TMax, &isect) {
					return true
				}
			}
			continue
		}

		stack[stackTop] = node.Left
		stack[stackTop+1] = node.Right
		stackTop += 2
	}
	return false
}

// HitLinear intersects every triangle without the tree. Reference path for
// validating traversal.
func (bvh *BVH) HitLinear(ray core.Ray) (Intersection, bool) {
	var closest, isect Intersection
	found := false
	tMax := ray.TMax
	for i, tri := range bvh.Triangles {
		if tri.Hit(ray, ray.TMin, tMax, &isect) {
			isect.PrimID = int(bvh.PrimIndex[i])
			closest = isect
			found = true
			tMax = isect.T
		}
	}
	return closest, found
}

// Bounds returns the bounding box of the whole tree
func (bvh *BVH) Bounds() core.AABB {
	if len(bvh.Nodes) == 0 {
		return core.EmptyAABB()
	}
	return bvh.Nodes[0].Bounds
}

// Stats summarises the built tree for diagnostics
type Stats struct {
	NodeCount    int
	LeafCount    int
	PrimCount    int
	MaxLeafPrims int
	AverageDepth float64
	MaxDepth     int
}

// Stats walks the tree and collects structural counters
func (bvh *BVH) Stats() Stats {
	stats := Stats{
		NodeCount: len(bvh.Nodes),
		PrimCount: len(bvh.Triangles),
	}
	if len(bvh.Nodes) == 0 {
		return stats
	}

	totalLeafDepth := 0
	type entry struct {
		node  int32
		depth int
	}
	stack := []entry{{0, 0}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if e.depth > stats.MaxDepth {
			stats.MaxDepth = e.depth
		}
		node := &bvh.Nodes[e.node]
		if node.IsLeaf() {
			stats.LeafCount++
			totalLeafDepth += e.depth
			if int(node.Count) > stats.MaxLeafPrims {
				stats.MaxLeafPrims = int(node.Count)
			}
			continue
		}
		stack = append(stack, entry{node.Left, e.depth + 1}, entry{node.Right, e.depth + 1})
	}
	if stats.LeafCount > 0 {
		stats.AverageDepth = float64(totalLeafDepth) / float64(stats.LeafCount)
	}
	return stats
}
