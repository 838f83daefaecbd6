package volume

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/occlusion/bake/bounds"
)

// MaxDepth bounds the subdivision depth accepted by callers that take depth
// from configuration. Node count grows as 8^depth; depth 7 is about 2.4M
// nodes.
const MaxDepth = 7

// Octant returns the per-axis sign (-1 or +1) of child i. X comes from bit 0,
// Y from bit 1 and Z from bit 2, a clear bit meaning the negative half, so
// children run (-,-,-), (+,-,-), (-,+,-), (+,+,-), (-,-,+), (+,-,+), (-,+,+),
// (+,+,+).
func Octant(i int) mgl32.Vec3 {
	sign := func(bit int) float32 {
		if i&(1<<bit) != 0 {
			return 1
		}
		return -1
	}
	return mgl32.Vec3{sign(0), sign(1), sign(2)}
}

// Generate subdivides root into an octree maxDepth levels deep. Depth 0 is a
// single leaf covering root.
func Generate(root bounds.AABB, maxDepth int) Node {
	node := Node{
		PositionWS: root.Center(),
		ScaleWS:    root.Size(),
	}
	if maxDepth <= 0 {
		return node
	}
	node.Children = subdivide(node, 1, maxDepth)
	return node
}

// subdivide builds the eight children of parent pre-order: each child's
// center and extent are fixed before its own children are visited.
func subdivide(parent Node, depth, maxDepth int) []Node {
	children := make([]Node, ChildCount)
	for i := range children {
		children[i] = childOf(parent, i)
		if depth < maxDepth {
			children[i].Children = subdivide(children[i], depth+1, maxDepth)
		}
	}
	return children
}

func childOf(parent Node, i int) Node {
	sign := Octant(i)
	offset := mgl32.Vec3{
		sign.X() * parent.ScaleWS.X() / 4,
		sign.Y() * parent.ScaleWS.Y() / 4,
		sign.Z() * parent.ScaleWS.Z() / 4,
	}
	return Node{
		PositionWS: parent.PositionWS.Add(offset),
		ScaleWS:    parent.ScaleWS.Mul(0.5),
	}
}

// Count is the number of nodes in a tree generated with depth.
func Count(depth int) int {
	if depth < 0 {
		return 0
	}
	// (8^(depth+1) - 1) / 7
	return ((1 << (3 * (depth + 1))) - 1) / 7
}

// LeafCount is the number of leaves in a tree generated with depth.
func LeafCount(depth int) int {
	if depth < 0 {
		return 0
	}
	return 1 << (3 * depth)
}
