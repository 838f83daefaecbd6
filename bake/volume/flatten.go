package volume

import (
	"github.com/gammazero/deque"
)

// FlattenOptions controls how a tree is written out.
type FlattenOptions struct {
	// Legacy emits every record as an unlinked root (ParentID -1, no
	// ChildIDs), matching data produced by older exporters.
	Legacy bool
}

type flattenFrame struct {
	node     Node
	parentID int
}

// Flatten writes the tree rooted at root into records with ids
// [startID, startID+n), assigned in pre-order with children visited in
// Octant order. ParentID and ChildIDs mirror the tree.
func Flatten(root Node, startID int) []Serializable {
	return FlattenWithOptions(root, startID, FlattenOptions{})
}

func FlattenWithOptions(root Node, startID int, opts FlattenOptions) []Serializable {
	var out []Serializable

	var stack deque.Deque[flattenFrame]
	stack.PushBack(flattenFrame{node: root, parentID: NoParent})

	for stack.Len() > 0 {
		frame := stack.PopBack()
		id := startID + len(out)

		rec := Serializable{
			ID:         id,
			ParentID:   NoParent,
			PositionWS: frame.node.PositionWS,
			ScaleWS:    frame.node.ScaleWS,
		}
		if !frame.node.IsLeaf() {
			rec.ChildIDs = make([]int, 0, len(frame.node.Children))
		}
		if !opts.Legacy && frame.parentID != NoParent {
			rec.ParentID = frame.parentID
			parent := &out[frame.parentID-startID]
			parent.ChildIDs = append(parent.ChildIDs, id)
		}
		out = append(out, rec)

		// Reverse push so child 0 is popped, and numbered, first.
		for i := len(frame.node.Children) - 1; i >= 0; i-- {
			stack.PushBack(flattenFrame{node: frame.node.Children[i], parentID: id})
		}
	}

	if opts.Legacy {
		for i := range out {
			out[i].ChildIDs = nil
		}
	}
	return out
}

// Merge unions an already flattened auto set with manually authored
// volumes. Each manual node becomes its own root, numbered from len(auto)
// onward so ids never collide. No links are created between the two sets.
func Merge(auto []Serializable, manual []Node) []Serializable {
	out := make([]Serializable, 0, len(auto)+len(manual))
	out = append(out, auto...)
	for _, m := range manual {
		out = append(out, Flatten(m, len(out))...)
	}
	return out
}

// FilterNoParent returns the root records, in input order.
func FilterNoParent(volumes []Serializable) []Serializable {
	var out []Serializable
	for _, v := range volumes {
		if v.IsRoot() {
			out = append(out, v)
		}
	}
	return out
}

// FilterNoChildren returns the leaf records, in input order.
func FilterNoChildren(volumes []Serializable) []Serializable {
	var out []Serializable
	for _, v := range volumes {
		if v.IsLeaf() {
			out = append(out, v)
		}
	}
	return out
}
