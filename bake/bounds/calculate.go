// Package bounds computes the cubic root box the octree generator subdivides.
package bounds

// Calculate returns the smallest box enclosing all of boxes, expanded to a
// cube around the same center so octants subdivide without axis distortion.
// An empty input yields the zero box.
func Calculate(boxes []AABB) AABB {
	if len(boxes) == 0 {
		return AABB{}
	}

	res := boxes[0]
	for _, b := range boxes[1:] {
		res = res.Encapsulate(b)
	}
	return res.Cube()
}
