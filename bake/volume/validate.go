package volume

import (
	"slices"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Validate checks that ids are unique and non-negative, that every child
// count is 0 or 8, and that parent and child links agree in both
// directions. All violations are reported.
func Validate(volumes []Serializable) error {
	var err error

	byID := make(map[int]Serializable, len(volumes))
	for _, v := range volumes {
		if v.ID < 0 {
			err = multierr.Append(err, errors.Errorf("volume %d: negative id", v.ID))
		}
		if _, dup := byID[v.ID]; dup {
			err = multierr.Append(err, errors.Errorf("volume %d: duplicate id", v.ID))
			continue
		}
		byID[v.ID] = v
	}

	for _, v := range volumes {
		if n := len(v.ChildIDs); n != 0 && n != ChildCount {
			err = multierr.Append(err, errors.Errorf("volume %d: has %d children, want 0 or %d", v.ID, n, ChildCount))
		}
		if !v.IsRoot() {
			parent, ok := byID[v.ParentID]
			if !ok {
				err = multierr.Append(err, errors.Errorf("volume %d: parent %d not found", v.ID, v.ParentID))
			} else if !slices.Contains(parent.ChildIDs, v.ID) {
				err = multierr.Append(err, errors.Errorf("volume %d: parent %d does not list it as a child", v.ID, v.ParentID))
			}
		}
		for _, cid := range v.ChildIDs {
			child, ok := byID[cid]
			if !ok {
				err = multierr.Append(err, errors.Errorf("volume %d: child %d not found", v.ID, cid))
			} else if child.ParentID != v.ID {
				err = multierr.Append(err, errors.Errorf("volume %d: child %d has parent %d", v.ID, cid, child.ParentID))
			}
		}
	}
	return err
}
