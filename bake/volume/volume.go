// Package volume builds the portal volume hierarchy: an octree over the scene
// bounds, optionally unioned with user-authored volumes, flattened into
// id-linked records for the runtime culling data.
package volume

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// NoParent is the ParentID of a root record.
const NoParent = -1

// ChildCount is the fan-out of every internal node.
const ChildCount = 8

// Node is the in-memory tree form. Children holds either zero or exactly
// ChildCount values, owned by the node.
type Node struct {
	PositionWS mgl32.Vec3
	ScaleWS    mgl32.Vec3
	Children   []Node
}

func (n Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Serializable is the flattened export form of a Node.
type Serializable struct {
	ID         int        `json:"id"`
	ParentID   int        `json:"parentId"`
	ChildIDs   []int      `json:"childIds,omitempty"`
	PositionWS mgl32.Vec3 `json:"positionWS"`
	ScaleWS    mgl32.Vec3 `json:"scaleWS"`
}

func (s Serializable) IsRoot() bool {
	return s.ParentID == NoParent
}

func (s Serializable) IsLeaf() bool {
	return len(s.ChildIDs) == 0
}

type Mode int

const (
	// Auto subdivides the scene bounds into an octree.
	Auto Mode = iota
	// Manual exports user-authored volumes, each as its own root.
	Manual
	// Hybrid exports the auto tree followed by the manual volumes, with
	// manual ids offset past the auto set.
	Hybrid
)

var ErrUnknownMode = errors.New("unknown volume mode")

var modeNames = map[Mode]string{
	Auto:   "auto",
	Manual: "manual",
	Hybrid: "hybrid",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// ParseMode accepts the lower-case mode names, ignoring case and
// surrounding space.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownMode, "%q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, errors.Wrapf(ErrUnknownMode, "%d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
