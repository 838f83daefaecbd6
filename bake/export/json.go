// Package export writes baked occlusion data for the runtime: a JSON
// document for tooling and a compact little-endian binary form for loading.
package export

import (
	"io"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"

	"github.com/gekko3d/occlusion/bake/bounds"
	"github.com/gekko3d/occlusion/bake/occluder"
	"github.com/gekko3d/occlusion/bake/volume"
)

// FormatVersion is bumped whenever the exported layout changes.
const FormatVersion = 1

// Artifacts is the complete output of one bake.
type Artifacts struct {
	Version   int                     `json:"version"`
	Mode      volume.Mode             `json:"mode"`
	Bounds    bounds.AABB             `json:"bounds"`
	Volumes   []volume.Serializable   `json:"volumes"`
	Occluders []occluder.Serializable `json:"occluders"`
}

var ErrUnsupportedVersion = errors.New("unsupported artifacts version")

// WriteJSON writes a as indented JSON. A zero Version is written as
// FormatVersion.
func WriteJSON(w io.Writer, a Artifacts) error {
	if a.Version == 0 {
		a.Version = FormatVersion
	}
	if a.Volumes == nil {
		a.Volumes = []volume.Serializable{}
	}
	if a.Occluders == nil {
		a.Occluders = []occluder.Serializable{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return errors.Wrap(err, "encoding artifacts")
	}
	return nil
}

func ReadJSON(r io.Reader) (Artifacts, error) {
	var a Artifacts
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return Artifacts{}, errors.Wrap(err, "decoding artifacts")
	}
	if a.Version != FormatVersion {
		return Artifacts{}, errors.Wrapf(ErrUnsupportedVersion, "got %d", a.Version)
	}
	return a, nil
}
