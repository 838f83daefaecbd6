package bake

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/gekko3d/occlusion/bake/volume"
)

var (
	ErrUnknownVolumeMode   = volume.ErrUnknownMode
	ErrInvalidSubdivisions = errors.New("subdivisions must not be negative")
	ErrSubdivisionsTooDeep = errors.Errorf("subdivisions must not exceed %d", volume.MaxDepth)
)

// Config holds the settings of one bake.
type Config struct {
	Mode         volume.Mode
	Subdivisions int
	// LegacyHierarchy writes auto volumes without parent/child links.
	LegacyHierarchy bool
	// DedupeOccluders drops objects that are both flagged and marked as
	// occluders from the second source.
	DedupeOccluders bool
}

func DefaultConfig() Config {
	return Config{
		Mode:         volume.Auto,
		Subdivisions: 2,
	}
}

func (c Config) Validate() error {
	var err error
	if !c.Mode.Valid() {
		err = multierr.Append(err, errors.Wrapf(ErrUnknownVolumeMode, "%v", c.Mode))
	}
	err = multierr.Append(err, validateSubdivisions(c.Subdivisions))
	return err
}

func validateSubdivisions(n int) error {
	if n < 0 {
		return errors.Wrapf(ErrInvalidSubdivisions, "got %d", n)
	}
	if n > volume.MaxDepth {
		return errors.Wrapf(ErrSubdivisionsTooDeep, "got %d", n)
	}
	return nil
}
