// Package bake produces the precomputed occlusion data for a scene: the
// portal volume hierarchy and the flat occluder list consumed by the runtime
// culling stage.
package bake

import (
	"time"

	"github.com/pkg/errors"

	"github.com/gekko3d/occlusion/bake/bounds"
	"github.com/gekko3d/occlusion/bake/occluder"
	"github.com/gekko3d/occlusion/bake/scene"
	"github.com/gekko3d/occlusion/bake/volume"
)

var ErrNoProxyFactory = errors.New("no proxy factory configured")

// Logger is the logging surface the bake needs.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type Baker struct {
	Config Config

	scene   scene.Query
	proxies occluder.ProxyFactory
	logger  Logger
}

// NewBaker returns a Baker reading from q. proxies may be nil if
// GetOccluderProxies is never called.
func NewBaker(q scene.Query, proxies occluder.ProxyFactory, logger Logger, cfg Config) *Baker {
	return &Baker{
		Config:  cfg,
		scene:   q,
		proxies: proxies,
		logger:  logger,
	}
}

// Result is everything one bake exports.
type Result struct {
	Mode      volume.Mode
	Volumes   []volume.Serializable
	Occluders []occluder.Serializable
}

// Bake runs both exports with the Baker's Config.
func (b *Baker) Bake() (Result, error) {
	if err := b.Config.Validate(); err != nil {
		instrumentError("config")
		return Result{}, err
	}

	volumes, err := b.GetVolumeData(b.Config.Mode, b.Config.Subdivisions)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Mode:      b.Config.Mode,
		Volumes:   volumes,
		Occluders: b.GetOccluderData(),
	}, nil
}

func (b *Baker) GetOccluderData() []occluder.Serializable {
	defer instrumentDuration("occluders", time.Now())

	recs := occluder.Extract(b.scene, occluder.ExtractOptions{Dedupe: b.Config.DedupeOccluders})
	occludersExported.Add(float64(len(recs)))
	b.logger.Debugf("extracted %d occluders", len(recs))
	return recs
}

// GetOccluderProxies creates one collision-only proxy per record. Each call
// creates new proxies.
func (b *Baker) GetOccluderProxies(recs []occluder.Serializable) ([]occluder.ProxyHandle, error) {
	if b.proxies == nil {
		return nil, ErrNoProxyFactory
	}
	defer instrumentDuration("proxies", time.Now())

	handles, err := occluder.BuildProxies(b.proxies, recs)
	proxiesCreated.Add(float64(len(handles)))
	if err != nil {
		instrumentError("proxy")
		b.logger.Errorf("occluder proxies: %v", err)
		return handles, err
	}
	return handles, nil
}

// GetVolumeData exports the volume records for mode. autoSubdivisions is the
// octree depth used by Auto and Hybrid.
func (b *Baker) GetVolumeData(mode volume.Mode, autoSubdivisions int) ([]volume.Serializable, error) {
	defer instrumentDuration("volumes", time.Now())

	if !mode.Valid() {
		err := errors.Wrapf(ErrUnknownVolumeMode, "%v", mode)
		instrumentError("config")
		b.logger.Errorf("volume data: %v", err)
		return nil, err
	}
	if err := validateSubdivisions(autoSubdivisions); err != nil {
		instrumentError("config")
		b.logger.Errorf("volume data: %v", err)
		return nil, err
	}

	var out []volume.Serializable
	switch mode {
	case volume.Auto:
		out = b.autoVolumes(autoSubdivisions)
	case volume.Manual:
		out = volume.Merge(nil, b.manualVolumes())
	case volume.Hybrid:
		out = volume.Merge(b.autoVolumes(autoSubdivisions), b.manualVolumes())
	}

	instrumentVolumes(mode.String(), len(out))
	b.logger.Debugf("exported %d %v volumes", len(out), mode)
	return out, nil
}

func (b *Baker) FilterVolumesNoParent(volumes []volume.Serializable) []volume.Serializable {
	return volume.FilterNoParent(volumes)
}

func (b *Baker) FilterVolumesNoChildren(volumes []volume.Serializable) []volume.Serializable {
	return volume.FilterNoChildren(volumes)
}

// SceneBounds is the cubic box around every static occludee.
func (b *Baker) SceneBounds() bounds.AABB {
	occludees := b.scene.ObjectsWithFlag(scene.OccludeeStatic)
	if len(occludees) == 0 {
		b.logger.Warnf("no static occludees found, volumes will be zero-sized")
		return bounds.AABB{}
	}

	boxes := make([]bounds.AABB, len(occludees))
	for i, o := range occludees {
		boxes[i] = o.Bounds
	}
	return bounds.Calculate(boxes)
}

func (b *Baker) autoVolumes(subdivisions int) []volume.Serializable {
	root := volume.Generate(b.SceneBounds(), subdivisions)
	return volume.FlattenWithOptions(root, 0, volume.FlattenOptions{Legacy: b.Config.LegacyHierarchy})
}

func (b *Baker) manualVolumes() []volume.Node {
	markers := b.scene.MarkedVolumes()
	nodes := make([]volume.Node, len(markers))
	for i, m := range markers {
		nodes[i] = volume.Node{
			PositionWS: m.Transform.Position,
			ScaleWS:    m.Transform.Scale,
		}
	}
	return nodes
}
