// Package occluder extracts the flat list of blocking surfaces the runtime
// culling stage tests against, and turns that list back into collision-only
// proxies.
package occluder

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/gekko3d/occlusion/bake/scene"
)

// Serializable is one occluder record.
type Serializable struct {
	PositionWS mgl32.Vec3    `json:"positionWS"`
	RotationWS mgl32.Quat    `json:"rotationWS"`
	ScaleWS    mgl32.Vec3    `json:"scaleWS"`
	Mesh       scene.MeshRef `json:"mesh,omitempty"`
}

func FromObject(obj scene.Object) Serializable {
	return Serializable{
		PositionWS: obj.Transform.Position,
		RotationWS: obj.Transform.Rotation,
		ScaleWS:    obj.Transform.Scale,
		Mesh:       obj.Mesh,
	}
}

// Source is the part of scene.Query the extractor needs.
type Source interface {
	ObjectsWithFlag(flag scene.Flag) []scene.Object
	MarkedOccluders() []scene.Object
}

type ExtractOptions struct {
	// Dedupe drops an object already emitted from an earlier source, keyed
	// by scene.Object.Handle. Off by default: an object that is both flagged
	// and marked is listed twice.
	Dedupe bool
}

// Extract lists every static occluder followed by every marked occluder.
func Extract(src Source, opts ExtractOptions) []Serializable {
	flagged := src.ObjectsWithFlag(scene.OccluderStatic)
	marked := src.MarkedOccluders()

	out := make([]Serializable, 0, len(flagged)+len(marked))
	seen := make(map[uint64]struct{})
	for _, objs := range [][]scene.Object{flagged, marked} {
		for _, obj := range objs {
			if opts.Dedupe {
				if _, ok := seen[obj.Handle]; ok {
					continue
				}
				seen[obj.Handle] = struct{}{}
			}
			out = append(out, FromObject(obj))
		}
	}
	return out
}

// ProxyHandle identifies a proxy created by a ProxyFactory.
type ProxyHandle uint64

// ProxyFactory creates one collision-only placeholder per record. index is
// the record's position in the batch being built. Every call creates a new
// object.
type ProxyFactory interface {
	NewProxy(index int, rec Serializable) (ProxyHandle, error)
}

// ProxyFactoryFunc adapts a function to ProxyFactory.
type ProxyFactoryFunc func(index int, rec Serializable) (ProxyHandle, error)

func (f ProxyFactoryFunc) NewProxy(index int, rec Serializable) (ProxyHandle, error) {
	return f(index, rec)
}

// BuildProxies calls factory once per record, in order. It stops at the
// first factory error; proxies created before it are not rolled back.
func BuildProxies(factory ProxyFactory, recs []Serializable) ([]ProxyHandle, error) {
	handles := make([]ProxyHandle, 0, len(recs))
	for i, rec := range recs {
		h, err := factory.NewProxy(i, rec)
		if err != nil {
			return handles, errors.Wrapf(err, "creating proxy for occluder %d", i)
		}
		handles = append(handles, h)
	}
	return handles, nil
}
