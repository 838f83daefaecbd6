// Package scene describes what the bake reads from a scene: world-space
// objects classified for occlusion, behind a query interface the host
// engine implements.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/occlusion/bake/bounds"
)

// MeshRef is an opaque reference to shared geometry. The empty ref means the
// object has no mesh; it is carried through unchanged.
type MeshRef string

// Flag classifies an object for static occlusion culling.
type Flag uint8

const (
	OccluderStatic Flag = 1 << iota
	OccludeeStatic
)

func (f Flag) Has(other Flag) bool {
	return f&other == other
}

// Transform is a world-space pose. Scale is the lossy scale, i.e. after
// the parent hierarchy has been applied.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t Transform) Matrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translate.Mul4(rotate).Mul4(scale)
}

// Object is one scene object as seen by the bake.
type Object struct {
	// Handle identifies the source object; equal handles are the same object.
	Handle    uint64
	Transform Transform
	Mesh      MeshRef
	// Bounds is the world-space box of the object's surface.
	Bounds bounds.AABB
}

// Query enumerates scene objects. Implementations return objects in a stable
// order so that repeated bakes of the same scene produce identical data.
type Query interface {
	ObjectsWithFlag(flag Flag) []Object
	MarkedOccluders() []Object
	MarkedVolumes() []Object
}
