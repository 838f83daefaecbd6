package occlusion

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/occlusion/bake/scene"
)

// TransformComponent is the world-space transform of an entity.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// LocalTransformComponent is relative to the Parent entity's world transform.
type LocalTransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

type Parent struct {
	Entity EntityId
}

func IdentityTransform() TransformComponent {
	return TransformComponent{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (tr TransformComponent) toScene() scene.Transform {
	return scene.Transform{
		Position: tr.Position,
		Rotation: tr.Rotation,
		Scale:    tr.Scale,
	}
}

// MeshComponent references a mesh asset rendered by the entity.
type MeshComponent struct {
	Mesh Mesh
}

// StaticFlagsComponent carries the static classification of a renderable.
type StaticFlagsComponent struct {
	Flags scene.Flag
}

// OccluderMarkerComponent tags an entity as an explicitly authored occluder.
type OccluderMarkerComponent struct{}

// VolumeMarkerComponent tags an entity as a manually placed portal volume.
// Its world position and scale become the volume center and extent.
type VolumeMarkerComponent struct{}

// ColliderComponent is the only component an occluder proxy needs besides
// its transform.
type ColliderComponent struct {
	Mesh scene.MeshRef
}

// OccluderProxyComponent links a proxy entity to the occluder record it was
// built from: Index is the record's position in the batch passed to the
// factory.
type OccluderProxyComponent struct {
	Index int
}
