package occlusion

import (
	"cmp"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/occlusion/bake/bounds"
	"github.com/gekko3d/occlusion/bake/scene"
)

// unitBounds stands in for the extent of volume markers without a mesh.
var unitBounds = bounds.FromCenterSize(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})

// EcsSceneQuery exposes ECS entities to the bake. Objects are returned in
// entity id order; the entity id is the object handle.
type EcsSceneQuery struct {
	cmd    *Commands
	assets *AssetServer
}

var _ scene.Query = (*EcsSceneQuery)(nil)

func NewEcsSceneQuery(cmd *Commands, assets *AssetServer) *EcsSceneQuery {
	return &EcsSceneQuery{cmd: cmd, assets: assets}
}

// ObjectsWithFlag returns the surfaces carrying flag. Entities without a
// mesh, such as empty group nodes, are not surfaces and are skipped.
func (q *EcsSceneQuery) ObjectsWithFlag(flag scene.Flag) []scene.Object {
	var objs []scene.Object
	MakeQuery3[TransformComponent, StaticFlagsComponent, MeshComponent](q.cmd).Map(
		func(eid EntityId, tr *TransformComponent, flags *StaticFlagsComponent, mesh *MeshComponent) bool {
			if flags.Flags.Has(flag) {
				objs = append(objs, q.object(eid, tr, mesh))
			}
			return true
		})
	return sortByHandle(objs)
}

// MarkedOccluders returns marked entities that have a mesh.
func (q *EcsSceneQuery) MarkedOccluders() []scene.Object {
	var objs []scene.Object
	MakeQuery3[TransformComponent, OccluderMarkerComponent, MeshComponent](q.cmd).Map(
		func(eid EntityId, tr *TransformComponent, _ *OccluderMarkerComponent, mesh *MeshComponent) bool {
			objs = append(objs, q.object(eid, tr, mesh))
			return true
		})
	return sortByHandle(objs)
}

// MarkedVolumes returns every volume marker. Markers without a mesh span a
// unit cube under their transform.

func (q *EcsSceneQuery) MarkedVolumes() []scene.Object {
	var objs []scene.Object
	MakeQuery3[TransformComponent, VolumeMarkerComponent, MeshComponent](q.cmd).Map(
		func(eid EntityId, tr *TransformComponent, _ *VolumeMarkerComponent, mesh *MeshComponent) bool {
			objs = append(objs, q.object(eid, tr, mesh))
			return true
		}, MeshComponent{})
	return sortByHandle(objs)
}

func (q *EcsSceneQuery) object(eid EntityId, tr *TransformComponent, mesh *MeshComponent) scene.Object {
	transform := tr.toScene()
	obj := scene.Object{
		Handle:    uint64(eid),
		Transform: transform,
	}

	local := unitBounds
	if mesh != nil {
		obj.Mesh = mesh.Mesh.Ref()
		if q.assets != nil {
			if b, ok := q.assets.MeshBounds(mesh.Mesh); ok {
				local = b
			}
		}
	}
	obj.Bounds = local.Transform(transform.Matrix())
	return obj
}

func sortByHandle(objs []scene.Object) []scene.Object {
	slices.SortFunc(objs, func(a, b scene.Object) int {
		return cmp.Compare(a.Handle, b.Handle)
	})
	return objs
}
