package occlusion

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/gekko3d/occlusion/bake/scene"
)

var (
	ErrUnknownMesh      = errors.New("unknown mesh")
	ErrUnknownParent    = errors.New("unknown parent")
	ErrDuplicateObject  = errors.New("duplicate object name")
	ErrDuplicateMeshDef = errors.New("duplicate mesh name")
)

// SceneDef defines the initial state of a scene.
type SceneDef struct {
	Meshes  []MeshDef
	Objects []ObjectDef
}

// MeshDef is mesh-local geometry, shared by name between objects.
type MeshDef struct {
	Name     string
	Vertices []mgl32.Vec3
	Indices  []uint32
}

// ObjectDef defines one scene object. The pose is relative to Parent when
// set, otherwise it is in world space. A zero Rotation or Scale means
// identity.
type ObjectDef struct {
	Name     string
	Parent   string
	Mesh     string
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3

	Flags    scene.Flag
	Occluder bool
	Volume   bool
}

type NameComponent struct {
	Name string
}

// LoadScene spawns one entity per object and returns their ids by name.
// Parents must be listed before their children. Entities exist after the
// next App.FlushCommands.
func LoadScene(cmd *Commands, assets *AssetServer, def *SceneDef) (map[string]EntityId, error) {
	meshes := make(map[string]Mesh, len(def.Meshes))
	for _, md := range def.Meshes {
		if _, ok := meshes[md.Name]; ok {
			return nil, errors.Wrap(ErrDuplicateMeshDef, md.Name)
		}
		mesh, err := assets.LoadMesh(md.Name, md.Vertices, md.Indices)
		if err != nil {
			return nil, err
		}
		meshes[md.Name] = mesh
	}

	entities := make(map[string]EntityId, len(def.Objects))
	for _, obj := range def.Objects {
		if _, ok := entities[obj.Name]; ok && obj.Name != "" {
			return nil, errors.Wrap(ErrDuplicateObject, obj.Name)
		}

		components, err := objectComponents(obj, meshes, entities)
		if err != nil {
			return nil, errors.Wrapf(err, "spawning object %q", obj.Name)
		}
		eid := cmd.AddEntity(components...)
		if obj.Name != "" {
			entities[obj.Name] = eid
		}
	}
	return entities, nil
}

func objectComponents(obj ObjectDef, meshes map[string]Mesh, entities map[string]EntityId) ([]any, error) {
	pose := IdentityTransform()
	pose.Position = obj.Position
	if obj.Rotation != (mgl32.Quat{}) {
		pose.Rotation = obj.Rotation
	}
	if obj.Scale != (mgl32.Vec3{}) {
		pose.Scale = obj.Scale
	}

	components := []any{
		NameComponent{Name: obj.Name},
		pose,
		LocalTransformComponent(pose),
	}

	if obj.Parent != "" {
		parent, ok := entities[obj.Parent]
		if !ok {
			return nil, errors.Wrap(ErrUnknownParent, obj.Parent)
		}
		components = append(components, Parent{Entity: parent})
	}
	if obj.Mesh != "" {
		mesh, ok := meshes[obj.Mesh]
		if !ok {
			return nil, errors.Wrap(ErrUnknownMesh, obj.Mesh)
		}
		components = append(components, MeshComponent{Mesh: mesh})
	}
	if obj.Flags != 0 {
		components = append(components, StaticFlagsComponent{Flags: obj.Flags})
	}
	if obj.Occluder {
		components = append(components, OccluderMarkerComponent{})
	}
	if obj.Volume {
		components = append(components, VolumeMarkerComponent{})
	}
	return components, nil
}
