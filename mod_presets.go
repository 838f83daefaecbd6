package occlusion

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"

	"github.com/gekko3d/occlusion/bake/scene"
)

var ErrUnknownSceneFormat = errors.New("unknown scene file format")

type EntityData struct {
	ID       EntityId   `json:"id"`
	Name     string     `json:"name,omitempty"`
	Position mgl32.Vec3 `json:"position"`
	Rotation mgl32.Quat `json:"rotation"`
	Scale    mgl32.Vec3 `json:"scale"`
	// The pose above is local when HasParent is set.
	HasParent bool       `json:"has_parent"`
	ParentID  EntityId   `json:"parent_id"`
	Mesh      string     `json:"mesh,omitempty"`
	Flags     scene.Flag `json:"flags,omitempty"`
	Occluder  bool       `json:"occluder,omitempty"`
	Volume    bool       `json:"volume,omitempty"`
}

type MeshData struct {
	Name     string       `json:"name"`
	Vertices []mgl32.Vec3 `json:"vertices"`
	Indices  []uint32     `json:"indices,omitempty"`
}

// PresetData is a JSON snapshot of a scene.
type PresetData struct {
	Meshes   []MeshData   `json:"meshes"`
	Entities []EntityData `json:"entities"`
}

// SavePreset writes every entity with a TransformComponent, in entity id
// order. Occluder proxies are skipped; they are bake output.
func SavePreset(cmd *Commands, server *AssetServer, w io.Writer) error {
	var entities []EntityData
	meshes := make(map[AssetId]MeshData)

	MakeQuery1[TransformComponent](cmd).Map(func(eid EntityId, tr *TransformComponent) bool {
		data := EntityData{
			ID:       eid,
			Position: tr.Position,
			Rotation: tr.Rotation,
			Scale:    tr.Scale,
		}

		var local *LocalTransformComponent
		for _, c := range cmd.GetAllComponents(eid) {
			switch comp := c.(type) {
			case OccluderProxyComponent:
				return true
			case NameComponent:
				data.Name = comp.Name
			case LocalTransformComponent:
				local = &comp
			case Parent:
				data.HasParent = true
				data.ParentID = comp.Entity
			case MeshComponent:
				if asset, ok := server.MeshAsset(comp.Mesh); ok {
					data.Mesh = string(comp.Mesh.assetId)
					meshes[comp.Mesh.assetId] = MeshData{
						Name:     data.Mesh,
						Vertices: asset.vertices,
						Indices:  asset.indices,
					}
				}
			case StaticFlagsComponent:
				data.Flags = comp.Flags
			case OccluderMarkerComponent:
				data.Occluder = true
			case VolumeMarkerComponent:
				data.Volume = true
			}
		}
		if data.HasParent && local != nil {
			data.Position, data.Rotation, data.Scale = local.Position, local.Rotation, local.Scale
		}

		entities = append(entities, data)
		return true
	})

	preset := PresetData{Entities: entities}
	for _, m := range meshes {
		preset.Meshes = append(preset.Meshes, m)
	}
	slices.SortFunc(preset.Meshes, func(a, b MeshData) int { return strings.Compare(a.Name, b.Name) })
	slices.SortFunc(preset.Entities, func(a, b EntityData) int { return cmp.Compare(a.ID, b.ID) })

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(preset), "encoding preset")
}

// LoadPreset reads a snapshot written by SavePreset as a SceneDef. Entities
// are reordered so that parents precede their children; unnamed entities
// are named after their saved id.
func LoadPreset(r io.Reader) (*SceneDef, error) {
	var preset PresetData
	if err := json.NewDecoder(r).Decode(&preset); err != nil {
		return nil, errors.Wrap(err, "decoding preset")
	}

	def := &SceneDef{}
	for _, m := range preset.Meshes {
		def.Meshes = append(def.Meshes, MeshDef(m))
	}

	names := make(map[EntityId]string, len(preset.Entities))
	for _, data := range preset.Entities {
		name := data.Name
		if name == "" {
			name = fmt.Sprintf("entity_%d", data.ID)
		}
		names[data.ID] = name
	}

	emitted := make(map[EntityId]bool, len(preset.Entities))
	pending := preset.Entities
	for len(pending) > 0 {
		var next []EntityData
		for _, data := range pending {
			if data.HasParent && !emitted[data.ParentID] {
				next = append(next, data)
				continue
			}
			obj := ObjectDef{
				Name:     names[data.ID],
				Mesh:     data.Mesh,
				Position: data.Position,
				Rotation: data.Rotation,
				Scale:    data.Scale,
				Flags:    data.Flags,
				Occluder: data.Occluder,
				Volume:   data.Volume,
			}
			if data.HasParent {
				obj.Parent = names[data.ParentID]
			}
			def.Objects = append(def.Objects, obj)
			emitted[data.ID] = true
		}
		if len(next) == len(pending) {
			return nil, errors.Wrapf(ErrUnknownParent, "entity %d", next[0].ParentID)
		}
		pending = next
	}
	return def, nil
}

// LoadSceneFile loads a glTF (.gltf, .glb) or preset (.json) scene.
func LoadSceneFile(path string) (*SceneDef, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return LoadGLTFScene(path)
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "opening preset")
		}
		defer f.Close()
		return LoadPreset(f)
	}
	return nil, errors.Wrap(ErrUnknownSceneFormat, path)
}
