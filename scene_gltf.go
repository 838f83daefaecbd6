package occlusion

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/segmentio/encoding/json"

	"github.com/gekko3d/occlusion/bake/scene"
)

// gltfExtras is the occlusion classification read from a node's extras.
type gltfExtras struct {
	OccluderStatic bool `json:"occluderStatic"`
	OccludeeStatic bool `json:"occludeeStatic"`
	Occluder       bool `json:"occluder"`
	PortalVolume   bool `json:"portalVolume"`
}

// LoadGLTFScene reads a .gltf or .glb file into a SceneDef.
func LoadGLTFScene(path string) (*SceneDef, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "gltf open %q", path)
	}
	return LoadGLTFDocument(doc)
}

// LoadGLTFDocument converts the nodes reachable from the default scene into
// objects, parents first. Without a default scene every parentless node is a
// root. All primitives of a mesh are merged into one MeshDef.
func LoadGLTFDocument(doc *gltf.Document) (*SceneDef, error) {
	def := &SceneDef{}

	meshNames := make([]string, len(doc.Meshes))
	used := make(map[string]struct{})
	for mi, gm := range doc.Meshes {
		md, err := loadGLTFMesh(doc, gm)
		if err != nil {
			return nil, errors.Wrapf(err, "gltf mesh %d", mi)
		}
		md.Name = uniqueName(gm.Name, "mesh", mi, used)
		meshNames[mi] = md.Name
		def.Meshes = append(def.Meshes, md)
	}

	nodeNames := make([]string, len(doc.Nodes))
	used = make(map[string]struct{})
	for i, gn := range doc.Nodes {
		nodeNames[i] = uniqueName(gn.Name, "node", i, used)
	}

	visited := make([]bool, len(doc.Nodes))
	var visit func(idx int, parent string) error
	visit = func(idx int, parent string) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return errors.Errorf("gltf node index %d out of range", idx)
		}
		if visited[idx] {
			return nil
		}
		visited[idx] = true

		obj, err := gltfObject(doc.Nodes[idx], nodeNames[idx], parent, meshNames)
		if err != nil {
			return errors.Wrapf(err, "gltf node %d", idx)
		}
		def.Objects = append(def.Objects, obj)
		for _, child := range doc.Nodes[idx].Children {
			if err := visit(child, obj.Name); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range gltfRoots(doc) {
		if err := visit(root, ""); err != nil {
			return nil, err
		}
	}
	return def, nil
}

func gltfRoots(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}

	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func gltfObject(gn *gltf.Node, name, parent string, meshNames []string) (ObjectDef, error) {
	obj := ObjectDef{Name: name, Parent: parent}
	obj.Position, obj.Rotation, obj.Scale = gltfNodePose(gn)

	if gn.Mesh != nil {
		if *gn.Mesh < 0 || *gn.Mesh >= len(meshNames) {
			return ObjectDef{}, errors.Errorf("mesh index %d out of range", *gn.Mesh)
		}
		obj.Mesh = meshNames[*gn.Mesh]
	}

	extras, err := readGLTFExtras(gn.Extras)
	if err != nil {
		return ObjectDef{}, err
	}
	if extras.OccluderStatic {
		obj.Flags |= scene.OccluderStatic
	}
	if extras.OccludeeStatic {
		obj.Flags |= scene.OccludeeStatic
	}
	obj.Occluder = extras.Occluder
	obj.Volume = extras.PortalVolume
	return obj, nil
}

// gltfNodePose returns the node's local pose, decomposing the matrix form
// when TRS is not used. A matrix with a collapsed axis keeps its scale and
// gets the identity rotation.
func gltfNodePose(gn *gltf.Node) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	if gn.Matrix != gltf.DefaultMatrix && gn.Matrix != [16]float64{} {
		var m mgl32.Mat4
		for i, v := range gn.Matrix {
			m[i] = float32(v)
		}
		pos := m.Col(3).Vec3()
		scale := mgl32.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
		if scale.X() == 0 || scale.Y() == 0 || scale.Z() == 0 {
			return pos, mgl32.QuatIdent(), scale
		}
		rot := mgl32.Mat3FromCols(
			m.Col(0).Vec3().Mul(1/scale.X()),
			m.Col(1).Vec3().Mul(1/scale.Y()),
			m.Col(2).Vec3().Mul(1/scale.Z()),
		)
		return pos, mgl32.Mat4ToQuat(rot.Mat4()).Normalize(), scale
	}

	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault() // [x, y, z, w]
	s := gn.ScaleOrDefault()
	return mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])},
		mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}},
		mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
}

func loadGLTFMesh(doc *gltf.Document, gm *gltf.Mesh) (MeshDef, error) {
	var md MeshDef
	for pi, prim := range gm.Primitives {
		posIdx, ok := prim.Attributes["POSITION"]
		if !ok {
			return MeshDef{}, errors.Errorf("primitive %d: no POSITION attribute", pi)
		}
		if posIdx < 0 || posIdx >= len(doc.Accessors) {
			return MeshDef{}, errors.Errorf("primitive %d: position accessor %d out of range", pi, posIdx)
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return MeshDef{}, errors.Wrapf(err, "primitive %d: positions", pi)
		}

		base := uint32(len(md.Vertices))
		for _, p := range positions {
			md.Vertices = append(md.Vertices, mgl32.Vec3{p[0], p[1], p[2]})
		}

		if prim.Indices == nil {
			continue
		}
		if *prim.Indices < 0 || *prim.Indices >= len(doc.Accessors) {
			return MeshDef{}, errors.Errorf("primitive %d: index accessor %d out of range", pi, *prim.Indices)
		}
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return MeshDef{}, errors.Wrapf(err, "primitive %d: indices", pi)
		}
		for _, idx := range indices {
			md.Indices = append(md.Indices, base+idx)
		}
	}
	return md, nil
}

// readGLTFExtras accepts extras either still raw or already decoded into
// generic values.
func readGLTFExtras(extras any) (gltfExtras, error) {
	var out gltfExtras
	if extras == nil {
		return out, nil
	}

	raw, ok := extras.(json.RawMessage)
	if !ok {
		var err error
		if raw, err = json.Marshal(extras); err != nil {
			return out, errors.Wrap(err, "encoding extras")
		}
	}
	if len(raw) == 0 || raw[0] != '{' {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, errors.Wrap(err, "decoding extras")
	}
	return out, nil
}

func uniqueName(name, kind string, idx int, used map[string]struct{}) string {
	if _, taken := used[name]; name == "" || taken {
		name = fmt.Sprintf("%s_%d", kind, idx)
	}
	used[name] = struct{}{}
	return name
}
