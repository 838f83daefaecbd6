package occlusion

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/gekko3d/occlusion/bake/bounds"
	"github.com/gekko3d/occlusion/bake/scene"
)

type AssetId string

var ErrEmptyMesh = errors.New("mesh has no vertices")

type AssetServer struct {
	meshes map[AssetId]MeshAsset
}

type AssetServerModule struct{}

type Mesh struct {
	assetId AssetId
}

// Ref is the opaque reference the bake carries for this mesh.
func (m Mesh) Ref() scene.MeshRef {
	return scene.MeshRef(m.assetId)
}

type MeshAsset struct {
	Name     string
	vertices []mgl32.Vec3
	indices  []uint32
	bounds   bounds.AABB
}

func NewAssetServer() *AssetServer {
	return &AssetServer{meshes: make(map[AssetId]MeshAsset)}
}

// LoadMesh stores vertices in mesh-local space and precomputes their bounds.
func (server *AssetServer) LoadMesh(name string, vertices []mgl32.Vec3, indices []uint32) (Mesh, error) {
	if len(vertices) == 0 {
		return Mesh{}, errors.Wrapf(ErrEmptyMesh, "loading mesh %q", name)
	}

	local := bounds.AABB{Min: vertices[0], Max: vertices[0]}
	for _, v := range vertices[1:] {
		local = local.Encapsulate(bounds.AABB{Min: v, Max: v})
	}

	id := makeAssetId()
	server.meshes[id] = MeshAsset{
		Name:     name,
		vertices: vertices,
		indices:  indices,
		bounds:   local,
	}
	return Mesh{assetId: id}, nil
}

// MeshBounds returns the mesh-local bounds of mesh.
func (server *AssetServer) MeshBounds(mesh Mesh) (bounds.AABB, bool) {
	asset, ok := server.meshes[mesh.assetId]
	if !ok {
		return bounds.AABB{}, false
	}
	return asset.bounds, true
}

func (server *AssetServer) MeshAsset(mesh Mesh) (MeshAsset, bool) {
	asset, ok := server.meshes[mesh.assetId]
	return asset, ok
}

func (a MeshAsset) VertexCount() int   { return len(a.vertices) }
func (a MeshAsset) TriangleCount() int { return len(a.indices) / 3 }

func (AssetServerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewAssetServer())
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
