package occlusion

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/occlusion/bake/bounds"
)

func TestAssetServer_LoadMesh(t *testing.T) {
	server := NewAssetServer()

	mesh, err := server.LoadMesh("wedge", []mgl32.Vec3{{0, 0, 0}, {2, 0, -1}, {0, 3, 1}}, []uint32{0, 1, 2})
	require.NoError(t, err)
	assert.NotEmpty(t, mesh.Ref())

	b, ok := server.MeshBounds(mesh)
	require.True(t, ok)
	assert.Equal(t, bounds.AABB{Min: mgl32.Vec3{0, 0, -1}, Max: mgl32.Vec3{2, 3, 1}}, b)

	asset, ok := server.MeshAsset(mesh)
	require.True(t, ok)
	assert.Equal(t, "wedge", asset.Name)
	assert.Equal(t, 3, asset.VertexCount())
	assert.Equal(t, 1, asset.TriangleCount())
}

func TestAssetServer_UniqueIds(t *testing.T) {
	server := NewAssetServer()
	verts := []mgl32.Vec3{{0, 0, 0}}

	a, err := server.LoadMesh("a", verts, nil)
	require.NoError(t, err)
	b, err := server.LoadMesh("a", verts, nil)
	require.NoError(t, err)

	assert.NotEqual(t, a.Ref(), b.Ref())
}

func TestAssetServer_EmptyMesh(t *testing.T) {
	server := NewAssetServer()

	_, err := server.LoadMesh("empty", nil, nil)
	assert.ErrorIs(t, err, ErrEmptyMesh)

	_, ok := server.MeshBounds(Mesh{assetId: "missing"})
	assert.False(t, ok)
}

func TestAssetServerModule_Install(t *testing.T) {
	app := NewAppBuilder().UseModule(AssetServerModule{}).Build()
	assert.NotNil(t, Resource[AssetServer](app))
}
