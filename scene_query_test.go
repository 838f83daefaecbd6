package occlusion

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/occlusion/bake/bounds"
	"github.com/gekko3d/occlusion/bake/scene"
)

func loadTestScene(t *testing.T, def *SceneDef) (*App, *EcsSceneQuery, map[string]EntityId) {
	t.Helper()

	app := NewApp()
	cmd := app.Commands()
	assets := NewAssetServer()
	ids, err := LoadScene(cmd, assets, def)
	require.NoError(t, err)
	app.FlushCommands()
	TransformHierarchySystem(cmd)
	return app, NewEcsSceneQuery(cmd, assets), ids
}

func TestEcsSceneQuery_ObjectsWithFlag(t *testing.T) {
	_, q, ids := loadTestScene(t, &SceneDef{
		Meshes: []MeshDef{unitCube},
		Objects: []ObjectDef{
			{Name: "both", Mesh: "cube", Flags: scene.OccluderStatic | scene.OccludeeStatic},
			{Name: "occludee", Mesh: "cube", Position: mgl32.Vec3{4, 0, 0}, Scale: mgl32.Vec3{2, 2, 2}, Flags: scene.OccludeeStatic},
			{Name: "plain", Mesh: "cube"},
		},
	})

	occluders := q.ObjectsWithFlag(scene.OccluderStatic)
	require.Len(t, occluders, 1)
	assert.Equal(t, uint64(ids["both"]), occluders[0].Handle)
	assert.NotEmpty(t, occluders[0].Mesh)

	occludees := q.ObjectsWithFlag(scene.OccludeeStatic)
	require.Len(t, occludees, 2)
	assert.Equal(t, uint64(ids["both"]), occludees[0].Handle)
	assert.Equal(t, uint64(ids["occludee"]), occludees[1].Handle)
	assert.Equal(t, bounds.AABB{Min: mgl32.Vec3{3, -1, -1}, Max: mgl32.Vec3{5, 1, 1}}, occludees[1].Bounds)
}

func TestEcsSceneQuery_SortedByHandle(t *testing.T) {
	var objects []ObjectDef
	for range 20 {
		objects = append(objects, ObjectDef{Mesh: "cube", Occluder: true})
	}
	_, q, _ := loadTestScene(t, &SceneDef{Meshes: []MeshDef{unitCube}, Objects: objects})

	for range 5 {
		objs := q.MarkedOccluders()
		require.Len(t, objs, 20)
		for i := 1; i < len(objs); i++ {
			assert.Less(t, objs[i-1].Handle, objs[i].Handle)
		}
	}
}

func TestEcsSceneQuery_SkipsMeshlessSurfaces(t *testing.T) {
	_, q, ids := loadTestScene(t, &SceneDef{
		Meshes: []MeshDef{unitCube},
		Objects: []ObjectDef{
			{Name: "floor", Mesh: "cube", Flags: scene.OccludeeStatic | scene.OccluderStatic},
			{Name: "group", Position: mgl32.Vec3{100, 0, 0}, Flags: scene.OccludeeStatic | scene.OccluderStatic, Occluder: true},
			{Name: "marker", Mesh: "cube", Position: mgl32.Vec3{0, 2, 0}, Occluder: true},
		},
	})

	occludees := q.ObjectsWithFlag(scene.OccludeeStatic)
	require.Len(t, occludees, 1)
	assert.Equal(t, uint64(ids["floor"]), occludees[0].Handle)
	assert.Len(t, q.ObjectsWithFlag(scene.OccluderStatic), 1)

	marked := q.MarkedOccluders()
	require.Len(t, marked, 1)
	assert.Equal(t, uint64(ids["marker"]), marked[0].Handle)

	root := bounds.Calculate([]bounds.AABB{occludees[0].Bounds})
	assert.Equal(t, bounds.FromCenterSize(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}), root)
}

func TestEcsSceneQuery_UsesWorldTransform(t *testing.T) {
	_, q, ids := loadTestScene(t, &SceneDef{
		Objects: []ObjectDef{
			{Name: "root", Position: mgl32.Vec3{10, 0, 0}, Scale: mgl32.Vec3{2, 2, 2}},
			{Name: "portal", Parent: "root", Position: mgl32.Vec3{1, 0, 0}, Volume: true},
		},
	})

	vols := q.MarkedVolumes()
	require.Len(t, vols, 1)
	assert.Equal(t, uint64(ids["portal"]), vols[0].Handle)
	assert.Equal(t, mgl32.Vec3{12, 0, 0}, vols[0].Transform.Position)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, vols[0].Transform.Scale)
	assert.Empty(t, vols[0].Mesh)
	assert.Equal(t, bounds.FromCenterSize(mgl32.Vec3{12, 0, 0}, mgl32.Vec3{2, 2, 2}), vols[0].Bounds)
}

func TestEcsSceneQuery_Empty(t *testing.T) {
	_, q, _ := loadTestScene(t, &SceneDef{})
	assert.Empty(t, q.ObjectsWithFlag(scene.OccludeeStatic))
	assert.Empty(t, q.MarkedOccluders())
	assert.Empty(t, q.MarkedVolumes())
}
