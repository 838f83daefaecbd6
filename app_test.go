package occlusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func TestApp_addResources(t *testing.T) {
	app := NewApp()
	r1 := &MockResource1{name: "one"}
	r2 := &MockResource2{name: "two"}

	app.addResources(r1, r2)

	assert.Same(t, r1, Resource[MockResource1](app))
	assert.Same(t, r2, Resource[MockResource2](app))
	assert.Nil(t, Resource[AssetServer](app))
}

func TestApp_addResourcesPanics(t *testing.T) {
	app := NewApp()
	app.addResources(&MockResource1{})

	assert.Panics(t, func() { app.addResources(&MockResource1{name: "again"}) })
	assert.Panics(t, func() { app.addResources(MockResource2{}) })
}

func TestApp_FlushCommands(t *testing.T) {
	type Health struct{ hp int }
	type Tag struct{}

	app := NewApp()
	cmd := app.Commands()

	eid := cmd.AddEntity(Health{hp: 10})
	assert.Nil(t, cmd.GetAllComponents(eid), "entity should not exist before flush")

	app.FlushCommands()
	assert.Equal(t, []any{Health{hp: 10}}, cmd.GetAllComponents(eid))

	cmd.AddComponents(eid, Tag{})
	app.FlushCommands()
	_, ok := GetComponent[Tag](cmd, eid)
	assert.True(t, ok)

	cmd.RemoveComponents(eid, Tag{})
	app.FlushCommands()
	_, ok = GetComponent[Tag](cmd, eid)
	assert.False(t, ok)

	cmd.RemoveEntity(eid)
	app.FlushCommands()
	assert.Nil(t, cmd.GetAllComponents(eid))
}

func TestApp_AddComponentsToRemovedEntityIsIgnored(t *testing.T) {
	type Tag struct{}

	app := NewApp()
	cmd := app.Commands()
	eid := cmd.AddEntity(Tag{})
	app.FlushCommands()

	cmd.RemoveEntity(eid)
	cmd.AddComponents(eid, Tag{})
	require.NotPanics(t, app.FlushCommands)
	assert.Nil(t, cmd.GetAllComponents(eid))
}

func TestApp_RunStagesInOrder(t *testing.T) {
	type Marker struct{ stage string }

	app := NewApp()
	var order []string
	app.UseSystem(System(func(cmd *Commands) { order = append(order, "postbake") }).InStage(PostBake))
	app.UseSystem(System(func(cmd *Commands) {
		order = append(order, "load")
		cmd.AddEntity(Marker{stage: "load"})
	}).InStage(Load))
	app.UseSystem(System(func(cmd *Commands) {
		n := 0
		MakeQuery1[Marker](cmd).Map(func(EntityId, *Marker) bool {
			n++
			return true
		})
		assert.Equal(t, 1, n, "entities spawned in Load should be visible in Bake")
		order = append(order, "bake")
	}).InStage(Bake))

	app.Run()

	assert.Equal(t, []string{"load", "bake", "postbake"}, order)
}

func TestApp_UseSystemUnknownStage(t *testing.T) {
	app := NewApp()
	assert.Panics(t, func() {
		app.UseSystem(System(func(*Commands) {}).InStage(Stage{Name: "Render"}))
	})
}
