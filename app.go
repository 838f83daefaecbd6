// Package occlusion is a small ECS scene host for the occlusion bake: it
// loads glTF or preset scenes into entities, resolves their transform
// hierarchy and exposes them to bake.Baker.
package occlusion

import (
	"fmt"
	"reflect"
)

// Module installs resources into an App.
type Module interface {
	Install(app *App, cmd *Commands)
}

// App owns the scene ECS and the resources modules install into it.
type App struct {
	resources map[reflect.Type]any
	ecs       *Ecs
	systems   map[Stage][]systemFn

	pendingAdditions    []pendingAdd
	pendingRemovals     []EntityId
	pendingCompAdds     []pendingCompChange
	pendingCompRemovals []pendingCompChange
}

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingCompChange struct {
	eid        EntityId
	components []any
}

func NewApp() *App {
	ecs := MakeEcs()
	return &App{
		resources: make(map[reflect.Type]any),
		ecs:       &ecs,
	}
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

func (app *App) UseModules(modules ...Module) *App {
	cmd := app.Commands()
	for _, m := range modules {
		m.Install(app, cmd)
	}
	return app
}

// addResources registers pointer resources by their element type. A second
// resource of the same type is a programming error.
func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("resource %s must be a pointer", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}
		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the resource of type *T, or nil if none was installed.
func Resource[T any](app *App) *T {
	if r, ok := app.resources[reflect.TypeFor[T]()]; ok {
		return r.(*T)
	}
	return nil
}

// FlushCommands applies buffered changes: removals, then entity
// additions, then component additions and removals.
func (app *App) FlushCommands() {
	for _, eid := range app.pendingRemovals {
		app.ecs.removeEntity(eid)
	}
	app.pendingRemovals = app.pendingRemovals[:0]

	for _, add := range app.pendingAdditions {
		app.ecs.insertEntity(add.eid, add.components...)
	}
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, add := range app.pendingCompAdds {
		if app.ecs.hasEntity(add.eid) {
			app.ecs.addComponents(add.eid, add.components...)
		}
	}
	app.pendingCompAdds = app.pendingCompAdds[:0]

	for _, rm := range app.pendingCompRemovals {
		if app.ecs.hasEntity(rm.eid) {
			app.ecs.removeComponents(rm.eid, rm.components...)
		}
	}
	app.pendingCompRemovals = app.pendingCompRemovals[:0]
}
