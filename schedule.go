package occlusion

import (
	"fmt"
	"slices"
)

type Stage struct {
	Name string
}

// Stages run in this order on every App.Run. Pending commands are flushed
// after each stage, so a stage sees everything earlier stages spawned.
var (
	Load     = Stage{Name: "Load"}
	PreBake  = Stage{Name: "PreBake"}
	Bake     = Stage{Name: "Bake"}
	PostBake = Stage{Name: "PostBake"}
)

var stageOrder = []Stage{Load, PreBake, Bake, PostBake}

type systemFn func(cmd *Commands)

type systemScheduleBuilder struct {
	inStage Stage
	system  systemFn
}

func System(fn func(cmd *Commands)) systemScheduleBuilder {
	return systemScheduleBuilder{inStage: PreBake, system: fn}
}

func (sched systemScheduleBuilder) InStage(s Stage) systemScheduleBuilder {
	sched.inStage = s
	return sched
}

func (app *App) UseSystem(sched systemScheduleBuilder) *App {
	if !slices.Contains(stageOrder, sched.inStage) {
		panic(fmt.Sprintf("unknown stage %q", sched.inStage.Name))
	}
	if app.systems == nil {
		app.systems = make(map[Stage][]systemFn)
	}
	app.systems[sched.inStage] = append(app.systems[sched.inStage], sched.system)
	return app
}

// Run executes every stage once.
func (app *App) Run() {
	cmd := app.Commands()
	app.FlushCommands()
	for _, stage := range stageOrder {
		for _, system := range app.systems[stage] {
			system(cmd)
		}
		app.FlushCommands()
	}
}
