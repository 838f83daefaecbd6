package occlusion

import (
	"github.com/go-gl/mathgl/mgl32"
)

// maxHierarchyPasses bounds the propagation passes, and so the parent chain
// depth that is fully resolved in one run.
const maxHierarchyPasses = 32

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(System(TransformHierarchySystem).InStage(PreBake))
}

// TransformHierarchySystem writes the world TransformComponent of every
// entity with a Parent from its LocalTransformComponent. Roots keep their
// world transform as the source of truth.
func TransformHierarchySystem(cmd *Commands) {
	MakeQuery2[LocalTransformComponent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, tr *TransformComponent) bool {
		if _, ok := GetComponent[Parent](cmd, eid); ok {
			return true
		}
		local.Position = tr.Position
		local.Rotation = tr.Rotation
		local.Scale = tr.Scale
		return true
	})

	for pass := 0; pass < maxHierarchyPasses; pass++ {
		changed := false
		MakeQuery3[LocalTransformComponent, Parent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, parent *Parent, world *TransformComponent) bool {
			parentWorld, ok := GetComponent[TransformComponent](cmd, parent.Entity)
			if !ok {
				return true
			}

			newWorld := composeTransform(parentWorld, *local)
			if newWorld != *world {
				*world = newWorld
				changed = true
			}
			return true
		})
		if !changed {
			break
		}
	}
}

// composeTransform applies local under parent component-wise, which keeps
// the sign of negative scales.
func composeTransform(parent TransformComponent, local LocalTransformComponent) TransformComponent {
	scaledLocalPos := mgl32.Vec3{
		local.Position.X() * parent.Scale.X(),
		local.Position.Y() * parent.Scale.Y(),
		local.Position.Z() * parent.Scale.Z(),
	}
	return TransformComponent{
		Position: parent.Position.Add(parent.Rotation.Rotate(scaledLocalPos)),
		Rotation: parent.Rotation.Mul(local.Rotation).Normalize(),
		Scale: mgl32.Vec3{
			parent.Scale.X() * local.Scale.X(),
			parent.Scale.Y() * local.Scale.Y(),
			parent.Scale.Z() * local.Scale.Z(),
		},
	}
}
