package occlusion

import (
	"github.com/gekko3d/occlusion/bake/occluder"
)

// EcsProxyFactory spawns one collider-only entity per occluder record. The
// entities carry no mesh, so nothing renders them. They exist after the
// next App.FlushCommands.
type EcsProxyFactory struct {
	cmd *Commands
}

var _ occluder.ProxyFactory = (*EcsProxyFactory)(nil)

func NewEcsProxyFactory(cmd *Commands) *EcsProxyFactory {
	return &EcsProxyFactory{cmd: cmd}
}

func (f *EcsProxyFactory) NewProxy(index int, rec occluder.Serializable) (occluder.ProxyHandle, error) {
	eid := f.cmd.AddEntity(
		TransformComponent{
			Position: rec.PositionWS,
			Rotation: rec.RotationWS,
			Scale:    rec.ScaleWS,
		},
		ColliderComponent{Mesh: rec.Mesh},
		OccluderProxyComponent{Index: index},
	)
	return occluder.ProxyHandle(eid), nil
}
