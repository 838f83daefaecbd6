package occlusion

import (
	"github.com/gekko3d/occlusion/bake"
)

// OcclusionModule installs a *bake.Baker that reads the ECS scene and
// spawns occluder proxies into it. Install AssetServerModule first; a
// LoggingModule installed earlier is picked up as the bake logger.
type OcclusionModule struct {
	Config bake.Config
}

func (m OcclusionModule) Install(app *App, cmd *Commands) {
	assets := Resource[AssetServer](app)
	if assets == nil {
		assets = NewAssetServer()
		cmd.AddResources(assets)
	}

	baker := bake.NewBaker(
		NewEcsSceneQuery(cmd, assets),
		NewEcsProxyFactory(cmd),
		app.Logger(),
		m.Config,
	)
	cmd.AddResources(baker)
}
