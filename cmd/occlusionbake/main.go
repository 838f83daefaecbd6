// Package main is the occlusionbake command: it loads a glTF scene, bakes
// its occlusion data and writes the artifacts to disk.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gekko3d/occlusion/bake"
)

const (
	// Flags.
	flagScene           = "scene"
	flagMode            = "mode"
	flagSubdivisions    = "subdivisions"
	flagLegacyHierarchy = "legacy-hierarchy"
	flagDedupe          = "dedupe"
	flagFormat          = "format"
	flagOut             = "out"
	flagMetricsOut      = "metrics-out"
	flagDebug           = "debug"

	formatJSON   = "json"
	formatBinary = "bin"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	defaults := bake.DefaultConfig()

	return &cli.App{
		Name:  "occlusionbake",
		Usage: "precompute occlusion culling data for a scene",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				EnvVars: []string{"OCCLUSION_DEBUG"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "bake",
				Usage:     "bake portal volumes and occluders from a glTF or preset scene",
				UsageText: "occlusionbake bake --scene <file.gltf|file.glb|file.json> [options]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagScene,
						EnvVars:  []string{"OCCLUSION_SCENE"},
						Required: true,
						Usage:    "scene to bake (.gltf, .glb or .json preset)",
					},
					&cli.StringFlag{
						Name:    flagMode,
						EnvVars: []string{"OCCLUSION_MODE"},
						Value:   defaults.Mode.String(),
						Usage:   "volume mode (auto|manual|hybrid)",
					},
					&cli.IntFlag{
						Name:    flagSubdivisions,
						EnvVars: []string{"OCCLUSION_SUBDIVISIONS"},
						Value:   defaults.Subdivisions,
						Usage:   "octree depth of auto volumes",
					},
					&cli.BoolFlag{
						Name:    flagLegacyHierarchy,
						EnvVars: []string{"OCCLUSION_LEGACY_HIERARCHY"},
						Usage:   "write auto volumes without parent/child links",
					},
					&cli.BoolFlag{
						Name:    flagDedupe,
						EnvVars: []string{"OCCLUSION_DEDUPE"},
						Usage:   "list objects that are both flagged and marked as occluders once",
					},
					&cli.StringFlag{
						Name:    flagFormat,
						EnvVars: []string{"OCCLUSION_FORMAT"},
						Value:   formatJSON,
						Usage:   "output format (json|bin)",
					},
					&cli.StringFlag{
						Name:    flagOut,
						EnvVars: []string{"OCCLUSION_OUT"},
						Value:   ".",
						Usage:   "output directory",
					},
					&cli.StringFlag{
						Name:    flagMetricsOut,
						EnvVars: []string{"OCCLUSION_METRICS_OUT"},
						Usage:   "write bake metrics in the Prometheus text format to this file",
					},
				},
				Action: BakeAction,
			},
		},
	}
}
