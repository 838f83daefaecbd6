package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/gekko3d/occlusion"
	"github.com/gekko3d/occlusion/bake"
	"github.com/gekko3d/occlusion/bake/export"
	"github.com/gekko3d/occlusion/bake/volume"
)

const (
	jsonFileName      = "occlusion.json"
	volumesFileName   = "volumes.bin"
	occludersFileName = "occluders.bin"
)

var errUnknownFormat = errors.New("unknown output format")

// BakeAction loads the scene, bakes it and writes the artifacts.
func BakeAction(c *cli.Context) error {
	cfg, err := configFromFlags(c)
	if err != nil {
		return err
	}
	format := c.String(flagFormat)
	if format != formatJSON && format != formatBinary {
		return errors.Wrapf(errUnknownFormat, "%q", format)
	}

	app := occlusion.NewApp().UseModules(
		occlusion.LoggingModule{Prefix: "occlusionbake", Debug: c.Bool(flagDebug)},
		occlusion.AssetServerModule{},
		occlusion.HierarchyModule{},
		occlusion.OcclusionModule{Config: cfg},
	)
	logger := app.Logger()
	if l, ok := logger.(*occlusion.DefaultLogger); ok {
		//nolint:errcheck
		defer l.Sync()
	}

	scenePath := c.String(flagScene)
	def, err := occlusion.LoadSceneFile(scenePath)
	if err != nil {
		return err
	}
	ids, err := occlusion.LoadScene(app.Commands(), occlusion.Resource[occlusion.AssetServer](app), def)
	if err != nil {
		return err
	}
	logger.Infof("loaded %d objects and %d meshes from %s", len(ids), len(def.Meshes), scenePath)
	app.Run()

	baker := occlusion.Resource[bake.Baker](app)
	res, err := baker.Bake()
	if err != nil {
		return err
	}
	logger.Infof("baked %d %v volumes and %d occluders", len(res.Volumes), res.Mode, len(res.Occluders))

	outDir := c.String(flagOut)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	var written []string
	switch format {
	case formatJSON:
		written, err = writeJSON(outDir, export.Artifacts{
			Mode:      res.Mode,
			Bounds:    baker.SceneBounds(),
			Volumes:   res.Volumes,
			Occluders: res.Occluders,
		})
	case formatBinary:
		written, err = writeBinary(outDir, res)
	}
	if err != nil {
		return err
	}
	for _, path := range written {
		logger.Infof("wrote %s", path)
	}

	if path := c.String(flagMetricsOut); path != "" {
		if err := writeMetrics(path, prometheus.DefaultGatherer); err != nil {
			return err
		}
		logger.Infof("wrote metrics to %s", path)
	}
	return nil
}

func configFromFlags(c *cli.Context) (bake.Config, error) {
	mode, err := volume.ParseMode(c.String(flagMode))
	if err != nil {
		return bake.Config{}, err
	}
	cfg := bake.Config{
		Mode:            mode,
		Subdivisions:    c.Int(flagSubdivisions),
		LegacyHierarchy: c.Bool(flagLegacyHierarchy),
		DedupeOccluders: c.Bool(flagDedupe),
	}
	if err := cfg.Validate(); err != nil {
		return bake.Config{}, err
	}
	return cfg, nil
}

func writeJSON(dir string, a export.Artifacts) (paths []string, err error) {
	path := filepath.Join(dir, jsonFileName)
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "creating json output")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	if err := export.WriteJSON(f, a); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func writeBinary(dir string, res bake.Result) ([]string, error) {
	volumes, err := export.EncodeVolumes(res.Volumes)
	if err != nil {
		return nil, err
	}

	files := []struct {
		name string
		data []byte
	}{
		{volumesFileName, volumes},
		{occludersFileName, export.EncodeOccluders(res.Occluders)},
	}
	paths := make([]string, 0, len(files))
	for _, file := range files {
		path := filepath.Join(dir, file.name)
		if err := os.WriteFile(path, file.data, 0o644); err != nil {
			return nil, errors.Wrapf(err, "writing %s", file.name)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeMetrics(path string, g prometheus.Gatherer) (err error) {
	families, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating metrics output")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			return errors.Wrap(err, "writing metrics")
		}
	}
	return nil
}
