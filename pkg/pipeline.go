package pkg

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"

	"github.com/panokit/cubetile/internal/workspace"
	"github.com/panokit/cubetile/pkg/config"
	"github.com/panokit/cubetile/pkg/cube"
	"github.com/panokit/cubetile/pkg/descriptor"
	perrors "github.com/panokit/cubetile/pkg/errors"
	"github.com/panokit/cubetile/pkg/panorama"
	"github.com/panokit/cubetile/pkg/projection"
	"github.com/panokit/cubetile/pkg/pyramid"
)

// Pipeline converts one directory of source tiles into a cube tile pyramid.
type Pipeline struct {
	Config *config.Config
	// Projector overrides the nona subprocess configured in Config.
	Projector projection.Projector
	Logger    hclog.Logger
}

// Result describes a finished conversion.
type Result struct {
	PanoramaWidth  int
	PanoramaHeight int
	Geometry       cube.Geometry
	Stats          pyramid.Stats
	DescriptorPath string
}

// Run executes every stage in order. Any failure aborts the run and is
// returned as a *errors.StageError.
func (p *Pipeline) Run(ctx context.Context, tilesDir, outputDir string) (*Result, error) {
	cfg := p.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := p.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	start := time.Now()

	logger.Info("🔄 Converting", "source", tilesDir, "output", outputDir)

	ws := workspace.New(outputDir)
	if err := ws.Create(); err != nil {
		return nil, perrors.AtStage(perrors.StageReconstruct, err)
	}

	// 1. panorama
	pano, err := panorama.Reconstruct(tilesDir, panorama.Options{
		Zoom:      cfg.SourceZoom,
		Resampler: cfg.ResamplerImpl(),
		Logger:    logger.Named("panorama"),
	})
	if err != nil {
		return nil, perrors.AtStage(perrors.StageReconstruct, err)
	}
	logger.Info("🧩 Panorama reconstructed",
		"width", pano.Width,
		"height", pano.Height,
		"tiles", pano.Tiles,
		"pixels", humanize.Comma(int64(pano.Width)*int64(pano.Height)))

	// 2. geometry
	geom, err := cube.ComputeGeometry(pano.Width)
	if err != nil {
		return nil, perrors.AtStage(perrors.StageGeometry, err)
	}
	logger.Info("📐 Geometry", "cube_size", geom.CubeSize, "levels", geom.Levels)

	// 3. cube faces
	projector := p.Projector
	if projector == nil {
		projector, err = projection.NewNonaProjector(cfg.Nona, logger.Named("nona"))
		if err != nil {
			return nil, perrors.AtStage(perrors.StageProject, err)
		}
	}
	engine := &projection.Engine{Projector: projector, Workspace: ws, Logger: logger.Named("projection")}
	faces, err := engine.GenerateFaces(ctx, pano, geom.CubeSize)
	if err != nil {
		return nil, perrors.AtStage(perrors.StageProject, err)
	}
	width, height := pano.Width, pano.Height
	pano = nil // the faces replace the panorama from here on

	// 4. tiles
	gen := &pyramid.Generator{
		OutputDir: outputDir,
		Geometry:  geom,
		Encoder:   cfg.Encoder(),
		Resampler: cfg.ResamplerImpl(),
		Workers:   cfg.Workers,
		Logger:    logger.Named("pyramid"),
	}
	stats, err := gen.Generate(ctx, faces)
	if err != nil {
		return nil, perrors.AtStage(perrors.StagePyramid, err)
	}

	// 5. descriptor
	path, err := descriptor.Write(outputDir, descriptor.New(geom, gen.Encoder.Extension()))
	if err != nil {
		return nil, perrors.AtStage(perrors.StageDescriptor, err)
	}
	logger.Debug("📝 Descriptor written", "path", path)

	// 6. cleanup
	if cfg.KeepIntermediate {
		logger.Info("📦 Keeping intermediate files", "dir", outputDir)
	} else {
		removed, err := ws.Clean()
		if err != nil {
			return nil, perrors.AtStage(perrors.StageCleanup, err)
		}
		logger.Debug("🧹 Removed intermediate files", "count", len(removed))
	}

	VerifyPyramid(outputDir, logger.Named("verify"))

	logger.Info(fmt.Sprintf("✅ Complete! %d levels, cube size %d", geom.Levels, geom.CubeSize),
		"elapsed", time.Since(start).Round(time.Millisecond))

	return &Result{
		PanoramaWidth:  width,
		PanoramaHeight: height,
		Geometry:       geom,
		Stats:          stats,
		DescriptorPath: path,
	}, nil
}
