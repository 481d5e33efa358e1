// Package pkg is the entry point of the conversion pipeline.
package pkg

import (
	"context"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/panokit/cubetile/pkg/config"
	perrors "github.com/panokit/cubetile/pkg/errors"
	"github.com/panokit/cubetile/pkg/logging"
)

// Convert loads configuration from the environment and converts tilesDir
// into a cube tile pyramid in outputDir.
func Convert(ctx context.Context, tilesDir, outputDir string) (*Result, error) {
	cfg, err := config.Load(config.New())
	if err != nil {
		return nil, perrors.AtStage(perrors.StageConfigure, err)
	}

	logger, closeLog, err := NewLogger(cfg)
	if err != nil {
		return nil, perrors.AtStage(perrors.StageConfigure, err)
	}
	defer closeLog()

	return ConvertWithConfig(ctx, cfg, logger, tilesDir, outputDir)
}

// ConvertWithConfig runs the pipeline with an explicit configuration.
func ConvertWithConfig(ctx context.Context, cfg *config.Config, logger hclog.Logger, tilesDir, outputDir string) (*Result, error) {
	p := &Pipeline{
		Config: cfg,
		Logger: logger.With("run_id", uuid.NewString()),
	}
	return p.Run(ctx, tilesDir, outputDir)
}

// NewLogger builds the run logger described by cfg. The returned func closes
// the log file, if any.
func NewLogger(cfg *config.Config) (hclog.Logger, func() error, error) {
	output, closeFn, err := logging.OpenOutput(cfg.LogPath)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewLogger(logging.Options{
		Name:   "cubetile",
		Level:  cfg.LogLevel,
		JSON:   cfg.JSONLog,
		Output: output,
	})
	return logger, closeFn, nil
}
