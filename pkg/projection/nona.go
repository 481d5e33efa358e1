package projection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/panokit/cubetile/internal/workspace"
	"github.com/panokit/cubetile/pkg/cube"
	perrors "github.com/panokit/cubetile/pkg/errors"
	"github.com/panokit/cubetile/pkg/utils/shellparse"
)

// NonaProjector runs Hugin's nona stitcher as a subprocess.
type NonaProjector struct {
	// Command is the argv prefix, e.g. ["nona"] or ["/opt/hugin/nona", "-z", "LZW"].
	Command []string
	Logger  hclog.Logger
}

// NewNonaProjector parses a command string such as `"/opt/Hugin Tools/nona" -z LZW`.
func NewNonaProjector(command string, logger hclog.Logger) (*NonaProjector, error) {
	argv, err := shellparse.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parsing reprojection command: %w", err)
	}
	if len(argv) == 0 {
		return nil, errors.New("reprojection command is empty")
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &NonaProjector{Command: argv, Logger: logger}, nil
}

// Project writes the project description next to outputPrefix and blocks
// until nona exits. Faces are <outputPrefix>0000.tif .. <outputPrefix>0005.tif.
func (p *NonaProjector) Project(ctx context.Context, src Source, views []cube.Face, faceSize int, outputPrefix string) ([]string, error) {
	dir := filepath.Dir(outputPrefix)
	projectPath := filepath.Join(dir, workspace.ProjectFile)
	if err := WriteProjectFile(projectPath, src, views, faceSize); err != nil {
		return nil, err
	}
	p.Logger.Debug("📝 Project description written", "path", projectPath, "views", len(views))

	args := append(append([]string{}, p.Command...), "-o", outputPrefix, projectPath)
	if err := p.run(ctx, args); err != nil {
		return nil, err
	}

	faces := make([]string, len(views))
	for i := range views {
		faces[i] = fmt.Sprintf("%s%04d%s", outputPrefix, i, workspace.FaceExt)
	}
	return faces, nil
}

func (p *NonaProjector) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.Logger.Info("🚀 Executing reprojection", "path", args[0])
	p.Logger.Debug("🚀 Full command", "command", shellparse.Join(args))

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: failed to start %s: %v", perrors.ErrProjectionFailed, args[0], err)
	}

	err := cmd.Wait()
	if out := strings.TrimSpace(stdout.String()); out != "" {
		p.Logger.Trace("📤 Reprojection output", "stdout", out)
	}
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			p.Logger.Info("⏹️ Process exited", "code", exitErr.ExitCode())
			return fmt.Errorf("%w: exit code %d: %s", perrors.ErrProjectionFailed, exitErr.ExitCode(), detail)
		}
		return fmt.Errorf("%w: %v: %s", perrors.ErrProjectionFailed, err, detail)
	}

	p.Logger.Info("✅ Reprojection completed")
	return nil
}
