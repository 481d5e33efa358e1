// Package errors defines the failure kinds of the conversion pipeline.
package errors

import (
	"errors"
	"fmt"
)

var (
	// Input errors 🧩
	ErrNoTilesFound = errors.New("❌ no source tiles found")

	// Geometry errors 📐
	ErrInvalidGeometry = errors.New("❌ invalid cube geometry")

	// Projection errors 🧊
	ErrProjectionFailed = errors.New("❌ reprojection process failed")
	ErrMissingFace      = errors.New("❌ cube face not generated")
)

// Pipeline stage names, used to qualify every fatal error.
const (
	StageConfigure   = "load configuration"
	StageReconstruct = "reconstruct panorama"
	StageGeometry    = "compute geometry"
	StageProject     = "generate cube faces"
	StagePyramid     = "generate tiles"
	StageDescriptor  = "write descriptor"
	StageCleanup     = "cleanup workspace"
)

// StageError ties a failure to the pipeline stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// AtStage wraps err with its stage. A nil err stays nil.
func AtStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// Stage returns the stage name recorded in err, or "" if there is none.
func Stage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
