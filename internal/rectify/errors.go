package rectify

import (
	"errors"
	"fmt"
	"image"
)

// Stage names a step of the rectification pipeline.
type Stage string

const (
	StageLoad    Stage = "load"
	StageSegment Stage = "segment"
	StageContour Stage = "contour"
	StageCorners Stage = "corners"
	StageOrder   Stage = "order"
	StageWarp    Stage = "warp"
	StageRegion  Stage = "region"
)

// StageError wraps the first failure of a pipeline run with the stage it came from.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// StageOf reports the pipeline stage err originated from, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

// LoadError is returned when the input cannot be read or decoded as an image.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Source, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }

// NoContourError is returned when segmentation leaves no foreground region.
type NoContourError struct{}

func (e *NoContourError) Error() string { return "no contours found" }

// CornerCountError is returned when the largest region does not simplify to a quadrilateral.
type CornerCountError struct {
	Count int
}

func (e *CornerCountError) Error() string {
	return fmt.Sprintf("expected 4 corners, found %d", e.Count)
}

// DegenerateGeometryError is returned when the corners cannot define a stable perspective transform.
type DegenerateGeometryError struct {
	Reason string
}

func (e *DegenerateGeometryError) Error() string { return "degenerate geometry: " + e.Reason }

// RegionBoundsError is returned when the text region does not fit inside the rectified card.
type RegionBoundsError struct {
	Rect   image.Rectangle
	Bounds image.Rectangle
}

func (e *RegionBoundsError) Error() string {
	return fmt.Sprintf("region %v outside card bounds %v", e.Rect, e.Bounds)
}
