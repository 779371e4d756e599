// Package rectify locates a card in a photograph, warps it to a canonical
// top-down view and crops the region that carries the printed identifier.
//
// The pipeline is strictly linear: load, segment, contour, corners, order,
// warp, region. The first failing stage ends the run and is reported in a
// *StageError.
package rectify

import (
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// Rectifier runs the pipeline with a fixed Config. It holds no mutable state
// and is safe for concurrent use.
type Rectifier struct {
	cfg Config
	log zerolog.Logger
}

// Result is a successful run.
type Result struct {
	Region    image.Image // text region, RGB order
	Corners   Quad        // card corners in the source image
	Threshold float64     // binarization threshold that produced the corners
}

// New validates cfg and returns a Rectifier.
func New(cfg Config, log zerolog.Logger) (*Rectifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Rectifier{cfg: cfg, log: log.With().Str("component", "rectify").Logger()}, nil
}

// Config returns the configuration the Rectifier runs with.
func (r *Rectifier) Config() Config { return r.cfg }

// RectifyCardText loads the image at path and returns its text region.
func (r *Rectifier) RectifyCardText(path string) (image.Image, error) {
	res, err := r.RectifyFile(path)
	if err != nil {
		return nil, err
	}
	return res.Region, nil
}

// RectifyFile is RectifyCardText with the intermediate geometry.
func (r *Rectifier) RectifyFile(path string) (*Result, error) {
	img, err := Load(path)
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}
	defer img.Close()
	return r.Rectify(img, DebugName(path))
}

// DebugName labels the debug output of the image at path: its stem plus a
// short hash of the absolute path, so that same-named files from different
// directories do not overwrite each other.
func DebugName(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	h := fnv.New32a()
	h.Write([]byte(filepath.Clean(path)))
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return fmt.Sprintf("%s-%08x", stem, h.Sum32())
}

// RectifyBytes decodes an encoded image and returns its text region.
func (r *Rectifier) RectifyBytes(buf []byte) (image.Image, error) {
	img, err := Decode(buf)
	if err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}
	defer img.Close()
	res, err := r.Rectify(img, "upload")
	if err != nil {
		return nil, err
	}
	return res.Region, nil
}

// RectifyMat returns the text region of an already decoded BGR image.
// img is not modified or closed.
func (r *Rectifier) RectifyMat(img gocv.Mat) (image.Image, error) {
	res, err := r.Rectify(img, "mat")
	if err != nil {
		return nil, err
	}
	return res.Region, nil
}

// Rectify runs every stage after loading on img. name labels log lines and
// debug output.
func (r *Rectifier) Rectify(img gocv.Mat, name string) (*Result, error) {
	log := r.log.With().Str("image", name).Logger()
	if img.Empty() {
		return nil, &StageError{Stage: StageLoad, Err: &LoadError{Source: name, Err: errUndecodable}}
	}
	log.Debug().Int("width", img.Cols()).Int("height", img.Rows()).Msg("loaded")

	thresholds := append([]float64{r.cfg.Threshold}, r.cfg.Retry.Thresholds...)
	var (
		primary   error
		contour   []image.Point
		corners   [4]Point
		threshold float64
	)
	for i, t := range thresholds {
		c, pts, err := r.locate(img, t)
		if err == nil {
			contour, corners, threshold = c, pts, t
			if i > 0 {
				log.Info().Float64("threshold", t).Msg("card found on retry threshold")
			}
			break
		}
		if primary == nil {
			primary = err
		}
		if !retryable(err) {
			return nil, err
		}
		log.Debug().Float64("threshold", t).Err(err).Msg("no quadrilateral at threshold")
	}
	if contour == nil {
		return nil, primary
	}

	quad := OrderCorners(corners)
	log.Debug().Stringer("tl", quad[0]).Stringer("tr", quad[1]).
		Stringer("br", quad[2]).Stringer("bl", quad[3]).Msg("ordered corners")

	card, err := Warp(img, quad, r.cfg)
	if err != nil {
		return nil, &StageError{Stage: StageWarp, Err: err}
	}
	defer card.Close()

	region, err := ExtractRegion(card, r.cfg.TextRegion)
	if err != nil {
		return nil, &StageError{Stage: StageRegion, Err: err}
	}
	defer region.Close()

	out, err := region.ToImage()
	if err != nil {
		return nil, &StageError{Stage: StageRegion, Err: err}
	}
	log.Debug().Int("width", region.Cols()).Int("height", region.Rows()).Msg("extracted text region")

	if r.cfg.DebugDir != "" {
		r.writeDebug(log, name, img, contour, quad, card)
	}
	return &Result{Region: out, Corners: quad, Threshold: threshold}, nil
}

// locate segments img at threshold and returns the first of the largest
// contours that simplifies to four corners.
func (r *Rectifier) locate(img gocv.Mat, threshold float64) ([]image.Point, [4]Point, error) {
	mask := Segment(img, threshold)
	defer mask.Close()

	ranked := rankContours(mask, r.cfg.Candidates)
	if len(ranked) == 0 {
		return nil, [4]Point{}, &StageError{Stage: StageContour, Err: &NoContourError{}}
	}

	var first error
	for i, contour := range ranked {
		corners, err := ApproximateCorners(contour, r.cfg.EpsilonFraction)
		if err == nil {
			if i > 0 {
				r.log.Debug().Int("candidate", i+1).Msg("using smaller contour")
			}
			return contour, corners, nil
		}
		if first == nil {
			first = err
		}
	}
	return nil, [4]Point{}, &StageError{Stage: StageCorners, Err: first}
}

func retryable(err error) bool {
	var nc *NoContourError
	var cc *CornerCountError
	return errors.As(err, &nc) || errors.As(err, &cc)
}
