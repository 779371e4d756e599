package rectify

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// Region is a crop rectangle expressed as fractions of the rectified card.
type Region struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// Retry lists alternative binarization thresholds tried, in order, when the
// primary threshold yields no contour or no quadrilateral. Empty disables it.
type Retry struct {
	Thresholds []float64 `yaml:"thresholds"`
}

// Config holds the photometric and geometric assumptions of a card template.
type Config struct {
	Threshold       float64 `yaml:"threshold"`        // binarization cutoff on a 0-255 intensity scale
	EpsilonFraction float64 `yaml:"epsilon_fraction"` // polygon tolerance as a fraction of contour arc length
	CardWidth       int     `yaml:"card_width"`       // rectified card width in pixels
	CardAspect      float64 `yaml:"card_aspect"`      // rectified card height / width
	TextRegion      Region  `yaml:"text_region"`      // identifier location on the rectified card
	MinCornerArea   float64 `yaml:"min_corner_area"`  // smallest triangle area (px²) between any three corners
	MinCornerRatio  float64 `yaml:"min_corner_ratio"` // smallest / largest triangle area between any three corners
	MaxCondition    float64 `yaml:"max_condition"`    // largest accepted condition number of the transform
	Candidates      int     `yaml:"candidates"`       // largest contours tried before giving up (1 = largest only)
	Retry           Retry   `yaml:"retry"`

	// DebugDir, when set, receives an analysis overlay and the rectified card
	// for every successfully processed image.
	DebugDir string `yaml:"debug_dir"`
}

// DefaultConfig returns the template of the modeled card layout.
func DefaultConfig() Config {
	return Config{
		Threshold:       50,
		EpsilonFraction: 0.10,
		CardWidth:       1000,
		CardAspect:      3.25 / 2.5,
		TextRegion:      Region{X: 0, Y: 0.96, W: 0.30, H: 0.04},
		MinCornerArea:   1.0,
		MinCornerRatio:  0.02,
		MaxCondition:    1e12,
		Candidates:      1,
	}
}

// CardSize is the size of the rectified card.
func (c Config) CardSize() image.Point {
	return image.Pt(c.CardWidth, int(math.Round(float64(c.CardWidth)*c.CardAspect)))
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Threshold < 0 || c.Threshold > 255 {
		errs = append(errs, fmt.Errorf("threshold %.1f outside 0-255", c.Threshold))
	}
	for _, t := range c.Retry.Thresholds {
		if t < 0 || t > 255 {
			errs = append(errs, fmt.Errorf("retry threshold %.1f outside 0-255", t))
		}
	}
	if c.EpsilonFraction <= 0 || c.EpsilonFraction >= 1 {
		errs = append(errs, fmt.Errorf("epsilon fraction %.3f outside (0,1)", c.EpsilonFraction))
	}
	if c.CardWidth <= 0 {
		errs = append(errs, fmt.Errorf("card width %d must be positive", c.CardWidth))
	}
	if c.CardAspect <= 0 {
		errs = append(errs, fmt.Errorf("card aspect %.3f must be positive", c.CardAspect))
	}
	r := c.TextRegion
	if r.X < 0 || r.Y < 0 || r.W <= 0 || r.H <= 0 || r.X+r.W > 1 || r.Y+r.H > 1 {
		errs = append(errs, fmt.Errorf("text region %+v does not fit the card", r))
	}
	if c.MinCornerArea < 0 {
		errs = append(errs, errors.New("min corner area must not be negative"))
	}
	if c.MinCornerRatio < 0 || c.MinCornerRatio >= 1 {
		errs = append(errs, fmt.Errorf("min corner ratio %.3f outside [0,1)", c.MinCornerRatio))
	}
	if c.MaxCondition <= 1 {
		errs = append(errs, errors.New("max condition must exceed 1"))
	}
	if c.Candidates < 1 {
		errs = append(errs, fmt.Errorf("candidates %d must be at least 1", c.Candidates))
	}
	return errors.Join(errs...)
}
