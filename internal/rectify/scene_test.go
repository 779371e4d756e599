package rectify

import (
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

var (
	paper  = gocv.NewScalar(220, 220, 220, 0)
	ink    = color.RGBA{20, 20, 20, 0}
	grey80 = color.RGBA{80, 80, 80, 0}
	white  = color.RGBA{245, 245, 245, 0}
)

// card describes a synthetic card: a dark frame of the given width around a
// white face, rotated by angle degrees about its center.
type card struct {
	center Point
	w, h   float64
	angle  float64
	border float64
	frame  color.RGBA
}

// corners returns the card's outer corners as TL, TR, BR, BL of the
// unrotated card.
func (c card) corners(inset float64) Quad {
	rad := c.angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	hw, hh := c.w/2-inset, c.h/2-inset
	var q Quad
	for i, d := range [4]Point{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}} {
		q[i] = Point{
			X: c.center.X + d.X*cos - d.Y*sin,
			Y: c.center.Y + d.X*sin + d.Y*cos,
		}
	}
	return q
}

func (c card) draw(t *testing.T, img *gocv.Mat) {
	t.Helper()
	frame := c.frame
	if frame == (color.RGBA{}) {
		frame = ink
	}
	fillQuad(t, img, c.corners(0), frame)
	fillQuad(t, img, c.corners(c.border), white)
}

func fillQuad(t *testing.T, img *gocv.Mat, q Quad, clr color.RGBA) {
	t.Helper()
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{q.imagePoints()})
	defer pv.Close()
	gocv.FillPoly(img, pv, clr)
}

func newCanvas(t *testing.T, w, h int) gocv.Mat {
	t.Helper()
	img := gocv.NewMatWithSizeFromScalar(paper, h, w, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { img.Close() })
	return img
}

// standardScene is an 800x1040 card rotated by 15 degrees on a 1600x1800 sheet.
func standardScene(t *testing.T) (gocv.Mat, card) {
	t.Helper()
	img := newCanvas(t, 1600, 1800)
	c := card{center: Point{800, 900}, w: 800, h: 1040, angle: 15, border: 20}
	c.draw(t, &img)
	return img, c
}

func writePNG(t *testing.T, img gocv.Mat, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.True(t, gocv.IMWrite(path, img), "write %s", path)
	return path
}

func requireQuadNear(t *testing.T, want, got Quad, tol float64) {
	t.Helper()
	for i := range want {
		d := math.Hypot(want[i].X-got[i].X, want[i].Y-got[i].Y)
		require.LessOrEqualf(t, d, tol, "%s corner: want %v, got %v", cornerNames[i], want[i], got[i])
	}
}
