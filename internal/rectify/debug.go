package rectify

import (
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

var (
	contourColor = color.RGBA{255, 0, 0, 255}
	quadColor    = color.RGBA{0, 255, 0, 255}
	regionColor  = color.RGBA{255, 255, 0, 255}
	labelColor   = color.RGBA{0, 0, 255, 255}
)

// writeDebug saves an analysis overlay of img and the rectified card into
// the debug directory. Write failures are logged and otherwise ignored.
func (r *Rectifier) writeDebug(log zerolog.Logger, name string, img gocv.Mat, contour []image.Point, q Quad, card gocv.Mat) {
	if err := os.MkdirAll(r.cfg.DebugDir, 0o755); err != nil {
		log.Warn().Err(err).Msg("could not create debug directory")
		return
	}

	overlay := img.Clone()
	defer overlay.Close()
	drawAnalysis(&overlay, contour, q)

	cardOverlay := card.Clone()
	defer cardOverlay.Close()
	rect := RegionRect(image.Pt(card.Cols(), card.Rows()), r.cfg.TextRegion)
	gocv.Rectangle(&cardOverlay, rect, regionColor, 2)

	for path, m := range map[string]gocv.Mat{
		filepath.Join(r.cfg.DebugDir, name+"-analysis.jpg"): overlay,
		filepath.Join(r.cfg.DebugDir, name+"-card.jpg"):     cardOverlay,
	} {
		if ok := gocv.IMWrite(path, m); !ok {
			log.Warn().Str("path", path).Msg("could not write debug image")
			continue
		}
		log.Debug().Str("path", path).Msg("wrote debug image")
	}
}

// drawAnalysis draws the selected contour, the corner quadrilateral and the
// corner labels onto img.
func drawAnalysis(img *gocv.Mat, contour []image.Point, q Quad) {
	contours := gocv.NewPointsVectorFromPoints([][]image.Point{contour})
	defer contours.Close()
	gocv.DrawContours(img, contours, -1, contourColor, 1)

	pts := q.imagePoints()
	for i := range pts {
		gocv.Line(img, pts[i], pts[(i+1)%len(pts)], quadColor, 2)
	}
	for i, p := range pts {
		gocv.Circle(img, p, 6, quadColor, 3)
		gocv.PutText(img, cornerNames[i], p.Add(image.Pt(8, -8)), gocv.FontHersheySimplex, 1.2, labelColor, 2)
	}
}
